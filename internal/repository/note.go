package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hcissey0/lecture-notes-app/internal/db"
	"github.com/hcissey0/lecture-notes-app/internal/model"
)

const noteColumns = `id, title, course, lecturer, description, file_path, file_type, tags, uploader_id, uploader_name, created_at, download_count, view_count`

// orderable lists the columns List may sort on.
var orderable = map[string]bool{
	"created_at":     true,
	"title":          true,
	"course":         true,
	"lecturer":       true,
	"view_count":     true,
	"download_count": true,
}

type ListOptions struct {
	OrderBy   string // defaults to created_at
	Ascending bool
	Limit     int // 0 means no limit
}

type NoteRepository interface {
	List(ctx context.Context, opts ListOptions) ([]*model.Note, error)
	ByID(ctx context.Context, id string) (*model.Note, error)
	ByUploader(ctx context.Context, userID string) ([]*model.Note, error)
	ByCourse(ctx context.Context, course string) ([]*model.Note, error)
	ByLecturer(ctx context.Context, lecturer string) ([]*model.Note, error)
	Search(ctx context.Context, query string) ([]*model.Note, error)
	Popular(ctx context.Context, limit int) ([]*model.Note, error)
	Recent(ctx context.Context, limit int) ([]*model.Note, error)
	Courses(ctx context.Context) ([]string, error)
	Lecturers(ctx context.Context) ([]string, error)
	Create(ctx context.Context, note *model.Note) (*model.Note, error)
	Update(ctx context.Context, id string, upd model.NoteUpdate) (*model.Note, error)
	Delete(ctx context.Context, id string) error
	IncrementViewCount(ctx context.Context, id string) (*model.Note, error)
	IncrementDownloadCount(ctx context.Context, id string) (*model.Note, error)
	NoteStats(ctx context.Context, id string) (*model.NoteStats, error)
	UserStats(ctx context.Context, userID string) (*model.UserStats, error)
	PlatformStats(ctx context.Context) (*model.PlatformStats, error)
	VerifyCounters(ctx context.Context) error
}

type noteRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewNoteRepository(db *sqlx.DB) NoteRepository {
	return &noteRepository{db: db, now: time.Now}
}

func (r *noteRepository) selectNotes(ctx context.Context, query string, args ...any) ([]*model.Note, error) {
	notes := []*model.Note{}
	err := r.db.SelectContext(ctx, &notes, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return notes, nil
}

func (r *noteRepository) List(ctx context.Context, opts ListOptions) ([]*model.Note, error) {
	orderBy := opts.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	if !orderable[orderBy] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrder, orderBy)
	}

	direction := "DESC"
	if opts.Ascending {
		direction = "ASC"
	}

	query := `SELECT ` + noteColumns + ` FROM notes ORDER BY ` + orderBy + ` ` + direction + `, id ` + direction
	if opts.Limit > 0 {
		return r.selectNotes(ctx, query+` LIMIT $1`, opts.Limit)
	}
	return r.selectNotes(ctx, query)
}

func (r *noteRepository) ByID(ctx context.Context, id string) (*model.Note, error) {
	note := &model.Note{}
	err := r.db.GetContext(ctx, note, `SELECT `+noteColumns+` FROM notes WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return note, nil
}

func (r *noteRepository) ByUploader(ctx context.Context, userID string) ([]*model.Note, error) {
	return r.selectNotes(ctx, `SELECT `+noteColumns+` FROM notes WHERE uploader_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *noteRepository) ByCourse(ctx context.Context, course string) ([]*model.Note, error) {
	return r.selectNotes(ctx, `SELECT `+noteColumns+` FROM notes WHERE course = $1 ORDER BY created_at DESC`, course)
}

func (r *noteRepository) ByLecturer(ctx context.Context, lecturer string) ([]*model.Note, error) {
	return r.selectNotes(ctx, `SELECT `+noteColumns+` FROM notes WHERE lecturer = $1 ORDER BY created_at DESC`, lecturer)
}

// Search matches query case-insensitively against title, course, lecturer
// and description. Wildcards in query are matched literally.
func (r *noteRepository) Search(ctx context.Context, query string) ([]*model.Note, error) {
	fold, foldColumn := r.folding()
	pattern := "%" + EscapeLike(fold(strings.TrimSpace(query))) + "%"
	return r.selectNotes(ctx, fmt.Sprintf(`SELECT `+noteColumns+` FROM notes
		WHERE %[1]s(title) LIKE $1 ESCAPE '\'
		   OR %[1]s(course) LIKE $1 ESCAPE '\'
		   OR %[1]s(lecturer) LIKE $1 ESCAPE '\'
		   OR %[1]s(COALESCE(description, '')) LIKE $1 ESCAPE '\'
		ORDER BY created_at DESC`, foldColumn), pattern)
}

// folding pairs the Go and SQL case folding used by Search. SQLite gets the
// Unicode-aware function registered by the db package; Postgres LOWER is
// already Unicode-aware.
func (r *noteRepository) folding() (func(string) string, string) {
	if r.db.DriverName() == "sqlite" {
		return db.Fold, db.FoldFunction
	}
	return strings.ToLower, "LOWER"
}

func (r *noteRepository) Popular(ctx context.Context, limit int) ([]*model.Note, error) {
	return r.selectNotes(ctx, `SELECT `+noteColumns+` FROM notes ORDER BY view_count DESC, download_count DESC, created_at DESC LIMIT $1`, limit)
}

func (r *noteRepository) Recent(ctx context.Context, limit int) ([]*model.Note, error) {
	return r.List(ctx, ListOptions{OrderBy: "created_at", Limit: limit})
}

func (r *noteRepository) Courses(ctx context.Context) ([]string, error) {
	courses := []string{}
	err := r.db.SelectContext(ctx, &courses, `SELECT DISTINCT course FROM notes ORDER BY course`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return courses, nil
}

func (r *noteRepository) Lecturers(ctx context.Context) ([]string, error) {
	lecturers := []string{}
	err := r.db.SelectContext(ctx, &lecturers, `SELECT DISTINCT lecturer FROM notes ORDER BY lecturer`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return lecturers, nil
}

// Create assigns the id, creation time and zero counters, then stores the
// note and returns the stored row.
func (r *noteRepository) Create(ctx context.Context, note *model.Note) (*model.Note, error) {
	if strings.TrimSpace(note.Title) == "" || strings.TrimSpace(note.Course) == "" ||
		strings.TrimSpace(note.Lecturer) == "" || note.FilePath == "" || note.UploaderID == "" {
		return nil, ErrInvalidNote
	}

	n := *note
	n.ID = uuid.New().String()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.now().UTC()
	}
	n.ViewCount = 0
	n.DownloadCount = 0
	if n.Tags == nil {
		n.Tags = model.Tags{}
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO notes (`+noteColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		n.ID, n.Title, n.Course, n.Lecturer, nullable(n.Description), n.FilePath, n.FileType, n.Tags,
		n.UploaderID, n.UploaderName, n.CreatedAt, n.DownloadCount, n.ViewCount,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicatePath
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return r.refresh(ctx, n.ID)
}

func (r *noteRepository) Update(ctx context.Context, id string, upd model.NoteUpdate) (*model.Note, error) {
	if upd.IsEmpty() {
		return r.ByID(ctx, id)
	}

	var c setClause
	if upd.Title != nil {
		c.add("title", *upd.Title)
	}
	if upd.Course != nil {
		c.add("course", *upd.Course)
	}
	if upd.Lecturer != nil {
		c.add("lecturer", *upd.Lecturer)
	}
	if upd.Description != nil {
		c.add("description", nullable(upd.Description))
	}
	if upd.Tags != nil {
		c.add("tags", *upd.Tags)
	}

	sets, idx := c.build()
	query := fmt.Sprintf(`UPDATE notes SET %s WHERE id = $%d`, sets, idx)
	res, err := r.db.ExecContext(ctx, query, append(c.args, id)...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	err = expectRow(res, ErrNoteNotFound)
	if err != nil {
		return nil, err
	}

	return r.refresh(ctx, id)
}

// Delete removes the note. Deleting a missing note is not an error.
func (r *noteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *noteRepository) IncrementViewCount(ctx context.Context, id string) (*model.Note, error) {
	return r.increment(ctx, id, `UPDATE notes SET view_count = view_count + 1 WHERE id = $1`)
}

func (r *noteRepository) IncrementDownloadCount(ctx context.Context, id string) (*model.Note, error) {
	return r.increment(ctx, id, `UPDATE notes SET download_count = download_count + 1 WHERE id = $1`)
}

// increment runs a single-statement counter update so concurrent callers
// never lose increments, then reads the row back.
func (r *noteRepository) increment(ctx context.Context, id, query string) (*model.Note, error) {
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	err = expectRow(res, ErrNoteNotFound)
	if err != nil {
		return nil, err
	}
	return r.refresh(ctx, id)
}

// refresh reads back a row that was just written.
func (r *noteRepository) refresh(ctx context.Context, id string) (*model.Note, error) {
	note, err := r.ByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("note %s: %w", id, errors.Join(ErrPartialFailure, err))
	}
	return note, nil
}

func (r *noteRepository) NoteStats(ctx context.Context, id string) (*model.NoteStats, error) {
	stats := &model.NoteStats{}
	err := r.db.GetContext(ctx, stats, `SELECT view_count, download_count FROM notes WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return stats, nil
}

func (r *noteRepository) UserStats(ctx context.Context, userID string) (*model.UserStats, error) {
	stats := &model.UserStats{}
	err := r.db.GetContext(ctx, stats, `SELECT
			COUNT(*) AS total_notes,
			CAST(COALESCE(SUM(view_count), 0) AS BIGINT) AS total_views,
			CAST(COALESCE(SUM(download_count), 0) AS BIGINT) AS total_downloads
		FROM notes WHERE uploader_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return stats, nil
}

func (r *noteRepository) PlatformStats(ctx context.Context) (*model.PlatformStats, error) {
	stats := &model.PlatformStats{}
	err := r.db.GetContext(ctx, stats, `SELECT
			(SELECT COUNT(*) FROM notes) AS total_notes,
			(SELECT COUNT(*) FROM profiles) AS total_users,
			(SELECT CAST(COALESCE(SUM(view_count), 0) AS BIGINT) FROM notes) AS total_views,
			(SELECT CAST(COALESCE(SUM(download_count), 0) AS BIGINT) FROM notes) AS total_downloads`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return stats, nil
}

// VerifyCounters fails when the schema lacks the counter columns that the
// atomic increment statements depend on.
func (r *noteRepository) VerifyCounters(ctx context.Context) error {
	var stats model.NoteStats
	err := r.db.GetContext(ctx, &stats, `SELECT view_count, download_count FROM notes LIMIT 1`)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("counter columns unavailable: %w", err)
	}
	return nil
}

func expectRow(res sql.Result, notFound error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
