package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/hcissey0/lecture-notes-app/internal/catalog"
	"github.com/hcissey0/lecture-notes-app/internal/markdown"
	"github.com/hcissey0/lecture-notes-app/internal/model"
	"github.com/hcissey0/lecture-notes-app/internal/repository"
	"github.com/hcissey0/lecture-notes-app/internal/storage"
	"github.com/hcissey0/lecture-notes-app/internal/validation"
)

const (
	DefaultPreviewTTL = time.Hour
	DefaultListLimit  = 100
	DefaultTopLimit   = 10
)

type NoteService struct {
	notes       repository.NoteRepository
	storage     storage.Storage
	sessions    *SessionService
	mailer      Mailer
	markdown    *markdown.Parser
	constraints validation.FileConstraints
	previewTTL  time.Duration
	now         func() time.Time
}

func NewNoteService(
	notes repository.NoteRepository,
	store storage.Storage,
	sessions *SessionService,
	mailer Mailer,
	md *markdown.Parser,
	constraints validation.FileConstraints,
	previewTTL time.Duration,
) *NoteService {
	if previewTTL <= 0 {
		previewTTL = DefaultPreviewTTL
	}
	return &NoteService{
		notes:       notes,
		storage:     store,
		sessions:    sessions,
		mailer:      mailer,
		markdown:    md,
		constraints: constraints,
		previewTTL:  previewTTL,
		now:         time.Now,
	}
}

// UploadInput is a note submitted by a signed-in user.
type UploadInput struct {
	Title       string
	Course      string
	Lecturer    string
	Description string
	Tags        model.Tags
	// Anonymous overrides the profile's anonymous_uploads setting for this
	// upload when set.
	Anonymous *bool
	File      validation.Upload
}

// Upload stores the file and then the note record. A storage failure
// aborts before any record is written. A record failure leaves the stored
// file behind; it is logged, not removed.
func (s *NoteService) Upload(ctx context.Context, session *model.Session, in UploadInput) (*model.Note, error) {
	if session == nil || session.Profile == nil {
		return nil, ErrUnauthenticated
	}

	title := strings.TrimSpace(in.Title)
	course := strings.TrimSpace(in.Course)
	lecturer := strings.TrimSpace(in.Lecturer)
	err := validation.ValidateNoteFields(title, course, lecturer)
	if err != nil {
		return nil, err
	}
	detected, err := validation.ValidateUpload(in.File, s.constraints)
	if err != nil {
		return nil, err
	}

	// Type, key extension and stored content type follow the sniffed bytes,
	// not the client's filename or header.
	filePath := storage.NotePath(session.UserID(), s.now(), model.ExtensionFromMIME(detected))
	err = s.storage.Save(ctx, filePath, in.File.Content, detected)
	if err != nil {
		return nil, storageError("save note file", err)
	}

	profile := session.Profile
	if in.Anonymous != nil && *in.Anonymous != profile.AnonymousUploads {
		p := *profile
		p.AnonymousUploads = *in.Anonymous
		profile = &p
	}

	note := &model.Note{
		Title:        title,
		Course:       course,
		Lecturer:     lecturer,
		Description:  optional(in.Description),
		FilePath:     filePath,
		FileType:     model.FileTypeFromMIME(detected),
		Tags:         cleanTags(in.Tags),
		UploaderID:   session.UserID(),
		UploaderName: s.sessions.UploaderName(profile, session.Principal),
	}

	created, err := s.notes.Create(ctx, note)
	if err != nil {
		slog.Error("note record not created, stored file is orphaned",
			"error", err, "path", filePath, "user_id", session.UserID())
		return nil, recordError("create note", err)
	}

	slog.Info("note uploaded", "note_id", created.ID, "user_id", session.UserID(), "file_type", created.FileType)

	if session.Profile.EmailNotifications {
		err = s.mailer.SendUploadConfirmation(ctx, session.Principal.Email, session.Profile.DisplayName(), created)
		if err != nil {
			slog.Warn("failed to send upload confirmation", "error", err, "note_id", created.ID)
		}
	}

	return created, nil
}

func (s *NoteService) Get(ctx context.Context, id string) (*model.Note, error) {
	note, err := s.notes.ByID(ctx, id)
	if err != nil {
		return nil, recordError("get note", err)
	}
	return note, nil
}

func (s *NoteService) List(ctx context.Context, opts repository.ListOptions) ([]*model.Note, error) {
	notes, err := s.notes.List(ctx, opts)
	if errors.Is(err, repository.ErrInvalidOrder) {
		return nil, &validation.FieldError{Field: "order", Message: err.Error()}
	}
	if err != nil {
		return nil, recordError("list notes", err)
	}
	return notes, nil
}

func (s *NoteService) Recent(ctx context.Context, limit int) ([]*model.Note, error) {
	notes, err := s.notes.Recent(ctx, topLimit(limit))
	if err != nil {
		return nil, recordError("recent notes", err)
	}
	return notes, nil
}

func (s *NoteService) Popular(ctx context.Context, limit int) ([]*model.Note, error) {
	notes, err := s.notes.Popular(ctx, topLimit(limit))
	if err != nil {
		return nil, recordError("popular notes", err)
	}
	return notes, nil
}

// Search matches query against title, course, lecturer and description.
// A blank query returns the most recent notes.
func (s *NoteService) Search(ctx context.Context, query string) ([]*model.Note, error) {
	if strings.TrimSpace(query) == "" {
		return s.List(ctx, repository.ListOptions{Limit: DefaultListLimit})
	}
	notes, err := s.notes.Search(ctx, query)
	if err != nil {
		return nil, recordError("search notes", err)
	}
	return notes, nil
}

func (s *NoteService) ByUploader(ctx context.Context, userID string) ([]*model.Note, error) {
	notes, err := s.notes.ByUploader(ctx, userID)
	if err != nil {
		return nil, recordError("list uploads", err)
	}
	return notes, nil
}

// Browse loads the whole collection, newest first, and applies f to it.
// Facets are derived from every note, not only the visible ones.
func (s *NoteService) Browse(ctx context.Context, f catalog.Filters) (catalog.State, error) {
	notes, err := s.notes.List(ctx, repository.ListOptions{})
	if err != nil {
		return catalog.State{}, recordError("browse notes", err)
	}

	state := catalog.NewState(notes)
	for _, a := range []catalog.Action{
		catalog.SetSearchTerm{Term: f.SearchTerm},
		catalog.SelectCourse{Course: f.Course},
		catalog.SelectLecturer{Lecturer: f.Lecturer},
		catalog.SelectTag{Tag: f.Tag},
	} {
		state = catalog.Reduce(state, a)
	}
	return state, nil
}

// Update edits the descriptive fields of a note owned by the session user.
func (s *NoteService) Update(ctx context.Context, session *model.Session, id string, upd model.NoteUpdate) (*model.Note, error) {
	note, err := s.owned(ctx, session, id)
	if err != nil {
		return nil, err
	}
	if upd.IsEmpty() {
		return note, nil
	}

	title, course, lecturer := note.Title, note.Course, note.Lecturer
	if upd.Title != nil {
		title = strings.TrimSpace(*upd.Title)
		upd.Title = &title
	}
	if upd.Course != nil {
		course = strings.TrimSpace(*upd.Course)
		upd.Course = &course
	}
	if upd.Lecturer != nil {
		lecturer = strings.TrimSpace(*upd.Lecturer)
		upd.Lecturer = &lecturer
	}
	err = validation.ValidateNoteFields(title, course, lecturer)
	if err != nil {
		return nil, err
	}
	if upd.Tags != nil {
		tags := cleanTags(*upd.Tags)
		upd.Tags = &tags
	}

	updated, err := s.notes.Update(ctx, id, upd)
	if err != nil {
		return nil, recordError("update note", err)
	}
	return updated, nil
}

// DeleteResult reports the secondary outcome of a delete. FileErr is set
// when the record was removed but the stored file was not.
type DeleteResult struct {
	Note    *model.Note
	FileErr error
}

func (r *DeleteResult) FileRemoved() bool {
	return r.FileErr == nil
}

// Delete removes a note owned by the session user. The file is removed
// first on a best-effort basis; its failure never blocks the record delete.
func (s *NoteService) Delete(ctx context.Context, session *model.Session, id string) (*DeleteResult, error) {
	note, err := s.owned(ctx, session, id)
	if err != nil {
		return nil, err
	}

	result := &DeleteResult{Note: note}
	err = s.storage.Delete(ctx, note.FilePath)
	if err != nil {
		slog.Warn("failed to delete note file", "error", err, "note_id", id, "path", note.FilePath)
		result.FileErr = fmt.Errorf("%w: %w", ErrPartialFailure, err)
	}

	err = s.notes.Delete(ctx, id)
	if err != nil {
		return nil, recordError("delete note", err)
	}

	slog.Info("note deleted", "note_id", id, "user_id", session.UserID(), "file_removed", result.FileRemoved())
	return result, nil
}

// RecordView increments the view counter. When the counter was updated but
// the note could not be re-read, the failure is logged and a nil note is
// returned.
func (s *NoteService) RecordView(ctx context.Context, id string) (*model.Note, error) {
	note, err := s.notes.IncrementViewCount(ctx, id)
	if errors.Is(err, repository.ErrPartialFailure) {
		slog.Warn("view counted but note not refreshed", "error", err, "note_id", id)
		return nil, nil
	}
	if err != nil {
		return nil, recordError("record view", err)
	}
	return note, nil
}

// Download is an open note file. The caller closes Body.
type Download struct {
	Note        *model.Note
	Filename    string
	ContentType string
	Body        io.ReadCloser
}

// Download counts the download and opens the stored file. A failed counter
// update is logged and does not prevent the download.
func (s *NoteService) Download(ctx context.Context, id string) (*Download, error) {
	note, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.notes.IncrementDownloadCount(ctx, id)
	if err != nil {
		slog.Warn("download counter not updated", "error", err, "note_id", id)
	} else {
		note = updated
	}

	body, err := s.storage.Open(ctx, note.FilePath)
	if err != nil {
		return nil, storageError("open note file", err)
	}

	return &Download{
		Note:        note,
		Filename:    note.DownloadName(),
		ContentType: contentType(note),
		Body:        body,
	}, nil
}

// PreviewURL returns a time-limited link to the note file. A zero ttl uses
// the configured default.
func (s *NoteService) PreviewURL(ctx context.Context, id string, ttl time.Duration) (string, error) {
	note, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if ttl <= 0 {
		ttl = s.previewTTL
	}
	url, err := s.storage.SignedURL(ctx, note.FilePath, ttl)
	if err != nil {
		return "", storageError("sign preview url", err)
	}
	return url, nil
}

// RenderDescription returns the description as HTML, or "" when unset.
func (s *NoteService) RenderDescription(note *model.Note) (string, error) {
	if note.Description == nil {
		return "", nil
	}
	return s.markdown.Render(*note.Description)
}

func (s *NoteService) NoteStats(ctx context.Context, id string) (*model.NoteStats, error) {
	stats, err := s.notes.NoteStats(ctx, id)
	if err != nil {
		return nil, recordError("note stats", err)
	}
	return stats, nil
}

func (s *NoteService) UserStats(ctx context.Context, userID string) (*model.UserStats, error) {
	stats, err := s.notes.UserStats(ctx, userID)
	if err != nil {
		return nil, recordError("user stats", err)
	}
	return stats, nil
}

func (s *NoteService) PlatformStats(ctx context.Context) (*model.PlatformStats, error) {
	stats, err := s.notes.PlatformStats(ctx)
	if err != nil {
		return nil, recordError("platform stats", err)
	}
	return stats, nil
}

// owned loads a note and checks that the session user uploaded it.
func (s *NoteService) owned(ctx context.Context, session *model.Session, id string) (*model.Note, error) {
	if session == nil {
		return nil, ErrUnauthenticated
	}
	note, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if note.UploaderID != session.UserID() {
		return nil, ErrForbidden
	}
	return note, nil
}

func contentType(note *model.Note) string {
	if note.FileType == model.FileTypePDF {
		return "application/pdf"
	}
	if strings.EqualFold(path.Ext(note.FilePath), ".png") {
		return "image/png"
	}
	return "image/jpeg"
}

func cleanTags(tags model.Tags) model.Tags {
	out := model.Tags{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func topLimit(limit int) int {
	if limit <= 0 {
		return DefaultTopLimit
	}
	return limit
}
