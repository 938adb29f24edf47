package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hcissey0/lecture-notes-app/internal/model"
)

const profileColumns = `id, email, full_name, avatar_url, anonymous_uploads, email_notifications, created_at`

type ProfileRepository interface {
	ByID(ctx context.Context, id string) (*model.Profile, error)
	ByEmail(ctx context.Context, email string) (*model.Profile, error)
	Create(ctx context.Context, profile *model.Profile) (*model.Profile, error)
	Update(ctx context.Context, id string, upd model.ProfileUpdate) (*model.Profile, error)
	Delete(ctx context.Context, id string) error
	Settings(ctx context.Context, id string) (*model.UserSettings, error)
	UpdateSettings(ctx context.Context, id string, upd model.SettingsUpdate) (*model.UserSettings, error)
	Count(ctx context.Context) (int64, error)
}

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) ByID(ctx context.Context, id string) (*model.Profile, error) {
	return r.get(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
}

func (r *profileRepository) ByEmail(ctx context.Context, email string) (*model.Profile, error) {
	return r.get(ctx, `SELECT `+profileColumns+` FROM profiles WHERE email = $1`, email)
}

func (r *profileRepository) get(ctx context.Context, query string, arg string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.GetContext(ctx, &profile, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &profile, nil
}

// Create stores a profile. The id is generated when empty; callers set
// EmailNotifications explicitly since the zero value disables it.
func (r *profileRepository) Create(ctx context.Context, profile *model.Profile) (*model.Profile, error) {
	p := *profile
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO profiles (`+profileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Email, nullable(p.FullName), nullable(p.AvatarURL), p.AnonymousUploads, p.EmailNotifications, p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &p, nil
}

func (r *profileRepository) Update(ctx context.Context, id string, upd model.ProfileUpdate) (*model.Profile, error) {
	if upd.IsEmpty() {
		return r.ByID(ctx, id)
	}

	var c setClause
	if upd.FullName != nil {
		c.add("full_name", nullable(upd.FullName))
	}
	if upd.AvatarURL != nil {
		c.add("avatar_url", nullable(upd.AvatarURL))
	}
	if upd.AnonymousUploads != nil {
		c.add("anonymous_uploads", *upd.AnonymousUploads)
	}
	if upd.EmailNotifications != nil {
		c.add("email_notifications", *upd.EmailNotifications)
	}

	sets, idx := c.build()
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`UPDATE profiles SET %s WHERE id = $%d`, sets, idx), append(c.args, id)...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	err = expectRow(res, ErrProfileNotFound)
	if err != nil {
		return nil, err
	}

	profile, err := r.ByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", id, errors.Join(ErrPartialFailure, err))
	}
	return profile, nil
}

func (r *profileRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectRow(res, ErrProfileNotFound)
}

func (r *profileRepository) Settings(ctx context.Context, id string) (*model.UserSettings, error) {
	profile, err := r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return profile.Settings(), nil
}

func (r *profileRepository) UpdateSettings(ctx context.Context, id string, upd model.SettingsUpdate) (*model.UserSettings, error) {
	profile, err := r.Update(ctx, id, upd.ProfileUpdate())
	if err != nil {
		return nil, err
	}
	return profile.Settings(), nil
}

func (r *profileRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM profiles`)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
