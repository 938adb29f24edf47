package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hcissey0/lecture-notes-app/internal/model"
	"github.com/hcissey0/lecture-notes-app/internal/repository"
	"github.com/hcissey0/lecture-notes-app/internal/validation"
)

const (
	AnonymousUploader = "Anonymous"
	UnknownUploader   = "Unknown"
)

// SessionService binds identity-provider principals to profiles.
type SessionService struct {
	profiles repository.ProfileRepository
	mailer   Mailer
}

func NewSessionService(profiles repository.ProfileRepository, mailer Mailer) *SessionService {
	return &SessionService{
		profiles: profiles,
		mailer:   mailer,
	}
}

// SignIn returns the session for principal, creating the profile on first
// sign-in.
func (s *SessionService) SignIn(ctx context.Context, principal model.Principal) (*model.Session, error) {
	email := strings.TrimSpace(strings.ToLower(principal.Email))
	err := validation.ValidateEmail(email)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.ByEmail(ctx, email)
	if errors.Is(err, repository.ErrProfileNotFound) {
		profile, err = s.createProfile(ctx, principal, email)
	}
	if err != nil {
		return nil, recordError("sign in", err)
	}

	principal.ID = profile.ID
	principal.Email = profile.Email
	slog.Info("user signed in", "user_id", profile.ID)

	return &model.Session{Principal: principal, Profile: profile}, nil
}

func (s *SessionService) createProfile(ctx context.Context, principal model.Principal, email string) (*model.Profile, error) {
	profile := &model.Profile{
		Email:              email,
		AnonymousUploads:   false,
		EmailNotifications: true,
	}
	if name := firstNonEmpty(principal.Meta(model.MetaFullName), principal.Meta(model.MetaName)); name != "" {
		profile.FullName = &name
	}
	if avatar := principal.Meta(model.MetaAvatarURL); avatar != "" {
		profile.AvatarURL = &avatar
	}

	created, err := s.profiles.Create(ctx, profile)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		// A concurrent first sign-in won the insert.
		return s.profiles.ByEmail(ctx, email)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("profile created", "user_id", created.ID)

	err = s.mailer.SendWelcomeEmail(ctx, created.Email, created.DisplayName())
	if err != nil {
		slog.Warn("failed to send welcome email", "error", err, "user_id", created.ID)
	}

	return created, nil
}

// Current resumes the session of a principal taken from a verified token.
// A principal whose profile no longer exists is unauthenticated.
func (s *SessionService) Current(ctx context.Context, principal model.Principal) (*model.Session, error) {
	profile, err := s.profiles.ByID(ctx, principal.ID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return nil, fmt.Errorf("%w: profile %s no longer exists", ErrUnauthenticated, principal.ID)
	}
	if err != nil {
		return nil, recordError("load session", err)
	}
	return &model.Session{Principal: principal, Profile: profile}, nil
}

// UploaderName is the name recorded on a new note.
func (s *SessionService) UploaderName(profile *model.Profile, principal model.Principal) string {
	if profile != nil && profile.AnonymousUploads {
		return AnonymousUploader
	}
	name := firstNonEmpty(
		profile.DisplayName(),
		principal.Meta(model.MetaFullName),
		principal.Meta(model.MetaName),
		principal.Email,
	)
	if name == "" {
		return UnknownUploader
	}
	return name
}
