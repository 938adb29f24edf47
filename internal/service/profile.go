package service

import (
	"context"
	"strings"

	"github.com/hcissey0/lecture-notes-app/internal/model"
	"github.com/hcissey0/lecture-notes-app/internal/repository"
	"github.com/hcissey0/lecture-notes-app/internal/validation"
)

type ProfileService struct {
	profileRepo repository.ProfileRepository
}

func NewProfileService(profileRepo repository.ProfileRepository) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
	}
}

func (s *ProfileService) Profile(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.profileRepo.ByID(ctx, userID)
	if err != nil {
		return nil, recordError("get profile", err)
	}
	return profile, nil
}

// UpdateProfile applies a partial update. The email cannot be changed.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, upd model.ProfileUpdate) (*model.Profile, error) {
	if upd.FullName != nil {
		name := strings.TrimSpace(*upd.FullName)
		err := validation.ValidateFullName(name)
		if err != nil {
			return nil, err
		}
		upd.FullName = &name
	}

	profile, err := s.profileRepo.Update(ctx, userID, upd)
	if err != nil {
		return nil, recordError("update profile", err)
	}
	return profile, nil
}

func (s *ProfileService) Settings(ctx context.Context, userID string) (*model.UserSettings, error) {
	settings, err := s.profileRepo.Settings(ctx, userID)
	if err != nil {
		return nil, recordError("get settings", err)
	}
	return settings, nil
}

func (s *ProfileService) UpdateSettings(ctx context.Context, userID string, upd model.SettingsUpdate) (*model.UserSettings, error) {
	if upd.FullName != nil {
		name := strings.TrimSpace(*upd.FullName)
		err := validation.ValidateFullName(name)
		if err != nil {
			return nil, err
		}
		upd.FullName = &name
	}

	settings, err := s.profileRepo.UpdateSettings(ctx, userID, upd)
	if err != nil {
		return nil, recordError("update settings", err)
	}
	return settings, nil
}
