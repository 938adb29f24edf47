package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hcissey0/lecture-notes-app/internal/model"
	"github.com/hcissey0/lecture-notes-app/internal/validation"
)

func TestSignIn_CreatesProfileOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.sessions.SignIn(ctx, model.Principal{
		Email:    " Ama@Example.com ",
		Metadata: map[string]string{model.MetaName: "Ama", model.MetaAvatarURL: "https://img/a.png"},
	})
	require.NoError(t, err)
	require.NotNil(t, first.Profile)
	assert.Equal(t, "ama@example.com", first.Profile.Email)
	assert.Equal(t, "Ama", first.Profile.DisplayName())
	assert.False(t, first.Profile.AnonymousUploads)
	assert.True(t, first.Profile.EmailNotifications)
	assert.Equal(t, first.Profile.ID, first.UserID())

	second, err := f.sessions.SignIn(ctx, model.Principal{Email: "ama@example.com"})
	require.NoError(t, err)
	assert.Equal(t, first.UserID(), second.UserID())
	assert.Equal(t, []string{"welcome"}, f.mailer.kinds())

	count, err := f.profiles.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSignIn_PrefersFullName(t *testing.T) {
	f := newFixture(t)
	session := f.signIn(t, "ama@example.com", map[string]string{
		model.MetaFullName: "Ama Owusu",
		model.MetaName:     "ama",
	})
	assert.Equal(t, "Ama Owusu", session.Profile.DisplayName())

	bare := f.signIn(t, "kofi@example.com", nil)
	assert.Nil(t, bare.Profile.FullName)
}

func TestSignIn_InvalidEmail(t *testing.T) {
	f := newFixture(t)
	_, err := f.sessions.SignIn(context.Background(), model.Principal{Email: "not-an-email"})
	require.ErrorIs(t, err, validation.ErrValidation)
}

func TestCurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := f.signIn(t, "ama@example.com", nil)

	resumed, err := f.sessions.Current(ctx, session.Principal)
	require.NoError(t, err)
	assert.Equal(t, session.Profile.ID, resumed.Profile.ID)

	require.NoError(t, f.profiles.Delete(ctx, session.UserID()))
	_, err = f.sessions.Current(ctx, session.Principal)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestUploaderName(t *testing.T) {
	s := &SessionService{}
	name := "Ama Owusu"

	tests := []struct {
		name      string
		profile   *model.Profile
		principal model.Principal
		want      string
	}{
		{"anonymous wins", &model.Profile{FullName: &name, AnonymousUploads: true}, model.Principal{Email: "a@x.io"}, AnonymousUploader},
		{"profile name", &model.Profile{FullName: &name}, model.Principal{Email: "a@x.io"}, "Ama Owusu"},
		{"metadata full name", &model.Profile{}, model.Principal{Email: "a@x.io", Metadata: map[string]string{model.MetaFullName: "A. O.", model.MetaName: "ao"}}, "A. O."},
		{"metadata name", &model.Profile{}, model.Principal{Email: "a@x.io", Metadata: map[string]string{model.MetaName: "ao"}}, "ao"},
		{"email", &model.Profile{}, model.Principal{Email: "a@x.io"}, "a@x.io"},
		{"unknown", nil, model.Principal{}, UnknownUploader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.UploaderName(tt.profile, tt.principal))
		})
	}
}

func TestProfileService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewProfileService(f.profiles)
	session := f.signIn(t, "ama@example.com", nil)

	profile, err := svc.UpdateProfile(ctx, session.UserID(), model.ProfileUpdate{FullName: strPtr("  Ama Owusu ")})
	require.NoError(t, err)
	assert.Equal(t, "Ama Owusu", profile.DisplayName())

	_, err = svc.UpdateProfile(ctx, session.UserID(), model.ProfileUpdate{FullName: strPtr(strings.Repeat("a", 101))})
	require.ErrorIs(t, err, validation.ErrValidation)

	settings, err := svc.UpdateSettings(ctx, session.UserID(), model.SettingsUpdate{
		AnonymousUploads:   boolPtr(true),
		EmailNotifications: boolPtr(false),
	})
	require.NoError(t, err)
	assert.True(t, settings.AnonymousUploads)
	assert.False(t, settings.EmailNotifications)
	assert.Equal(t, "Ama Owusu", *settings.FullName)

	got, err := svc.Settings(ctx, session.UserID())
	require.NoError(t, err)
	assert.Equal(t, settings, got)

	_, err = svc.Profile(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}
