package model

import "time"

type Profile struct {
	ID                 string    `db:"id" json:"id"`
	Email              string    `db:"email" json:"email"`
	FullName           *string   `db:"full_name" json:"full_name"`
	AvatarURL          *string   `db:"avatar_url" json:"avatar_url"`
	AnonymousUploads   bool      `db:"anonymous_uploads" json:"anonymous_uploads"`
	EmailNotifications bool      `db:"email_notifications" json:"email_notifications"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// DisplayName returns the full name, or "" when unset.
func (p *Profile) DisplayName() string {
	if p == nil || p.FullName == nil {
		return ""
	}
	return *p.FullName
}

func (p *Profile) Settings() *UserSettings {
	return &UserSettings{
		AnonymousUploads:   p.AnonymousUploads,
		FullName:           p.FullName,
		EmailNotifications: p.EmailNotifications,
	}
}

// UserSettings is the user-editable projection of a profile.
type UserSettings struct {
	AnonymousUploads   bool    `json:"anonymous_uploads"`
	FullName           *string `json:"full_name"`
	EmailNotifications bool    `json:"email_notifications"`
}

// ProfileUpdate is a partial update. Nil fields are left untouched;
// an empty FullName or AvatarURL clears the value.
type ProfileUpdate struct {
	FullName           *string `json:"full_name"`
	AvatarURL          *string `json:"avatar_url"`
	AnonymousUploads   *bool   `json:"anonymous_uploads"`
	EmailNotifications *bool   `json:"email_notifications"`
}

func (u ProfileUpdate) IsEmpty() bool {
	return u.FullName == nil && u.AvatarURL == nil && u.AnonymousUploads == nil && u.EmailNotifications == nil
}

type SettingsUpdate struct {
	AnonymousUploads   *bool   `json:"anonymous_uploads"`
	FullName           *string `json:"full_name"`
	EmailNotifications *bool   `json:"email_notifications"`
}

func (u SettingsUpdate) ProfileUpdate() ProfileUpdate {
	return ProfileUpdate{
		FullName:           u.FullName,
		AnonymousUploads:   u.AnonymousUploads,
		EmailNotifications: u.EmailNotifications,
	}
}
