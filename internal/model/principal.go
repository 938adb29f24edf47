package model

// Metadata keys supplied by identity providers.
const (
	MetaFullName  = "full_name"
	MetaName      = "name"
	MetaAvatarURL = "avatar_url"
)

// Principal is the authenticated identity as reported by the identity
// provider. ID is empty until the principal is bound to a profile.
type Principal struct {
	ID       string            `json:"id"`
	Email    string            `json:"email"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (p Principal) Meta(key string) string {
	if p.Metadata == nil {
		return ""
	}
	return p.Metadata[key]
}

type Session struct {
	Principal Principal `json:"principal"`
	Profile   *Profile  `json:"profile"`
}

func (s *Session) UserID() string {
	return s.Principal.ID
}
