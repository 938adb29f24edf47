package ctxkeys

import (
	"context"

	"github.com/hcissey0/lecture-notes-app/internal/config"
	"github.com/hcissey0/lecture-notes-app/internal/model"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	SessionKey      contextKey = "session"
	SessionErrorKey contextKey = "session_error"
	ConfigKey       contextKey = "config"
	CSRFTokenKey    contextKey = "csrf_token"
)

// Session returns the signed-in session, or nil for anonymous requests.
func Session(ctx context.Context) *model.Session {
	session, _ := ctx.Value(SessionKey).(*model.Session)
	return session
}

func WithSession(ctx context.Context, session *model.Session) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

// SessionError is the failure that kept a presented token from resuming
// its session, or nil.
func SessionError(ctx context.Context) error {
	err, _ := ctx.Value(SessionErrorKey).(error)
	return err
}

func WithSessionError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, SessionErrorKey, err)
}

func Config(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(ConfigKey).(*config.Config)
	return cfg
}

func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, ConfigKey, cfg)
}

func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(CSRFTokenKey).(string)
	return token
}

func WithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, CSRFTokenKey, token)
}
