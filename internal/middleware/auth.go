package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hcissey0/lecture-notes-app/internal/ctxkeys"
	"github.com/hcissey0/lecture-notes-app/internal/service"
)

// AuthMiddleware resolves the session token (cookie or bearer) and adds
// the session to the context when it is valid. Requests without a valid
// token continue anonymously.
func AuthMiddleware(authService *service.AuthService, sessionService *service.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := authService.TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := authService.VerifyJWT(token)
			if err != nil {
				clearStaleCookie(w, r, authService)
				next.ServeHTTP(w, r)
				return
			}

			session, err := sessionService.Current(r.Context(), principal)
			if errors.Is(err, service.ErrUnauthenticated) {
				slog.Warn("session not resumed", "error", err, "user_id", principal.ID)
				clearStaleCookie(w, r, authService)
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				// The token is still good; keep the cookie and let
				// protected routes report the outage.
				slog.Error("session lookup failed", "error", err, "user_id", principal.ID)
				ctx := ctxkeys.WithSessionError(r.Context(), err)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			ctx := ctxkeys.WithSession(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func clearStaleCookie(w http.ResponseWriter, r *http.Request, authService *service.AuthService) {
	if _, err := r.Cookie(service.AuthCookieName); err == nil {
		authService.ClearJWTCookie(w)
	}
}

// RequireAuth rejects requests without a session. A session that could not
// be loaded answers 502 rather than 401.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.Session(r.Context()) == nil {
			if ctxkeys.SessionError(r.Context()) != nil {
				jsonError(w, http.StatusBadGateway, "the notes database is unavailable, please try again")
				return
			}
			jsonError(w, http.StatusUnauthorized, service.ErrUnauthenticated.Error())
			return
		}
		next.ServeHTTP(w, r)
	}
}
