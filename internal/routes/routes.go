package routes

import (
	"net/http"

	"github.com/hcissey0/lecture-notes-app/internal/app"
	"github.com/hcissey0/lecture-notes-app/internal/handler"
	"github.com/hcissey0/lecture-notes-app/internal/middleware"
	"github.com/hcissey0/lecture-notes-app/internal/storage"
)

// uploadOverhead leaves room for the form fields that accompany a
// maximum-size file.
const uploadOverhead = 1 << 20

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	home := handler.NewHomeHandler(app.DB)
	auth := handler.NewAuthHandler(app.AuthService, app.SessionService, app.Cfg)
	profile := handler.NewProfileHandler(app.ProfileService)
	settings := handler.NewSettingsHandler(app.ProfileService)
	notes := handler.NewNoteHandler(app.NoteService, app.Cfg.PreviewURLTTL)
	stats := handler.NewStatsHandler(app.NoteService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /{$}", home.Index)
	mux.HandleFunc("GET /healthz", home.Healthz)

	// Signed downloads for local storage
	if local, ok := app.Storage.(*storage.LocalStorage); ok {
		files := handler.NewFilesHandler(local)
		mux.HandleFunc("GET /files/{path...}", files.Serve)
	}

	// Auth - OAuth flow (rate limited)
	rateLimiter := middleware.RateLimitAuth()

	mux.HandleFunc("GET /auth/google", rateLimiter(auth.GoogleAuth))
	mux.HandleFunc("GET /auth/google/callback", rateLimiter(auth.GoogleCallback))
	mux.HandleFunc("GET /auth/github", rateLimiter(auth.GitHubAuth))
	mux.HandleFunc("GET /auth/github/callback", rateLimiter(auth.GitHubCallback))
	mux.HandleFunc("POST /auth/logout", auth.Logout)

	// ============================================================================
	// PROTECTED ROUTES (/api/*)
	// ============================================================================

	// Session, profile and settings
	mux.HandleFunc("GET /api/me", middleware.RequireAuth(auth.Me))
	mux.HandleFunc("GET /api/profile", middleware.RequireAuth(profile.Show))
	mux.HandleFunc("PATCH /api/profile", middleware.RequireAuth(profile.Update))
	mux.HandleFunc("GET /api/settings", middleware.RequireAuth(settings.Show))
	mux.HandleFunc("PATCH /api/settings", middleware.RequireAuth(settings.Update))

	// Notes
	uploadLimit := middleware.MaxBodySize(app.Cfg.MaxUploadSize + uploadOverhead)
	uploadRateLimiter := middleware.RateLimitUpload()

	mux.HandleFunc("GET /api/notes", middleware.RequireAuth(notes.Browse))
	mux.HandleFunc("GET /api/notes/search", middleware.RequireAuth(notes.Search))
	mux.HandleFunc("GET /api/notes/popular", middleware.RequireAuth(notes.Popular))
	mux.HandleFunc("GET /api/notes/recent", middleware.RequireAuth(notes.Recent))
	mux.HandleFunc("GET /api/notes/mine", middleware.RequireAuth(notes.Mine))
	mux.HandleFunc("POST /api/notes", middleware.RequireAuth(uploadRateLimiter(uploadLimit(notes.Upload))))
	mux.HandleFunc("GET /api/notes/{id}", middleware.RequireAuth(notes.Show))
	mux.HandleFunc("PATCH /api/notes/{id}", middleware.RequireAuth(notes.Update))
	mux.HandleFunc("DELETE /api/notes/{id}", middleware.RequireAuth(notes.Delete))
	mux.HandleFunc("POST /api/notes/{id}/view", middleware.RequireAuth(notes.View))
	mux.HandleFunc("GET /api/notes/{id}/download", middleware.RequireAuth(notes.Download))
	mux.HandleFunc("GET /api/notes/{id}/preview", middleware.RequireAuth(notes.Preview))

	// Analytics
	mux.HandleFunc("GET /api/stats", middleware.RequireAuth(stats.Platform))
	mux.HandleFunc("GET /api/stats/me", middleware.RequireAuth(stats.Mine))
	mux.HandleFunc("GET /api/notes/{id}/stats", middleware.RequireAuth(stats.Note))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.HandleFunc("/{path...}", home.NotFound)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.Config(app.Cfg), // Config must be first (needed by SecurityHeaders and CSRF cookies)
		middleware.SecurityHeaders,
		middleware.AuthMiddleware(app.AuthService, app.SessionService), // before logging so requests carry user_id
		middleware.RequestLogging,
		middleware.CSRFProtection, // CSRF protection for cookie-authenticated state-changing requests
	)

	return handler
}
