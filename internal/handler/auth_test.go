package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/hcissey0/lecture-notes-app/internal/config"
	"github.com/hcissey0/lecture-notes-app/internal/repository"
	"github.com/hcissey0/lecture-notes-app/internal/service"
	"github.com/hcissey0/lecture-notes-app/internal/testdb"
)

// fakeGitHub serves the token endpoint and the user APIs. The profile
// hides the email so the /user/emails fallback is exercised.
func fakeGitHub(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		if r.PostForm.Get("code") != "good-code" {
			http.Error(w, `{"error":"bad_verification_code"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "gh-token", "token_type": "bearer"})
	})
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gh-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{"login": "yaa", "avatar_url": "https://avatars.example/yaa.png"})
	})
	mux.HandleFunc("GET /user/emails", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"email": "old@example.com", "primary": false, "verified": true},
			{"email": "Yaa@Example.com", "primary": true, "verified": true},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestAuthHandler(t *testing.T, providerURL string) (*AuthHandler, repository.ProfileRepository) {
	t.Helper()

	cfg := &config.Config{
		AppName:   "Lecture Notes",
		AppEnv:    "development",
		AppURL:    "http://localhost:8090",
		JWTSecret: "test-secret",
	}
	profiles := repository.NewProfileRepository(testdb.New(t))
	mailer := service.NewEmailService("", "noreply@example.com", cfg.AppURL, cfg.AppName, true)

	h := NewAuthHandler(
		service.NewAuthService(cfg.JWTSecret, false, time.Hour),
		service.NewSessionService(profiles, mailer),
		cfg,
	)
	h.github.config.Endpoint = oauth2.Endpoint{
		AuthURL:   providerURL + "/login/oauth/authorize",
		TokenURL:  providerURL + "/login/oauth/access_token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	h.github.principal = githubPrincipal(providerURL)
	return h, profiles
}

func callbackRequest(state, cookieState, code string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/auth/github/callback?state="+state+"&code="+code, nil)
	if cookieState != "" {
		r.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: cookieState})
	}
	return r
}

func TestGitHubAuth_RedirectsWithState(t *testing.T) {
	provider := fakeGitHub(t)
	h, _ := newTestAuthHandler(t, provider.URL)

	w := httptest.NewRecorder()
	h.GitHubAuth(w, httptest.NewRequest(http.MethodGet, "/auth/github", nil))

	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	var state string
	for _, c := range w.Result().Cookies() {
		if c.Name == oauthStateCookie {
			state = c.Value
		}
	}
	require.NotEmpty(t, state)
	assert.Contains(t, w.Header().Get("Location"), provider.URL+"/login/oauth/authorize")
	assert.Contains(t, w.Header().Get("Location"), "state="+state)
}

func TestGitHubCallback_SignsInAndSetsCookie(t *testing.T) {
	provider := fakeGitHub(t)
	h, profiles := newTestAuthHandler(t, provider.URL)

	w := httptest.NewRecorder()
	h.GitHubCallback(w, callbackRequest("s1", "s1", "good-code"))

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "http://localhost:8090/", w.Header().Get("Location"))

	var token string
	for _, c := range w.Result().Cookies() {
		if c.Name == service.AuthCookieName {
			token = c.Value
		}
	}
	require.NotEmpty(t, token)

	principal, err := h.authService.VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "yaa@example.com", principal.Email)

	profile, err := profiles.ByEmail(context.Background(), "yaa@example.com")
	require.NoError(t, err)
	require.NotNil(t, profile.FullName)
	assert.Equal(t, "yaa", *profile.FullName)
	assert.Equal(t, principal.ID, profile.ID)
}

func TestGitHubCallback_Rejects(t *testing.T) {
	provider := fakeGitHub(t)
	h, _ := newTestAuthHandler(t, provider.URL)

	tests := []struct {
		name   string
		req    *http.Request
		status int
	}{
		{"missing state cookie", callbackRequest("s1", "", "good-code"), http.StatusBadRequest},
		{"state mismatch", callbackRequest("s1", "s2", "good-code"), http.StatusBadRequest},
		{"missing code", callbackRequest("s1", "s1", ""), http.StatusBadRequest},
		{"exchange fails", callbackRequest("s1", "s1", "bad-code"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.GitHubCallback(w, tt.req)
			assert.Equal(t, tt.status, w.Code)
			for _, c := range w.Result().Cookies() {
				assert.NotEqual(t, service.AuthCookieName, c.Name)
			}
		})
	}
}

func TestLogout_ClearsCookie(t *testing.T) {
	h, _ := newTestAuthHandler(t, "http://unused")

	w := httptest.NewRecorder()
	h.Logout(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, service.AuthCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.True(t, cookies[0].Expires.Before(time.Now()))
}
