package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/hcissey0/lecture-notes-app/internal/config"
	"github.com/hcissey0/lecture-notes-app/internal/ctxkeys"
	"github.com/hcissey0/lecture-notes-app/internal/model"
	"github.com/hcissey0/lecture-notes-app/internal/service"
)

const oauthStateCookie = "oauth_state"

var errOAuthFailed = errors.New("OAuth authentication failed, please try again")

// oauthProvider is an identity provider reached through the OAuth code flow.
type oauthProvider struct {
	name   string
	config *oauth2.Config
	// principal fetches the signed-in identity with an authorized client.
	principal func(ctx context.Context, client *http.Client) (model.Principal, error)
}

type AuthHandler struct {
	authService    *service.AuthService
	sessionService *service.SessionService
	google         *oauthProvider
	github         *oauthProvider
	redirectURL    string
}

func NewAuthHandler(authService *service.AuthService, sessionService *service.SessionService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		sessionService: sessionService,
		redirectURL:    cfg.AppURL + "/",
		google: &oauthProvider{
			name: "google",
			config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				RedirectURL:  cfg.AppURL + "/auth/google/callback",
				Scopes: []string{
					"https://www.googleapis.com/auth/userinfo.email",
					"https://www.googleapis.com/auth/userinfo.profile",
				},
				Endpoint: google.Endpoint,
			},
			principal: googlePrincipal("https://www.googleapis.com/oauth2/v2/userinfo"),
		},
		github: &oauthProvider{
			name: "github",
			config: &oauth2.Config{
				ClientID:     cfg.GitHubClientID,
				ClientSecret: cfg.GitHubClientSecret,
				RedirectURL:  cfg.AppURL + "/auth/github/callback",
				Scopes:       []string{"user:email"},
				Endpoint:     github.Endpoint,
			},
			principal: githubPrincipal("https://api.github.com"),
		},
	}
}

func (h *AuthHandler) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	h.begin(w, r, h.google)
}

func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	h.callback(w, r, h.google)
}

func (h *AuthHandler) GitHubAuth(w http.ResponseWriter, r *http.Request) {
	h.begin(w, r, h.github)
}

func (h *AuthHandler) GitHubCallback(w http.ResponseWriter, r *http.Request) {
	h.callback(w, r, h.github)
}

// begin redirects to the provider's consent screen.
func (h *AuthHandler) begin(w http.ResponseWriter, r *http.Request, p *oauthProvider) {
	state := generateOAuthState()

	cfg := ctxkeys.Config(r.Context())
	isProduction := cfg != nil && cfg.IsProduction()

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   isProduction, // APP_ENV rather than r.TLS, which is unset behind load balancers
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600, // 10 minutes
	})

	url := p.config.AuthCodeURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// callback completes the code flow, signs the principal in and sets the
// session cookie.
func (h *AuthHandler) callback(w http.ResponseWriter, r *http.Request, p *oauthProvider) {
	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value != state || state == "" {
		slog.Warn("oauth state validation failed", "provider", p.name, "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: errOAuthFailed.Error()})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:   oauthStateCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		slog.Warn("oauth callback missing code", "provider", p.name)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: errOAuthFailed.Error()})
		return
	}

	token, err := p.config.Exchange(r.Context(), code)
	if err != nil {
		slog.Error("oauth token exchange failed", "provider", p.name, "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: errOAuthFailed.Error()})
		return
	}

	principal, err := p.principal(r.Context(), p.config.Client(r.Context(), token))
	if err != nil {
		slog.Error("failed to get oauth user info", "provider", p.name, "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: errOAuthFailed.Error()})
		return
	}

	session, err := h.sessionService.SignIn(r.Context(), principal)
	if err != nil {
		writeError(w, r, err)
		return
	}

	jwtToken, err := h.authService.GenerateJWT(session)
	if err != nil {
		writeError(w, r, fmt.Errorf("generate session token: %w", err))
		return
	}
	h.authService.SetJWTCookie(w, jwtToken, h.authService.Expiry())

	slog.Info("user logged in with oauth", "provider", p.name, "user_id", session.UserID())
	http.Redirect(w, r, h.redirectURL, http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

type meResponse struct {
	*model.Session
	// CSRFToken must be echoed in the X-CSRF-Token header by clients that
	// authenticate with the session cookie.
	CSRFToken string `json:"csrf_token"`
}

// Me returns the signed-in session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, meResponse{
		Session:   ctxkeys.Session(r.Context()),
		CSRFToken: ctxkeys.CSRFToken(r.Context()),
	})
}

func googlePrincipal(userInfoURL string) func(context.Context, *http.Client) (model.Principal, error) {
	return func(ctx context.Context, client *http.Client) (model.Principal, error) {
		var info struct {
			Email   string `json:"email"`
			Name    string `json:"name"`
			Picture string `json:"picture"`
		}
		err := getJSON(ctx, client, userInfoURL, &info)
		if err != nil {
			return model.Principal{}, err
		}
		return newPrincipal(info.Email, info.Name, info.Picture), nil
	}
}

func githubPrincipal(apiURL string) func(context.Context, *http.Client) (model.Principal, error) {
	return func(ctx context.Context, client *http.Client) (model.Principal, error) {
		var info struct {
			Email     string `json:"email"`
			Name      string `json:"name"`
			Login     string `json:"login"`
			AvatarURL string `json:"avatar_url"`
		}
		err := getJSON(ctx, client, apiURL+"/user", &info)
		if err != nil {
			return model.Principal{}, err
		}

		// The profile omits private emails; /user/emails lists them.
		if info.Email == "" {
			var emails []struct {
				Email    string `json:"email"`
				Primary  bool   `json:"primary"`
				Verified bool   `json:"verified"`
			}
			err = getJSON(ctx, client, apiURL+"/user/emails", &emails)
			if err != nil {
				return model.Principal{}, err
			}
			for _, e := range emails {
				if e.Primary && e.Verified {
					info.Email = e.Email
					break
				}
			}
		}
		if info.Email == "" {
			return model.Principal{}, errors.New("github account has no verified primary email")
		}

		name := info.Name
		if name == "" {
			name = info.Login
		}
		return newPrincipal(info.Email, name, info.AvatarURL), nil
	}
}

func newPrincipal(email, name, avatarURL string) model.Principal {
	meta := map[string]string{}
	if name = strings.TrimSpace(name); name != "" {
		meta[model.MetaName] = name
	}
	if avatarURL != "" {
		meta[model.MetaAvatarURL] = avatarURL
	}
	return model.Principal{Email: email, Metadata: meta}
}

func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			slog.Error("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// generateOAuthState creates cryptographically secure random state token for OAuth CSRF protection
func generateOAuthState() string {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		panic("failed to generate oauth state: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}
