package service

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hcissey0/lecture-notes-app/internal/model"
)

const AuthCookieName = "auth_token"

var ErrInvalidToken = errors.New("invalid or expired session token")

type AuthService struct {
	jwtSecret    string
	isProduction bool
	jwtExpiry    time.Duration
	now          func() time.Time
}

func NewAuthService(jwtSecret string, isProduction bool, jwtExpiry time.Duration) *AuthService {
	return &AuthService{
		jwtSecret:    jwtSecret,
		isProduction: isProduction,
		jwtExpiry:    jwtExpiry,
		now:          time.Now,
	}
}

// Expiry is the expiry of a token issued now.
func (s *AuthService) Expiry() time.Time {
	return s.now().Add(s.jwtExpiry)
}

// GenerateJWT issues a session token for a signed-in user.
func (s *AuthService) GenerateJWT(session *model.Session) (string, error) {
	name := session.Profile.DisplayName()
	if name == "" {
		name = firstNonEmpty(session.Principal.Meta(model.MetaFullName), session.Principal.Meta(model.MetaName))
	}
	avatar := session.Principal.Meta(model.MetaAvatarURL)
	if session.Profile != nil && session.Profile.AvatarURL != nil {
		avatar = *session.Profile.AvatarURL
	}

	now := s.now()
	claims := jwt.MapClaims{
		"user_id":    session.UserID(),
		"email":      session.Principal.Email,
		"name":       name,
		"avatar_url": avatar,
		"exp":        now.Add(s.jwtExpiry).Unix(),
		"iat":        now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// VerifyJWT validates a session token and returns the principal it names.
func (s *AuthService) VerifyJWT(tokenString string) (model.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return model.Principal{}, ErrInvalidToken
	}

	userID, _ := claims["user_id"].(string)
	email, _ := claims["email"].(string)
	if userID == "" || email == "" {
		return model.Principal{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	meta := map[string]string{}
	if name, _ := claims["name"].(string); name != "" {
		meta[model.MetaName] = name
	}
	if avatar, _ := claims["avatar_url"].(string); avatar != "" {
		meta[model.MetaAvatarURL] = avatar
	}

	return model.Principal{ID: userID, Email: email, Metadata: meta}, nil
}

// TokenFromRequest returns the session token from the auth cookie or,
// failing that, from an "Authorization: Bearer" header.
func (s *AuthService) TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(AuthCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return BearerToken(r)
}

// BearerToken returns the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func (s *AuthService) SetJWTCookie(w http.ResponseWriter, token string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Expires:  expiry,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearJWTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
