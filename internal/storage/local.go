package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LocalStorage keeps notes on disk for development. Signed URLs point at
// the app's /files route and carry a short-lived HS256 token.
type LocalStorage struct {
	root    string
	baseURL string
	secret  []byte
	now     func() time.Time
}

type LocalConfig struct {
	Root    string
	BaseURL string // e.g. http://localhost:8090/files
	Secret  string
}

func NewLocalStorage(cfg LocalConfig) (*LocalStorage, error) {
	if cfg.Secret == "" {
		return nil, errors.New("local storage requires a signing secret")
	}
	err := os.MkdirAll(cfg.Root, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &LocalStorage{
		root:    cfg.Root,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		secret:  []byte(cfg.Secret),
		now:     time.Now,
	}, nil
}

// resolve maps an object path to a file under root, rejecting traversal.
func (s *LocalStorage) resolve(path string) (string, error) {
	p := filepath.FromSlash(path)
	if path == "" || !filepath.IsLocal(p) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return filepath.Join(s.root, p), nil
}

func (s *LocalStorage) Save(ctx context.Context, path string, r io.Reader, _ string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	err = os.MkdirAll(filepath.Dir(full), 0755)
	if err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	_, err = io.Copy(tmp, readerWithContext(ctx, r))
	if err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	err = os.Rename(tmp.Name(), full)
	if err != nil {
		return fmt.Errorf("failed to store file: %w", err)
	}
	return nil
}

func (s *LocalStorage) Open(_ context.Context, path string) (io.ReadCloser, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrObjectNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

func (s *LocalStorage) Delete(_ context.Context, paths ...string) error {
	var errs []error
	for _, path := range paths {
		full, err := s.resolve(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		err = os.Remove(full)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}

func (s *LocalStorage) SignedURL(_ context.Context, path string, ttl time.Duration) (string, error) {
	_, err := s.resolve(path)
	if err != nil {
		return "", err
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"path": path,
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign URL: %w", err)
	}

	return s.baseURL + "/" + (&url.URL{Path: path}).EscapedPath() + "?token=" + url.QueryEscape(signed), nil
}

// VerifyToken checks that token was issued by SignedURL for path and has
// not expired.
func (s *LocalStorage) VerifyToken(token, path string) error {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return fmt.Errorf("invalid file token: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || claims["path"] != path {
		return errors.New("file token does not match path")
	}
	return nil
}

// readerWithContext stops copying once ctx is done.
func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return readerFunc(func(p []byte) (int, error) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return r.Read(p)
	})
}

type readerFunc func(p []byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }
