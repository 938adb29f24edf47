package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	cfg "github.com/hcissey0/lecture-notes-app/internal/config"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidPath    = errors.New("invalid object path")
)

// Storage is a flat object store keyed by slash separated paths.
type Storage interface {
	// Save stores r at path, replacing any existing object.
	Save(ctx context.Context, path string, r io.Reader, contentType string) error

	// Open returns the object's bytes. Missing objects yield ErrObjectNotFound.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the objects at paths. Missing objects are ignored.
	Delete(ctx context.Context, paths ...string) error

	// SignedURL returns a URL granting read access to path until ttl elapses.
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}

// New returns the storage backend selected by STORAGE_DRIVER.
func New(c *cfg.Config) (Storage, error) {
	switch c.StorageDriver {
	case "local":
		slog.Info("initializing local storage", "root", c.StorageLocalPath)
		return NewLocalStorage(LocalConfig{
			Root:    c.StorageLocalPath,
			BaseURL: strings.TrimSuffix(c.AppURL, "/") + "/files",
			Secret:  c.JWTSecret,
		})
	case "s3", "":
		slog.Info("initializing S3 storage",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Storage(S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}

// NotePath builds the object key for an uploaded note:
// {ownerID}/{unix millis}.{extension of filename}. A filename without a
// dot is used whole as the extension.
func NotePath(ownerID string, now time.Time, filename string) string {
	ext := filename
	if i := strings.LastIndexByte(filename, '.'); i >= 0 {
		ext = filename[i+1:]
	}
	return ownerID + "/" + strconv.FormatInt(now.UnixMilli(), 10) + "." + ext
}
