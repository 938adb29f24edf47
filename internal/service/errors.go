package service

import (
	"errors"
	"fmt"

	"github.com/hcissey0/lecture-notes-app/internal/repository"
	"github.com/hcissey0/lecture-notes-app/internal/storage"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("only the uploader can change this note")
	ErrUnauthenticated = errors.New("sign in required")

	// ErrRecord and ErrStorage mark failures of the record store and the
	// file store respectively.
	ErrRecord  = errors.New("record store failure")
	ErrStorage = errors.New("file storage failure")

	// ErrPartialFailure means the primary effect happened but a secondary
	// step did not.
	ErrPartialFailure = errors.New("operation partially completed")
)

// recordError classifies a repository error.
func recordError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNoteNotFound), errors.Is(err, repository.ErrProfileNotFound):
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	case errors.Is(err, repository.ErrPartialFailure):
		return fmt.Errorf("%s: %w: %w", op, ErrPartialFailure, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrRecord, err)
	}
}

// storageError classifies a storage error.
func storageError(op string, err error) error {
	if errors.Is(err, storage.ErrObjectNotFound) {
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
