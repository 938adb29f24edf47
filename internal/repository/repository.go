package repository

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoteNotFound    = errors.New("note not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrDuplicateEmail  = errors.New("email already exists")
	ErrDuplicatePath   = errors.New("file path already exists")
	ErrInvalidNote     = errors.New("note is missing required fields")
	ErrInvalidOrder    = errors.New("unsupported order field")

	// ErrPartialFailure means a mutation committed but the row could not be
	// read back afterwards.
	ErrPartialFailure = errors.New("mutation applied but refresh failed")
)

// isUniqueViolation matches both SQLite and PostgreSQL messages.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

// EscapeLike escapes LIKE wildcards so user input matches literally.
// Patterns built from it must use ESCAPE '\'.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// setClause accumulates "col = $n" fragments for partial updates.
type setClause struct {
	sets []string
	args []any
}

func (c *setClause) add(column string, value any) {
	c.args = append(c.args, value)
	c.sets = append(c.sets, fmt.Sprintf("%s = $%d", column, len(c.args)))
}

// build returns the SET list and the placeholder index for the WHERE key.
func (c *setClause) build() (string, int) {
	return strings.Join(c.sets, ", "), len(c.args) + 1
}

// nullable maps an empty string to NULL.
func nullable(s *string) any {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return *s
}
