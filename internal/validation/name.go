package validation

import (
	"strings"
	"unicode/utf8"
)

const maxFieldLength = 200

// ValidateFullName accepts an empty name (clears it) or up to 100 characters.
func ValidateFullName(name string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) > 100 {
		return fieldError("full_name", "name is too long (max 100 characters)")
	}
	return nil
}

// ValidateNoteFields checks the required descriptive fields of a note.
func ValidateNoteFields(title, course, lecturer string) error {
	fields := []struct{ name, value string }{
		{"title", title},
		{"course", course},
		{"lecturer", lecturer},
	}
	for _, f := range fields {
		trimmed := strings.TrimSpace(f.value)
		if trimmed == "" {
			return fieldError(f.name, f.name+" is required")
		}
		if utf8.RuneCountInString(trimmed) > maxFieldLength {
			return fieldError(f.name, f.name+" is too long (max 200 characters)")
		}
	}
	return nil
}
