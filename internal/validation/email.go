package validation

import (
	"net/mail"
)

// ValidateEmail validates email format and length
// Uses Go's built-in net/mail parser which follows RFC 5322
func ValidateEmail(email string) error {
	if email == "" {
		return fieldError("email", "email address is required")
	}

	// RFC 5321: total max 254 with @
	if len(email) > 254 {
		return fieldError("email", "email address is too long (max 254 characters)")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fieldError("email", "invalid email address format")
	}

	return nil
}
