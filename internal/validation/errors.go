package validation

import "errors"

// ErrValidation is the root of every input rejection. Callers test with
// errors.Is and show the FieldError message to the user.
var ErrValidation = errors.New("validation failed")

type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() error {
	return ErrValidation
}

func fieldError(field, message string) error {
	return &FieldError{Field: field, Message: message}
}
