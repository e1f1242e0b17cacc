package service

import (
	"errors"
	"fmt"
)

// ErrNoEvent is returned when an operation is invoked without a resolved
// event.  Handlers translate it into a 404.
var ErrNoEvent = errors.New("event not found")

// ValidationError reports a missing or malformed client supplied field.
// Handlers translate it into a 400 carrying Error() as the message.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func required(field string) error {
	return &ValidationError{Field: field, Reason: "is required"}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
