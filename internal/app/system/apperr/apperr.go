// Package apperr holds the error values shared by accessors, stores and handlers.
//
// Callers wrap these with fmt.Errorf("...: %w", err) and inspect them with
// errors.Is / errors.As. The HTTP layer maps each one to a status code.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrPermissionDenied is returned when the authorization guard rejects an action.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when an id has no matching document or identity.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned for duplicate identities (same email).
	ErrAlreadyExists = errors.New("already exists")

	// ErrUpstream is returned when the document store or the payment API fails.
	ErrUpstream = errors.New("upstream error")

	// ErrInvalidTransition is returned for a content status change the lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnauthenticated is returned when a request carries no valid identity.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// ValidationError reports a missing or malformed field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid builds a *ValidationError.
func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// Denied wraps ErrPermissionDenied with context.
func Denied(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrPermissionDenied)
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
