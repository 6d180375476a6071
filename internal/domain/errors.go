package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a lookup whose subject id is absent from the store.
// It is a normal outcome for queries, not an infrastructure failure.
var ErrNotFound = errors.New("entity not found")

// ErrStoreUnavailable marks failures reaching the underlying graph store.
// Callers may retry; it is never masked as a not-found result.
var ErrStoreUnavailable = errors.New("graph store unavailable")

// ValidationError rejects malformed input before any write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for the named field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
