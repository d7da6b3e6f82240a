package store

import (
	"errors"
	"fmt"
)

// Sentinel errors for callers to match with errors.Is.
var (
	// ErrNotFound indicates the conversation does not exist.
	ErrNotFound = errors.New("conversation not found")

	// ErrForbidden indicates the conversation belongs to another user.
	ErrForbidden = errors.New("access to conversation denied")
)

// ValidationError indicates invalid input, such as a malformed
// conversation ID. Matched with errors.As.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// StorageError reports a filesystem operation that failed for a reason
// other than a missing conversation.
type StorageError struct {
	Op      string // logical operation, e.g. "create", "append"
	Path    string // file involved
	Message string
	Cause   error
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage %s %s: %s: %v", e.Op, e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("storage %s %s: %s", e.Op, e.Path, e.Message)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}
