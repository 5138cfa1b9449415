package engine

import (
	"errors"
	"fmt"
)

// Store-level sentinels. Store implementations translate their driver's
// errors into these so the service layer stays driver-agnostic.
var (
	// ErrNoDocument is returned by a Store when a lookup matches nothing.
	ErrNoDocument = errors.New("document not found")

	// ErrDuplicateKey is returned by a Store when a write violates a
	// unique index.
	ErrDuplicateKey = errors.New("duplicate key")
)

// NotFoundError indicates an id that does not resolve to a record within
// the caller's owner scope.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// ValidationError carries field-level detail for a rejected write.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// WithField records a per-field validation message and returns the error
// for chaining.
func (e *ValidationError) WithField(field, message string) *ValidationError {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
	return e
}

// NewValidationError creates a validation error with an overall message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// ConflictError indicates a unique-field collision.
type ConflictError struct {
	Resource string
	Field    string
	Message  string
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s with the same %s already exists", e.Resource, e.Field)
}

// StoreError wraps an underlying persistence failure, including population
// misconfiguration surfaced at query time. Callers only ever see a generic
// message; the wrapped cause is for logs.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store operation %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
