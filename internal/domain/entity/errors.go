package entity

import (
	"errors"
	"strings"
)

var (
	// ErrValidation is matched by every *ValidationError
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when a claim is not in the state a decision requires
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrStorage wraps failures of the underlying store
	ErrStorage = errors.New("storage failure")

	// ErrForbidden is returned when the caller may not touch the resource
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthenticated is returned for bad credentials or inactive accounts
	ErrUnauthenticated = errors.New("unauthenticated")
)

// FieldError describes one rejected input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field-level problem found in one input
type ValidationError struct {
	Fields []FieldError
}

// Error joins the field messages
func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Is makes errors.Is(err, ErrValidation) true
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Add records a field problem
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no field was added
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// NewValidationError creates a ValidationError for a single field
func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}
