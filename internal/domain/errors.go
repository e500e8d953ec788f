// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidJobStatus is returned when a memo job status is not valid.
	ErrInvalidJobStatus = errors.New("invalid memo job status")

	// ErrInvalidSectionStatus is returned when a memo section status is not valid.
	ErrInvalidSectionStatus = errors.New("invalid memo section status")

	// ErrInvalidSectionType is returned when a section type is not one of the
	// known memo section types.
	ErrInvalidSectionType = errors.New("invalid memo section type")

	// ErrInvalidTransition is returned when a status change does not follow the
	// pending -> generating -> completed/failed discipline.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// ValidationError describes a validation failure for a specific field.
// It wraps one of the domain sentinel errors so callers can use errors.Is
// while still surfacing which field was at fault.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for the given field. The
// wrapped error should be one of the domain sentinels, typically
// ErrValidation or ErrInvalidID.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
