// Package domain contains domain entities, value objects, and domain-specific errors.
// This package should have no external dependencies except the standard library.
package domain

import (
	"errors"
	"fmt"
)

// Domain error types for consistent error handling across the application.
// These errors represent business rule violations and domain constraints.

var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized is returned when authentication is required but not provided.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the caller lacks an assignment or
	// ownership relation required for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is returned on uniqueness violations, e.g. inserting an
	// assignment triple that already exists.
	ErrConflict = errors.New("conflict")

	// ErrLocked is returned when an admin lock blocks a judge edit.
	ErrLocked = errors.New("evaluation locked by admin")

	// ErrAlreadySubmitted is returned when a final submission already exists
	// for the (judge, team) pair.
	ErrAlreadySubmitted = errors.New("evaluation already submitted")

	// ErrNotSubmitted is returned when an operation requires a submitted
	// evaluation but the record is absent or still a draft.
	ErrNotSubmitted = errors.New("evaluation not submitted")
)

// DomainError wraps a base error with additional context.
// It provides a standard way to add details to domain errors.
type DomainError struct {
	// Base is the underlying error type (e.g., ErrNotFound)
	Base error

	// Message provides human-readable context
	Message string

	// Field indicates which field caused the error (for validation errors)
	Field string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Base.Error(), e.Message, e.Field)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Base.Error(), e.Message)
	}
	return e.Base.Error()
}

// Unwrap returns the base error for errors.Is/As support.
func (e *DomainError) Unwrap() error {
	return e.Base
}

// NewNotFoundError creates a not found error with context.
func NewNotFoundError(resource string) *DomainError {
	return &DomainError{
		Base:    ErrNotFound,
		Message: resource,
	}
}

// NewValidationError creates a validation error for a specific field.
func NewValidationError(field, message string) *DomainError {
	return &DomainError{
		Base:    ErrInvalidInput,
		Message: message,
		Field:   field,
	}
}

// NewConflictError creates a conflict error with context.
func NewConflictError(message string) *DomainError {
	return &DomainError{
		Base:    ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a forbidden error with context.
func NewForbiddenError(message string) *DomainError {
	return &DomainError{
		Base:    ErrForbidden,
		Message: message,
	}
}

// NewUnauthorizedError creates an unauthorized error with context.
func NewUnauthorizedError(message string) *DomainError {
	return &DomainError{
		Base:    ErrUnauthorized,
		Message: message,
	}
}

// NewLockedError creates a locked error with context.
func NewLockedError(message string) *DomainError {
	return &DomainError{
		Base:    ErrLocked,
		Message: message,
	}
}

// NewAlreadySubmittedError creates an already-submitted error with context.
func NewAlreadySubmittedError(message string) *DomainError {
	return &DomainError{
		Base:    ErrAlreadySubmitted,
		Message: message,
	}
}

// NewNotSubmittedError creates a not-submitted error with context.
func NewNotSubmittedError(message string) *DomainError {
	return &DomainError{
		Base:    ErrNotSubmitted,
		Message: message,
	}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConflict checks if an error is a conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsForbidden checks if an error is a forbidden error.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsUnauthorized checks if an error is unauthorized.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsLocked checks if an error is a locked error.
func IsLocked(err error) bool {
	return errors.Is(err, ErrLocked)
}

// IsAlreadySubmitted checks if an error is an already-submitted error.
func IsAlreadySubmitted(err error) bool {
	return errors.Is(err, ErrAlreadySubmitted)
}

// IsNotSubmitted checks if an error is a not-submitted error.
func IsNotSubmitted(err error) bool {
	return errors.Is(err, ErrNotSubmitted)
}
