package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by services and adapters. Callers branch on them with errors.Is.
var (
	ErrUnauthenticated = errors.New("authorization required")
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
)

// Conflict errors raised by the registration and wishlist engine.
var (
	ErrAlreadyRegistered     = fmt.Errorf("%w: you have already registered for this conference", ErrConflict)
	ErrNoSeatsAvailable      = fmt.Errorf("%w: there are no seats available", ErrConflict)
	ErrAlreadyWishlisted     = fmt.Errorf("%w: you already have this session in your wishlist", ErrConflict)
	ErrDuplicateSpeakerEmail = fmt.Errorf("%w: a speaker with this email already exists", ErrConflict)
)

// Validation errors raised while parsing client input.
var (
	ErrInvalidReference = &ValidationError{Message: "invalid websafe key"}
	ErrInvalidFilter    = &ValidationError{Message: "filter contains invalid field or operator"}
	ErrInequalityFilter = &ValidationError{Message: "inequality filter is allowed on only one field"}
)

// ValidationError is a client error describing malformed or missing input.
// It matches ErrInvalidInput under errors.Is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError formats a ValidationError.
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
