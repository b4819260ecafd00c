package model

import (
	"errors"
	"sort"
	"strings"
)

// ErrorKind labels an error for display and API mapping
type ErrorKind string

const (
	KindEmptyField         ErrorKind = "empty_field"
	KindTooShort           ErrorKind = "too_short"
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindTimeout            ErrorKind = "timeout"
	KindUnexpected         ErrorKind = "unexpected_error"
)

// Common errors used across the application
var (
	// Validation errors
	ErrEmptyField = errors.New("field is required")
	ErrTooShort   = errors.New("field is too short")

	// Authentication outcome errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAuthTimeout        = errors.New("authentication timed out")
	ErrUnexpected         = errors.New("unexpected authentication error")

	// Form lifecycle errors
	ErrFormNotFound         = errors.New("form not found")
	ErrSubmissionInProgress = errors.New("submission already in progress")
	ErrFormCompleted        = errors.New("form has already succeeded")
)

// User-facing messages for form-level errors
const (
	MessageInvalidCredentials = "Invalid username or password."
	MessageTimeout            = "The sign-in request timed out. Please try again."
	MessageUnexpected         = "An unexpected error occurred. Please try again."
)

// FieldError is a validation failure attributable to one input
type FieldError struct {
	Field   string
	Kind    ErrorKind
	Err     error
	Message string
}

// ValidationError reports every field that failed validation
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Err.Error())
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes the per-field kinds so errors.Is(err, ErrTooShort) works
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Fields))
	for _, f := range e.Fields {
		errs = append(errs, f.Err)
	}
	return errs
}

// Messages returns field name -> message
func (e *ValidationError) Messages() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = f.Message
	}
	return out
}
