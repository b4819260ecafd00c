package model

import "time"

// FormID uniquely identifies a login form instance
type FormID string

// SubmissionState is the lifecycle state of a login form
type SubmissionState string

const (
	StateIdle       SubmissionState = "idle"
	StateSubmitting SubmissionState = "submitting"
	StateSucceeded  SubmissionState = "succeeded"
	StateFailed     SubmissionState = "failed"
)

// Field names, shared by validation, rendering and the API
const (
	FieldUsername = "username"
	FieldPassword = "password"
)

// ServerError is the form-level error slot, not tied to any field
type ServerError struct {
	Kind    ErrorKind
	Message string
}

// Form is the state record of one login form instance.
// It never holds a password.
type Form struct {
	ID    FormID
	State SubmissionState

	// Username is the last submitted username, used to repopulate the input
	Username string

	// FieldErrors maps field name to its validation message
	FieldErrors map[string]string

	// ServerError is set only in StateFailed
	ServerError *ServerError

	Attempts  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsSubmitting reports whether an authentication call is in flight
func (f *Form) IsSubmitting() bool {
	return f.State == StateSubmitting
}

// IsComplete reports whether the form reached its terminal success state
func (f *Form) IsComplete() bool {
	return f.State == StateSucceeded
}

// FieldError returns the validation message for a field, or ""
func (f *Form) FieldError(field string) string {
	if f.FieldErrors == nil {
		return ""
	}
	return f.FieldErrors[field]
}

// ServerErrorMessage returns the root error message, or ""
func (f *Form) ServerErrorMessage() string {
	if f.ServerError == nil {
		return ""
	}
	return f.ServerError.Message
}

// ClearErrors drops both field-level and form-level errors
func (f *Form) ClearErrors() {
	f.FieldErrors = nil
	f.ServerError = nil
}

// Clone returns a deep copy of the form
func (f *Form) Clone() *Form {
	c := *f
	if f.FieldErrors != nil {
		c.FieldErrors = make(map[string]string, len(f.FieldErrors))
		for k, v := range f.FieldErrors {
			c.FieldErrors[k] = v
		}
	}
	if f.ServerError != nil {
		se := *f.ServerError
		c.ServerError = &se
	}
	return &c
}
