// Package validation implements the login form's field rules.
package validation

import (
	"unicode/utf8"

	"github.com/mcoot/loginpage/internal/model"
)

// MinPasswordLength is the minimum number of characters in a password
const MinPasswordLength = 8

// Field messages shown next to the offending input
const (
	MessageUsernameRequired = "Username is required."
	MessagePasswordRequired = "Password is required."
	MessagePasswordTooShort = "Password must be at least 8 characters."
)

// Result is the per-field outcome of validating a set of credentials
type Result struct {
	fields []model.FieldError
}

// Valid reports whether every field passed
func (r Result) Valid() bool {
	return len(r.fields) == 0
}

// ErrorFor returns the failure for a field, if any
func (r Result) ErrorFor(field string) (model.FieldError, bool) {
	for _, f := range r.fields {
		if f.Field == field {
			return f, true
		}
	}
	return model.FieldError{}, false
}

// Err returns nil when valid, otherwise a *model.ValidationError
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	fields := make([]model.FieldError, len(r.fields))
	copy(fields, r.fields)
	return &model.ValidationError{Fields: fields}
}

// Validate checks credentials against the form rules.
// Rules run in order and the first failure per field wins.
func Validate(creds model.Credentials) Result {
	var r Result

	if utf8.RuneCountInString(creds.Username) == 0 {
		r.fields = append(r.fields, model.FieldError{
			Field:   model.FieldUsername,
			Kind:    model.KindEmptyField,
			Err:     model.ErrEmptyField,
			Message: MessageUsernameRequired,
		})
	}

	switch n := utf8.RuneCountInString(creds.Password); {
	case n == 0:
		r.fields = append(r.fields, model.FieldError{
			Field:   model.FieldPassword,
			Kind:    model.KindEmptyField,
			Err:     model.ErrEmptyField,
			Message: MessagePasswordRequired,
		})
	case n < MinPasswordLength:
		r.fields = append(r.fields, model.FieldError{
			Field:   model.FieldPassword,
			Kind:    model.KindTooShort,
			Err:     model.ErrTooShort,
			Message: MessagePasswordTooShort,
		})
	}

	return r
}
