package response

import (
	"time"

	"github.com/mcoot/loginpage/internal/model"
)

// FormError is the form-level error in API responses
type FormError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Form represents a login form instance in API responses
type Form struct {
	ID          string            `json:"id"`
	State       string            `json:"state"`
	Username    string            `json:"username,omitempty"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
	Error       *FormError        `json:"error,omitempty"`
	Attempts    int               `json:"attempts"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// FormFromModel converts a model.Form to a response Form
func FormFromModel(f *model.Form) Form {
	resp := Form{
		ID:          string(f.ID),
		State:       string(f.State),
		Username:    f.Username,
		FieldErrors: f.FieldErrors,
		Attempts:    f.Attempts,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
	if f.ServerError != nil {
		resp.Error = &FormError{
			Kind:    string(f.ServerError.Kind),
			Message: f.ServerError.Message,
		}
	}
	return resp
}

// Health is the health check response
type Health struct {
	Status string `json:"status"`
}
