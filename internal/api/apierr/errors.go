// Package apierr maps domain errors to JSON API error responses.
package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/loginpage/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	// Fields holds per-field validation messages
	Fields map[string]string `json:"fields,omitempty"`

	// RequestID lets a client quote the failing request when reporting it
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse wraps an APIError. Form carries the form's state when the
// error left one behind.
type ErrorResponse struct {
	Error APIError `json:"error"`
	Form  any      `json:"form,omitempty"`
}

// Error codes
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeValidationFailed     = "VALIDATION_FAILED"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeFormNotFound         = "FORM_NOT_FOUND"
	CodeSubmissionInProgress = "SUBMISSION_IN_PROGRESS"
	CodeFormCompleted        = "FORM_COMPLETED"
	CodeAuthTimeout          = "AUTH_TIMEOUT"
	CodeAuthUnavailable      = "AUTH_UNAVAILABLE"
	CodeNotFound             = "NOT_FOUND"
	CodeInternalError        = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	WriteErrorWithForm(w, err, nil)
}

// WriteErrorWithForm writes an error response that also carries the form
func WriteErrorWithForm(w http.ResponseWriter, err error, form any) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError, Form: form})
}

// Status returns the HTTP status WriteError would use for err
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return &httpError{http.StatusUnprocessableEntity, APIError{Code: CodeValidationFailed, Message: "Validation failed", Fields: ve.Messages()}}
	}

	switch {
	case errors.Is(err, model.ErrFormNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeFormNotFound, Message: "Form not found"}}
	case errors.Is(err, model.ErrSubmissionInProgress):
		return &httpError{http.StatusConflict, APIError{Code: CodeSubmissionInProgress, Message: "A submission is already in progress"}}
	case errors.Is(err, model.ErrFormCompleted):
		return &httpError{http.StatusConflict, APIError{Code: CodeFormCompleted, Message: "Form has already succeeded"}}
	case errors.Is(err, model.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{Code: CodeInvalidCredentials, Message: model.MessageInvalidCredentials}}
	case errors.Is(err, model.ErrAuthTimeout):
		return &httpError{http.StatusGatewayTimeout, APIError{Code: CodeAuthTimeout, Message: model.MessageTimeout}}
	case errors.Is(err, model.ErrUnexpected):
		return &httpError{http.StatusBadGateway, APIError{Code: CodeAuthUnavailable, Message: model.MessageUnexpected}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
	}
}

// WithRequestID returns err as an API error whose body names the request
func WithRequestID(err error, requestID string) error {
	he := *toHTTPError(err)
	he.apiError.RequestID = requestID
	return &he
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: message}}
}

// NewNotFoundError creates a route not found error
func NewNotFoundError() error {
	return &httpError{http.StatusNotFound, APIError{Code: CodeNotFound, Message: "Not found"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
}
