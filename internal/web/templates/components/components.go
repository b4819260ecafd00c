// Package components holds the reusable html fragments of the login screen.
package components

import "github.com/mcoot/loginpage/internal/model"

const (
	// LoginFormID is the element id the form fragment swaps into
	LoginFormID = "login-form"

	// FormStateEvent is the SSE event carrying a re-rendered form
	FormStateEvent = "form-state"

	submitLabel = "Log in"
	busyLabel   = "Logging in..."

	loginFormTarget = "#" + LoginFormID
)

// LoginFormProps configures a LoginForm
type LoginFormProps struct {
	Form *model.Form

	// Class is appended to the card's classes; purely presentational
	Class string
}

// SubmitURL is where the form posts its credentials
func SubmitURL(id model.FormID) string {
	return "/login/" + string(id)
}

// ResetURL returns a form to Idle
func ResetURL(id model.FormID) string {
	return "/login/" + string(id) + "/reset"
}

// EventsURL streams the form's state changes
func EventsURL(id model.FormID) string {
	return "/login/" + string(id) + "/events"
}

// fieldProps describes one labelled input of the credentials form
type fieldProps struct {
	Name         string
	Label        string
	Type         string
	Autocomplete string
	Value        string
	Error        string
	Disabled     bool
}

func (p fieldProps) errorID() string {
	return p.Name + "-error"
}

func usernameField(form *model.Form) fieldProps {
	return fieldProps{
		Name:         model.FieldUsername,
		Label:        "Username",
		Type:         "text",
		Autocomplete: "username",
		Value:        form.Username,
		Error:        form.FieldError(model.FieldUsername),
		Disabled:     form.IsSubmitting(),
	}
}

// The password is never echoed back
func passwordField(form *model.Form) fieldProps {
	return fieldProps{
		Name:         model.FieldPassword,
		Label:        "Password",
		Type:         "password",
		Autocomplete: "current-password",
		Error:        form.FieldError(model.FieldPassword),
		Disabled:     form.IsSubmitting(),
	}
}
