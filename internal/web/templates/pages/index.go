// Package pages holds the full-page views.
package pages

import (
	"github.com/mcoot/loginpage/internal/model"
	"github.com/mcoot/loginpage/internal/web/templates/components"
	"github.com/mcoot/loginpage/internal/web/templates/layout"
)

// IndexData is the data for the login page
type IndexData struct {
	layout.PageData
	Form *model.Form

	// FormClass is passed through to the login card
	FormClass string
}

func (d IndexData) page() layout.PageData {
	if d.Title == "" {
		d.Title = "Log in"
	}
	return d.PageData
}

func (d IndexData) formProps() components.LoginFormProps {
	return components.LoginFormProps{Form: d.Form, Class: d.FormClass}
}
