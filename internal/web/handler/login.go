// Package handler holds the web handlers for the login screen.
package handler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/loginpage/internal/middleware"
	"github.com/mcoot/loginpage/internal/model"
	"github.com/mcoot/loginpage/internal/services/login"
	webmw "github.com/mcoot/loginpage/internal/web/middleware"
	"github.com/mcoot/loginpage/internal/web/sse"
	"github.com/mcoot/loginpage/internal/web/templates/components"
	"github.com/mcoot/loginpage/internal/web/templates/layout"
	"github.com/mcoot/loginpage/internal/web/templates/pages"
)

const (
	flashFormExpired = "Your login form expired. Please try again."
	flashSignup      = "Sign up is not available yet."
)

// LoginHandler serves the login page and the form's actions
type LoginHandler struct {
	controller  *login.Controller
	hubManager  *sse.HubManager
	broadcaster *sse.Broadcaster
	formClass   string
	onSuccess   login.SuccessFunc
	logger      *slog.Logger
}

// NewLoginHandler creates a new LoginHandler. A nil onSuccess logs the
// successful login.
func NewLoginHandler(
	controller *login.Controller,
	hubManager *sse.HubManager,
	broadcaster *sse.Broadcaster,
	formClass string,
	onSuccess login.SuccessFunc,
	logger *slog.Logger,
) *LoginHandler {
	logger = logger.With(slog.String("component", "web-login"))
	if onSuccess == nil {
		onSuccess = LogSuccess(logger)
	}
	return &LoginHandler{
		controller:  controller,
		hubManager:  hubManager,
		broadcaster: broadcaster,
		formClass:   formClass,
		onSuccess:   onSuccess,
		logger:      logger,
	}
}

// LogSuccess returns the default success callback, which only logs
func LogSuccess(logger *slog.Logger) login.SuccessFunc {
	return func(ctx context.Context, creds model.Credentials) {
		middleware.Logger(ctx, logger).Info("user logged in", slog.String("username", creds.Username))
	}
}

// Submit handles a credentials post for one form
func (h *LoginHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id := model.FormID(mux.Vars(r)["id"])

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	creds := model.Credentials{
		Username: r.PostFormValue(model.FieldUsername),
		Password: r.PostFormValue(model.FieldPassword),
	}

	form, err := h.controller.Submit(r.Context(), id, creds, h.onSuccess)
	h.respond(w, r, form, err)
}

// Reset returns a form to Idle and renders it
func (h *LoginHandler) Reset(w http.ResponseWriter, r *http.Request) {
	id := model.FormID(mux.Vars(r)["id"])

	form, err := h.controller.Reset(r.Context(), id)
	if errors.Is(err, model.ErrSubmissionInProgress) {
		form, err = h.controller.GetForm(r.Context(), id)
		if err == nil {
			err = model.ErrSubmissionInProgress
		}
	}
	h.respond(w, r, form, err)
}

// Events streams the form's state changes as form-state SSE events
func (h *LoginHandler) Events(w http.ResponseWriter, r *http.Request) {
	id := model.FormID(mux.Vars(r)["id"])

	form, err := h.controller.GetForm(r.Context(), id)
	if errors.Is(err, model.ErrFormNotFound) {
		http.Error(w, "Form not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log(r).Error("failed to load form for events", slog.String("form_id", string(id)), slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	html, err := h.broadcaster.Render(r.Context(), form)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	hub := h.hubManager.GetOrCreateHub(id)
	sse.ServeSSE(w, r, hub, &sse.Event{Name: components.FormStateEvent, Data: html})
}

// respond renders the outcome of a form action. Every outcome that leaves a
// form to show is rendered with 200, except an overlapping submission (409).
func (h *LoginHandler) respond(w http.ResponseWriter, r *http.Request, form *model.Form, err error) {
	switch {
	case errors.Is(err, model.ErrFormNotFound):
		h.formExpired(w, r)
		return
	case form == nil:
		h.log(r).Error("login form action failed", slog.Any("error", err))
		h.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
		return
	}

	status := http.StatusOK
	if errors.Is(err, model.ErrSubmissionInProgress) {
		status = http.StatusConflict
	}
	h.renderForm(w, r, form, status)
}

func (h *LoginHandler) renderForm(w http.ResponseWriter, r *http.Request, form *model.Form, status int) {
	var buf bytes.Buffer
	var err error
	if isHTMX(r) {
		err = components.LoginForm(components.LoginFormProps{Form: form, Class: h.formClass}).Render(r.Context(), &buf)
	} else {
		err = pages.Index(pages.IndexData{
			PageData:  layout.PageData{Flash: webmw.GetFlash(r.Context())},
			Form:      form,
			FormClass: h.formClass,
		}).Render(r.Context(), &buf)
	}
	if err != nil {
		h.log(r).Error("failed to render login form", slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *LoginHandler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if isHTMX(r) {
		_ = layout.ErrorFragment(message).Render(r.Context(), w)
		return
	}
	_ = layout.ErrorPage(layout.PageData{Title: http.StatusText(status)}, message).Render(r.Context(), w)
}

// formExpired sends the browser back to a fresh form
func (h *LoginHandler) formExpired(w http.ResponseWriter, r *http.Request) {
	webmw.SetFlash(w, webmw.FlashError, flashFormExpired)
	redirect(w, r, "/")
}

func (h *LoginHandler) log(r *http.Request) *slog.Logger {
	return middleware.Logger(r.Context(), h.logger)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// redirect navigates the whole page, using HX-Redirect for htmx requests
func redirect(w http.ResponseWriter, r *http.Request, url string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}
