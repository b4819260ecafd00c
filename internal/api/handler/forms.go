// Package handler holds the JSON API handlers.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/loginpage/internal/api/apierr"
	"github.com/mcoot/loginpage/internal/api/request"
	"github.com/mcoot/loginpage/internal/api/response"
	"github.com/mcoot/loginpage/internal/model"
	"github.com/mcoot/loginpage/internal/services/login"
)

// FormHandler handles login form endpoints
type FormHandler struct {
	controller *login.Controller
	onSuccess  login.SuccessFunc
}

// NewFormHandler creates a new form handler
func NewFormHandler(controller *login.Controller, onSuccess login.SuccessFunc) *FormHandler {
	return &FormHandler{
		controller: controller,
		onSuccess:  onSuccess,
	}
}

// Create handles POST /api/v1/forms
func (h *FormHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, err := h.controller.NewForm(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.WriteForm(w, http.StatusCreated, form)
}

// Get handles GET /api/v1/forms/{id}
func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	form, err := h.controller.GetForm(r.Context(), formID(r))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.WriteForm(w, http.StatusOK, form)
}

// Submit handles POST /api/v1/forms/{id}/submit
func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	creds := model.Credentials{Username: req.Username, Password: req.Password}
	form, err := h.controller.Submit(r.Context(), formID(r), creds, h.onSuccess)
	if err != nil {
		writeFormError(w, err, form)
		return
	}
	response.WriteForm(w, http.StatusOK, form)
}

// Reset handles POST /api/v1/forms/{id}/reset
func (h *FormHandler) Reset(w http.ResponseWriter, r *http.Request) {
	form, err := h.controller.Reset(r.Context(), formID(r))
	if err != nil {
		if errors.Is(err, model.ErrSubmissionInProgress) {
			form, _ = h.controller.GetForm(r.Context(), formID(r))
		}
		writeFormError(w, err, form)
		return
	}
	response.WriteForm(w, http.StatusOK, form)
}

// Delete handles DELETE /api/v1/forms/{id}
func (h *FormHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Discard(r.Context(), formID(r)); err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Health handles GET /api/v1/health
func Health(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}

// NotFound handles unknown API routes
func NotFound(w http.ResponseWriter, _ *http.Request) {
	apierr.WriteError(w, apierr.NewNotFoundError())
}

func formID(r *http.Request) model.FormID {
	return model.FormID(mux.Vars(r)["id"])
}

func writeFormError(w http.ResponseWriter, err error, form *model.Form) {
	if form == nil {
		apierr.WriteError(w, err)
		return
	}
	apierr.WriteErrorWithForm(w, err, response.FormFromModel(form))
}
