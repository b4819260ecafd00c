package handler

import (
	"log/slog"
	"net/http"

	webmw "github.com/mcoot/loginpage/internal/web/middleware"
	"github.com/mcoot/loginpage/internal/web/templates/layout"
	"github.com/mcoot/loginpage/internal/web/templates/pages"
)

// Index renders the login page around a fresh form
func (h *LoginHandler) Index(w http.ResponseWriter, r *http.Request) {
	form, err := h.controller.NewForm(r.Context())
	if err != nil {
		h.log(r).Error("failed to create login form", slog.Any("error", err))
		h.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
		return
	}

	data := pages.IndexData{
		PageData: layout.PageData{
			Title: "Log in",
			Flash: webmw.GetFlash(r.Context()),
		},
		Form:      form,
		FormClass: h.formClass,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.Index(data).Render(r.Context(), w); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// Signup is the target of the "sign up" link. There is no sign-up flow, so
// it notes the request and returns to the login page.
func (h *LoginHandler) Signup(w http.ResponseWriter, r *http.Request) {
	h.log(r).Info("sign up requested")
	webmw.SetFlash(w, webmw.FlashInfo, flashSignup)
	redirect(w, r, "/")
}

// NotFound renders the 404 page
func NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_ = layout.ErrorPage(layout.PageData{Title: "Not Found"}, "The page you were looking for does not exist.").Render(r.Context(), w)
}
