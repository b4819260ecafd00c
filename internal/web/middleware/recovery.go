package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/loginpage/internal/middleware"
	"github.com/mcoot/loginpage/internal/web/templates/layout"
)

// Recovery creates panic recovery middleware for the web interface.
// htmx requests get a bare error fragment, everything else a full page.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, webPanicHandler)
}

const panicMessage = "Something went wrong. Please try again later."

func webPanicHandler(w http.ResponseWriter, r *http.Request, _ any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)

	if r.Header.Get("HX-Request") == "true" {
		_ = layout.ErrorFragment(panicMessage).Render(r.Context(), w)
		return
	}
	_ = layout.ErrorPage(layout.PageData{Title: "Internal Server Error"}, panicMessage).Render(r.Context(), w)
}
