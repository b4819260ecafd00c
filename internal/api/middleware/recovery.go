package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/loginpage/internal/api/apierr"
	"github.com/mcoot/loginpage/internal/middleware"
)

// Recovery turns a panicking API handler into a JSON 500. The body carries
// the request ID assigned by Logging so a client report can be matched to
// the panic log line.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, writeInternalError)
}

func writeInternalError(w http.ResponseWriter, _ *http.Request, _ any) {
	err := apierr.NewInternalError()
	if id := w.Header().Get(middleware.RequestIDHeader); id != "" {
		err = apierr.WithRequestID(err, id)
	}
	apierr.WriteError(w, err)
}
