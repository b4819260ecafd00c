package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/loginpage/internal/dependencies/random"
	"github.com/mcoot/loginpage/internal/middleware"
)

// Logging creates request logging middleware for the web interface. Each
// request is tagged with an ID first so handler logs can be correlated.
func Logging(rnd random.Random, logger *slog.Logger) func(http.Handler) http.Handler {
	requestID := middleware.RequestID(rnd, logger)
	logging := middleware.Logging(logger)
	return func(next http.Handler) http.Handler {
		return requestID(logging(next))
	}
}
