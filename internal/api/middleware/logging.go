package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/loginpage/internal/dependencies/random"
	"github.com/mcoot/loginpage/internal/middleware"
)

// Logging tags API requests with an ID and logs them
func Logging(rnd random.Random, logger *slog.Logger) func(http.Handler) http.Handler {
	requestID := middleware.RequestID(rnd, logger)
	logging := middleware.Logging(logger)
	return func(next http.Handler) http.Handler {
		return requestID(logging(next))
	}
}
