package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/loginpage/internal/api/handler"
	"github.com/mcoot/loginpage/internal/api/middleware"
	"github.com/mcoot/loginpage/internal/dependencies/random"
	"github.com/mcoot/loginpage/internal/services/login"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger     *slog.Logger
	Controller *login.Controller
	Random     random.Random

	// OnSuccess runs after a successful login through the API
	OnSuccess login.SuccessFunc
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	formHandler := handler.NewFormHandler(cfg.Controller, cfg.OnSuccess)

	api := r.PathPrefix("/api/v1").Subrouter()
	// Logging is outermost so recovered panics carry the request ID
	api.Use(middleware.Logging(cfg.Random, cfg.Logger))
	api.Use(middleware.Recovery(cfg.Logger))

	api.HandleFunc("/forms", formHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/forms/{id}", formHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/forms/{id}", formHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/forms/{id}/submit", formHandler.Submit).Methods(http.MethodPost)
	api.HandleFunc("/forms/{id}/reset", formHandler.Reset).Methods(http.MethodPost)

	api.HandleFunc("/health", handler.Health).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(handler.NotFound)

	return r
}
