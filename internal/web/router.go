package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/loginpage/internal/dependencies/random"
	"github.com/mcoot/loginpage/internal/services/login"
	"github.com/mcoot/loginpage/internal/web/handler"
	"github.com/mcoot/loginpage/internal/web/middleware"
	"github.com/mcoot/loginpage/internal/web/sse"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger      *slog.Logger
	Controller  *login.Controller
	HubManager  *sse.HubManager
	Broadcaster *sse.Broadcaster
	Random      random.Random

	// FormClass is the presentational class hint passed to the login form
	FormClass string

	// OnSuccess runs after a successful login; nil logs it
	OnSuccess login.SuccessFunc

	StaticDir string // Path to static files directory
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Logging is outermost so recovered panics carry the request ID
	r.Use(middleware.Logging(cfg.Random, cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))

	hubManager := cfg.HubManager
	if hubManager == nil {
		hubManager = sse.NewHubManager(cfg.Logger)
	}
	broadcaster := cfg.Broadcaster
	if broadcaster == nil {
		broadcaster = sse.NewBroadcaster(hubManager, cfg.FormClass, cfg.Logger)
	}

	loginHandler := handler.NewLoginHandler(cfg.Controller, hubManager, broadcaster, cfg.FormClass, cfg.OnSuccess, cfg.Logger)

	if cfg.StaticDir != "" {
		staticHandler := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.PathPrefix("/static/").Handler(staticHandler)
	}

	pages := r.NewRoute().Subrouter()
	pages.Use(middleware.Flash())
	pages.HandleFunc("/", loginHandler.Index).Methods(http.MethodGet)
	pages.HandleFunc("/signup", loginHandler.Signup).Methods(http.MethodGet)
	pages.HandleFunc("/login/{id}", loginHandler.Submit).Methods(http.MethodPost)
	pages.HandleFunc("/login/{id}/reset", loginHandler.Reset).Methods(http.MethodPost)

	r.HandleFunc("/login/{id}/events", loginHandler.Events).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(handler.NotFound)

	return r
}
