package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/loginpage/internal/config"
	"github.com/mcoot/loginpage/internal/dependencies/clock"
	"github.com/mcoot/loginpage/internal/dependencies/random"
	"github.com/mcoot/loginpage/internal/services/auth"
	"github.com/mcoot/loginpage/internal/services/login"
	"github.com/mcoot/loginpage/internal/storage"
	"github.com/mcoot/loginpage/internal/storage/memory"
	redisstorage "github.com/mcoot/loginpage/internal/storage/redis"
	"github.com/mcoot/loginpage/internal/web/sse"
)

// Storage type constants
const (
	StorageTypeMemory = config.StorageMemory
	StorageTypeRedis  = config.StorageRedis
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock         clock.Clock
	Random        random.Random
	Authenticator auth.Authenticator

	// Services
	LoginController *login.Controller
	HubManager      *sse.HubManager
	Broadcaster     *sse.Broadcaster

	// FormClass is the class hint every rendering of the login form uses
	FormClass string

	formTTL time.Duration
	logger  *slog.Logger
	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// AuthConfig configures the mock authenticator
	// If Username is empty, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// LoginConfig configures the form state machine
	// If nil, defaults to login.DefaultConfig(); a zero SubmitTimeout is kept
	LoginConfig *login.Config
	// FormClass is passed to the login form as its class hint
	FormClass string
	// FormTTL is how long an untouched form is kept (memory storage sweep)
	// If zero, defaults to one hour
	FormTTL time.Duration
}

// FromConfig translates server configuration into a factory Config
func FromConfig(c config.Config, logger *slog.Logger) Config {
	cfg := Config{
		Logger:      logger,
		StorageType: c.StorageType,
		AuthConfig: auth.Config{
			Username: c.AuthUsername,
			Password: c.AuthPassword,
			Delay:    c.AuthDelay,
		},
		LoginConfig: &login.Config{
			SubmitTimeout: c.SubmitTimeout,
		},
		FormClass: c.FormClass,
		FormTTL:   c.FormTTL,
	}
	if c.StorageType == config.StorageRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		redisCfg.FormTTL = c.FormTTL
		redisCfg.SubmissionTTL = redisstorage.SubmissionTTLFor(c.SubmitTimeout)
		cfg.RedisConfig = &redisCfg
	}
	return cfg
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	var closers []io.Closer
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
		closers = append(closers, redisStore)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()
	rnd := random.New()

	authCfg := cfg.AuthConfig
	if authCfg.Username == "" {
		authCfg = auth.DefaultConfig()
	}
	if authCfg.BcryptCost == 0 {
		authCfg.BcryptCost = auth.DefaultConfig().BcryptCost
	}
	authn, err := auth.NewStatic(clk, authCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create authenticator: %w", err)
	}

	loginCfg := login.DefaultConfig()
	if cfg.LoginConfig != nil {
		loginCfg = *cfg.LoginConfig
	}

	app := newWithDependencies(store, clk, rnd, authn, loginCfg, cfg.FormClass, logger)
	app.closers = closers
	if cfg.FormTTL > 0 {
		app.formTTL = cfg.FormTTL
	}
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	authn auth.Authenticator,
	loginCfg login.Config,
	formClass string,
	logger *slog.Logger,
) *App {
	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, formClass, logger)
	loginController := login.NewController(store, authn, broadcaster, clk, rnd, loginCfg, logger)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		Authenticator:   authn,
		LoginController: loginController,
		HubManager:      hubManager,
		Broadcaster:     broadcaster,
		FormClass:       formClass,
		formTTL:         time.Hour,
		logger:          logger,
	}
}

type staleFormPurger interface {
	PurgeStale(ctx context.Context, cutoff time.Time) int
}

// Sweep drops SSE hubs nobody watches and, for storage without its own
// expiry, forms untouched for longer than the form TTL
func (a *App) Sweep(ctx context.Context) {
	a.HubManager.CleanupEmptyHubs()
	if purger, ok := a.Storage.(staleFormPurger); ok {
		if n := purger.PurgeStale(ctx, a.Clock.Now().Add(-a.formTTL)); n > 0 {
			a.logger.Info("stale login forms purged", slog.Int("removed", n))
		}
	}
}

// RunMaintenance calls Sweep every interval until ctx ends
func (a *App) RunMaintenance(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.Sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Close disconnects SSE clients and releases storage connections
func (a *App) Close() error {
	a.HubManager.Close()
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
