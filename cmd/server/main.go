package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mcoot/loginpage/internal/api"
	"github.com/mcoot/loginpage/internal/config"
	"github.com/mcoot/loginpage/internal/factory"
	"github.com/mcoot/loginpage/internal/web"
	webhandler "github.com/mcoot/loginpage/internal/web/handler"
)

const maintenanceInterval = time.Minute

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	app, err := factory.New(factory.FromConfig(cfg, logger))
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close application", slog.String("error", err.Error()))
		}
	}()

	staticDir := cfg.StaticDir
	if staticDir == "" {
		staticDir = findStaticDir()
	}

	onSuccess := webhandler.LogSuccess(logger)

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Controller: app.LoginController,
		Random:     app.Random,
		OnSuccess:  onSuccess,
	})

	webRouter := web.NewRouter(web.RouterConfig{
		Logger:      logger,
		Controller:  app.LoginController,
		HubManager:  app.HubManager,
		Broadcaster: app.Broadcaster,
		Random:      app.Random,
		FormClass:   app.FormClass,
		OnSuccess:   onSuccess,
		StaticDir:   staticDir,
	})

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = cfg.Port
	server := api.NewServer(mux, serverConfig, logger)
	// Open SSE streams would otherwise hold the shutdown until its timeout
	server.OnShutdown(app.HubManager.Close)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go app.RunMaintenance(ctx, maintenanceInterval)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.Int("port", cfg.Port),
		slog.String("storage", cfg.StorageType),
		slog.String("static_dir", staticDir),
	)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}

// findStaticDir looks for the static files directory
func findStaticDir() string {
	candidates := []string{
		"internal/web/static",
		filepath.Join(os.Getenv("PWD"), "internal/web/static"),
	}

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}

	return "internal/web/static"
}
