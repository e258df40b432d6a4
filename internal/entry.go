// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/motioneffector/wiki/internal/api"
	"github.com/motioneffector/wiki/internal/sse"
	"github.com/motioneffector/wiki/internal/storage"
	"github.com/motioneffector/wiki/internal/watcher"
	"github.com/motioneffector/wiki/internal/wikiservice"
)

// OpenStorage builds the configured persistence provider.
func OpenStorage(cfg *Config) (storage.Provider, error) {
	switch cfg.Storage.Driver {
	case StorageDriverSQLite:
		return storage.OpenSQLite(cfg.Storage.Path)
	default:
		if err := os.MkdirAll(cfg.Storage.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create page dir: %w", err)
		}
		return storage.NewFS(cfg.Storage.Path)
	}
}

// NewService builds the wiki service from configuration.
func NewService(cfg *Config, store storage.Provider) (*wikiservice.Service, error) {
	pattern, err := cfg.Wiki.Pattern()
	if err != nil {
		return nil, err
	}
	return wikiservice.New(store, pattern)
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("storage_path", cfg.Storage.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store := app.store
	if store == nil {
		var err error
		store, err = OpenStorage(cfg)
		if err != nil {
			return fmt.Errorf("init storage: %w", err)
		}
	}
	defer store.Close()

	svc, err := NewService(cfg, store)
	if err != nil {
		return fmt.Errorf("init service: %w", err)
	}

	// SSE broker receives post-commit page events.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()
	svc.SetNotifier(broker.PublishPageEvent)

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the page directory for external edits (fs driver only).
	if cfg.Storage.Driver == StorageDriverFS {
		fsStore, ok := store.(*storage.FS)
		if ok {
			g.Go(func() error {
				return watcher.Watch(gCtx, svc, fsStore, cfg.Storage.Path, logger)
			})
		}
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
