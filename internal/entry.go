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

	"github.com/starford/notebook/internal/api"
	"github.com/starford/notebook/internal/models"
	"github.com/starford/notebook/internal/notestore"
	"github.com/starford/notebook/internal/sse"
)

const limiterCleanupInterval = 5 * time.Minute

// Run starts the HTTP server with the given options and blocks until it stops.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := app.logger
	if logger == nil {
		// Initialize structured JSON logger.
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("vault_mirror", cfg.Vault.Mirror),
		slog.Bool("vault_watch", cfg.Vault.Watch),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := OpenStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	loc, err := cfg.List.Location()
	if err != nil {
		return fmt.Errorf("list timezone: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)

	// SSE broker fed by store events.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()
	unsubscribe := store.Subscribe(broker.PublishNoteEvent)
	defer unsubscribe()

	if cfg.Vault.Mirror || cfg.Vault.Watch {
		v, err := OpenVault(cfg, store, logger, cfg.Vault.Watch)
		if err != nil {
			return fmt.Errorf("init vault: %w", err)
		}
		if cfg.Vault.Mirror {
			if _, err := v.Export(ctx); err != nil {
				logger.Warn("initial export failed", slog.String("error", err.Error()))
			}
			stopMirror := store.Subscribe(func(ev models.Event) { v.Mirror(gCtx, ev) })
			defer stopMirror()
		}
		if cfg.Vault.Watch {
			g.Go(func() error {
				if err := v.Watch(gCtx); err != nil {
					return fmt.Errorf("inbox watcher: %w", err)
				}
				return nil
			})
		}
	}

	routerCfg := api.RouterConfig{
		AuthEnabled: cfg.Auth.AuthEnabled(),
		Token:       cfg.Auth.Token,
		Events:      broker,
		Theme:       cfg.Editor.Theme(),
		Location:    loc,
		DayLayout:   cfg.List.DayLayout,
		Logger:      logger,
	}
	if cfg.App.RateLimit.Enabled() {
		limiter := api.NewRateLimiter(cfg.App.RateLimit.RPS, cfg.App.RateLimit.Burst)
		routerCfg.Limiter = limiter
		g.Go(func() error {
			return limiter.Run(gCtx, limiterCleanupInterval)
		})
	}

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newRootRouter(store, api.NewRouter(store, routerCfg)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

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
		defer signal.Stop(quit)

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

		// Stop the remaining workers.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the errgroup once the server has been shut down.
var errShutdown = errors.New("shutdown")

func newRootRouter(store *notestore.Store, apiRouter http.Handler) chi.Router {
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
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := store.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)
	return r
}
