// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/api"
	"github.com/starford/ansuz/internal/backup"
	"github.com/starford/ansuz/internal/extract"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/mcpserver"
	"github.com/starford/ansuz/internal/modulestore"
	"github.com/starford/ansuz/internal/pipeline"
	"github.com/starford/ansuz/internal/settings"
	"github.com/starford/ansuz/internal/sourcestore"
	"github.com/starford/ansuz/internal/sse"
	"github.com/starford/ansuz/internal/storage"
)

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func openContent(path string) (*storage.FS, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create content dir: %w", err)
	}
	store, err := storage.NewFS(path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return store, nil
}

func openSettings(path string) (*settings.Store, error) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create settings dir: %w", err)
	}
	fsys, err := storage.NewFS(dir)
	if err != nil {
		return nil, fmt.Errorf("init settings storage: %w", err)
	}
	return settings.New(fsys, name), nil
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Run starts the HTTP service with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(os.Stdout, cfg.App.LogLevel)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_path", cfg.Content.Path),
		slog.String("settings_path", cfg.Settings.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := openContent(cfg.Content.Path)
	if err != nil {
		return err
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	formats, err := openSettings(cfg.Settings.Path)
	if err != nil {
		return err
	}

	reasoner := cfg.Providers.Reasoning.Client("reasoning")
	searcher := cfg.Providers.Search.Client("search")
	for _, c := range []interface {
		Name() string
		HasKey() bool
	}{reasoner, searcher} {
		if !c.HasKey() {
			logger.Warn("provider has no API key; AI requests will fail",
				slog.String("provider", c.Name()))
		}
	}

	modules := modulestore.New(store, logger, modulestore.WithIndexer(db))
	sources := sourcestore.New(store)
	orchestrator := pipeline.New(reasoner, searcher, logger,
		pipeline.WithImport(extract.New(30*time.Second), sources))

	broker := sse.NewBroker(2*time.Second, sse.WithCatalog(modules), sse.WithLogger(logger))
	defer broker.Close()

	apiRouter := api.NewRouter(api.Deps{
		Modules:  modules,
		Sources:  sources,
		Settings: formats,
		Pipeline: orchestrator,
		Index:    db,
		Backup:   backup.New(store.Root(), cfg.Backup.serviceConfig(), logger),
		Events:   broker,
		Logger:   logger,
	}, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", healthz)
	r.Get("/health/ready", healthz)

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// External edits reach the index and SSE clients through the watcher.
	g.Go(func() error {
		if err := index.Watch(gCtx, db, store, store.Root(), logger, broker.PublishModuleEvent); err != nil {
			logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr.
// Saves are not indexed here; a running service picks them up through its watcher.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(os.Stderr, cfg.App.LogLevel)

	store, err := openContent(cfg.Content.Path)
	if err != nil {
		return err
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	srv := mcpserver.New(modulestore.New(store, logger), sourcestore.New(store), db, app.version)
	logger.Info("MCP server starting", slog.String("content_path", cfg.Content.Path))
	return srv.ServeStdio()
}

// RunBackup commits the content root once and reports the outcome.
func RunBackup(ctx context.Context, opts ...Option) (*backup.Result, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	cfg := app.config
	logger := newLogger(os.Stderr, cfg.App.LogLevel)

	store, err := openContent(cfg.Content.Path)
	if err != nil {
		return nil, err
	}
	return backup.New(store.Root(), cfg.Backup.serviceConfig(), logger).Run(ctx)
}
