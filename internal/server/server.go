// Package server assembles the HTTP API and runs it.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/cdplates/cdplates/internal/appstate"
	"github.com/cdplates/cdplates/internal/archive"
	"github.com/cdplates/cdplates/internal/capture"
	"github.com/cdplates/cdplates/internal/config"
	"github.com/cdplates/cdplates/internal/database"
	"github.com/cdplates/cdplates/internal/middleware"
	"github.com/cdplates/cdplates/utils"
)

const shutdownTimeout = 30 * time.Second

// Dependencies are the services the router needs. Archive may be nil.
type Dependencies struct {
	DB       *gorm.DB
	State    *appstate.State
	Captures *capture.Service
	Archive  *archive.Service
	App      config.AppConfig
}

// NewMux registers every route on a fresh ServeMux.
func NewMux(deps Dependencies) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := database.HealthCheck(deps.DB); err != nil {
			slog.ErrorContext(r.Context(), "health check failed", "error", err)
			utils.WriteJSONResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"status": "ok", "service": "cdplates"})
	})

	ph := NewPlateHandler(deps.State)
	mux.HandleFunc("GET /api/plates/{plate}", ph.HandleDecodePath)
	mux.HandleFunc("GET /api/decode", ph.HandleDecodeQuery)
	mux.HandleFunc("GET /api/countries", ph.HandleCountries)
	mux.HandleFunc("GET /api/categories", ph.HandleCategories)
	mux.HandleFunc("GET /api/session", ph.HandleSession)
	mux.HandleFunc("POST /api/session/taps", ph.HandleTap)

	var snapshots capture.SnapshotStore
	if deps.Archive != nil {
		snapshots = deps.Archive
		mux.HandleFunc("GET "+archive.DownloadPath+"/{key}", archive.NewHTTPHandler(deps.Archive).HandleDownload)
	}
	capture.NewHTTPHandler(deps.Captures, snapshots, deps.App.MaxImportBytes).RegisterRoutes(mux)

	return mux
}

// Run wires the service from cfg and serves until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	db, err := database.New(&cfg.Database, cfg.Logging.SlogLevel())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	store, err := capture.NewGormStore(db)
	if err != nil {
		return err
	}

	state := appstate.New(appstate.Options{
		DevMode:   cfg.App.DevMode,
		TapCount:  cfg.App.DevTapCount,
		TapWindow: cfg.App.DevTapWindow,
	})

	snapshots, err := archive.NewSnapshotService(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize snapshot storage: %w", err)
	}

	mux := NewMux(Dependencies{
		DB:       db,
		State:    state,
		Captures: capture.NewService(store, state),
		Archive:  snapshots,
		App:      cfg.App,
	})

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	stopCleanup := make(chan struct{})
	defer close(stopCleanup)
	limiter.StartCleanup(cfg.RateLimit.Window*5, stopCleanup)

	handler := middleware.CORS(&cfg.CORS)(limiter.Middleware()(mux))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "port", cfg.Server.Port, "service_url", cfg.Server.ServiceURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		return err
	}
	slog.Info("server gracefully stopped")
	return nil
}
