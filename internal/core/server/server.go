package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/evhagen/aoiview/internal/auth"
	"github.com/evhagen/aoiview/internal/core/config"
	"github.com/evhagen/aoiview/internal/core/health"
	"github.com/evhagen/aoiview/internal/core/middleware"
	"github.com/evhagen/aoiview/internal/core/router"
)

// Routes assembles the chi router; split out so tests can mount the full
// surface against httptest.
func Routes(cfg config.Config, logger *slog.Logger, h *router.Handlers, am *auth.Manager, ready health.Pinger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recover())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS())

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(ready))
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Post("/auth/token", router.Instrument("/auth/token", h.Token))
	r.Get("/layers", router.Instrument("/layers", h.Layers))

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(am))
		r.Post("/aois", router.Instrument("/aois", h.CreateAOI))
		r.Get("/aois", router.Instrument("/aois", h.ListAOIs))
		r.Get("/aois/{id}", router.Instrument("/aois/{id}", h.GetAOI))
		r.Delete("/aois/{id}", router.Instrument("/aois/{id}", h.DeleteAOI))
		r.Get("/featureinfo", router.Instrument("/featureinfo", h.FeatureInfo))
	})

	return r
}

// Run starts serving and blocks until ctx is canceled or the listener
// fails.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, handler http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
