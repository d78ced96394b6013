package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/recallhq/recall-api/internal/api"
	apiMiddleware "github.com/recallhq/recall-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace)

	cardHandler := api.NewCardHandler(app.reviewService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/cards/next", cardHandler.GetNextCard)
		r.Post("/cards/{questionID}/review", cardHandler.SubmitRating)
	})

	// Health check endpoint. Only the durable store is fatal: cache tiers
	// degrade to local-only operation and must not pull the instance from
	// rotation.
	r.Get("/healthz", app.handleHealthz)

	return r
}

// handleHealthz reports instance health. The database is the one dependency
// whose loss is fatal; the cache coordinator's Ping only fails on the local
// tier, which cannot fail in practice, and logs shared-tier loss as
// degradation.
func (app *application) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := app.db.PingContext(ctx); err != nil {
		app.logger.Error("Health check database ping failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	_ = app.cardCache.Ping(ctx)

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		app.logger.Error("Failed to write health check response", "error", err)
	}
}
