package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/recallhq/recall-api/internal/cache"
	"github.com/recallhq/recall-api/internal/config"
	"github.com/recallhq/recall-api/internal/domain/srs"
	"github.com/recallhq/recall-api/internal/platform/postgres"
	"github.com/recallhq/recall-api/internal/service/review"
	"github.com/recallhq/recall-api/internal/store"

	_ "github.com/jackc/pgx/v5/stdlib" // register the pgx database/sql driver
)

// shutdownTimeout bounds graceful shutdown of the HTTP server.
const shutdownTimeout = 10 * time.Second

// application holds the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	db        *sql.DB
	cardCache cache.Cache

	cardStore     store.CardStore
	srsService    srs.Service
	reviewService review.ReviewService
}

// newApplication wires all application dependencies from configuration.
// Construction order matters: storage first, then caches, then services
// that depend on both.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	db, err := setupAppDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}
	app.db = db

	if err := runMigrations(db, logger); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	app.cardCache = setupCardCache(cfg, logger)

	app.srsService = srs.NewService(srs.NewParams(srsParamsConfig(cfg.Scheduler)))

	pgStore := postgres.NewPostgresCardStore(db, logger)
	app.cardStore = review.NewCachedCardStore(
		pgStore,
		app.cardCache,
		cfg.Cache.RemoteTTL,
		logger,
	)

	app.reviewService = review.NewReviewService(app.cardStore, app.srsService, logger)

	return app, nil
}

// setupCardCache builds the two-tier card cache. The local tier is always
// present; the shared Redis tier is attached only when an address is
// configured, so the server runs standalone in development.
func setupCardCache(cfg *config.Config, logger *slog.Logger) cache.Cache {
	local := cache.NewMemoryCache(cfg.Cache.LocalCapacity, cfg.Cache.LocalTTL)

	if cfg.Redis.Addr == "" {
		logger.Info("No Redis address configured, card cache is local-only")
		return cache.NewTieredCache(local, nil, cfg.Cache.RemoteTimeout, logger)
	}

	remote := cache.NewRedisCache(cache.RedisCacheConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		KeyPrefix:  cfg.Redis.KeyPrefix,
		DefaultTTL: cfg.Cache.RemoteTTL,
	})

	logger.Info("Card cache configured with shared Redis tier",
		"addr", cfg.Redis.Addr,
		"remote_ttl", cfg.Cache.RemoteTTL.String())
	return cache.NewTieredCache(local, remote, cfg.Cache.RemoteTimeout, logger)
}

// srsParamsConfig translates scheduler configuration into algorithm
// parameter overrides, leaving zero values to the defaults.
func srsParamsConfig(cfg config.SchedulerConfig) srs.ParamsConfig {
	return srs.ParamsConfig{
		MinEaseFactor:       cfg.MinEaseFactor,
		MaxEaseFactor:       cfg.MaxEaseFactor,
		EaseBonus:           cfg.EaseBonus,
		EasePenalty:         cfg.EasePenalty,
		RelearnIntervalDays: cfg.RelearnIntervalDays,
		MaxIntervalDays:     cfg.MaxIntervalDays,
	}
}

// cleanup releases application resources in reverse construction order.
func (app *application) cleanup() {
	if app.cardCache != nil {
		if err := app.cardCache.Close(); err != nil {
			app.logger.Error("Failed to close card cache", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Failed to close database connection", "error", err)
		}
	}
	app.logger.Info("Application resources released")
}
