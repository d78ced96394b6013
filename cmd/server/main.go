// Package main implements the entry point for the Recall API server,
// which schedules spaced-repetition review cards and serves them over HTTP.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/recallhq/recall-api/internal/config"
	"github.com/recallhq/recall-api/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// run loads configuration, wires the application dependencies, and
// starts the HTTP server. It blocks until shutdown completes.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	app, err := newApplication(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := app.startHTTPServer(context.Background(), app.setupRouter()); err != nil {
		app.cleanup()
		return err
	}
	return nil
}
