package main

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/recallhq/recall-api/internal/cache"
	"github.com/recallhq/recall-api/internal/config"
	"github.com/recallhq/recall-api/internal/domain"
	"github.com/recallhq/recall-api/internal/service/review"
)

// stubDriver is a database/sql driver whose connections do nothing.
// Opening a connection succeeds or fails wholesale, which is all
// PingContext needs.
type stubDriver struct {
	openErr error
}

func (d stubDriver) Open(string) (driver.Conn, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	return stubConn{}, nil
}

type stubConn struct{}

func (stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (stubConn) Close() error                        { return nil }
func (stubConn) Begin() (driver.Tx, error)           { return nil, errors.New("not supported") }

func init() {
	sql.Register("stub-up", stubDriver{})
	sql.Register("stub-down", stubDriver{openErr: errors.New("connection refused")})
}

// noCardsService satisfies review.ReviewService for router construction.
type noCardsService struct{}

func (noCardsService) GetNextCard(context.Context, uuid.UUID, uuid.UUID) (*review.ReviewItem, error) {
	return nil, review.ErrNoCardsDue
}

func (noCardsService) SubmitRating(
	context.Context, uuid.UUID, uuid.UUID, domain.Rating, time.Time,
) (*domain.Card, error) {
	return nil, review.ErrCardNotFound
}

// unreachableCache simulates a lost shared tier behind the coordinator.
type unreachableCache struct{}

func (unreachableCache) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (unreachableCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}
func (unreachableCache) Delete(context.Context, string) error { return errors.New("connection refused") }
func (unreachableCache) DeletePattern(context.Context, string) (int, error) {
	return 0, errors.New("connection refused")
}
func (unreachableCache) Ping(context.Context) error { return errors.New("connection refused") }
func (unreachableCache) Close() error               { return nil }

func newHealthzApp(t *testing.T, driverName string, remote cache.Cache) *application {
	t.Helper()

	db, err := sql.Open(driverName, "")
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	local := cache.NewMemoryCache(10, time.Minute)
	tiered := cache.NewTieredCache(local, remote, 50*time.Millisecond, nil)
	t.Cleanup(func() { _ = tiered.Close() })

	return &application{
		config:        &config.Config{Server: config.ServerConfig{Port: 0, LogLevel: "info"}},
		logger:        slog.Default(),
		db:            db,
		cardCache:     tiered,
		reviewService: noCardsService{},
	}
}

func getHealthz(t *testing.T, app *application) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	app.setupRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	return rec
}

func TestHealthz(t *testing.T) {
	t.Run("healthy with all dependencies up", func(t *testing.T) {
		app := newHealthzApp(t, "stub-up", nil)

		rec := getHealthz(t, app)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("healthy while the shared cache tier is down", func(t *testing.T) {
		app := newHealthzApp(t, "stub-up", unreachableCache{})

		rec := getHealthz(t, app)

		if rec.Code != http.StatusOK {
			t.Fatalf("shared-tier loss is degradation, not failure: expected 200, got %d", rec.Code)
		}
	})

	t.Run("unhealthy when the database is unreachable", func(t *testing.T) {
		app := newHealthzApp(t, "stub-down", nil)

		rec := getHealthz(t, app)

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})
}
