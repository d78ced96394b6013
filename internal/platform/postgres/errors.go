package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/recallhq/recall-api/internal/store"
)

// PostgreSQL error codes
const (
	pgUniqueViolationCode     = "23505"
	pgForeignKeyViolationCode = "23503"
)

// isUniqueViolation checks if the given error is a PostgreSQL unique
// constraint violation, used to detect first-write races on cards.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode
}

// mapStoreError normalizes driver failures: context deadline/cancellation
// and connection errors become store.ErrUnavailable so callers can treat
// them uniformly as retryable, without leaking driver internals.
func mapStoreError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s timed out: %v", store.ErrUnavailable, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Constraint violations carry meaning and are mapped by callers.
		return err
	}

	return fmt.Errorf("%w: %s: %v", store.ErrUnavailable, op, err)
}
