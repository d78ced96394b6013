package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/recallhq/recall-api/internal/store"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "unique violation is detected",
			err:      &pgconn.PgError{Code: pgUniqueViolationCode},
			expected: true,
		},
		{
			name:     "wrapped unique violation is detected",
			err:      fmt.Errorf("insert failed: %w", &pgconn.PgError{Code: pgUniqueViolationCode}),
			expected: true,
		},
		{
			name:     "foreign key violation is not a unique violation",
			err:      &pgconn.PgError{Code: pgForeignKeyViolationCode},
			expected: false,
		},
		{
			name:     "plain error is not a unique violation",
			err:      errors.New("boom"),
			expected: false,
		},
		{
			name:     "nil error is not a unique violation",
			err:      nil,
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isUniqueViolation(tc.err); got != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestMapStoreError(t *testing.T) {
	t.Parallel()

	t.Run("deadline exceeded maps to ErrUnavailable", func(t *testing.T) {
		err := mapStoreError("get_overdue", context.DeadlineExceeded)

		if !errors.Is(err, store.ErrUnavailable) {
			t.Errorf("Expected ErrUnavailable, got %v", err)
		}
	})

	t.Run("cancellation maps to ErrUnavailable", func(t *testing.T) {
		err := mapStoreError("update", fmt.Errorf("query: %w", context.Canceled))

		if !errors.Is(err, store.ErrUnavailable) {
			t.Errorf("Expected ErrUnavailable, got %v", err)
		}
	})

	t.Run("constraint violations pass through for callers to map", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: pgUniqueViolationCode}

		err := mapStoreError("create", pgErr)

		if errors.Is(err, store.ErrUnavailable) {
			t.Errorf("Constraint violation must not map to ErrUnavailable, got %v", err)
		}
		if !isUniqueViolation(err) {
			t.Errorf("Expected the violation preserved, got %v", err)
		}
	})

	t.Run("connection errors map to ErrUnavailable", func(t *testing.T) {
		err := mapStoreError("get", errors.New("connection refused"))

		if !errors.Is(err, store.ErrUnavailable) {
			t.Errorf("Expected ErrUnavailable, got %v", err)
		}
	})
}

func TestNullableTime(t *testing.T) {
	t.Parallel()

	t.Run("zero time becomes NULL", func(t *testing.T) {
		nt := nullableTime(time.Time{})

		if nt.Valid {
			t.Errorf("Expected invalid NullTime for zero time, got %+v", nt)
		}
	})

	t.Run("non-zero time is preserved", func(t *testing.T) {
		ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

		nt := nullableTime(ts)

		if !nt.Valid || !nt.Time.Equal(ts) {
			t.Errorf("Expected valid NullTime %v, got %+v", ts, nt)
		}
	})
}
