package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/recallhq/recall-api/internal/domain"
)

// QuestionRef is an opaque reference to a question the selector can turn
// into a fresh card. Questions themselves are external read-only entities;
// the core never mutates them.
type QuestionRef struct {
	ID uuid.UUID `json:"id"`
	// Ordinal is the question's stable position in its scope's original
	// ordering. The selector picks never-seen questions by ascending
	// (Ordinal, ID) so concurrent callers converge on the same question.
	Ordinal int `json:"ordinal"`
}

// CardStore defines the interface for card scheduling-state persistence.
type CardStore interface {
	// GetByUserAndQuestion retrieves the card for a (user, question) pair.
	// Returns ErrCardNotFound if no card exists.
	GetByUserAndQuestion(ctx context.Context, userID, questionID uuid.UUID) (*domain.Card, error)

	// GetOverdue returns up to limit cards for the user and scope whose
	// next review is strictly before now, ordered by next review time
	// ascending (oldest overdue first).
	GetOverdue(ctx context.Context, userID, scopeID uuid.UUID, now time.Time, limit int) ([]*domain.Card, error)

	// GetDueToday returns up to limit cards for the user and scope whose
	// next review falls within [start-of-day(asOf), asOf], ordered by next
	// review time ascending.
	GetDueToday(ctx context.Context, userID, scopeID uuid.UUID, asOf time.Time, limit int) ([]*domain.Card, error)

	// GetUnanswered returns up to limit questions in the scope that the
	// user has never answered, in ascending (Ordinal, ID) order.
	GetUnanswered(ctx context.Context, userID, scopeID uuid.UUID, limit int) ([]QuestionRef, error)

	// Create saves a new card with atomic insert-if-absent semantics.
	// Returns ErrCardExists when a card for the same (user, question) pair
	// already exists; the caller must re-fetch rather than overwrite.
	Create(ctx context.Context, card *domain.Card) error

	// Update modifies an existing card's scheduling state.
	// Returns ErrCardNotFound if the card does not exist.
	Update(ctx context.Context, card *domain.Card) error
}

// DBTX is an interface that abstracts the database access layer.
// It is implemented by both *sql.DB and *sql.Tx, allowing store
// implementations to work with either a connection or a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
