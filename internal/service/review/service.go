// Package review implements the contract this core presents to callers:
// selecting the next card to study and applying a submitted rating. It
// combines the card store (behind the two-tier cache) with the pure
// scheduling algorithm in internal/domain/srs.
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/recallhq/recall-api/internal/domain"
	"github.com/recallhq/recall-api/internal/store"
)

// ReviewItem pairs a card with the question it schedules, ready for a
// caller to present.
type ReviewItem struct {
	Card     *domain.Card      `json:"card"`
	Question store.QuestionRef `json:"question"`
}

// ReviewService provides the two core scheduling operations.
type ReviewService interface {
	// GetNextCard returns the next card the user should study in the given
	// scope, by priority: oldest overdue card first, then the first
	// never-seen question (for which a fresh card is created and
	// persisted), then the earliest card due today.
	//
	// Returns ErrNoCardsDue when nothing is available, a valid terminal
	// result rather than a failure. Safe to retry: creation of a fresh card is
	// insert-if-absent, so concurrent calls converge on one persisted card.
	GetNextCard(ctx context.Context, userID, scopeID uuid.UUID) (*ReviewItem, error)

	// SubmitRating applies a difficulty rating to the user's card for the
	// question, advancing its scheduling state as of now. The card is
	// created on the fly if the user has never answered the question.
	//
	// The durable write completes before any cache invalidation; on a
	// store failure the scheduling update is not applied and the error is
	// surfaced as retryable. SubmitRating is NOT idempotent (each call
	// advances state), so callers must not blindly retry on ambiguous
	// failure without their own deduplication.
	//
	// Returns ErrInvalidRating for a rating outside the defined set.
	SubmitRating(
		ctx context.Context,
		userID, questionID uuid.UUID,
		rating domain.Rating,
		now time.Time,
	) (*domain.Card, error)
}

// Common error types for ReviewService.
var (
	// ErrNoCardsDue indicates that the user has nothing to review in the scope.
	ErrNoCardsDue = errors.New("no cards due for review")

	// ErrInvalidRating indicates a rating outside the defined set.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrCardNotFound indicates the card does not exist.
	ErrCardNotFound = errors.New("card not found")
)

// ServiceError wraps errors from the review service with operation context,
// so consumers can differentiate failures with errors.As instead of string
// matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g. "get_next_card").
	Operation string
	// Message is a human-readable description of the error.
	Message string
	// Err is the underlying error that caused the failure.
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewGetNextCardError returns a new ServiceError for the get_next_card operation.
func NewGetNextCardError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "get_next_card", Message: message, Err: err}
}

// NewSubmitRatingError returns a new ServiceError for the submit_rating operation.
func NewSubmitRatingError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "submit_rating", Message: message, Err: err}
}
