// Package srs implements the spaced-repetition scheduling algorithm: a
// pure state machine over cards and difficulty ratings, with tunable
// parameters. It performs no I/O and holds no state, so a single Service
// is safe for concurrent use by any number of callers.
package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/recallhq/recall-api/internal/domain"
)

// Common errors
var (
	ErrNilCard       = errors.New("card cannot be nil")
	ErrInvalidRating = errors.New("invalid rating")
)

// Service defines the interface for scheduling operations.
type Service interface {
	// CalculateNextReview computes the successor card for a review with
	// the given rating at the given time. The input card is not mutated.
	//
	// Returns ErrNilCard if card is nil, ErrInvalidRating if the rating
	// is outside the defined set, and a validation error if the successor
	// card would violate a domain invariant.
	CalculateNextReview(card *domain.Card, rating domain.Rating, now time.Time) (*domain.Card, error)
}

type defaultService struct {
	params *Params
}

// NewService creates a scheduling service with the given parameters.
// If params is nil, default parameters are used.
func NewService(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{params: params}
}

// CalculateNextReview implements Service.CalculateNextReview.
func (s *defaultService) CalculateNextReview(
	card *domain.Card,
	rating domain.Rating,
	now time.Time,
) (*domain.Card, error) {
	if card == nil {
		return nil, ErrNilCard
	}

	if !rating.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRating, rating)
	}

	// Reject before mutating state: a card that already violates its
	// invariants must not be advanced.
	if err := card.Validate(); err != nil {
		return nil, err
	}

	next := Advance(card, rating, now, s.params)

	if err := next.Validate(); err != nil {
		return nil, fmt.Errorf("computed card is invalid: %w", err)
	}

	return next, nil
}
