package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CardState represents where a card sits in its review lifecycle.
type CardState string

// Possible card lifecycle states.
const (
	CardStateNew        CardState = "new"
	CardStateLearning   CardState = "learning"
	CardStateReview     CardState = "review"
	CardStateRelearning CardState = "relearning"
)

// Valid reports whether s is one of the defined lifecycle states.
func (s CardState) Valid() bool {
	switch s {
	case CardStateNew, CardStateLearning, CardStateReview, CardStateRelearning:
		return true
	}
	return false
}

// Rating is the difficulty rating a user submits when answering a question.
// It is consumed once per scheduling update and never stored.
type Rating string

// Possible rating values.
const (
	RatingEasy     Rating = "easy"
	RatingMedium   Rating = "medium"
	RatingHard     Rating = "hard"
	RatingVeryHard Rating = "very_hard"
)

// Valid reports whether r is one of the defined ratings.
func (r Rating) Valid() bool {
	switch r {
	case RatingEasy, RatingMedium, RatingHard, RatingVeryHard:
		return true
	}
	return false
}

// Score maps a rating onto the 1..4 scale used by the scheduling formulas.
// Lower is easier: Easy=1, Medium=2, Hard=3, VeryHard=4.
// Returns 0 for an invalid rating.
func (r Rating) Score() int {
	switch r {
	case RatingEasy:
		return 1
	case RatingMedium:
		return 2
	case RatingHard:
		return 3
	case RatingVeryHard:
		return 4
	}
	return 0
}

// Common validation errors for Card.
var (
	ErrEmptyCardUserID     = errors.New("card user ID cannot be empty")
	ErrEmptyCardQuestionID = errors.New("card question ID cannot be empty")
	ErrInvalidInterval     = errors.New("interval must be greater than or equal to 0")
	ErrInvalidEaseFactor   = errors.New("ease factor must be at least 1.3")
	ErrInvalidRepetitions  = errors.New("repetition count must be greater than or equal to 0")
)

// DefaultEaseFactor is the ease factor assigned to freshly created cards.
const DefaultEaseFactor = 2.5

// MinEaseFactor is the floor below which the ease factor may never drop.
const MinEaseFactor = 1.3

// Card is the per-user, per-question spaced-repetition scheduling record.
// A card is owned by the scheduler for the duration of an update and by the
// card store otherwise; cache tiers only ever hold disposable copies.
type Card struct {
	UserID     uuid.UUID `json:"user_id"`
	QuestionID uuid.UUID `json:"question_id"`
	State      CardState `json:"state"`
	EaseFactor float64   `json:"ease_factor"`   // Multiplier controlling interval growth (>= 1.3)
	Interval   int       `json:"interval_days"` // Current interval in days
	Reps       int       `json:"repetitions"`   // Total number of completed reviews
	// LastReviewedAt is the zero time until the card has been reviewed once.
	LastReviewedAt time.Time `json:"last_reviewed_at"`
	// NextReviewAt is the zero time only while State is new and Reps is 0.
	NextReviewAt time.Time `json:"next_review_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewCard creates a scheduling record for a (user, question) pair the user
// has never answered. The card starts in the new state with the default
// ease factor and no review history.
func NewCard(userID, questionID uuid.UUID) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		UserID:     userID,
		QuestionID: questionID,
		State:      CardStateNew,
		EaseFactor: DefaultEaseFactor,
		Interval:   0,
		Reps:       0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks the card's invariants.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.UserID == uuid.Nil {
		return ErrEmptyCardUserID
	}

	if c.QuestionID == uuid.Nil {
		return ErrEmptyCardQuestionID
	}

	if !c.State.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCardState, c.State)
	}

	if c.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}

	if c.Interval < 0 {
		return ErrInvalidInterval
	}

	if c.Reps < 0 {
		return ErrInvalidRepetitions
	}

	// NextReviewAt may only be unset while the card has never been reviewed.
	if c.NextReviewAt.IsZero() && !(c.State == CardStateNew && c.Reps == 0) {
		return fmt.Errorf("%w: next review time unset on reviewed card", ErrValidation)
	}

	return nil
}

// IsOverdue reports whether the card's next review is strictly before now.
// An interval of zero days is legal and means "due again same day", so a
// NextReviewAt in the past is always an ordinary overdue card, never an error.
func (c *Card) IsOverdue(now time.Time) bool {
	return !c.NextReviewAt.IsZero() && c.NextReviewAt.Before(now)
}
