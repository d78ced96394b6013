package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewCard(t *testing.T) {
	t.Parallel()

	t.Run("creates a valid new card", func(t *testing.T) {
		userID := uuid.New()
		questionID := uuid.New()

		card, err := NewCard(userID, questionID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if card.UserID != userID {
			t.Errorf("Expected user ID %v, got %v", userID, card.UserID)
		}
		if card.QuestionID != questionID {
			t.Errorf("Expected question ID %v, got %v", questionID, card.QuestionID)
		}
		if card.State != CardStateNew {
			t.Errorf("Expected state %q, got %q", CardStateNew, card.State)
		}
		if card.EaseFactor != DefaultEaseFactor {
			t.Errorf("Expected ease factor %v, got %v", DefaultEaseFactor, card.EaseFactor)
		}
		if card.Interval != 0 || card.Reps != 0 {
			t.Errorf("Expected zero interval and repetitions, got %d and %d", card.Interval, card.Reps)
		}
		if !card.LastReviewedAt.IsZero() || !card.NextReviewAt.IsZero() {
			t.Error("Expected unset review timestamps on a new card")
		}
	})

	t.Run("rejects empty user ID", func(t *testing.T) {
		_, err := NewCard(uuid.Nil, uuid.New())

		if !errors.Is(err, ErrEmptyCardUserID) {
			t.Errorf("Expected ErrEmptyCardUserID, got %v", err)
		}
	})

	t.Run("rejects empty question ID", func(t *testing.T) {
		_, err := NewCard(uuid.New(), uuid.Nil)

		if !errors.Is(err, ErrEmptyCardQuestionID) {
			t.Errorf("Expected ErrEmptyCardQuestionID, got %v", err)
		}
	})
}

func TestCardValidate(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()

	validCard := func() *Card {
		return &Card{
			UserID:         uuid.New(),
			QuestionID:     uuid.New(),
			State:          CardStateReview,
			EaseFactor:     2.5,
			Interval:       6,
			Reps:           3,
			LastReviewedAt: now.Add(-24 * time.Hour),
			NextReviewAt:   now.Add(24 * time.Hour),
			CreatedAt:      now.Add(-48 * time.Hour),
			UpdatedAt:      now.Add(-24 * time.Hour),
		}
	}

	testCases := []struct {
		name    string
		mutate  func(c *Card)
		wantErr error
	}{
		{
			name:    "valid card passes",
			mutate:  func(c *Card) {},
			wantErr: nil,
		},
		{
			name:    "unknown state is rejected",
			mutate:  func(c *Card) { c.State = CardState("suspended") },
			wantErr: ErrInvalidCardState,
		},
		{
			name:    "ease factor below the floor is rejected",
			mutate:  func(c *Card) { c.EaseFactor = 1.2 },
			wantErr: ErrInvalidEaseFactor,
		},
		{
			name:    "negative interval is rejected",
			mutate:  func(c *Card) { c.Interval = -1 },
			wantErr: ErrInvalidInterval,
		},
		{
			name:    "negative repetitions are rejected",
			mutate:  func(c *Card) { c.Reps = -1 },
			wantErr: ErrInvalidRepetitions,
		},
		{
			name:    "reviewed card without a next review time is rejected",
			mutate:  func(c *Card) { c.NextReviewAt = time.Time{} },
			wantErr: ErrValidation,
		},
		{
			name: "zero interval is legal",
			mutate: func(c *Card) {
				c.Interval = 0
				c.NextReviewAt = now
			},
			wantErr: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			card := validCard()
			tc.mutate(card)

			err := card.Validate()

			if tc.wantErr == nil {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCardIsOverdue(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()

	testCases := []struct {
		name         string
		nextReviewAt time.Time
		expected     bool
	}{
		{"past next review is overdue", now.Add(-time.Minute), true},
		{"future next review is not overdue", now.Add(time.Minute), false},
		{"exactly now is not overdue", now, false},
		{"unset next review is never overdue", time.Time{}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			card := Card{NextReviewAt: tc.nextReviewAt}

			if got := card.IsOverdue(now); got != tc.expected {
				t.Errorf("Expected IsOverdue=%v, got %v", tc.expected, got)
			}
		})
	}
}

func TestRatingScore(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		rating Rating
		score  int
	}{
		{RatingEasy, 1},
		{RatingMedium, 2},
		{RatingHard, 3},
		{RatingVeryHard, 4},
		{Rating("unknown"), 0},
	}

	for _, tc := range testCases {
		if got := tc.rating.Score(); got != tc.score {
			t.Errorf("Rating %q: expected score %d, got %d", tc.rating, tc.score, got)
		}
	}
}
