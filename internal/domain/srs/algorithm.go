package srs

import (
	"math"
	"time"

	"github.com/recallhq/recall-api/internal/domain"
)

// calculateNewEaseFactor determines the new ease factor after a review.
//
// The ease factor represents how fast review intervals grow for this card.
// The update rule is ef' = ef + (EaseBonus - (4 - score) * EasePenalty),
// where score maps Easy=1 .. VeryHard=4, so the adjustment ranges from
// EaseBonus - 3*EasePenalty at Easy up to EaseBonus at VeryHard (a VeryHard
// lapse also resets the interval, see calculateNewInterval). The result is
// clamped between params.MinEaseFactor and params.MaxEaseFactor.
func calculateNewEaseFactor(currentEF float64, rating domain.Rating, params *Params) float64 {
	adjustment := params.EaseBonus - float64(4-rating.Score())*params.EasePenalty
	newEF := currentEF + adjustment

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}
	if newEF > params.MaxEaseFactor {
		newEF = params.MaxEaseFactor
	}

	return newEF
}

// calculateNewInterval determines the new interval in days for a card that
// has left the new state.
//
// A VeryHard rating is a lapse: the interval resets to
// params.RelearnIntervalDays regardless of history. Otherwise the interval
// grows multiplicatively: interval' = floor(interval * ef'), capped at
// params.MaxIntervalDays. An interval of 0 is legal and means the card is
// due again the same day.
func calculateNewInterval(currentInterval int, newEF float64, rating domain.Rating, params *Params) int {
	if rating == domain.RatingVeryHard {
		return params.RelearnIntervalDays
	}

	next := int(math.Floor(float64(currentInterval) * newEF))
	if next > params.MaxIntervalDays {
		next = params.MaxIntervalDays
	}
	return next
}

// nextState determines the lifecycle state after a review.
//
// new cards always graduate to learning. Any other state lapses to
// relearning on VeryHard and settles in review otherwise, so a relearning
// card returns to review on its next non-VeryHard answer.
func nextState(current domain.CardState, rating domain.Rating) domain.CardState {
	if current == domain.CardStateNew {
		return domain.CardStateLearning
	}
	if rating == domain.RatingVeryHard {
		return domain.CardStateRelearning
	}
	return domain.CardStateReview
}

// Advance computes the successor card for a review at the given time.
//
// It is a pure function: identical (card, rating, now) inputs always yield
// an identical successor, and the input card is never mutated. Callers are
// expected to validate the rating first; Advance assumes its inputs are
// well formed.
//
// Behavior by state:
//   - new: the interval comes from the per-rating first-review table and
//     the card moves to learning; the ease factor is untouched.
//   - learning/review/relearning: the ease factor is updated first, then
//     the interval is recomputed from it (resetting on a VeryHard lapse).
//
// In every case the repetition count increments, LastReviewedAt becomes
// now, and NextReviewAt becomes now plus the new interval in days.
func Advance(card *domain.Card, rating domain.Rating, now time.Time, params *Params) *domain.Card {
	// Copy to preserve the caller's card.
	next := *card

	if card.State == domain.CardStateNew {
		next.Interval = params.FirstReviewIntervals[rating]
	} else {
		next.EaseFactor = calculateNewEaseFactor(card.EaseFactor, rating, params)
		next.Interval = calculateNewInterval(card.Interval, next.EaseFactor, rating, params)
	}

	next.State = nextState(card.State, rating)
	next.Reps = card.Reps + 1
	next.LastReviewedAt = now
	next.NextReviewAt = now.AddDate(0, 0, next.Interval)
	next.UpdatedAt = now

	return &next
}
