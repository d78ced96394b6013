package srs

import (
	"github.com/recallhq/recall-api/internal/domain"
)

// Params defines all configurable parameters for the scheduling algorithm.
type Params struct {
	// Core limits
	MinEaseFactor float64
	MaxEaseFactor float64

	// Ease factor update: ef' = ef + (EaseBonus - (4 - score) * EasePenalty)
	EaseBonus   float64
	EasePenalty float64

	// First-review intervals (days) assigned when a new card is answered.
	FirstReviewIntervals map[domain.Rating]int

	// RelearnIntervalDays is the interval a card is reset to when a
	// VeryHard rating sends it into relearning.
	RelearnIntervalDays int

	// MaxIntervalDays caps interval growth.
	MaxIntervalDays int
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance. Zero values leave the corresponding default in place.
type ParamsConfig struct {
	MinEaseFactor float64
	MaxEaseFactor float64

	EaseBonus   float64
	EasePenalty float64

	FirstReviewEasyInterval     int
	FirstReviewMediumInterval   int
	FirstReviewHardInterval     int
	FirstReviewVeryHardInterval int

	RelearnIntervalDays int
	MaxIntervalDays     int
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor: 1.3,
		MaxEaseFactor: 5.0,

		EaseBonus:   0.1,
		EasePenalty: 0.08,

		FirstReviewIntervals: map[domain.Rating]int{
			domain.RatingEasy:     4,
			domain.RatingMedium:   2,
			domain.RatingHard:     1,
			domain.RatingVeryHard: 0, // Review again same day
		},

		RelearnIntervalDays: 1,

		// ~100 years; effectively unbounded but keeps the interval finite.
		MaxIntervalDays: 36500,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.MaxEaseFactor > 0 {
		params.MaxEaseFactor = config.MaxEaseFactor
	}

	if config.EaseBonus > 0 {
		params.EaseBonus = config.EaseBonus
	}
	if config.EasePenalty > 0 {
		params.EasePenalty = config.EasePenalty
	}

	if config.FirstReviewEasyInterval > 0 {
		params.FirstReviewIntervals[domain.RatingEasy] = config.FirstReviewEasyInterval
	}
	if config.FirstReviewMediumInterval > 0 {
		params.FirstReviewIntervals[domain.RatingMedium] = config.FirstReviewMediumInterval
	}
	if config.FirstReviewHardInterval > 0 {
		params.FirstReviewIntervals[domain.RatingHard] = config.FirstReviewHardInterval
	}
	if config.FirstReviewVeryHardInterval > 0 {
		params.FirstReviewIntervals[domain.RatingVeryHard] = config.FirstReviewVeryHardInterval
	}

	if config.RelearnIntervalDays > 0 {
		params.RelearnIntervalDays = config.RelearnIntervalDays
	}
	if config.MaxIntervalDays > 0 {
		params.MaxIntervalDays = config.MaxIntervalDays
	}

	return params
}
