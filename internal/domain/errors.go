package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidRating is returned when a rating is outside the defined set.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrInvalidCardState is returned when a card state is not one of the
	// defined lifecycle states.
	ErrInvalidCardState = errors.New("invalid card state")
)
