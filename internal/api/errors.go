package api

import (
	"errors"
	"net/http"

	"github.com/recallhq/recall-api/internal/service/review"
	"github.com/recallhq/recall-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, review.ErrNoCardsDue):
		return http.StatusNoContent

	case errors.Is(err, review.ErrCardNotFound),
		errors.Is(err, store.ErrCardNotFound):
		return http.StatusNotFound

	case errors.Is(err, review.ErrInvalidRating):
		return http.StatusBadRequest

	// Store unavailability is retryable: tell the client to come back.
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type.
func GetSafeErrorMessage(err error) string {
	switch {
	case errors.Is(err, review.ErrNoCardsDue):
		return "No cards due for review"
	case errors.Is(err, review.ErrCardNotFound), errors.Is(err, store.ErrCardNotFound):
		return "Card not found"
	case errors.Is(err, review.ErrInvalidRating):
		return "Invalid rating"
	case errors.Is(err, store.ErrUnavailable):
		return "Service temporarily unavailable, please retry"
	default:
		return "An unexpected error occurred"
	}
}
