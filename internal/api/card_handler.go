package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/recallhq/recall-api/internal/api/shared"
	"github.com/recallhq/recall-api/internal/domain"
	"github.com/recallhq/recall-api/internal/platform/logger"
	"github.com/recallhq/recall-api/internal/service/review"
)

// CardResponse represents the response data for a card.
type CardResponse struct {
	UserID         string     `json:"user_id"`
	QuestionID     string     `json:"question_id"`
	State          string     `json:"state"`
	EaseFactor     float64    `json:"ease_factor"`
	IntervalDays   int        `json:"interval_days"`
	Repetitions    int        `json:"repetitions"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	NextReviewAt   *time.Time `json:"next_review_at,omitempty"`
}

// NextCardResponse pairs the selected card with its question reference.
type NextCardResponse struct {
	Card     CardResponse `json:"card"`
	Question struct {
		ID      string `json:"id"`
		Ordinal int    `json:"ordinal"`
	} `json:"question"`
}

// SubmitRatingRequest is the body of a review submission.
type SubmitRatingRequest struct {
	Rating string `json:"rating"`
}

// CardHandler handles card-related HTTP requests.
type CardHandler struct {
	reviewService review.ReviewService
	logger        *slog.Logger
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(reviewService review.ReviewService, log *slog.Logger) *CardHandler {
	if reviewService == nil {
		panic("reviewService cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &CardHandler{
		reviewService: reviewService,
		logger:        log.With(slog.String("component", "card_handler")),
	}
}

// GetNextCard handles GET /cards/next?user_id=...&scope_id=... requests.
// Responds 204 when the user has nothing to review.
func (h *CardHandler) GetNextCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := parseUUIDParam(w, r, r.URL.Query().Get("user_id"), "user_id")
	if !ok {
		return
	}
	scopeID, ok := parseUUIDParam(w, r, r.URL.Query().Get("scope_id"), "scope_id")
	if !ok {
		return
	}

	item, err := h.reviewService.GetNextCard(r.Context(), userID, scopeID)
	if errors.Is(err, review.ErrNoCardsDue) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	resp := NextCardResponse{Card: cardToResponse(item.Card)}
	resp.Question.ID = item.Question.ID.String()
	resp.Question.Ordinal = item.Question.Ordinal

	log.Debug("returning next card",
		slog.String("user_id", userID.String()),
		slog.String("question_id", item.Card.QuestionID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// SubmitRating handles POST /cards/{questionID}/review requests.
// Not idempotent: each successful call advances the card's schedule.
func (h *CardHandler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	questionID, ok := parseUUIDParam(w, r, chi.URLParam(r, "questionID"), "questionID")
	if !ok {
		return
	}
	userID, ok := parseUUIDParam(w, r, r.URL.Query().Get("user_id"), "user_id")
	if !ok {
		return
	}

	var req SubmitRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	card, err := h.reviewService.SubmitRating(
		r.Context(),
		userID,
		questionID,
		domain.Rating(req.Rating),
		time.Now().UTC(),
	)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("rating submitted",
		slog.String("user_id", userID.String()),
		slog.String("question_id", questionID.String()),
		slog.String("rating", req.Rating))
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

func cardToResponse(card *domain.Card) CardResponse {
	resp := CardResponse{
		UserID:       card.UserID.String(),
		QuestionID:   card.QuestionID.String(),
		State:        string(card.State),
		EaseFactor:   card.EaseFactor,
		IntervalDays: card.Interval,
		Repetitions:  card.Reps,
	}
	if !card.LastReviewedAt.IsZero() {
		t := card.LastReviewedAt
		resp.LastReviewedAt = &t
	}
	if !card.NextReviewAt.IsZero() {
		t := card.NextReviewAt
		resp.NextReviewAt = &t
	}
	return resp
}

func parseUUIDParam(w http.ResponseWriter, r *http.Request, raw, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid or missing "+name)
		return uuid.Nil, false
	}
	return id, true
}
