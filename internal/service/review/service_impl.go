package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/recallhq/recall-api/internal/domain"
	"github.com/recallhq/recall-api/internal/domain/srs"
	"github.com/recallhq/recall-api/internal/platform/logger"
	"github.com/recallhq/recall-api/internal/store"
)

// Verify interface compliance at compile time
var _ ReviewService = (*reviewServiceImpl)(nil)

// reviewServiceImpl implements the ReviewService interface.
type reviewServiceImpl struct {
	cards      store.CardStore
	srsService srs.Service
	logger     *slog.Logger
}

// NewReviewService creates a new ReviewService implementation.
// cards is typically a CachedCardStore so selector queries go through the
// cache coordinator; any store.CardStore works.
func NewReviewService(cards store.CardStore, srsService srs.Service, log *slog.Logger) ReviewService {
	if cards == nil {
		panic("cards store cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &reviewServiceImpl{
		cards:      cards,
		srsService: srsService,
		logger:     log.With(slog.String("component", "review_service")),
	}
}

// GetNextCard implements ReviewService.GetNextCard.
//
// Priority order: overdue (oldest first) → never-seen question (create a
// fresh card, race-safe) → due today (earliest first) → ErrNoCardsDue.
func (s *reviewServiceImpl) GetNextCard(
	ctx context.Context,
	userID, scopeID uuid.UUID,
) (*ReviewItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := time.Now().UTC()

	log.Debug("selecting next card",
		slog.String("user_id", userID.String()),
		slog.String("scope_id", scopeID.String()))

	// 1. Oldest overdue card.
	overdue, err := s.cards.GetOverdue(ctx, userID, scopeID, now, 1)
	if err != nil {
		return nil, NewGetNextCardError("failed to query overdue cards", err)
	}
	if len(overdue) > 0 {
		card := overdue[0]
		log.Debug("returning overdue card",
			slog.String("question_id", card.QuestionID.String()))
		return &ReviewItem{Card: card, Question: store.QuestionRef{ID: card.QuestionID}}, nil
	}

	// 2. First never-seen question in stable order.
	item, err := s.nextNewCard(ctx, userID, scopeID)
	if err != nil {
		return nil, err
	}
	if item != nil {
		return item, nil
	}

	// 3. Earliest card due today.
	due, err := s.cards.GetDueToday(ctx, userID, scopeID, now, 1)
	if err != nil {
		return nil, NewGetNextCardError("failed to query due cards", err)
	}
	if len(due) > 0 {
		card := due[0]
		log.Debug("returning due-today card",
			slog.String("question_id", card.QuestionID.String()))
		return &ReviewItem{Card: card, Question: store.QuestionRef{ID: card.QuestionID}}, nil
	}

	// 4. Nothing to review, a valid terminal result.
	log.Debug("no cards due",
		slog.String("user_id", userID.String()),
		slog.String("scope_id", scopeID.String()))
	return nil, ErrNoCardsDue
}

// nextNewCard creates and returns a card for the first question in the
// scope the user has never answered, or (nil, nil) when none remain.
//
// The first write must be idempotent under races: Create is atomic
// insert-if-absent, and on a conflict the locally-built card is discarded
// in favor of the one a concurrent call persisted.
func (s *reviewServiceImpl) nextNewCard(
	ctx context.Context,
	userID, scopeID uuid.UUID,
) (*ReviewItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	refs, err := s.cards.GetUnanswered(ctx, userID, scopeID, 1)
	if err != nil {
		return nil, NewGetNextCardError("failed to query unanswered questions", err)
	}
	if len(refs) == 0 {
		return nil, nil
	}
	ref := refs[0]

	card, err := domain.NewCard(userID, ref.ID)
	if err != nil {
		return nil, NewGetNextCardError("failed to build new card", err)
	}

	err = s.cards.Create(ctx, card)
	if errors.Is(err, store.ErrCardExists) {
		// Lost the first-write race; the winner's card is authoritative.
		log.Debug("new card already created concurrently, re-fetching",
			slog.String("user_id", userID.String()),
			slog.String("question_id", ref.ID.String()))
		card, err = s.cards.GetByUserAndQuestion(ctx, userID, ref.ID)
		if err != nil {
			return nil, NewGetNextCardError("failed to re-fetch card after create conflict", err)
		}
		return &ReviewItem{Card: card, Question: ref}, nil
	}
	if err != nil {
		return nil, NewGetNextCardError("failed to persist new card", err)
	}

	log.Debug("created card for never-seen question",
		slog.String("user_id", userID.String()),
		slog.String("question_id", ref.ID.String()))
	return &ReviewItem{Card: card, Question: ref}, nil
}

// SubmitRating implements ReviewService.SubmitRating.
//
// Ordering guarantee: the durable write completes before any cache keys are
// invalidated (the cached store enforces persist-then-invalidate), so a
// stale value can never be re-populated after invalidation within the same
// logical operation. On a store failure the scheduling update is not
// applied anywhere.
func (s *reviewServiceImpl) SubmitRating(
	ctx context.Context,
	userID, questionID uuid.UUID,
	rating domain.Rating,
	now time.Time,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("processing rating",
		slog.String("user_id", userID.String()),
		slog.String("question_id", questionID.String()),
		slog.String("rating", string(rating)))

	// Reject before mutating any state.
	if !rating.Valid() {
		log.Warn("invalid rating submitted",
			slog.String("user_id", userID.String()),
			slog.String("rating", string(rating)))
		return nil, fmt.Errorf("%w: %q", ErrInvalidRating, rating)
	}

	card, created, err := s.getOrCreateCard(ctx, userID, questionID)
	if err != nil {
		return nil, err
	}

	next, err := s.srsService.CalculateNextReview(card, rating, now)
	if err != nil {
		log.Error("failed to calculate next review",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("question_id", questionID.String()))
		return nil, NewSubmitRatingError("failed to calculate next review", err)
	}

	if err := s.cards.Update(ctx, next); err != nil {
		log.Error("failed to persist scheduling update",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("question_id", questionID.String()))
		return nil, NewSubmitRatingError("failed to persist scheduling update", err)
	}

	log.Info("rating applied",
		slog.String("user_id", userID.String()),
		slog.String("question_id", questionID.String()),
		slog.String("rating", string(rating)),
		slog.String("state", string(next.State)),
		slog.Int("interval_days", next.Interval),
		slog.Bool("card_created", created))

	return next, nil
}

// getOrCreateCard fetches the user's card for the question, creating it
// with insert-if-absent semantics when the question has never been
// answered. The bool result reports whether a card was created.
func (s *reviewServiceImpl) getOrCreateCard(
	ctx context.Context,
	userID, questionID uuid.UUID,
) (*domain.Card, bool, error) {
	card, err := s.cards.GetByUserAndQuestion(ctx, userID, questionID)
	if err == nil {
		return card, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, NewSubmitRatingError("failed to get card", err)
	}

	card, err = domain.NewCard(userID, questionID)
	if err != nil {
		return nil, false, NewSubmitRatingError("failed to build new card", err)
	}

	err = s.cards.Create(ctx, card)
	if errors.Is(err, store.ErrCardExists) {
		// Created concurrently; use the persisted card.
		card, err = s.cards.GetByUserAndQuestion(ctx, userID, questionID)
		if err != nil {
			return nil, false, NewSubmitRatingError("failed to re-fetch card after create conflict", err)
		}
		return card, false, nil
	}
	if err != nil {
		return nil, false, NewSubmitRatingError("failed to persist new card", err)
	}

	return card, true, nil
}
