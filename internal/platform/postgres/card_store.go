package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/recallhq/recall-api/internal/domain"
	"github.com/recallhq/recall-api/internal/platform/logger"
	"github.com/recallhq/recall-api/internal/store"
)

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the
// CardStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresCardStore(db store.DBTX, log *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &PostgresCardStore{
		db:     db,
		logger: log.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

const cardColumns = `user_id, question_id, state, ease_factor, interval_days,
	repetitions, last_reviewed_at, next_review_at, created_at, updated_at`

// GetByUserAndQuestion implements store.CardStore.GetByUserAndQuestion.
// Returns store.ErrCardNotFound if no card exists for the pair.
func (s *PostgresCardStore) GetByUserAndQuestion(
	ctx context.Context,
	userID, questionID uuid.UUID,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE user_id = $1 AND question_id = $2
	`

	card, err := scanCard(s.db.QueryRowContext(ctx, query, userID, questionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found",
				slog.String("user_id", userID.String()),
				slog.String("question_id", questionID.String()))
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to get card",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("question_id", questionID.String()))
		return nil, mapStoreError("get card", err)
	}

	return card, nil
}

// GetOverdue implements store.CardStore.GetOverdue.
// Overdue means next_review_at strictly before now; results are ordered
// oldest-overdue first.
func (s *PostgresCardStore) GetOverdue(
	ctx context.Context,
	userID, scopeID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.Card, error) {
	query := `
		SELECT c.` + cardListColumns() + `
		FROM cards c
		JOIN questions q ON q.id = c.question_id
		WHERE c.user_id = $1
		  AND q.scope_id = $2
		  AND c.next_review_at IS NOT NULL
		  AND c.next_review_at < $3
		ORDER BY c.next_review_at ASC
		LIMIT $4
	`
	return s.queryCards(ctx, "get_overdue", query, userID, scopeID, now, limit)
}

// GetDueToday implements store.CardStore.GetDueToday.
// The window is [start-of-day(asOf), asOf] in UTC. The predicate overlaps
// GetOverdue; callers query overdue first and rely on priority, not on
// disjoint windows.
func (s *PostgresCardStore) GetDueToday(
	ctx context.Context,
	userID, scopeID uuid.UUID,
	asOf time.Time,
	limit int,
) ([]*domain.Card, error) {
	asOf = asOf.UTC()
	startOfDay := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)

	query := `
		SELECT c.` + cardListColumns() + `
		FROM cards c
		JOIN questions q ON q.id = c.question_id
		WHERE c.user_id = $1
		  AND q.scope_id = $2
		  AND c.next_review_at >= $3
		  AND c.next_review_at <= $4
		ORDER BY c.next_review_at ASC
		LIMIT $5
	`
	return s.queryCards(ctx, "get_due_today", query, userID, scopeID, startOfDay, asOf, limit)
}

// GetUnanswered implements store.CardStore.GetUnanswered.
// Questions are returned in ascending (ordinal, id) order so concurrent
// selectors converge on the same never-seen question.
func (s *PostgresCardStore) GetUnanswered(
	ctx context.Context,
	userID, scopeID uuid.UUID,
	limit int,
) ([]store.QuestionRef, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT q.id, q.ordinal
		FROM questions q
		LEFT JOIN cards c ON c.question_id = q.id AND c.user_id = $1
		WHERE q.scope_id = $2
		  AND c.question_id IS NULL
		ORDER BY q.ordinal ASC, q.id ASC
		LIMIT $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, scopeID, limit)
	if err != nil {
		log.Error("failed to query unanswered questions",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("scope_id", scopeID.String()))
		return nil, mapStoreError("get unanswered", err)
	}
	defer func() { _ = rows.Close() }()

	var refs []store.QuestionRef
	for rows.Next() {
		var ref store.QuestionRef
		if err := rows.Scan(&ref.ID, &ref.Ordinal); err != nil {
			return nil, mapStoreError("scan unanswered", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, mapStoreError("iterate unanswered", err)
	}

	return refs, nil
}

// Create implements store.CardStore.Create with atomic insert-if-absent
// semantics. Returns store.ErrCardExists when a concurrent caller created
// the card first; the caller recovers by re-fetching the existing card.
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", card.UserID.String()),
			slog.String("question_id", card.QuestionID.String()))
		return err
	}

	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		card.UserID,
		card.QuestionID,
		card.State,
		card.EaseFactor,
		card.Interval,
		card.Reps,
		nullableTime(card.LastReviewedAt),
		nullableTime(card.NextReviewAt),
		card.CreatedAt,
		card.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			log.Debug("card already exists, first-write race detected",
				slog.String("user_id", card.UserID.String()),
				slog.String("question_id", card.QuestionID.String()))
			return store.ErrCardExists
		}
		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("user_id", card.UserID.String()),
			slog.String("question_id", card.QuestionID.String()))
		return mapStoreError("create card", err)
	}

	log.Debug("card created",
		slog.String("user_id", card.UserID.String()),
		slog.String("question_id", card.QuestionID.String()))
	return nil
}

// Update implements store.CardStore.Update.
// Returns store.ErrCardNotFound if the card does not exist.
func (s *PostgresCardStore) Update(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during update",
			slog.String("error", err.Error()),
			slog.String("user_id", card.UserID.String()),
			slog.String("question_id", card.QuestionID.String()))
		return err
	}

	query := `
		UPDATE cards
		SET state = $3,
		    ease_factor = $4,
		    interval_days = $5,
		    repetitions = $6,
		    last_reviewed_at = $7,
		    next_review_at = $8,
		    updated_at = $9
		WHERE user_id = $1 AND question_id = $2
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		card.UserID,
		card.QuestionID,
		card.State,
		card.EaseFactor,
		card.Interval,
		card.Reps,
		nullableTime(card.LastReviewedAt),
		nullableTime(card.NextReviewAt),
		card.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update card",
			slog.String("error", err.Error()),
			slog.String("user_id", card.UserID.String()),
			slog.String("question_id", card.QuestionID.String()))
		return mapStoreError("update card", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return mapStoreError("update card", err)
	}
	if affected == 0 {
		return store.ErrCardNotFound
	}

	return nil
}

func (s *PostgresCardStore) queryCards(
	ctx context.Context,
	op, query string,
	args ...any,
) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("card query failed",
			slog.String("op", op),
			slog.String("error", err.Error()))
		return nil, mapStoreError(op, err)
	}
	defer func() { _ = rows.Close() }()

	var cards []*domain.Card
	for rows.Next() {
		card, err := scanCardRows(rows)
		if err != nil {
			return nil, mapStoreError(op, err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, mapStoreError(op, err)
	}

	return cards, nil
}

func cardListColumns() string {
	return `user_id, c.question_id, c.state, c.ease_factor, c.interval_days,
	c.repetitions, c.last_reviewed_at, c.next_review_at, c.created_at, c.updated_at`
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var card domain.Card
	var state string
	var lastReviewed, nextReview sql.NullTime

	err := row.Scan(
		&card.UserID,
		&card.QuestionID,
		&state,
		&card.EaseFactor,
		&card.Interval,
		&card.Reps,
		&lastReviewed,
		&nextReview,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	card.State = domain.CardState(state)
	if lastReviewed.Valid {
		card.LastReviewedAt = lastReviewed.Time
	}
	if nextReview.Valid {
		card.NextReviewAt = nextReview.Time
	}

	return &card, nil
}

func scanCardRows(rows *sql.Rows) (*domain.Card, error) {
	return scanCard(rows)
}

// nullableTime converts the domain's zero-time convention into SQL NULL.
func nullableTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
