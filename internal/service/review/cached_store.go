package review

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/recallhq/recall-api/internal/cache"
	"github.com/recallhq/recall-api/internal/domain"
	"github.com/recallhq/recall-api/internal/store"
)

// Cached lookup kinds. Each kind gets its own key namespace under the
// user prefix so a single pattern invalidation clears all of them.
const (
	kindCard       = "card"
	kindOverdue    = "overdue"
	kindDueToday   = "due"
	kindUnanswered = "unanswered"
)

// CachedCardStore decorates a store.CardStore with read-through and
// write-through behavior over the two-tier cache coordinator.
//
// Point lookups are cached per (user, question); queue queries per
// (user, scope, limit) with staleness bounded by the tiers' TTLs and by
// invalidation: every durable write is followed (never preceded) by a
// pattern invalidation of the user's key prefix, so no cache entry outlives
// the state it mirrors without an invalidation path. Cache failures never
// surface; they only reduce the hit rate.
type CachedCardStore struct {
	inner  store.CardStore
	cache  cache.Cache
	ttl    time.Duration // explicit TTL for the shared tier
	logger *slog.Logger
}

// NewCachedCardStore wraps inner with the cache coordinator. ttl is the
// authoritative shared-tier TTL for cached entries. If logger is nil, the
// default logger is used.
func NewCachedCardStore(inner store.CardStore, c cache.Cache, ttl time.Duration, log *slog.Logger) *CachedCardStore {
	if inner == nil {
		panic("inner card store cannot be nil")
	}
	if c == nil {
		panic("cache cannot be nil")
	}
	if ttl <= 0 {
		ttl = cache.DefaultRedisTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &CachedCardStore{
		inner:  inner,
		cache:  c,
		ttl:    ttl,
		logger: log.With(slog.String("component", "cached_card_store")),
	}
}

// Ensure CachedCardStore implements store.CardStore.
var _ store.CardStore = (*CachedCardStore)(nil)

// GetByUserAndQuestion implements store.CardStore.GetByUserAndQuestion
// with read-through caching.
func (s *CachedCardStore) GetByUserAndQuestion(
	ctx context.Context,
	userID, questionID uuid.UUID,
) (*domain.Card, error) {
	key := cache.Key(userID, kindCard, questionID.String())

	var cached domain.Card
	if ok := s.lookup(ctx, key, &cached); ok {
		return &cached, nil
	}

	card, err := s.inner.GetByUserAndQuestion(ctx, userID, questionID)
	if err != nil {
		return nil, err
	}

	s.populate(ctx, key, card)
	return card, nil
}

// GetOverdue implements store.CardStore.GetOverdue with read-through
// caching. The cache key ignores the now argument: a cached result is at
// most one TTL window old, which only ever under-reports overdue cards.
func (s *CachedCardStore) GetOverdue(
	ctx context.Context,
	userID, scopeID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.Card, error) {
	key := cache.Key(userID, kindOverdue, scopeID.String(), strconv.Itoa(limit))

	var cached []*domain.Card
	if ok := s.lookup(ctx, key, &cached); ok {
		return cached, nil
	}

	cards, err := s.inner.GetOverdue(ctx, userID, scopeID, now, limit)
	if err != nil {
		return nil, err
	}

	s.populate(ctx, key, cards)
	return cards, nil
}

// GetDueToday implements store.CardStore.GetDueToday with read-through
// caching keyed by calendar day.
func (s *CachedCardStore) GetDueToday(
	ctx context.Context,
	userID, scopeID uuid.UUID,
	asOf time.Time,
	limit int,
) ([]*domain.Card, error) {
	day := asOf.UTC().Format("2006-01-02")
	key := cache.Key(userID, kindDueToday, scopeID.String(), day, strconv.Itoa(limit))

	var cached []*domain.Card
	if ok := s.lookup(ctx, key, &cached); ok {
		return cached, nil
	}

	cards, err := s.inner.GetDueToday(ctx, userID, scopeID, asOf, limit)
	if err != nil {
		return nil, err
	}

	s.populate(ctx, key, cards)
	return cards, nil
}

// GetUnanswered implements store.CardStore.GetUnanswered with read-through
// caching.
func (s *CachedCardStore) GetUnanswered(
	ctx context.Context,
	userID, scopeID uuid.UUID,
	limit int,
) ([]store.QuestionRef, error) {
	key := cache.Key(userID, kindUnanswered, scopeID.String(), strconv.Itoa(limit))

	var cached []store.QuestionRef
	if ok := s.lookup(ctx, key, &cached); ok {
		return cached, nil
	}

	refs, err := s.inner.GetUnanswered(ctx, userID, scopeID, limit)
	if err != nil {
		return nil, err
	}

	s.populate(ctx, key, refs)
	return refs, nil
}

// Create implements store.CardStore.Create. The durable insert completes
// first; only then are the user's cached queue entries invalidated and the
// fresh card written through.
func (s *CachedCardStore) Create(ctx context.Context, card *domain.Card) error {
	if err := s.inner.Create(ctx, card); err != nil {
		return err
	}

	s.invalidateUser(ctx, card.UserID)
	s.populate(ctx, cache.Key(card.UserID, kindCard, card.QuestionID.String()), card)
	return nil
}

// Update implements store.CardStore.Update. Persist, then invalidate, then
// write the fresh state through. Never invalidate before the durable
// write has succeeded.
func (s *CachedCardStore) Update(ctx context.Context, card *domain.Card) error {
	if err := s.inner.Update(ctx, card); err != nil {
		return err
	}

	s.invalidateUser(ctx, card.UserID)
	s.populate(ctx, cache.Key(card.UserID, kindCard, card.QuestionID.String()), card)
	return nil
}

// lookup decodes the cached value for key into out, reporting whether the
// key was present and well formed.
func (s *CachedCardStore) lookup(ctx context.Context, key string, out any) bool {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		s.logger.Warn("dropping undecodable cache entry",
			slog.String("key", key),
			slog.String("error", err.Error()))
		_ = s.cache.Delete(ctx, key)
		return false
	}
	return true
}

// populate writes a value into both cache tiers, best-effort.
func (s *CachedCardStore) populate(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("failed to encode cache entry",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return
	}
	_ = s.cache.Set(ctx, key, data, s.ttl)
}

// invalidateUser drops every cached entry for the user from both tiers.
func (s *CachedCardStore) invalidateUser(ctx context.Context, userID uuid.UUID) {
	if _, err := s.cache.DeletePattern(ctx, cache.UserPrefix(userID)); err != nil {
		s.logger.Warn("cache invalidation incomplete",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
	}
}
