package review_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/recallhq/recall-api/internal/cache"
	"github.com/recallhq/recall-api/internal/domain"
	"github.com/recallhq/recall-api/internal/mocks"
	"github.com/recallhq/recall-api/internal/service/review"
	"github.com/recallhq/recall-api/internal/store"
)

// recordingCache wraps a real cache tier and records the order of
// mutating operations, so tests can assert invalidation ordering.
type recordingCache struct {
	cache.Cache

	mu  sync.Mutex
	ops []string
}

func newRecordingCache() *recordingCache {
	return &recordingCache{Cache: cache.NewMemoryCache(100, time.Minute)}
}

func (c *recordingCache) record(op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops = append(c.ops, op)
}

func (c *recordingCache) operations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.ops...)
}

func (c *recordingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.record("set")
	return c.Cache.Set(ctx, key, value, ttl)
}

func (c *recordingCache) DeletePattern(ctx context.Context, pattern string) (int, error) {
	c.record("delete_pattern")
	return c.Cache.DeletePattern(ctx, pattern)
}

func newCachedStore(t *testing.T) (*mocks.MemoryCardStore, *recordingCache, *review.CachedCardStore) {
	t.Helper()
	inner := mocks.NewMemoryCardStore()
	rc := newRecordingCache()
	t.Cleanup(func() { _ = rc.Close() })
	return inner, rc, review.NewCachedCardStore(inner, rc, time.Hour, nil)
}

func TestCachedStore_ReadThroughPopulates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	inner, rc, cs := newCachedStore(t)
	userID := uuid.New()
	questionID := uuid.New()
	seedReviewCard(t, inner, userID, questionID, time.Now().UTC().Add(-time.Hour))

	first, err := cs.GetByUserAndQuestion(ctx, userID, questionID)
	if err != nil {
		t.Fatalf("GetByUserAndQuestion failed: %v", err)
	}

	// A subsequent read is served from cache even if the inner store fails.
	inner.ErrFor["get"] = store.ErrUnavailable
	second, err := cs.GetByUserAndQuestion(ctx, userID, questionID)
	if err != nil {
		t.Fatalf("cached GetByUserAndQuestion failed: %v", err)
	}
	if second.QuestionID != first.QuestionID || second.Reps != first.Reps {
		t.Fatalf("cached card %+v differs from first read %+v", second, first)
	}

	key := cache.Key(userID, "card", questionID.String())
	if _, err := rc.Get(ctx, key); err != nil {
		t.Fatalf("expected cache populated under %q, got: %v", key, err)
	}
}

func TestCachedStore_MissFallsThroughToStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	inner, _, cs := newCachedStore(t)
	userID := uuid.New()
	questionID := uuid.New()
	seedReviewCard(t, inner, userID, questionID, time.Now().UTC().Add(-time.Hour))

	card, err := cs.GetByUserAndQuestion(ctx, userID, questionID)
	if err != nil {
		t.Fatalf("GetByUserAndQuestion failed: %v", err)
	}
	if card.QuestionID != questionID {
		t.Fatalf("expected question %v, got %v", questionID, card.QuestionID)
	}
}

func TestCachedStore_UpdateInvalidatesThenWritesThrough(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	inner, rc, cs := newCachedStore(t)
	userID := uuid.New()
	questionID := uuid.New()
	now := time.Now().UTC()
	card := seedReviewCard(t, inner, userID, questionID, now.Add(-time.Hour))

	// Warm the cache with the stale value.
	if _, err := cs.GetByUserAndQuestion(ctx, userID, questionID); err != nil {
		t.Fatalf("warm-up read failed: %v", err)
	}

	updated := *card
	updated.Reps = card.Reps + 1
	updated.NextReviewAt = now.Add(72 * time.Hour)
	updated.LastReviewedAt = now
	if err := cs.Update(ctx, &updated); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	// Invalidation must precede the fresh write-through, and both must
	// come after the warm-up set.
	ops := rc.operations()
	if len(ops) < 3 || ops[len(ops)-2] != "delete_pattern" || ops[len(ops)-1] != "set" {
		t.Fatalf("expected ...delete_pattern,set ordering, got %v", ops)
	}

	// The cached value now reflects the update.
	fresh, err := cs.GetByUserAndQuestion(ctx, userID, questionID)
	if err != nil {
		t.Fatalf("post-update read failed: %v", err)
	}
	if fresh.Reps != updated.Reps {
		t.Fatalf("expected cached repetitions %d, got %d", updated.Reps, fresh.Reps)
	}
}

func TestCachedStore_FailedUpdateLeavesCacheIntact(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	inner, rc, cs := newCachedStore(t)
	userID := uuid.New()
	questionID := uuid.New()
	card := seedReviewCard(t, inner, userID, questionID, time.Now().UTC().Add(-time.Hour))

	if _, err := cs.GetByUserAndQuestion(ctx, userID, questionID); err != nil {
		t.Fatalf("warm-up read failed: %v", err)
	}
	opsBefore := len(rc.operations())

	inner.ErrFor["update"] = store.ErrUnavailable
	updated := *card
	updated.Reps++
	if err := cs.Update(ctx, &updated); err == nil {
		t.Fatal("expected Update to fail")
	}

	// No invalidation and no write-through happened for the failed update.
	if got := len(rc.operations()); got != opsBefore {
		t.Fatalf("failed update touched the cache: ops went from %d to %d", opsBefore, got)
	}
}

func TestCachedStore_CreateInvalidatesQueueQueries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	inner, _, cs := newCachedStore(t)
	userID := uuid.New()
	scopeID := uuid.New()
	questionID := uuid.New()
	inner.AddQuestion(scopeID, store.QuestionRef{ID: questionID, Ordinal: 1})

	// Cache the unanswered queue.
	refs, err := cs.GetUnanswered(ctx, userID, scopeID, 1)
	if err != nil {
		t.Fatalf("GetUnanswered failed: %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("expected 1 unanswered question, got %d", len(refs))
	}

	card, err := domain.NewCard(userID, questionID)
	if err != nil {
		t.Fatalf("NewCard failed: %v", err)
	}
	if err := cs.Create(ctx, card); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// The cached queue was invalidated; the fresh query sees the answer.
	refs, err = cs.GetUnanswered(ctx, userID, scopeID, 1)
	if err != nil {
		t.Fatalf("GetUnanswered after create failed: %v", err)
	}
	if len(refs) != 0 {
		t.Fatalf("expected no unanswered questions after create, got %d", len(refs))
	}
}

func TestCachedStore_CreateConflictBypassesCacheMutation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	inner, rc, cs := newCachedStore(t)
	userID := uuid.New()
	questionID := uuid.New()
	seedReviewCard(t, inner, userID, questionID, time.Now().UTC().Add(-time.Hour))

	card, err := domain.NewCard(userID, questionID)
	if err != nil {
		t.Fatalf("NewCard failed: %v", err)
	}

	err = cs.Create(ctx, card)
	if err == nil {
		t.Fatal("expected ErrCardExists")
	}
	if len(rc.operations()) != 0 {
		t.Fatalf("conflicting create must not touch the cache, got ops %v", rc.operations())
	}
}

func TestCachedStore_InvalidationIsScopedToUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	inner, rc, cs := newCachedStore(t)
	userA := uuid.New()
	userB := uuid.New()
	questionID := uuid.New()
	now := time.Now().UTC()
	cardA := seedReviewCard(t, inner, userA, questionID, now.Add(-time.Hour))
	seedReviewCard(t, inner, userB, questionID, now.Add(-time.Hour))

	// Warm both users' point lookups.
	if _, err := cs.GetByUserAndQuestion(ctx, userA, questionID); err != nil {
		t.Fatalf("warm-up read for user A failed: %v", err)
	}
	if _, err := cs.GetByUserAndQuestion(ctx, userB, questionID); err != nil {
		t.Fatalf("warm-up read for user B failed: %v", err)
	}

	updated := *cardA
	updated.Reps++
	if err := cs.Update(ctx, &updated); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	// User B's entry survives user A's invalidation.
	keyB := cache.Key(userB, "card", questionID.String())
	if _, err := rc.Get(ctx, keyB); err != nil {
		t.Fatalf("expected user B's cache entry untouched, got: %v", err)
	}
}

func TestCachedStore_CorruptEntryTreatedAsMiss(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	inner, rc, cs := newCachedStore(t)
	userID := uuid.New()
	questionID := uuid.New()
	seedReviewCard(t, inner, userID, questionID, time.Now().UTC().Add(-time.Hour))

	key := cache.Key(userID, "card", questionID.String())
	if err := rc.Cache.Set(ctx, key, []byte("{not json"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	card, err := cs.GetByUserAndQuestion(ctx, userID, questionID)
	if err != nil {
		t.Fatalf("GetByUserAndQuestion failed: %v", err)
	}
	if card.QuestionID != questionID {
		t.Fatalf("expected question %v, got %v", questionID, card.QuestionID)
	}
}
