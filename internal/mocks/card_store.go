package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/recallhq/recall-api/internal/domain"
	"github.com/recallhq/recall-api/internal/store"
)

type cardKey struct {
	userID     uuid.UUID
	questionID uuid.UUID
}

type question struct {
	ref     store.QuestionRef
	scopeID uuid.UUID
}

// MemoryCardStore is an in-memory store.CardStore for tests. It honors the
// interface's contract exactly: insert-if-absent Create, ordered queries,
// sentinel errors. Every method can be failed on demand via ErrFor.
type MemoryCardStore struct {
	mu        sync.Mutex
	cards     map[cardKey]domain.Card
	questions []question

	// ErrFor forces the named method ("create", "update", "get",
	// "get_overdue", "get_due_today", "get_unanswered") to return the
	// given error.
	ErrFor map[string]error

	// CreateCalls counts Create invocations, including losing racers.
	CreateCalls int
}

// NewMemoryCardStore creates an empty in-memory card store.
func NewMemoryCardStore() *MemoryCardStore {
	return &MemoryCardStore{
		cards:  make(map[cardKey]domain.Card),
		ErrFor: make(map[string]error),
	}
}

// Ensure MemoryCardStore implements store.CardStore.
var _ store.CardStore = (*MemoryCardStore)(nil)

// AddQuestion registers a question in a scope, available to GetUnanswered.
func (s *MemoryCardStore) AddQuestion(scopeID uuid.UUID, ref store.QuestionRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = append(s.questions, question{ref: ref, scopeID: scopeID})
}

// SeedCard stores a card directly, bypassing Create semantics.
func (s *MemoryCardStore) SeedCard(card *domain.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards[cardKey{card.UserID, card.QuestionID}] = *card
}

// CardCount reports the number of stored cards.
func (s *MemoryCardStore) CardCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cards)
}

func (s *MemoryCardStore) GetByUserAndQuestion(
	_ context.Context,
	userID, questionID uuid.UUID,
) (*domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ErrFor["get"]; err != nil {
		return nil, err
	}

	card, ok := s.cards[cardKey{userID, questionID}]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	cp := card
	return &cp, nil
}

func (s *MemoryCardStore) GetOverdue(
	_ context.Context,
	userID, scopeID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ErrFor["get_overdue"]; err != nil {
		return nil, err
	}

	var out []*domain.Card
	for _, card := range s.cardsInScope(userID, scopeID) {
		if !card.NextReviewAt.IsZero() && card.NextReviewAt.Before(now) {
			cp := card
			out = append(out, &cp)
		}
	}
	sortByNextReview(out)
	return truncate(out, limit), nil
}

func (s *MemoryCardStore) GetDueToday(
	_ context.Context,
	userID, scopeID uuid.UUID,
	asOf time.Time,
	limit int,
) ([]*domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ErrFor["get_due_today"]; err != nil {
		return nil, err
	}

	asOf = asOf.UTC()
	startOfDay := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)

	var out []*domain.Card
	for _, card := range s.cardsInScope(userID, scopeID) {
		if !card.NextReviewAt.IsZero() &&
			!card.NextReviewAt.Before(startOfDay) &&
			!card.NextReviewAt.After(asOf) {
			cp := card
			out = append(out, &cp)
		}
	}
	sortByNextReview(out)
	return truncate(out, limit), nil
}

func (s *MemoryCardStore) GetUnanswered(
	_ context.Context,
	userID, scopeID uuid.UUID,
	limit int,
) ([]store.QuestionRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ErrFor["get_unanswered"]; err != nil {
		return nil, err
	}

	var refs []store.QuestionRef
	for _, q := range s.questions {
		if q.scopeID != scopeID {
			continue
		}
		if _, answered := s.cards[cardKey{userID, q.ref.ID}]; answered {
			continue
		}
		refs = append(refs, q.ref)
	}

	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Ordinal != refs[j].Ordinal {
			return refs[i].Ordinal < refs[j].Ordinal
		}
		return refs[i].ID.String() < refs[j].ID.String()
	})

	if limit > 0 && len(refs) > limit {
		refs = refs[:limit]
	}
	return refs, nil
}

func (s *MemoryCardStore) Create(_ context.Context, card *domain.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.CreateCalls++

	if err := s.ErrFor["create"]; err != nil {
		return err
	}

	key := cardKey{card.UserID, card.QuestionID}
	if _, exists := s.cards[key]; exists {
		return store.ErrCardExists
	}
	s.cards[key] = *card
	return nil
}

func (s *MemoryCardStore) Update(_ context.Context, card *domain.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ErrFor["update"]; err != nil {
		return err
	}

	key := cardKey{card.UserID, card.QuestionID}
	if _, exists := s.cards[key]; !exists {
		return store.ErrCardNotFound
	}
	s.cards[key] = *card
	return nil
}

// cardsInScope returns the user's cards whose question belongs to scopeID.
// Questions the store has never been told about are treated as in-scope,
// which keeps simple tests terse.
func (s *MemoryCardStore) cardsInScope(userID, scopeID uuid.UUID) []domain.Card {
	known := make(map[uuid.UUID]uuid.UUID, len(s.questions))
	for _, q := range s.questions {
		known[q.ref.ID] = q.scopeID
	}

	var out []domain.Card
	for key, card := range s.cards {
		if key.userID != userID {
			continue
		}
		if scope, ok := known[key.questionID]; ok && scope != scopeID {
			continue
		}
		out = append(out, card)
	}
	return out
}

func sortByNextReview(cards []*domain.Card) {
	sort.Slice(cards, func(i, j int) bool {
		return cards[i].NextReviewAt.Before(cards[j].NextReviewAt)
	})
}

func truncate(cards []*domain.Card, limit int) []*domain.Card {
	if limit > 0 && len(cards) > limit {
		return cards[:limit]
	}
	return cards
}
