package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-api/internal/domain"
	"github.com/lumenlearn/mastery-api/internal/store"
)

type progressKey struct {
	userID    uuid.UUID
	deckID    uuid.UUID
	cardIndex int
}

// InMemoryProgressStore implements store.FlashcardProgressStore for testing.
type InMemoryProgressStore struct {
	mu       sync.Mutex
	progress map[progressKey]*domain.FlashcardProgress
}

// NewInMemoryProgressStore creates an empty in-memory progress store.
func NewInMemoryProgressStore() *InMemoryProgressStore {
	return &InMemoryProgressStore{
		progress: make(map[progressKey]*domain.FlashcardProgress),
	}
}

var _ store.FlashcardProgressStore = (*InMemoryProgressStore)(nil)

// Get implements store.FlashcardProgressStore.Get.
func (s *InMemoryProgressStore) Get(
	ctx context.Context,
	userID, deckID uuid.UUID,
	cardIndex int,
) (*domain.FlashcardProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.progress[progressKey{userID, deckID, cardIndex}]
	if !ok {
		return nil, store.ErrProgressNotFound
	}
	out := *p
	return &out, nil
}

// Upsert implements store.FlashcardProgressStore.Upsert.
func (s *InMemoryProgressStore) Upsert(ctx context.Context, progress *domain.FlashcardProgress) error {
	if err := progress.Validate(); err != nil {
		return store.ErrInvalidEntity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := *progress
	s.progress[progressKey{progress.UserID, progress.DeckID, progress.CardIndex}] = &p
	return nil
}

// ListDeck implements store.FlashcardProgressStore.ListDeck.
func (s *InMemoryProgressStore) ListDeck(
	ctx context.Context,
	userID, deckID uuid.UUID,
) ([]*domain.FlashcardProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.FlashcardProgress
	for key, p := range s.progress {
		if key.userID != userID || key.deckID != deckID {
			continue
		}
		copied := *p
		out = append(out, &copied)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CardIndex < out[j].CardIndex
	})

	return out, nil
}
