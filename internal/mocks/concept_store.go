package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-api/internal/domain"
	"github.com/lumenlearn/mastery-api/internal/store"
)

// InMemoryConceptStore implements store.ConceptStore for testing.
type InMemoryConceptStore struct {
	mu       sync.Mutex
	concepts map[uuid.UUID]map[string]*domain.Concept
}

// NewInMemoryConceptStore creates an empty in-memory concept store.
func NewInMemoryConceptStore() *InMemoryConceptStore {
	return &InMemoryConceptStore{
		concepts: make(map[uuid.UUID]map[string]*domain.Concept),
	}
}

var _ store.ConceptStore = (*InMemoryConceptStore)(nil)

// Upsert implements store.ConceptStore.Upsert.
func (s *InMemoryConceptStore) Upsert(ctx context.Context, concept *domain.Concept) error {
	if err := concept.Validate(); err != nil {
		return store.ErrInvalidEntity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byName, ok := s.concepts[concept.UserID]
	if !ok {
		byName = make(map[string]*domain.Concept)
		s.concepts[concept.UserID] = byName
	}

	c := *concept
	byName[concept.Name] = &c
	return nil
}

// ListByUser implements store.ConceptStore.ListByUser.
func (s *InMemoryConceptStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Concept, error) {
	return s.list(userID, false), nil
}

// ListWeakByUser implements store.ConceptStore.ListWeakByUser.
func (s *InMemoryConceptStore) ListWeakByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Concept, error) {
	return s.list(userID, true), nil
}

func (s *InMemoryConceptStore) list(userID uuid.UUID, weakOnly bool) []*domain.Concept {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.Concept
	for _, concept := range s.concepts[userID] {
		if weakOnly && !concept.Weak {
			continue
		}
		c := *concept
		out = append(out, &c)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastSeenAt.Equal(out[j].LastSeenAt) {
			return out[i].LastSeenAt.After(out[j].LastSeenAt)
		}
		return out[i].Name < out[j].Name
	})

	return out
}
