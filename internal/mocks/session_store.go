package mocks

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-api/internal/domain"
	"github.com/lumenlearn/mastery-api/internal/store"
)

// InMemorySessionStore implements store.SessionStore for testing.
type InMemorySessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.MasterySession
}

// NewInMemorySessionStore creates an empty in-memory session store.
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		sessions: make(map[uuid.UUID]*domain.MasterySession),
	}
}

var _ store.SessionStore = (*InMemorySessionStore)(nil)

// Create implements store.SessionStore.Create.
func (s *InMemorySessionStore) Create(ctx context.Context, session *domain.MasterySession) error {
	if err := session.Validate(); err != nil {
		return store.ErrInvalidEntity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; exists {
		return store.ErrDuplicate
	}
	s.sessions[session.ID] = copySession(session)
	return nil
}

// GetByID implements store.SessionStore.GetByID.
func (s *InMemorySessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.MasterySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	return copySession(session), nil
}

// UpdateStage implements store.SessionStore.UpdateStage with the same
// compare-and-swap semantics as the real store.
func (s *InMemorySessionStore) UpdateStage(
	ctx context.Context,
	session *domain.MasterySession,
	fromStage domain.Stage,
) error {
	if err := session.Validate(); err != nil {
		return store.ErrInvalidEntity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.sessions[session.ID]
	if !ok {
		return store.ErrSessionNotFound
	}
	if current.Stage != fromStage {
		return store.ErrStaleStage
	}

	updated := copySession(session)
	updated.UpdatedAt = time.Now().UTC()
	s.sessions[session.ID] = updated
	return nil
}

// MarkCompleted implements store.SessionStore.MarkCompleted.
func (s *InMemorySessionStore) MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return false, store.ErrSessionNotFound
	}
	if session.XPAwarded || session.Stage == domain.StageAbandoned {
		return false, nil
	}

	session.Stage = domain.StageSuccess
	session.Payload = nil
	session.XPAwarded = true
	session.UpdatedAt = time.Now().UTC()
	return true, nil
}

// Abandon implements store.SessionStore.Abandon.
func (s *InMemorySessionStore) Abandon(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return store.ErrSessionNotFound
	}
	if session.Stage.IsTerminal() {
		return store.ErrStaleStage
	}

	session.Stage = domain.StageAbandoned
	session.Payload = nil
	session.UpdatedAt = time.Now().UTC()
	return nil
}

// copySession deep-copies a session through JSON so callers cannot mutate
// stored state through shared pointers.
func copySession(session *domain.MasterySession) *domain.MasterySession {
	data, err := json.Marshal(session)
	if err != nil {
		panic("failed to copy session: " + err.Error())
	}
	var out domain.MasterySession
	if err := json.Unmarshal(data, &out); err != nil {
		panic("failed to copy session: " + err.Error())
	}
	return &out
}
