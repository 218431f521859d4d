package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-api/internal/domain"
	"github.com/lumenlearn/mastery-api/internal/store"
)

// InMemoryProgressionStore implements store.ProgressionStore for testing.
type InMemoryProgressionStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*domain.ProgressionAccount
}

// NewInMemoryProgressionStore creates an empty in-memory progression store.
func NewInMemoryProgressionStore() *InMemoryProgressionStore {
	return &InMemoryProgressionStore{
		accounts: make(map[uuid.UUID]*domain.ProgressionAccount),
	}
}

var _ store.ProgressionStore = (*InMemoryProgressionStore)(nil)

// GetOrCreate implements store.ProgressionStore.GetOrCreate.
func (s *InMemoryProgressionStore) GetOrCreate(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.ProgressionAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account := s.getOrCreateLocked(userID)
	out := *account
	return &out, nil
}

// AddXP implements store.ProgressionStore.AddXP.
func (s *InMemoryProgressionStore) AddXP(
	ctx context.Context,
	userID uuid.UUID,
	amount int64,
) (int64, error) {
	if amount < 0 {
		return 0, store.ErrInvalidEntity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account := s.getOrCreateLocked(userID)
	account.XP += amount
	account.UpdatedAt = time.Now().UTC()
	return account.XP, nil
}

func (s *InMemoryProgressionStore) getOrCreateLocked(userID uuid.UUID) *domain.ProgressionAccount {
	account, ok := s.accounts[userID]
	if !ok {
		account = &domain.ProgressionAccount{
			UserID:    userID,
			UpdatedAt: time.Now().UTC(),
		}
		s.accounts[userID] = account
	}
	return account
}
