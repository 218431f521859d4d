package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-api/internal/domain"
	"github.com/lumenlearn/mastery-api/internal/store"
)

type referralKey struct {
	userID     uuid.UUID
	referralID uuid.UUID
}

// InMemoryEnergyStore implements store.EnergyStore for testing, preserving
// the atomicity contracts of the real store under the mutex.
type InMemoryEnergyStore struct {
	mu        sync.Mutex
	accounts  map[uuid.UUID]*domain.EnergyAccount
	referrals map[referralKey]struct{}
}

// NewInMemoryEnergyStore creates an empty in-memory energy store.
func NewInMemoryEnergyStore() *InMemoryEnergyStore {
	return &InMemoryEnergyStore{
		accounts:  make(map[uuid.UUID]*domain.EnergyAccount),
		referrals: make(map[referralKey]struct{}),
	}
}

var _ store.EnergyStore = (*InMemoryEnergyStore)(nil)

// SetPremium marks a user's account as premium, creating it if necessary.
// Test helper; the engine never sets this flag itself.
func (s *InMemoryEnergyStore) SetPremium(userID uuid.UUID, premium bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[userID]
	if !ok {
		account = &domain.EnergyAccount{UserID: userID}
		s.accounts[userID] = account
	}
	account.IsPremium = premium
}

// GetOrCreate implements store.EnergyStore.GetOrCreate.
func (s *InMemoryEnergyStore) GetOrCreate(
	ctx context.Context,
	userID uuid.UUID,
	allotment int,
	day time.Time,
) (*domain.EnergyAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[userID]
	if !ok {
		account = &domain.EnergyAccount{
			UserID:         userID,
			Balance:        allotment,
			LastRefillDate: domain.DayOf(day),
		}
		s.accounts[userID] = account
	}

	out := *account
	return &out, nil
}

// Refill implements store.EnergyStore.Refill.
func (s *InMemoryEnergyStore) Refill(
	ctx context.Context,
	userID uuid.UUID,
	day time.Time,
	allotment int,
) (*domain.EnergyAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[userID]
	if !ok {
		return nil, store.ErrEnergyAccountNotFound
	}

	if account.LastRefillDate.Before(domain.DayOf(day)) {
		account.Balance = allotment
		account.LastRefillDate = domain.DayOf(day)
	}

	out := *account
	return &out, nil
}

// Consume implements store.EnergyStore.Consume.
func (s *InMemoryEnergyStore) Consume(ctx context.Context, userID uuid.UUID, amount int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[userID]
	if !ok {
		return false, store.ErrEnergyAccountNotFound
	}

	if account.IsPremium {
		return true, nil
	}
	if account.Balance < amount {
		return false, nil
	}

	account.Balance -= amount
	return true, nil
}

// Refund implements store.EnergyStore.Refund.
func (s *InMemoryEnergyStore) Refund(ctx context.Context, userID uuid.UUID, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[userID]
	if !ok {
		return store.ErrEnergyAccountNotFound
	}

	if !account.IsPremium {
		account.Balance += amount
	}
	return nil
}

// CreditReferral implements store.EnergyStore.CreditReferral.
func (s *InMemoryEnergyStore) CreditReferral(
	ctx context.Context,
	userID, referralID uuid.UUID,
	amount int,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[userID]
	if !ok {
		return false, store.ErrEnergyAccountNotFound
	}

	key := referralKey{userID, referralID}
	if _, credited := s.referrals[key]; credited {
		return false, nil
	}

	s.referrals[key] = struct{}{}
	account.Balance += amount
	return true, nil
}
