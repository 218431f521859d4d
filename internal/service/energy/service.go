// Package energy implements the energy ledger: the per-user consumable quota
// charged for AI-backed operations. The ledger refills to a flat daily
// allotment lazily on first touch each day, never in a background job, so an
// idle account costs nothing.
package energy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-api/internal/domain"
	"github.com/lumenlearn/mastery-api/internal/store"
)

// Service errors.
var (
	// ErrInsufficientEnergy is returned when a spend exceeds the remaining
	// balance of a non-premium account.
	ErrInsufficientEnergy = errors.New("insufficient energy for requested operation")
)

// Service exposes the energy ledger operations. All balance mutations happen
// inside the store as single atomic statements; the service adds the lazy
// daily refill and the business-level error vocabulary.
type Service struct {
	store     store.EnergyStore
	logger    *slog.Logger
	allotment int

	// now is injectable for tests.
	now func() time.Time
}

// NewService creates an energy Service with the given daily allotment.
func NewService(energyStore store.EnergyStore, logger *slog.Logger, allotment int) *Service {
	if energyStore == nil {
		panic("energy store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:     energyStore,
		logger:    logger.With(slog.String("component", "energy_service")),
		allotment: allotment,
		now:       time.Now,
	}
}

// Peek returns the user's account after applying any pending daily refill.
// The account is created with a full allotment on first sight.
func (s *Service) Peek(ctx context.Context, userID uuid.UUID) (*domain.EnergyAccount, error) {
	account, err := s.store.GetOrCreate(ctx, userID, s.allotment, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to load energy account: %w", err)
	}

	if account.NeedsRefill(s.now()) {
		account, err = s.store.Refill(ctx, userID, s.now(), s.allotment)
		if err != nil {
			return nil, fmt.Errorf("failed to refill energy account: %w", err)
		}
	}

	return account, nil
}

// Spend charges amount against the user's balance, refilling first if a new
// calendar day has started. Returns ErrInsufficientEnergy when the balance
// cannot cover the charge; premium accounts always succeed.
func (s *Service) Spend(ctx context.Context, userID uuid.UUID, amount int) error {
	if amount <= 0 {
		return nil
	}

	// Refill before charging so a spend on a new day sees the fresh
	// allotment, not yesterday's leftovers.
	if _, err := s.Peek(ctx, userID); err != nil {
		return err
	}

	ok, err := s.store.Consume(ctx, userID, amount)
	if err != nil {
		return fmt.Errorf("failed to consume energy: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: cost %d", ErrInsufficientEnergy, amount)
	}

	return nil
}

// Refund returns amount to the user's balance after a charged operation
// failed downstream. Refund failures are logged but also returned; the
// caller decides whether the original failure takes precedence.
func (s *Service) Refund(ctx context.Context, userID uuid.UUID, amount int) error {
	if amount <= 0 {
		return nil
	}

	if err := s.store.Refund(ctx, userID, amount); err != nil {
		s.logger.ErrorContext(ctx, "energy refund failed",
			slog.String("user_id", userID.String()),
			slog.Int("amount", amount),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to refund energy: %w", err)
	}

	return nil
}

// CreditReferral grants a referral bonus exactly once per referral event.
// Replays return the account unchanged with credited=false.
func (s *Service) CreditReferral(
	ctx context.Context,
	userID, referralID uuid.UUID,
	amount int,
) (credited bool, account *domain.EnergyAccount, err error) {
	// Make sure the account exists before crediting it.
	if _, err := s.Peek(ctx, userID); err != nil {
		return false, nil, err
	}

	credited, err = s.store.CreditReferral(ctx, userID, referralID, amount)
	if err != nil {
		return false, nil, fmt.Errorf("failed to credit referral: %w", err)
	}

	account, err = s.Peek(ctx, userID)
	if err != nil {
		return credited, nil, err
	}

	return credited, account, nil
}
