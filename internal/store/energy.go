package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-api/internal/domain"
)

// EnergyStore defines the interface for energy account persistence.
//
// Consume, Refund, and Refill are single atomic read-modify-write operations
// per account. Implementations must guarantee that two concurrent requests
// for the same user cannot interleave (conditional update or row lock); the
// balance check constraint is the backstop, never the mechanism.
type EnergyStore interface {
	// GetOrCreate retrieves the user's account, creating one holding the
	// full daily allotment if none exists yet.
	GetOrCreate(ctx context.Context, userID uuid.UUID, allotment int, day time.Time) (*domain.EnergyAccount, error)

	// Refill resets the balance to the daily allotment if the account's
	// last refill happened on an earlier calendar day than day. The reset is
	// flat, never additive, and at most one refill lands per day regardless
	// of concurrent callers. Returns the account after the (possible) refill.
	// Returns ErrEnergyAccountNotFound if the account does not exist.
	Refill(ctx context.Context, userID uuid.UUID, day time.Time, allotment int) (*domain.EnergyAccount, error)

	// Consume atomically deducts amount from the balance. Returns false,
	// with the balance unchanged, when the account is not premium and the
	// balance is short. Premium accounts always succeed without mutation.
	// Returns ErrEnergyAccountNotFound if the account does not exist.
	Consume(ctx context.Context, userID uuid.UUID, amount int) (bool, error)

	// Refund atomically adds amount back to the balance. Used to reverse a
	// Consume when a downstream step fails after the quota was charged.
	// Refunding a premium account is a no-op.
	Refund(ctx context.Context, userID uuid.UUID, amount int) error

	// CreditReferral atomically adds amount to the balance, at most once
	// per referral event. Returns false without mutation when the referral
	// was already credited.
	CreditReferral(ctx context.Context, userID, referralID uuid.UUID, amount int) (bool, error)
}
