package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-api/internal/domain"
)

// ProgressionStore defines the interface for experience point persistence.
type ProgressionStore interface {
	// GetOrCreate retrieves the user's progression account, creating a
	// zero-XP account if none exists yet.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.ProgressionAccount, error)

	// AddXP atomically increments the user's XP by amount (which must be
	// non-negative) and returns the new total. The account is created on
	// first credit if necessary.
	AddXP(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)
}
