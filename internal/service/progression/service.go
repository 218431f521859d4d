// Package progression implements the experience point ledger. XP only ever
// grows; level and progress within a level are derived from the total on
// read and never stored.
package progression

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-api/internal/domain"
	"github.com/lumenlearn/mastery-api/internal/store"
)

// Snapshot is a read of the user's progression with its derived values.
type Snapshot struct {
	XP               int64
	Level            int
	LevelThreshold   int64
	NextThreshold    int64
	ProgressFraction float64
}

// Service exposes the progression ledger operations.
type Service struct {
	store  store.ProgressionStore
	logger *slog.Logger
}

// NewService creates a progression Service.
func NewService(progressionStore store.ProgressionStore, logger *slog.Logger) *Service {
	if progressionStore == nil {
		panic("progression store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:  progressionStore,
		logger: logger.With(slog.String("component", "progression_service")),
	}
}

// Get returns the user's progression snapshot, creating a zero-XP account on
// first sight.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*Snapshot, error) {
	account, err := s.store.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progression account: %w", err)
	}

	return snapshotOf(account.XP), nil
}

// AddXP credits amount to the user's total and reports whether the credit
// pushed the user into a new level. Negative amounts are rejected; XP is
// never deducted.
func (s *Service) AddXP(
	ctx context.Context,
	userID uuid.UUID,
	amount int64,
) (snapshot *Snapshot, leveledUp bool, err error) {
	if amount < 0 {
		return nil, false, fmt.Errorf("%w: %d", domain.ErrNegativeAmount, amount)
	}

	newXP, err := s.store.AddXP(ctx, userID, amount)
	if err != nil {
		return nil, false, fmt.Errorf("failed to add xp: %w", err)
	}

	leveledUp = domain.Level(newXP) > domain.Level(newXP-amount)
	if leveledUp {
		s.logger.InfoContext(ctx, "user leveled up",
			slog.String("user_id", userID.String()),
			slog.Int("level", domain.Level(newXP)),
			slog.Int64("xp", newXP))
	}

	return snapshotOf(newXP), leveledUp, nil
}

func snapshotOf(xp int64) *Snapshot {
	level := domain.Level(xp)
	return &Snapshot{
		XP:               xp,
		Level:            level,
		LevelThreshold:   domain.XPThreshold(level - 1),
		NextThreshold:    domain.XPThreshold(level),
		ProgressFraction: domain.ProgressFraction(xp),
	}
}
