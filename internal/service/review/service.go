// Package review implements flashcard review recording: each review loads
// the card's prior schedule, applies the spaced repetition algorithm, and
// persists the new schedule before responding.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-api/internal/domain"
	"github.com/lumenlearn/mastery-api/internal/domain/srs"
	"github.com/lumenlearn/mastery-api/internal/store"
)

// Service records flashcard reviews and answers deck progress queries.
type Service struct {
	progressStore store.FlashcardProgressStore
	scheduler     srs.Scheduler
	logger        *slog.Logger

	// now is injectable for tests.
	now func() time.Time
}

// NewService creates a review Service.
func NewService(
	progressStore store.FlashcardProgressStore,
	scheduler srs.Scheduler,
	logger *slog.Logger,
) *Service {
	if progressStore == nil {
		panic("progress store cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		progressStore: progressStore,
		scheduler:     scheduler,
		logger:        logger.With(slog.String("component", "review_service")),
		now:           time.Now,
	}
}

// ReviewCard records a remembered/forgotten outcome for a card and returns
// the card's updated schedule. A card reviewed for the first time starts from
// the default schedule before the outcome is applied.
func (s *Service) ReviewCard(
	ctx context.Context,
	userID, deckID uuid.UUID,
	cardIndex int,
	remembered bool,
) (*domain.FlashcardProgress, error) {
	prior, err := s.progressStore.Get(ctx, userID, deckID, cardIndex)
	if err != nil && !errors.Is(err, store.ErrProgressNotFound) {
		return nil, fmt.Errorf("failed to load card progress: %w", err)
	}

	next, err := s.scheduler.Review(prior, userID, deckID, cardIndex, remembered, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to schedule review: %w", err)
	}

	if err := s.progressStore.Upsert(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to save card progress: %w", err)
	}

	s.logger.DebugContext(ctx, "card reviewed",
		slog.String("user_id", userID.String()),
		slog.String("deck_id", deckID.String()),
		slog.Int("card_index", cardIndex),
		slog.Bool("remembered", remembered),
		slog.Int("interval_days", next.IntervalDays))

	return next, nil
}

// DeckProgress returns all recorded progress for the user's deck, ordered by
// card index. Cards never reviewed have no entry.
func (s *Service) DeckProgress(
	ctx context.Context,
	userID, deckID uuid.UUID,
) ([]*domain.FlashcardProgress, error) {
	progress, err := s.progressStore.ListDeck(ctx, userID, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deck progress: %w", err)
	}
	return progress, nil
}
