package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-api/internal/domain"
)

// FlashcardProgressStore defines the interface for spaced repetition
// progress persistence, keyed by (user, deck, card index).
type FlashcardProgressStore interface {
	// Get retrieves the progress for a single card.
	// Returns ErrProgressNotFound if the card has never been reviewed.
	Get(ctx context.Context, userID, deckID uuid.UUID, cardIndex int) (*domain.FlashcardProgress, error)

	// Upsert saves the progress for a card, inserting on first review and
	// overwriting on subsequent reviews.
	Upsert(ctx context.Context, progress *domain.FlashcardProgress) error

	// ListDeck returns all recorded progress for the user's deck, ordered
	// by card index.
	ListDeck(ctx context.Context, userID, deckID uuid.UUID) ([]*domain.FlashcardProgress, error)
}
