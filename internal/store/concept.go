package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-api/internal/domain"
)

// ConceptStore defines the interface for per-user concept mastery signals.
type ConceptStore interface {
	// Upsert records the latest mastery signal for a concept: inserts the
	// concept on first sight, otherwise overwrites the weakness flag and
	// last-seen timestamp. Concepts are never deleted.
	Upsert(ctx context.Context, concept *domain.Concept) error

	// ListByUser returns all concepts recorded for the user, most recently
	// seen first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Concept, error)

	// ListWeakByUser returns the user's currently weak concepts, most
	// recently seen first.
	ListWeakByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Concept, error)
}
