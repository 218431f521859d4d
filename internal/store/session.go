package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-api/internal/domain"
)

// SessionStore defines the interface for mastery session persistence.
//
// Stage transitions are compare-and-swap operations against the persisted
// stage: a transition only lands if the session is still in the stage the
// caller observed, so concurrent submissions for the same session cannot
// interleave. The orchestrator persists every transition before responding.
type SessionStore interface {
	// Create saves a new session. The session must be valid according to
	// domain validation rules.
	Create(ctx context.Context, session *domain.MasterySession) error

	// GetByID retrieves a session by its unique ID.
	// Returns ErrSessionNotFound if the session does not exist.
	// Returns domain.ErrCorruptPayload if the stored payload fails
	// structural validation for the stored stage.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MasterySession, error)

	// UpdateStage persists the session's current stage, payload, weak
	// concepts, and attempt counters, conditional on the persisted stage
	// still being fromStage. Returns ErrStaleStage if the condition fails
	// and ErrSessionNotFound if the session does not exist.
	UpdateStage(ctx context.Context, session *domain.MasterySession, fromStage domain.Stage) error

	// MarkCompleted transitions the session to the success stage and claims
	// its one-time completion reward. Returns true if this call claimed the
	// reward; false if the reward was already claimed by an earlier call
	// (idempotent re-entry). Returns ErrSessionNotFound if the session does
	// not exist.
	MarkCompleted(ctx context.Context, id uuid.UUID) (awarded bool, err error)

	// Abandon transitions the session to the abandoned terminal stage.
	// Returns ErrStaleStage if the session is already terminal and
	// ErrSessionNotFound if it does not exist.
	Abandon(ctx context.Context, id uuid.UUID) error
}
