package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Concept-specific validation errors.
var (
	// ErrConceptUserIDEmpty is returned when a concept's user ID is empty or nil.
	ErrConceptUserIDEmpty = errors.New("concept user ID cannot be empty")

	// ErrConceptNameEmpty is returned when a concept name is empty.
	ErrConceptNameEmpty = errors.New("concept name cannot be empty")
)

// Concept is a per-user mastery signal for a named knowledge unit.
// A concept is created the first time a quiz question tagged with it is
// evaluated for the user, updated on every subsequent evaluation, and never
// deleted. Weak reflects the outcome of the most recent evaluation.
type Concept struct {
	UserID     uuid.UUID `json:"user_id"`
	Name       string    `json:"name"`
	Weak       bool      `json:"weak"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// NewConcept creates a Concept for the given user with the given mastery
// signal. Returns an error if validation fails.
func NewConcept(userID uuid.UUID, name string, weak bool) (*Concept, error) {
	concept := &Concept{
		UserID:     userID,
		Name:       strings.TrimSpace(name),
		Weak:       weak,
		LastSeenAt: time.Now().UTC(),
	}

	if err := concept.Validate(); err != nil {
		return nil, err
	}

	return concept, nil
}

// Validate checks if the Concept has valid data.
func (c *Concept) Validate() error {
	if c.UserID == uuid.Nil {
		return ErrConceptUserIDEmpty
	}

	if c.Name == "" {
		return ErrConceptNameEmpty
	}

	return nil
}
