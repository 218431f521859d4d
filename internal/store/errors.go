package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. Entity-specific variants wrap this error.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrStaleStage is returned when a conditional stage transition matched
	// no row because the session was no longer in the expected stage.
	// Concurrent submissions from the same user surface as this error.
	ErrStaleStage = errors.New("session stage changed concurrently")

	// Entity-specific "not found" errors.

	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = fmt.Errorf("%w: session", ErrNotFound)

	// ErrConceptNotFound indicates that the requested concept does not exist.
	ErrConceptNotFound = fmt.Errorf("%w: concept", ErrNotFound)

	// ErrProgressNotFound indicates that the requested flashcard progress
	// does not exist.
	ErrProgressNotFound = fmt.Errorf("%w: flashcard progress", ErrNotFound)

	// ErrEnergyAccountNotFound indicates that the requested energy account
	// does not exist.
	ErrEnergyAccountNotFound = fmt.Errorf("%w: energy account", ErrNotFound)

	// ErrProgressionAccountNotFound indicates that the requested progression
	// account does not exist.
	ErrProgressionAccountNotFound = fmt.Errorf("%w: progression account", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
