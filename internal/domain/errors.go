package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidStage is returned when a stage value is not one of the
	// known mastery path stages.
	ErrInvalidStage = errors.New("invalid stage")

	// ErrInvalidTransition is returned when an operation is not valid for
	// the session's current stage. This is a client error fatal to the
	// request, not to the session.
	ErrInvalidTransition = errors.New("operation not valid for current stage")

	// ErrCorruptPayload is returned when a persisted stage payload fails
	// structural validation on load. Callers should surface a
	// "cannot resume, start over" condition rather than misinterpreting
	// the data.
	ErrCorruptPayload = errors.New("corrupt stage payload")

	// ErrNegativeAmount is returned when a ledger mutation is requested
	// with a negative amount.
	ErrNegativeAmount = errors.New("amount must not be negative")
)
