package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/lumenlearn/mastery-api/internal/domain"
	"github.com/lumenlearn/mastery-api/internal/generation"
	"github.com/lumenlearn/mastery-api/internal/service/energy"
	"github.com/lumenlearn/mastery-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Energy exhaustion: actionable, the client should wait for the daily
	// refill or upgrade.
	case errors.Is(err, energy.ErrInsufficientEnergy):
		return http.StatusPaymentRequired

	// Generation failures: the session did not move, the client may retry
	// the same operation.
	case generation.IsRetryable(err),
		errors.Is(err, generation.ErrContentBlocked),
		errors.Is(err, generation.ErrInvalidResponse):
		return http.StatusBadGateway

	// Conflict errors: the operation does not fit the session's current
	// state, or the stored state cannot be resumed.
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, store.ErrStaleStage),
		errors.Is(err, domain.ErrCorruptPayload):
		return http.StatusConflict

	// Not found errors
	case errors.Is(err, store.ErrSessionNotFound),
		errors.Is(err, store.ErrConceptNotFound),
		errors.Is(err, store.ErrProgressNotFound),
		errors.Is(err, store.ErrEnergyAccountNotFound),
		errors.Is(err, store.ErrProgressionAccountNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrAnswerCountMismatch),
		errors.Is(err, domain.ErrNegativeAmount),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message based
// on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, energy.ErrInsufficientEnergy):
		return "Not enough energy; it refills daily"

	case generation.IsRetryable(err):
		return "Content generation failed, please retry"

	case errors.Is(err, generation.ErrContentBlocked):
		return "Content generation was blocked for this material"

	case errors.Is(err, generation.ErrInvalidResponse):
		return "Content generation produced an unusable result, please retry"

	case errors.Is(err, domain.ErrCorruptPayload):
		return "Session state cannot be resumed, please start a new session"

	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, store.ErrStaleStage):
		return "Operation not valid for the session's current stage"

	case errors.Is(err, store.ErrSessionNotFound):
		return "Session not found"

	case errors.Is(err, store.ErrEnergyAccountNotFound):
		return "Energy account not found"

	case errors.Is(err, domain.ErrAnswerCountMismatch):
		return "Submit exactly one answer per question"

	case errors.Is(err, domain.ErrNegativeAmount):
		return "Amount must not be negative"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validator errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format:
		// "Key: 'StartSessionRequest.CourseText' Error:Field validation for 'CourseText' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages.
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "gte":
		return "too small"
	default:
		return "validation failed"
	}
}
