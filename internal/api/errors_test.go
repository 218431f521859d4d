package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumenlearn/mastery-api/internal/domain"
	"github.com/lumenlearn/mastery-api/internal/generation"
	"github.com/lumenlearn/mastery-api/internal/service/energy"
	"github.com/lumenlearn/mastery-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{
			name:           "nil error",
			err:            nil,
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "insufficient energy",
			err:            energy.ErrInsufficientEnergy,
			expectedStatus: http.StatusPaymentRequired,
		},
		{
			name:           "wrapped insufficient energy",
			err:            fmt.Errorf("%w: cost 5", energy.ErrInsufficientEnergy),
			expectedStatus: http.StatusPaymentRequired,
		},
		{
			name:           "transient generation failure",
			err:            fmt.Errorf("failed to generate diagnostic: %w", generation.ErrTransientFailure),
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:           "content blocked",
			err:            generation.ErrContentBlocked,
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:           "malformed generation response",
			err:            generation.ErrInvalidResponse,
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:           "invalid transition",
			err:            fmt.Errorf("%w: session is in stage %q", domain.ErrInvalidTransition, "success"),
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "stale stage",
			err:            store.ErrStaleStage,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "corrupt payload",
			err:            domain.ErrCorruptPayload,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "session not found",
			err:            store.ErrSessionNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "answer count mismatch",
			err:            domain.ErrAnswerCountMismatch,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "validation error",
			err:            fmt.Errorf("%w: answer cannot be empty", domain.ErrValidation),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown error",
			err:            errors.New("unknown error"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := MapErrorToStatusCode(tt.err)
			assert.Equal(t, tt.expectedStatus, status)
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedMessage string
	}{
		{
			name:            "nil error",
			err:             nil,
			expectedMessage: "An unexpected error occurred",
		},
		{
			name:            "insufficient energy",
			err:             fmt.Errorf("%w: cost 5", energy.ErrInsufficientEnergy),
			expectedMessage: "Not enough energy; it refills daily",
		},
		{
			name:            "retryable generation failure",
			err:             fmt.Errorf("failed to evaluate answer: %w", generation.ErrTransientFailure),
			expectedMessage: "Content generation failed, please retry",
		},
		{
			name:            "corrupt payload",
			err:             fmt.Errorf("%w: quiz payload has no questions", domain.ErrCorruptPayload),
			expectedMessage: "Session state cannot be resumed, please start a new session",
		},
		{
			name:            "invalid transition",
			err:             domain.ErrInvalidTransition,
			expectedMessage: "Operation not valid for the session's current stage",
		},
		{
			name:            "session not found",
			err:             store.ErrSessionNotFound,
			expectedMessage: "Session not found",
		},
		{
			name:            "internal details never leak",
			err:             errors.New("pq: connection refused at 10.0.0.3:5432"),
			expectedMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			message := GetSafeErrorMessage(tt.err)
			assert.Equal(t, tt.expectedMessage, message)
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	err := errors.New(
		"Key: 'StartSessionRequest.CourseText' Error:Field validation for 'CourseText' failed on the 'required' tag")
	assert.Equal(t, "Invalid CourseText: required field", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("boom")))
}
