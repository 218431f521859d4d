// Package api provides HTTP handlers for the API.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-api/internal/api/shared"
	"github.com/lumenlearn/mastery-api/internal/platform/logger"
	"github.com/lumenlearn/mastery-api/internal/service/mastery"
)

// SessionHandler handles mastery session HTTP requests.
type SessionHandler struct {
	masteryService *mastery.Service
	logger         *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(masteryService *mastery.Service, logger *slog.Logger) *SessionHandler {
	if masteryService == nil {
		panic("mastery service cannot be nil for SessionHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for SessionHandler")
	}

	return &SessionHandler{
		masteryService: masteryService,
		logger:         logger.With(slog.String("component", "session_handler")),
	}
}

// StartSessionRequest represents the request body for starting a session.
type StartSessionRequest struct {
	CourseRef  string `json:"course_ref"  validate:"required,max=256"`
	CourseText string `json:"course_text" validate:"required"`
}

// SubmitAnswersRequest represents a quiz submission: one chosen option index
// per question, in question order.
type SubmitAnswersRequest struct {
	Answers []int `json:"answers" validate:"required,min=1"`
}

// PracticeAnswerRequest represents a free-response practice answer.
type PracticeAnswerRequest struct {
	Answer string `json:"answer" validate:"required"`
}

// PracticeResultRequest represents the outcome of a practice stage.
type PracticeResultRequest struct {
	WantsHardMode bool `json:"wants_hard_mode"`
}

// StartSession handles POST /sessions requests.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := userIDFromContext(w, r, log)
	if !ok {
		return
	}

	var req StartSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	session, err := h.masteryService.StartSession(r.Context(), userID, req.CourseRef, req.CourseText)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, sessionToResponse(session))
}

// GetSession handles GET /sessions/{id} requests.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := userIDFromContext(w, r, log)
	if !ok {
		return
	}
	sessionID, ok := sessionIDFromPath(w, r, log)
	if !ok {
		return
	}

	session, err := h.masteryService.GetSession(r.Context(), userID, sessionID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session))
}

// SubmitDiagnostic handles POST /sessions/{id}/diagnostic requests.
func (h *SessionHandler) SubmitDiagnostic(w http.ResponseWriter, r *http.Request) {
	h.submitQuiz(w, r, h.masteryService.SubmitDiagnostic)
}

// SubmitRemediationQuiz handles POST /sessions/{id}/remediation-quiz requests.
func (h *SessionHandler) SubmitRemediationQuiz(w http.ResponseWriter, r *http.Request) {
	h.submitQuiz(w, r, h.masteryService.SubmitRemediationQuiz)
}

// SubmitFinalQuiz handles POST /sessions/{id}/final-quiz requests.
func (h *SessionHandler) SubmitFinalQuiz(w http.ResponseWriter, r *http.Request) {
	h.submitQuiz(w, r, h.masteryService.SubmitFinalQuiz)
}

// Advance handles POST /sessions/{id}/advance requests: the answer-less
// forward steps through remediation.
func (h *SessionHandler) Advance(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := userIDFromContext(w, r, log)
	if !ok {
		return
	}
	sessionID, ok := sessionIDFromPath(w, r, log)
	if !ok {
		return
	}

	outcome, err := h.masteryService.Advance(r.Context(), userID, sessionID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, outcomeToResponse(outcome))
}

// SubmitPracticeAnswer handles POST /sessions/{id}/practice/answer requests.
func (h *SessionHandler) SubmitPracticeAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := userIDFromContext(w, r, log)
	if !ok {
		return
	}
	sessionID, ok := sessionIDFromPath(w, r, log)
	if !ok {
		return
	}

	var req PracticeAnswerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	outcome, err := h.masteryService.SubmitPracticeAnswer(r.Context(), userID, sessionID, req.Answer)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, outcomeToResponse(outcome))
}

// SubmitPracticeResult handles POST /sessions/{id}/practice/result requests.
func (h *SessionHandler) SubmitPracticeResult(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := userIDFromContext(w, r, log)
	if !ok {
		return
	}
	sessionID, ok := sessionIDFromPath(w, r, log)
	if !ok {
		return
	}

	var req PracticeResultRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	outcome, err := h.masteryService.SubmitPracticeResult(r.Context(), userID, sessionID, req.WantsHardMode)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, outcomeToResponse(outcome))
}

// AbandonSession handles DELETE /sessions/{id} requests.
func (h *SessionHandler) AbandonSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := userIDFromContext(w, r, log)
	if !ok {
		return
	}
	sessionID, ok := sessionIDFromPath(w, r, log)
	if !ok {
		return
	}

	if err := h.masteryService.Abandon(r.Context(), userID, sessionID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// submitQuiz factors the shared shape of the three quiz submission
// endpoints: decode answers, invoke the stage-specific operation, respond
// with the transition outcome.
func (h *SessionHandler) submitQuiz(
	w http.ResponseWriter,
	r *http.Request,
	submit func(ctx context.Context, userID, sessionID uuid.UUID, answers []int) (*mastery.Outcome, error),
) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := userIDFromContext(w, r, log)
	if !ok {
		return
	}
	sessionID, ok := sessionIDFromPath(w, r, log)
	if !ok {
		return
	}

	var req SubmitAnswersRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	outcome, err := submit(r.Context(), userID, sessionID, req.Answers)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, outcomeToResponse(outcome))
}

// userIDFromContext extracts the authenticated user ID installed by the
// identity middleware, rejecting the request if it is missing.
func userIDFromContext(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return uuid.Nil, false
	}
	return userID, true
}

// sessionIDFromPath parses the {id} path parameter.
func sessionIDFromPath(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		log.Warn("session ID not found in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Session ID is required")
		return uuid.Nil, false
	}

	sessionID, err := uuid.Parse(raw)
	if err != nil {
		log.Warn("invalid session ID format", slog.String("session_id", raw))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID format")
		return uuid.Nil, false
	}

	return sessionID, true
}
