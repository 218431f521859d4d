package api

import (
	"log/slog"
	"net/http"

	"github.com/lumenlearn/mastery-api/internal/api/shared"
	"github.com/lumenlearn/mastery-api/internal/platform/logger"
	"github.com/lumenlearn/mastery-api/internal/service/progression"
)

// ProgressionHandler handles experience point HTTP requests.
type ProgressionHandler struct {
	progressionService *progression.Service
	logger             *slog.Logger
}

// NewProgressionHandler creates a new ProgressionHandler.
func NewProgressionHandler(
	progressionService *progression.Service,
	logger *slog.Logger,
) *ProgressionHandler {
	if progressionService == nil {
		panic("progression service cannot be nil for ProgressionHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for ProgressionHandler")
	}

	return &ProgressionHandler{
		progressionService: progressionService,
		logger:             logger.With(slog.String("component", "progression_handler")),
	}
}

// AddXPRequest represents a request to credit experience points.
type AddXPRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

// GetProgression handles GET /progression requests.
func (h *ProgressionHandler) GetProgression(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := userIDFromContext(w, r, log)
	if !ok {
		return
	}

	snapshot, err := h.progressionService.Get(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snapshotToResponse(snapshot, false))
}

// AddXP handles POST /progression/xp requests.
func (h *ProgressionHandler) AddXP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := userIDFromContext(w, r, log)
	if !ok {
		return
	}

	var req AddXPRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	snapshot, leveledUp, err := h.progressionService.AddXP(r.Context(), userID, req.Amount)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snapshotToResponse(snapshot, leveledUp))
}
