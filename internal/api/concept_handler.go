package api

import (
	"log/slog"
	"net/http"

	"github.com/lumenlearn/mastery-api/internal/api/shared"
	"github.com/lumenlearn/mastery-api/internal/platform/logger"
	"github.com/lumenlearn/mastery-api/internal/service/mastery"
)

// ConceptHandler handles concept ledger HTTP requests.
type ConceptHandler struct {
	masteryService *mastery.Service
	logger         *slog.Logger
}

// NewConceptHandler creates a new ConceptHandler.
func NewConceptHandler(masteryService *mastery.Service, logger *slog.Logger) *ConceptHandler {
	if masteryService == nil {
		panic("mastery service cannot be nil for ConceptHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for ConceptHandler")
	}

	return &ConceptHandler{
		masteryService: masteryService,
		logger:         logger.With(slog.String("component", "concept_handler")),
	}
}

// ListConcepts handles GET /concepts requests, returning the user's concept
// mastery history, most recently seen first.
func (h *ConceptHandler) ListConcepts(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := userIDFromContext(w, r, log)
	if !ok {
		return
	}

	concepts, err := h.masteryService.Concepts(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]ConceptResponse, 0, len(concepts))
	for _, c := range concepts {
		responses = append(responses, ConceptResponse{
			Name:       c.Name,
			Weak:       c.Weak,
			LastSeenAt: c.LastSeenAt,
		})
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}
