package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-api/internal/api/shared"
	"github.com/lumenlearn/mastery-api/internal/platform/logger"
	"github.com/lumenlearn/mastery-api/internal/service/review"
)

// ReviewHandler handles flashcard review HTTP requests.
type ReviewHandler struct {
	reviewService *review.Service
	logger        *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService *review.Service, logger *slog.Logger) *ReviewHandler {
	if reviewService == nil {
		panic("review service cannot be nil for ReviewHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for ReviewHandler")
	}

	return &ReviewHandler{
		reviewService: reviewService,
		logger:        logger.With(slog.String("component", "review_handler")),
	}
}

// ReviewCardRequest represents the request body for reviewing a flashcard.
type ReviewCardRequest struct {
	Remembered *bool `json:"remembered" validate:"required"`
}

// ReviewCard handles POST /decks/{deckID}/cards/{cardIndex}/review requests.
func (h *ReviewHandler) ReviewCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := userIDFromContext(w, r, log)
	if !ok {
		return
	}

	deckID, err := uuid.Parse(chi.URLParam(r, "deckID"))
	if err != nil {
		log.Warn("invalid deck ID format", slog.String("deck_id", chi.URLParam(r, "deckID")))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid deck ID format")
		return
	}

	cardIndex, err := strconv.Atoi(chi.URLParam(r, "cardIndex"))
	if err != nil || cardIndex < 0 {
		log.Warn("invalid card index", slog.String("card_index", chi.URLParam(r, "cardIndex")))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid card index")
		return
	}

	var req ReviewCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	progress, err := h.reviewService.ReviewCard(r.Context(), userID, deckID, cardIndex, *req.Remembered)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, progressToResponse(progress))
}

// GetDeckProgress handles GET /decks/{deckID}/progress requests.
func (h *ReviewHandler) GetDeckProgress(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := userIDFromContext(w, r, log)
	if !ok {
		return
	}

	deckID, err := uuid.Parse(chi.URLParam(r, "deckID"))
	if err != nil {
		log.Warn("invalid deck ID format", slog.String("deck_id", chi.URLParam(r, "deckID")))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid deck ID format")
		return
	}

	progress, err := h.reviewService.DeckProgress(r.Context(), userID, deckID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]CardProgressResponse, 0, len(progress))
	for _, p := range progress {
		responses = append(responses, progressToResponse(p))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}
