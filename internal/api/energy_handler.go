package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-api/internal/api/shared"
	"github.com/lumenlearn/mastery-api/internal/platform/logger"
	"github.com/lumenlearn/mastery-api/internal/service/energy"
)

// EnergyHandler handles energy ledger HTTP requests.
type EnergyHandler struct {
	energyService *energy.Service
	logger        *slog.Logger
}

// NewEnergyHandler creates a new EnergyHandler.
func NewEnergyHandler(energyService *energy.Service, logger *slog.Logger) *EnergyHandler {
	if energyService == nil {
		panic("energy service cannot be nil for EnergyHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for EnergyHandler")
	}

	return &EnergyHandler{
		energyService: energyService,
		logger:        logger.With(slog.String("component", "energy_handler")),
	}
}

// AmountRequest represents a request carrying an energy amount.
type AmountRequest struct {
	Amount int `json:"amount" validate:"required,gt=0"`
}

// ReferralRequest represents a referral credit request.
type ReferralRequest struct {
	ReferralID string `json:"referral_id" validate:"required,uuid"`
	Amount     int    `json:"amount"      validate:"required,gt=0"`
}

// GetEnergy handles GET /energy requests. Reading the balance applies any
// pending daily refill first.
func (h *EnergyHandler) GetEnergy(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := userIDFromContext(w, r, log)
	if !ok {
		return
	}

	account, err := h.energyService.Peek(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, energyToResponse(account))
}

// SpendEnergy handles POST /energy/spend requests.
func (h *EnergyHandler) SpendEnergy(w http.ResponseWriter, r *http.Request) {
	h.mutateBalance(w, r, h.energyService.Spend)
}

// RefundEnergy handles POST /energy/refund requests.
func (h *EnergyHandler) RefundEnergy(w http.ResponseWriter, r *http.Request) {
	h.mutateBalance(w, r, h.energyService.Refund)
}

// CreditReferral handles POST /energy/referral requests. Crediting the same
// referral twice returns the unchanged account with credited=false.
func (h *EnergyHandler) CreditReferral(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := userIDFromContext(w, r, log)
	if !ok {
		return
	}

	var req ReferralRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	referralID, err := uuid.Parse(req.ReferralID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid referral ID format")
		return
	}

	credited, account, err := h.energyService.CreditReferral(r.Context(), userID, referralID, req.Amount)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ReferralResponse{
		Credited: credited,
		Account:  energyToResponse(account),
	})
}

func (h *EnergyHandler) mutateBalance(
	w http.ResponseWriter,
	r *http.Request,
	mutate func(ctx context.Context, userID uuid.UUID, amount int) error,
) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := userIDFromContext(w, r, log)
	if !ok {
		return
	}

	var req AmountRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	if err := mutate(r.Context(), userID, req.Amount); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	account, err := h.energyService.Peek(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, energyToResponse(account))
}
