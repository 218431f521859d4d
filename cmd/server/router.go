package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lumenlearn/mastery-api/internal/api"
	apiMiddleware "github.com/lumenlearn/mastery-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	// Create API handlers using the application's services
	sessionHandler := api.NewSessionHandler(app.masteryService, app.logger)
	reviewHandler := api.NewReviewHandler(app.reviewService, app.logger)
	energyHandler := api.NewEnergyHandler(app.energyService, app.logger)
	progressionHandler := api.NewProgressionHandler(app.progressionService, app.logger)
	conceptHandler := api.NewConceptHandler(app.masteryService, app.logger)

	// Register routes. All API routes require an authenticated identity.
	r.Route("/api", func(r chi.Router) {
		r.Use(apiMiddleware.IdentityMiddleware)

		// Session endpoints
		r.Post("/sessions", sessionHandler.StartSession)
		r.Get("/sessions/{id}", sessionHandler.GetSession)
		r.Post("/sessions/{id}/diagnostic", sessionHandler.SubmitDiagnostic)
		r.Post("/sessions/{id}/advance", sessionHandler.Advance)
		r.Post("/sessions/{id}/remediation-quiz", sessionHandler.SubmitRemediationQuiz)
		r.Post("/sessions/{id}/final-quiz", sessionHandler.SubmitFinalQuiz)
		r.Post("/sessions/{id}/practice/answer", sessionHandler.SubmitPracticeAnswer)
		r.Post("/sessions/{id}/practice/result", sessionHandler.SubmitPracticeResult)
		r.Delete("/sessions/{id}", sessionHandler.AbandonSession)

		// Flashcard review endpoints
		r.Post("/decks/{deckID}/cards/{cardIndex}/review", reviewHandler.ReviewCard)
		r.Get("/decks/{deckID}/progress", reviewHandler.GetDeckProgress)

		// Energy ledger endpoints
		r.Get("/energy", energyHandler.GetEnergy)
		r.Post("/energy/spend", energyHandler.SpendEnergy)
		r.Post("/energy/refund", energyHandler.RefundEnergy)
		r.Post("/energy/referral", energyHandler.CreditReferral)

		// Progression endpoints
		r.Get("/progression", progressionHandler.GetProgression)
		r.Post("/progression/xp", progressionHandler.AddXP)

		// Concept ledger endpoint
		r.Get("/concepts", conceptHandler.ListConcepts)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
