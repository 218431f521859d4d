package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lumenlearn/mastery-api/internal/config"
	"github.com/lumenlearn/mastery-api/internal/domain/srs"
	"github.com/lumenlearn/mastery-api/internal/generation"
	"github.com/lumenlearn/mastery-api/internal/platform/gemini"
	"github.com/lumenlearn/mastery-api/internal/platform/postgres"
	"github.com/lumenlearn/mastery-api/internal/service/energy"
	"github.com/lumenlearn/mastery-api/internal/service/mastery"
	"github.com/lumenlearn/mastery-api/internal/service/progression"
	"github.com/lumenlearn/mastery-api/internal/service/review"
	"github.com/lumenlearn/mastery-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	sessionStore     store.SessionStore
	conceptStore     store.ConceptStore
	progressStore    store.FlashcardProgressStore
	energyStore      store.EnergyStore
	progressionStore store.ProgressionStore

	// Services
	generator          generation.ContentGenerator
	energyService      *energy.Service
	progressionService *progression.Service
	reviewService      *review.Service
	masteryService     *mastery.Service
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize stores
	app.sessionStore = postgres.NewPostgresSessionStore(db, logger)
	app.conceptStore = postgres.NewPostgresConceptStore(db, logger)
	app.progressStore = postgres.NewPostgresProgressStore(db, logger)
	app.energyStore = postgres.NewPostgresEnergyStore(db, logger)
	app.progressionStore = postgres.NewPostgresProgressionStore(db, logger)

	// Create the content generator
	var err error
	app.generator, err = gemini.NewGeminiGenerator(ctx, logger, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize content generator: %w", err)
	}
	logger.Info("Content generator initialized", "model", cfg.LLM.ModelName)

	// Initialize ledger services
	app.energyService = energy.NewService(app.energyStore, logger, cfg.Engine.DailyEnergyAllotment)
	app.progressionService = progression.NewService(app.progressionStore, logger)

	// Initialize the review service over the spaced repetition scheduler
	app.reviewService = review.NewService(app.progressStore, srs.NewScheduler(nil), logger)

	// Initialize the path orchestrator
	app.masteryService = mastery.NewService(
		app.sessionStore,
		app.conceptStore,
		app.generator,
		app.energyService,
		app.progressionService,
		logger,
		cfg.Engine,
	)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
