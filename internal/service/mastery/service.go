package mastery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-api/internal/config"
	"github.com/lumenlearn/mastery-api/internal/domain"
	"github.com/lumenlearn/mastery-api/internal/generation"
	"github.com/lumenlearn/mastery-api/internal/service/energy"
	"github.com/lumenlearn/mastery-api/internal/service/progression"
	"github.com/lumenlearn/mastery-api/internal/store"
)

// CompletionSummary reports the one-time reward granted when a session
// reaches the success stage.
type CompletionSummary struct {
	XPAwarded int64
	Level     int
	LeveledUp bool
}

// Outcome is the result of a session operation: the session after the
// (possible) transition plus whatever the operation produced along the way.
type Outcome struct {
	Session *domain.MasterySession

	// Quiz is set when the operation graded a quiz submission.
	Quiz *domain.QuizResult

	// Evaluation is set when the operation evaluated a practice answer.
	Evaluation *domain.Evaluation

	// Completion is set when this operation claimed the session's
	// completion reward.
	Completion *CompletionSummary
}

// Service is the path orchestrator. It sequences content generation, energy
// charges, concept ledger updates, and stage transitions for mastery
// sessions.
type Service struct {
	sessions    store.SessionStore
	concepts    store.ConceptStore
	generator   generation.ContentGenerator
	energy      *energy.Service
	progression *progression.Service
	logger      *slog.Logger
	cfg         config.EngineConfig
}

// NewService creates the orchestrator with its collaborators.
func NewService(
	sessions store.SessionStore,
	concepts store.ConceptStore,
	generator generation.ContentGenerator,
	energySvc *energy.Service,
	progressionSvc *progression.Service,
	logger *slog.Logger,
	cfg config.EngineConfig,
) *Service {
	if sessions == nil || concepts == nil || generator == nil ||
		energySvc == nil || progressionSvc == nil {
		panic("mastery service dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		sessions:    sessions,
		concepts:    concepts,
		generator:   generator,
		energy:      energySvc,
		progression: progressionSvc,
		logger:      logger.With(slog.String("component", "mastery_service")),
		cfg:         cfg,
	}
}

// StartSession opens a new mastery session for the course: it charges the
// generation cost, generates the diagnostic quiz, and persists the session
// in the diagnostic stage. The charge is refunded if anything after it fails.
func (s *Service) StartSession(
	ctx context.Context,
	userID uuid.UUID,
	courseRef, courseText string,
) (*domain.MasterySession, error) {
	if err := s.energy.Spend(ctx, userID, s.cfg.GenerationCost); err != nil {
		return nil, err
	}

	questions, err := s.generator.GenerateDiagnostic(ctx, courseText)
	if err != nil {
		s.refund(ctx, userID, s.cfg.GenerationCost)
		return nil, fmt.Errorf("failed to generate diagnostic: %w", err)
	}

	session, err := domain.NewMasterySession(userID, courseRef, courseText, questions)
	if err != nil {
		s.refund(ctx, userID, s.cfg.GenerationCost)
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		s.refund(ctx, userID, s.cfg.GenerationCost)
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.InfoContext(ctx, "session started",
		slog.String("session_id", session.ID.String()),
		slog.String("user_id", userID.String()),
		slog.String("course_ref", session.CourseRef))

	return session, nil
}

// GetSession returns the caller's session. A session owned by another user
// is reported as not found.
func (s *Service) GetSession(
	ctx context.Context,
	userID, sessionID uuid.UUID,
) (*domain.MasterySession, error) {
	return s.loadOwned(ctx, userID, sessionID)
}

// Abandon moves the session to the abandoned terminal stage. No XP is
// granted and no energy is refunded; the session cannot be resumed.
func (s *Service) Abandon(ctx context.Context, userID, sessionID uuid.UUID) error {
	session, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return err
	}

	if err := s.sessions.Abandon(ctx, session.ID); err != nil {
		if errors.Is(err, store.ErrStaleStage) {
			return fmt.Errorf("%w: session already ended", domain.ErrInvalidTransition)
		}
		return fmt.Errorf("failed to abandon session: %w", err)
	}

	s.logger.InfoContext(ctx, "session abandoned",
		slog.String("session_id", sessionID.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// Concepts returns the user's concept mastery history, most recently seen
// first.
func (s *Service) Concepts(ctx context.Context, userID uuid.UUID) ([]*domain.Concept, error) {
	concepts, err := s.concepts.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list concepts: %w", err)
	}
	return concepts, nil
}

// loadOwned fetches a session and enforces ownership. Sessions belonging to
// other users are indistinguishable from missing ones.
func (s *Service) loadOwned(
	ctx context.Context,
	userID, sessionID uuid.UUID,
) (*domain.MasterySession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, store.ErrSessionNotFound
	}
	return session, nil
}

// requireStage rejects operations invoked against the wrong stage. The
// request fails; the session is untouched.
func requireStage(session *domain.MasterySession, want ...domain.Stage) error {
	for _, stage := range want {
		if session.Stage == stage {
			return nil
		}
	}
	return fmt.Errorf("%w: session is in stage %q", domain.ErrInvalidTransition, session.Stage)
}

// refund returns an energy charge whose work was discarded. The original
// failure takes precedence; a refund failure is only logged.
func (s *Service) refund(ctx context.Context, userID uuid.UUID, amount int) {
	if err := s.energy.Refund(ctx, userID, amount); err != nil {
		s.logger.ErrorContext(ctx, "failed to refund discarded charge",
			slog.String("user_id", userID.String()),
			slog.Int("amount", amount),
			slog.String("error", err.Error()))
	}
}

// recordConceptSignals writes the latest mastery signal for every tagged
// question in a graded quiz. A concept answered wrongly anywhere in the quiz
// is weak even if another question tagged with it was answered correctly.
func (s *Service) recordConceptSignals(
	ctx context.Context,
	userID uuid.UUID,
	result *domain.QuizResult,
) error {
	signals := make(map[string]bool)
	var order []string

	for _, a := range result.Results {
		if a.Concept == "" {
			continue
		}
		if _, seen := signals[a.Concept]; !seen {
			order = append(order, a.Concept)
		}
		signals[a.Concept] = signals[a.Concept] || !a.Correct
	}

	for _, name := range order {
		concept, err := domain.NewConcept(userID, name, signals[name])
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		if err := s.concepts.Upsert(ctx, concept); err != nil {
			return fmt.Errorf("failed to record concept signal: %w", err)
		}
	}

	return nil
}

// commitTransition persists a stage transition with compare-and-swap
// semantics and maps a lost race onto the transition error vocabulary. When
// the transition was paid for, the charge travels with it and is refunded on
// failure.
func (s *Service) commitTransition(
	ctx context.Context,
	session *domain.MasterySession,
	fromStage domain.Stage,
	paidCharge int,
) error {
	err := s.sessions.UpdateStage(ctx, session, fromStage)
	if err == nil {
		return nil
	}

	if paidCharge > 0 {
		s.refund(ctx, session.UserID, paidCharge)
	}

	if errors.Is(err, store.ErrStaleStage) {
		return fmt.Errorf("%w: session moved past stage %q", domain.ErrInvalidTransition, fromStage)
	}
	return fmt.Errorf("failed to persist transition: %w", err)
}
