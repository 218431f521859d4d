package mastery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-api/internal/domain"
)

// SubmitDiagnostic grades the diagnostic quiz, records concept signals, and
// branches the session: learners with no weak concepts jump straight to the
// final quiz, everyone else enters remediation with a fresh flashcard deck.
func (s *Service) SubmitDiagnostic(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	answers []int,
) (*Outcome, error) {
	session, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := requireStage(session, domain.StageDiagnostic); err != nil {
		return nil, err
	}

	result, err := domain.GradeQuiz(session.Payload.Questions, answers)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	session.RecordAttempt(domain.StageDiagnostic)

	if err := s.recordConceptSignals(ctx, userID, result); err != nil {
		return nil, err
	}

	weak := result.WeakConcepts()
	if len(weak) == 0 {
		// Nothing to remediate. The final quiz still needs concepts to
		// target, so it covers everything the diagnostic touched.
		if err := s.enterFinalQuiz(ctx, session, conceptsOf(session.Payload.Questions), domain.StageDiagnostic); err != nil {
			return nil, err
		}
		return &Outcome{Session: session, Quiz: result}, nil
	}

	session.WeakConcepts = weak
	if err := s.enterRemediation(ctx, session, domain.StageDiagnostic); err != nil {
		return nil, err
	}

	return &Outcome{Session: session, Quiz: result}, nil
}

// Advance moves the session through the answer-less remediation steps:
// learn to flashcards (free), flashcards to the remediation quiz (charged,
// quiz generated over the weak concepts).
func (s *Service) Advance(ctx context.Context, userID, sessionID uuid.UUID) (*Outcome, error) {
	session, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	switch session.Stage {
	case domain.StageRemediationLearn:
		fromStage := session.Stage
		session.Stage = domain.StageRemediationFlashcards
		if err := s.commitTransition(ctx, session, fromStage, 0); err != nil {
			return nil, err
		}
		return &Outcome{Session: session}, nil

	case domain.StageRemediationFlashcards:
		if err := s.energy.Spend(ctx, userID, s.cfg.GenerationCost); err != nil {
			return nil, err
		}

		questions, err := s.generator.GenerateValidationQuiz(
			ctx, session.CourseText, session.WeakConcepts, domain.DifficultyEasy)
		if err != nil {
			s.refund(ctx, userID, s.cfg.GenerationCost)
			return nil, fmt.Errorf("failed to generate remediation quiz: %w", err)
		}

		fromStage := session.Stage
		session.Stage = domain.StageRemediationQuiz
		session.Payload = &domain.StagePayload{
			Kind:      domain.PayloadKindQuiz,
			Questions: questions,
		}
		if err := s.commitTransition(ctx, session, fromStage, s.cfg.GenerationCost); err != nil {
			return nil, err
		}
		return &Outcome{Session: session}, nil

	default:
		return nil, fmt.Errorf("%w: session is in stage %q", domain.ErrInvalidTransition, session.Stage)
	}
}

// SubmitRemediationQuiz grades the remediation quiz and moves to the final
// quiz regardless of the score. The quiz exists to refresh the concept
// ledger and inform the learner, not to gate progression.
func (s *Service) SubmitRemediationQuiz(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	answers []int,
) (*Outcome, error) {
	session, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := requireStage(session, domain.StageRemediationQuiz); err != nil {
		return nil, err
	}

	result, err := domain.GradeQuiz(session.Payload.Questions, answers)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	session.RecordAttempt(domain.StageRemediationQuiz)

	if err := s.recordConceptSignals(ctx, userID, result); err != nil {
		return nil, err
	}

	concepts := session.WeakConcepts
	if len(concepts) == 0 {
		concepts = conceptsOf(session.Payload.Questions)
	}
	if err := s.enterFinalQuiz(ctx, session, concepts, domain.StageRemediationQuiz); err != nil {
		return nil, err
	}

	return &Outcome{Session: session, Quiz: result}, nil
}

// SubmitFinalQuiz grades the final quiz and moves to easy practice
// unconditionally.
func (s *Service) SubmitFinalQuiz(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	answers []int,
) (*Outcome, error) {
	session, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := requireStage(session, domain.StageFinalQuiz); err != nil {
		return nil, err
	}

	result, err := domain.GradeQuiz(session.Payload.Questions, answers)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	session.RecordAttempt(domain.StageFinalQuiz)

	if err := s.recordConceptSignals(ctx, userID, result); err != nil {
		return nil, err
	}

	if err := s.enterPractice(ctx, session, domain.DifficultyEasy, domain.StageFinalQuiz); err != nil {
		return nil, err
	}

	return &Outcome{Session: session, Quiz: result}, nil
}

// SubmitPracticeAnswer evaluates a free-response answer to the current
// practice exercise. The session stays in its practice stage; the learner
// may answer again or report a result.
func (s *Service) SubmitPracticeAnswer(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	answer string,
) (*Outcome, error) {
	session, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := requireStage(session, domain.StagePracticeEasy, domain.StagePracticeHard); err != nil {
		return nil, err
	}

	if strings.TrimSpace(answer) == "" {
		return nil, fmt.Errorf("%w: answer cannot be empty", domain.ErrValidation)
	}

	if err := s.energy.Spend(ctx, userID, s.cfg.EvaluationCost); err != nil {
		return nil, err
	}

	evaluation, err := s.generator.EvaluateFreeResponse(
		ctx, session.Payload.Exercise.Instruction, answer, session.CourseText)
	if err != nil {
		s.refund(ctx, userID, s.cfg.EvaluationCost)
		return nil, fmt.Errorf("failed to evaluate answer: %w", err)
	}

	// The stage does not change, but the attempt counter does; persisting
	// it still goes through the stage guard so a concurrent transition
	// cannot be overwritten.
	fromStage := session.Stage
	session.RecordAttempt(fromStage)
	if err := s.commitTransition(ctx, session, fromStage, s.cfg.EvaluationCost); err != nil {
		return nil, err
	}

	return &Outcome{Session: session, Evaluation: evaluation}, nil
}

// SubmitPracticeResult records the outcome of a practice stage. From easy
// practice the learner chooses harder practice or completion; hard practice
// always completes. Reporting a result on an already completed session is an
// idempotent no-op.
func (s *Service) SubmitPracticeResult(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	wantsHardMode bool,
) (*Outcome, error) {
	session, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Stage == domain.StageSuccess {
		return &Outcome{Session: session}, nil
	}
	if err := requireStage(session, domain.StagePracticeEasy, domain.StagePracticeHard); err != nil {
		return nil, err
	}

	if session.Stage == domain.StagePracticeEasy && wantsHardMode {
		if err := s.enterPractice(ctx, session, domain.DifficultyHard, domain.StagePracticeEasy); err != nil {
			return nil, err
		}
		return &Outcome{Session: session}, nil
	}

	return s.complete(ctx, session)
}

// enterRemediation generates the remediation pack for the session's weak
// concepts and moves to the learn stage with a fresh flashcard deck.
func (s *Service) enterRemediation(
	ctx context.Context,
	session *domain.MasterySession,
	fromStage domain.Stage,
) error {
	if err := s.energy.Spend(ctx, session.UserID, s.cfg.GenerationCost); err != nil {
		return err
	}

	pack, err := s.generator.GenerateRemediation(
		ctx, session.CourseText, session.WeakConcepts, domain.DifficultyEasy)
	if err != nil {
		s.refund(ctx, session.UserID, s.cfg.GenerationCost)
		return fmt.Errorf("failed to generate remediation: %w", err)
	}

	session.Stage = domain.StageRemediationLearn
	session.Payload = &domain.StagePayload{
		Kind:       domain.PayloadKindLesson,
		LessonText: pack.LessonText,
		Flashcards: pack.Flashcards,
		DeckID:     uuid.New(),
	}

	return s.commitTransition(ctx, session, fromStage, s.cfg.GenerationCost)
}

// enterFinalQuiz generates the final validation quiz over the given concepts
// and moves to the final quiz stage.
func (s *Service) enterFinalQuiz(
	ctx context.Context,
	session *domain.MasterySession,
	concepts []string,
	fromStage domain.Stage,
) error {
	if len(concepts) == 0 {
		// Untagged diagnostics leave nothing to target; the course itself
		// becomes the topic.
		concepts = []string{session.CourseRef}
	}

	if err := s.energy.Spend(ctx, session.UserID, s.cfg.GenerationCost); err != nil {
		return err
	}

	questions, err := s.generator.GenerateValidationQuiz(
		ctx, session.CourseText, concepts, domain.DifficultyHard)
	if err != nil {
		s.refund(ctx, session.UserID, s.cfg.GenerationCost)
		return fmt.Errorf("failed to generate final quiz: %w", err)
	}

	session.Stage = domain.StageFinalQuiz
	session.Payload = &domain.StagePayload{
		Kind:      domain.PayloadKindQuiz,
		Questions: questions,
	}

	return s.commitTransition(ctx, session, fromStage, s.cfg.GenerationCost)
}

// enterPractice generates a practice exercise at the given difficulty and
// moves to the matching practice stage.
func (s *Service) enterPractice(
	ctx context.Context,
	session *domain.MasterySession,
	difficulty domain.Difficulty,
	fromStage domain.Stage,
) error {
	if err := s.energy.Spend(ctx, session.UserID, s.cfg.GenerationCost); err != nil {
		return err
	}

	exercise, err := s.generator.GeneratePracticeExercise(ctx, session.CourseText, difficulty)
	if err != nil {
		s.refund(ctx, session.UserID, s.cfg.GenerationCost)
		return fmt.Errorf("failed to generate practice exercise: %w", err)
	}

	if difficulty == domain.DifficultyHard {
		session.Stage = domain.StagePracticeHard
	} else {
		session.Stage = domain.StagePracticeEasy
	}
	session.Payload = &domain.StagePayload{
		Kind:       domain.PayloadKindExercise,
		Exercise:   exercise,
		Difficulty: difficulty,
	}

	return s.commitTransition(ctx, session, fromStage, s.cfg.GenerationCost)
}

// complete moves the session to success and credits the one-time completion
// reward. The reward claim rides on the same statement as the stage change,
// so a concurrent duplicate completion observes awarded=false and grants
// nothing.
func (s *Service) complete(ctx context.Context, session *domain.MasterySession) (*Outcome, error) {
	awarded, err := s.sessions.MarkCompleted(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to complete session: %w", err)
	}

	session.Stage = domain.StageSuccess
	session.Payload = nil

	outcome := &Outcome{Session: session}
	if !awarded {
		return outcome, nil
	}

	reward := int64(s.cfg.CompletionXP)
	snapshot, leveledUp, err := s.progression.AddXP(ctx, session.UserID, reward)
	if err != nil {
		// The reward claim is already persisted; failing the request now
		// would invite a retry that can never re-claim it.
		s.logger.ErrorContext(ctx, "completion reward claimed but xp credit failed",
			slog.String("session_id", session.ID.String()),
			slog.String("user_id", session.UserID.String()),
			slog.String("error", err.Error()))
		return outcome, nil
	}

	outcome.Completion = &CompletionSummary{
		XPAwarded: reward,
		Level:     snapshot.Level,
		LeveledUp: leveledUp,
	}

	s.logger.InfoContext(ctx, "session completed",
		slog.String("session_id", session.ID.String()),
		slog.String("user_id", session.UserID.String()),
		slog.Int64("xp_awarded", reward))

	return outcome, nil
}

// conceptsOf returns the distinct concept tags of a question set, in first
// occurrence order.
func conceptsOf(questions []domain.QuizQuestion) []string {
	seen := make(map[string]struct{})
	var concepts []string

	for _, q := range questions {
		if q.Concept == "" {
			continue
		}
		if _, ok := seen[q.Concept]; ok {
			continue
		}
		seen[q.Concept] = struct{}{}
		concepts = append(concepts, q.Concept)
	}

	return concepts
}
