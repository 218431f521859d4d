package mastery

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenlearn/mastery-api/internal/config"
	"github.com/lumenlearn/mastery-api/internal/domain"
	"github.com/lumenlearn/mastery-api/internal/mocks"
	"github.com/lumenlearn/mastery-api/internal/service/energy"
	"github.com/lumenlearn/mastery-api/internal/service/progression"
	"github.com/lumenlearn/mastery-api/internal/store"
)

const (
	testAllotment      = 100
	testGenerationCost = 5
	testEvaluationCost = 2
	testCompletionXP   = 500
)

type fixture struct {
	svc         *Service
	sessions    *mocks.InMemorySessionStore
	concepts    *mocks.InMemoryConceptStore
	generator   *mocks.MockGenerator
	energy      *energy.Service
	progression *progression.Service
	userID      uuid.UUID
	ctx         context.Context
}

func diagnosticQuestions() []domain.QuizQuestion {
	return []domain.QuizQuestion{
		{Question: "What is 1/2 + 1/4?", Options: []string{"3/4", "2/6"}, CorrectIndex: 0, Concept: "fractions"},
		{Question: "What is 0.5 as a fraction?", Options: []string{"1/2", "1/5"}, CorrectIndex: 0, Concept: "decimals"},
		{Question: "What is 3/4 - 1/4?", Options: []string{"1/2", "2/4"}, CorrectIndex: 0, Concept: "fractions"},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	sessions := mocks.NewInMemorySessionStore()
	concepts := mocks.NewInMemoryConceptStore()
	generator := &mocks.MockGenerator{
		Questions: diagnosticQuestions(),
		Pack: &domain.RemediationPack{
			LessonText: "A fraction names part of a whole.",
			Flashcards: []domain.Flashcard{
				{Front: "1/2 + 1/4", Back: "3/4"},
				{Front: "0.5 as a fraction", Back: "1/2"},
			},
		},
		Exercise: &domain.PracticeExercise{
			Instruction: "Explain how to add two fractions with different denominators.",
		},
		Evaluation: &domain.Evaluation{Score: 90, IsCorrect: true, Feedback: "Good."},
	}

	energySvc := energy.NewService(mocks.NewInMemoryEnergyStore(), nil, testAllotment)
	progressionSvc := progression.NewService(mocks.NewInMemoryProgressionStore(), nil)

	svc := NewService(sessions, concepts, generator, energySvc, progressionSvc, nil, config.EngineConfig{
		DailyEnergyAllotment: testAllotment,
		GenerationCost:       testGenerationCost,
		EvaluationCost:       testEvaluationCost,
		CompletionXP:         testCompletionXP,
	})

	return &fixture{
		svc:         svc,
		sessions:    sessions,
		concepts:    concepts,
		generator:   generator,
		energy:      energySvc,
		progression: progressionSvc,
		userID:      uuid.New(),
		ctx:         context.Background(),
	}
}

func (f *fixture) balance(t *testing.T) int {
	t.Helper()
	account, err := f.energy.Peek(f.ctx, f.userID)
	require.NoError(t, err)
	return account.Balance
}

// drain spends the entire remaining balance so the next charge fails.
func (f *fixture) drain(t *testing.T) {
	t.Helper()
	require.NoError(t, f.energy.Spend(f.ctx, f.userID, f.balance(t)))
}

func (f *fixture) start(t *testing.T) *domain.MasterySession {
	t.Helper()
	session, err := f.svc.StartSession(f.ctx, f.userID, "fractions-101", "course text about fractions")
	require.NoError(t, err)
	return session
}

// toPracticeEasy marches a fresh session along the no-remediation path into
// easy practice: perfect diagnostic, then final quiz.
func (f *fixture) toPracticeEasy(t *testing.T) *domain.MasterySession {
	t.Helper()
	session := f.start(t)

	outcome, err := f.svc.SubmitDiagnostic(f.ctx, f.userID, session.ID, []int{0, 0, 0})
	require.NoError(t, err)
	require.Equal(t, domain.StageFinalQuiz, outcome.Session.Stage)

	outcome, err = f.svc.SubmitFinalQuiz(f.ctx, f.userID, session.ID, []int{0, 0, 0})
	require.NoError(t, err)
	require.Equal(t, domain.StagePracticeEasy, outcome.Session.Stage)

	return outcome.Session
}

func TestStartSession(t *testing.T) {
	f := newFixture(t)

	session := f.start(t)

	assert.Equal(t, domain.StageDiagnostic, session.Stage)
	assert.Equal(t, "fractions-101", session.CourseRef)
	require.NotNil(t, session.Payload)
	assert.Equal(t, domain.PayloadKindQuiz, session.Payload.Kind)
	assert.Len(t, session.Payload.Questions, 3)

	assert.Equal(t, testAllotment-testGenerationCost, f.balance(t))

	saved, err := f.sessions.GetByID(f.ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StageDiagnostic, saved.Stage)
}

func TestStartSessionRefundsWhenGenerationFails(t *testing.T) {
	f := newFixture(t)
	f.generator.GenerateDiagnosticFn = func(ctx context.Context, courseText string) ([]domain.QuizQuestion, error) {
		return nil, errors.New("model unavailable")
	}

	_, err := f.svc.StartSession(f.ctx, f.userID, "fractions-101", "course text")
	require.Error(t, err)

	// The charge for the discarded generation came back.
	assert.Equal(t, testAllotment, f.balance(t))
}

func TestStartSessionInsufficientEnergy(t *testing.T) {
	f := newFixture(t)
	f.drain(t)

	_, err := f.svc.StartSession(f.ctx, f.userID, "fractions-101", "course text")
	assert.ErrorIs(t, err, energy.ErrInsufficientEnergy)

	// Generation is never attempted on a failed charge.
	assert.Equal(t, 0, f.generator.Calls("GenerateDiagnostic"))
}

func TestSubmitDiagnosticPerfectScoreSkipsRemediation(t *testing.T) {
	f := newFixture(t)
	session := f.start(t)

	var gotConcepts []string
	var gotTier domain.Difficulty
	f.generator.GenerateValidationQuizFn = func(
		ctx context.Context,
		courseText string,
		concepts []string,
		tier domain.Difficulty,
	) ([]domain.QuizQuestion, error) {
		gotConcepts = concepts
		gotTier = tier
		return diagnosticQuestions(), nil
	}

	outcome, err := f.svc.SubmitDiagnostic(f.ctx, f.userID, session.ID, []int{0, 0, 0})
	require.NoError(t, err)

	assert.Equal(t, domain.StageFinalQuiz, outcome.Session.Stage)
	require.NotNil(t, outcome.Quiz)
	assert.Equal(t, 3, outcome.Quiz.CorrectCount)
	assert.Equal(t, 1, outcome.Session.Attempts[domain.StageDiagnostic])

	// The final quiz covers everything the diagnostic touched, at the hard tier.
	assert.Equal(t, []string{"fractions", "decimals"}, gotConcepts)
	assert.Equal(t, domain.DifficultyHard, gotTier)

	// Concept signals recorded as strong.
	weak, err := f.concepts.ListWeakByUser(f.ctx, f.userID)
	require.NoError(t, err)
	assert.Empty(t, weak)
}

func TestSubmitDiagnosticWeakConceptsEnterRemediation(t *testing.T) {
	f := newFixture(t)
	session := f.start(t)

	// First question wrong: "fractions" is weak even though the third
	// fractions question is answered correctly.
	outcome, err := f.svc.SubmitDiagnostic(f.ctx, f.userID, session.ID, []int{1, 0, 0})
	require.NoError(t, err)

	assert.Equal(t, domain.StageRemediationLearn, outcome.Session.Stage)
	assert.Equal(t, []string{"fractions"}, outcome.Session.WeakConcepts)
	require.NotNil(t, outcome.Session.Payload)
	assert.Equal(t, domain.PayloadKindLesson, outcome.Session.Payload.Kind)
	assert.NotEmpty(t, outcome.Session.Payload.LessonText)
	assert.NotEqual(t, uuid.Nil, outcome.Session.Payload.DeckID, "remediation mints a flashcard deck")

	weak, err := f.concepts.ListWeakByUser(f.ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, weak, 1)
	assert.Equal(t, "fractions", weak[0].Name)

	// Two charged generations so far: diagnostic and remediation pack.
	assert.Equal(t, testAllotment-2*testGenerationCost, f.balance(t))
}

func TestSubmitDiagnosticWrongStage(t *testing.T) {
	f := newFixture(t)
	session := f.toPracticeEasy(t)

	_, err := f.svc.SubmitDiagnostic(f.ctx, f.userID, session.ID, []int{0, 0, 0})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestSubmitDiagnosticAnswerMismatch(t *testing.T) {
	f := newFixture(t)
	session := f.start(t)

	_, err := f.svc.SubmitDiagnostic(f.ctx, f.userID, session.ID, []int{0})
	assert.ErrorIs(t, err, domain.ErrValidation)

	// A rejected submission leaves the session untouched.
	saved, err := f.sessions.GetByID(f.ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StageDiagnostic, saved.Stage)
}

func TestAdvanceLearnToFlashcardsIsFree(t *testing.T) {
	f := newFixture(t)
	session := f.start(t)
	_, err := f.svc.SubmitDiagnostic(f.ctx, f.userID, session.ID, []int{1, 0, 0})
	require.NoError(t, err)
	before := f.balance(t)

	outcome, err := f.svc.Advance(f.ctx, f.userID, session.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.StageRemediationFlashcards, outcome.Session.Stage)
	assert.Equal(t, before, f.balance(t), "learn to flashcards costs nothing")
}

func TestAdvanceFlashcardsGeneratesRemediationQuiz(t *testing.T) {
	f := newFixture(t)
	session := f.start(t)
	_, err := f.svc.SubmitDiagnostic(f.ctx, f.userID, session.ID, []int{1, 0, 0})
	require.NoError(t, err)
	_, err = f.svc.Advance(f.ctx, f.userID, session.ID)
	require.NoError(t, err)
	before := f.balance(t)

	var gotConcepts []string
	var gotTier domain.Difficulty
	f.generator.GenerateValidationQuizFn = func(
		ctx context.Context,
		courseText string,
		concepts []string,
		tier domain.Difficulty,
	) ([]domain.QuizQuestion, error) {
		gotConcepts = concepts
		gotTier = tier
		return diagnosticQuestions(), nil
	}

	outcome, err := f.svc.Advance(f.ctx, f.userID, session.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.StageRemediationQuiz, outcome.Session.Stage)
	assert.Equal(t, domain.PayloadKindQuiz, outcome.Session.Payload.Kind)
	assert.Equal(t, []string{"fractions"}, gotConcepts, "quiz targets the weak concepts")
	assert.Equal(t, domain.DifficultyEasy, gotTier)
	assert.Equal(t, before-testGenerationCost, f.balance(t))
}

func TestAdvanceWrongStage(t *testing.T) {
	f := newFixture(t)
	session := f.start(t)

	_, err := f.svc.Advance(f.ctx, f.userID, session.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestSubmitRemediationQuizNeverGates(t *testing.T) {
	f := newFixture(t)
	session := f.start(t)
	_, err := f.svc.SubmitDiagnostic(f.ctx, f.userID, session.ID, []int{1, 0, 0})
	require.NoError(t, err)
	_, err = f.svc.Advance(f.ctx, f.userID, session.ID)
	require.NoError(t, err)
	_, err = f.svc.Advance(f.ctx, f.userID, session.ID)
	require.NoError(t, err)

	// Every answer wrong: the session still moves to the final quiz.
	outcome, err := f.svc.SubmitRemediationQuiz(f.ctx, f.userID, session.ID, []int{1, 1, 1})
	require.NoError(t, err)

	assert.Equal(t, domain.StageFinalQuiz, outcome.Session.Stage)
	require.NotNil(t, outcome.Quiz)
	assert.Equal(t, 0, outcome.Quiz.CorrectCount)
}

func TestSubmitFinalQuizEntersEasyPractice(t *testing.T) {
	f := newFixture(t)
	session := f.start(t)
	_, err := f.svc.SubmitDiagnostic(f.ctx, f.userID, session.ID, []int{0, 0, 0})
	require.NoError(t, err)

	outcome, err := f.svc.SubmitFinalQuiz(f.ctx, f.userID, session.ID, []int{1, 1, 1})
	require.NoError(t, err)

	assert.Equal(t, domain.StagePracticeEasy, outcome.Session.Stage)
	require.NotNil(t, outcome.Session.Payload)
	assert.Equal(t, domain.PayloadKindExercise, outcome.Session.Payload.Kind)
	assert.Equal(t, domain.DifficultyEasy, outcome.Session.Payload.Difficulty)
}

func TestSubmitPracticeAnswer(t *testing.T) {
	f := newFixture(t)
	session := f.toPracticeEasy(t)
	before := f.balance(t)

	outcome, err := f.svc.SubmitPracticeAnswer(f.ctx, f.userID, session.ID, "Find a common denominator first.")
	require.NoError(t, err)

	require.NotNil(t, outcome.Evaluation)
	assert.Equal(t, 90, outcome.Evaluation.Score)
	assert.Equal(t, domain.StagePracticeEasy, outcome.Session.Stage)
	assert.Equal(t, 1, outcome.Session.Attempts[domain.StagePracticeEasy])
	assert.Equal(t, before-testEvaluationCost, f.balance(t))

	// The attempt counter is persisted.
	saved, err := f.sessions.GetByID(f.ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Attempts[domain.StagePracticeEasy])
}

func TestSubmitPracticeAnswerEmpty(t *testing.T) {
	f := newFixture(t)
	session := f.toPracticeEasy(t)
	before := f.balance(t)

	_, err := f.svc.SubmitPracticeAnswer(f.ctx, f.userID, session.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, before, f.balance(t))
	assert.Equal(t, 0, f.generator.Calls("EvaluateFreeResponse"))
}

func TestSubmitPracticeAnswerRefundsWhenEvaluationFails(t *testing.T) {
	f := newFixture(t)
	session := f.toPracticeEasy(t)
	before := f.balance(t)

	f.generator.EvaluateFreeResponseFn = func(
		ctx context.Context,
		instruction, studentAnswer, courseText string,
	) (*domain.Evaluation, error) {
		return nil, errors.New("model unavailable")
	}

	_, err := f.svc.SubmitPracticeAnswer(f.ctx, f.userID, session.ID, "an answer")
	require.Error(t, err)
	assert.Equal(t, before, f.balance(t))
}

func TestSubmitPracticeResultEasyToHard(t *testing.T) {
	f := newFixture(t)
	session := f.toPracticeEasy(t)

	var gotDifficulty domain.Difficulty
	f.generator.GeneratePracticeExerciseFn = func(
		ctx context.Context,
		courseText string,
		difficulty domain.Difficulty,
	) (*domain.PracticeExercise, error) {
		gotDifficulty = difficulty
		return &domain.PracticeExercise{Instruction: "Prove the sum is in lowest terms."}, nil
	}

	outcome, err := f.svc.SubmitPracticeResult(f.ctx, f.userID, session.ID, true)
	require.NoError(t, err)

	assert.Equal(t, domain.StagePracticeHard, outcome.Session.Stage)
	assert.Equal(t, domain.DifficultyHard, gotDifficulty)
	assert.Nil(t, outcome.Completion, "hard mode opt-in is not completion")
}

func TestSubmitPracticeResultCompletesAndAwardsOnce(t *testing.T) {
	f := newFixture(t)
	session := f.toPracticeEasy(t)

	outcome, err := f.svc.SubmitPracticeResult(f.ctx, f.userID, session.ID, false)
	require.NoError(t, err)

	assert.Equal(t, domain.StageSuccess, outcome.Session.Stage)
	assert.Nil(t, outcome.Session.Payload)
	require.NotNil(t, outcome.Completion)
	assert.Equal(t, int64(testCompletionXP), outcome.Completion.XPAwarded)
	assert.True(t, outcome.Completion.LeveledUp)

	snapshot, err := f.progression.Get(f.ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, int64(testCompletionXP), snapshot.XP)

	// Reporting a result on the completed session is a no-op: no second
	// reward, no error.
	outcome, err = f.svc.SubmitPracticeResult(f.ctx, f.userID, session.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.StageSuccess, outcome.Session.Stage)
	assert.Nil(t, outcome.Completion)

	snapshot, err = f.progression.Get(f.ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, int64(testCompletionXP), snapshot.XP)
}

func TestSubmitPracticeResultFromHardCompletes(t *testing.T) {
	f := newFixture(t)
	session := f.toPracticeEasy(t)

	_, err := f.svc.SubmitPracticeResult(f.ctx, f.userID, session.ID, true)
	require.NoError(t, err)

	// From hard practice, wanting harder practice still completes.
	outcome, err := f.svc.SubmitPracticeResult(f.ctx, f.userID, session.ID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.StageSuccess, outcome.Session.Stage)
	require.NotNil(t, outcome.Completion)
}

func TestInsufficientEnergyLeavesSessionUnchanged(t *testing.T) {
	f := newFixture(t)
	session := f.start(t)
	f.drain(t)

	_, err := f.svc.SubmitDiagnostic(f.ctx, f.userID, session.ID, []int{1, 0, 0})
	assert.ErrorIs(t, err, energy.ErrInsufficientEnergy)

	saved, err := f.sessions.GetByID(f.ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StageDiagnostic, saved.Stage)
}

func TestGetSessionEnforcesOwnership(t *testing.T) {
	f := newFixture(t)
	session := f.start(t)

	_, err := f.svc.GetSession(f.ctx, uuid.New(), session.ID)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)

	got, err := f.svc.GetSession(f.ctx, f.userID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
}

func TestAbandon(t *testing.T) {
	f := newFixture(t)
	session := f.start(t)

	require.NoError(t, f.svc.Abandon(f.ctx, f.userID, session.ID))

	saved, err := f.sessions.GetByID(f.ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StageAbandoned, saved.Stage)
	assert.Nil(t, saved.Payload)

	// Abandoned sessions reject everything, including another abandon.
	_, err = f.svc.SubmitDiagnostic(f.ctx, f.userID, session.ID, []int{0, 0, 0})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.ErrorIs(t, f.svc.Abandon(f.ctx, f.userID, session.ID), domain.ErrInvalidTransition)
}

func TestConceptSignalsRefreshAcrossQuizzes(t *testing.T) {
	f := newFixture(t)
	session := f.start(t)

	// Diagnostic marks fractions weak.
	_, err := f.svc.SubmitDiagnostic(f.ctx, f.userID, session.ID, []int{1, 0, 0})
	require.NoError(t, err)
	_, err = f.svc.Advance(f.ctx, f.userID, session.ID)
	require.NoError(t, err)
	_, err = f.svc.Advance(f.ctx, f.userID, session.ID)
	require.NoError(t, err)

	// A clean remediation quiz flips the signal back to strong.
	_, err = f.svc.SubmitRemediationQuiz(f.ctx, f.userID, session.ID, []int{0, 0, 0})
	require.NoError(t, err)

	weak, err := f.concepts.ListWeakByUser(f.ctx, f.userID)
	require.NoError(t, err)
	assert.Empty(t, weak)

	all, err := f.svc.Concepts(f.ctx, f.userID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
