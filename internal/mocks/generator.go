package mocks

import (
	"context"
	"sync"

	"github.com/lumenlearn/mastery-api/internal/domain"
	"github.com/lumenlearn/mastery-api/internal/generation"
)

// MockGenerator implements generation.ContentGenerator for testing.
// Each method returns the configured default values unless a per-method
// override function is set. Call counts are tracked for verification.
type MockGenerator struct {
	// Custom behavior functions
	GenerateDiagnosticFn func(ctx context.Context, courseText string) ([]domain.QuizQuestion, error)
	GenerateRemediationFn func(
		ctx context.Context,
		courseText string,
		weakConcepts []string,
		tier domain.Difficulty,
	) (*domain.RemediationPack, error)
	GenerateValidationQuizFn func(
		ctx context.Context,
		courseText string,
		concepts []string,
		tier domain.Difficulty,
	) ([]domain.QuizQuestion, error)
	GeneratePracticeExerciseFn func(
		ctx context.Context,
		courseText string,
		difficulty domain.Difficulty,
	) (*domain.PracticeExercise, error)
	EvaluateFreeResponseFn func(
		ctx context.Context,
		instruction, studentAnswer, courseText string,
	) (*domain.Evaluation, error)

	// Default response values
	Questions  []domain.QuizQuestion
	Pack       *domain.RemediationPack
	Exercise   *domain.PracticeExercise
	Evaluation *domain.Evaluation
	Err        error

	mu    sync.Mutex
	calls map[string]int
}

var _ generation.ContentGenerator = (*MockGenerator)(nil)

// Calls returns how many times the named method was invoked.
func (m *MockGenerator) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockGenerator) record(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[method]++
}

// GenerateDiagnostic implements generation.ContentGenerator.
func (m *MockGenerator) GenerateDiagnostic(
	ctx context.Context,
	courseText string,
) ([]domain.QuizQuestion, error) {
	m.record("GenerateDiagnostic")
	if m.GenerateDiagnosticFn != nil {
		return m.GenerateDiagnosticFn(ctx, courseText)
	}
	return m.Questions, m.Err
}

// GenerateRemediation implements generation.ContentGenerator.
func (m *MockGenerator) GenerateRemediation(
	ctx context.Context,
	courseText string,
	weakConcepts []string,
	tier domain.Difficulty,
) (*domain.RemediationPack, error) {
	m.record("GenerateRemediation")
	if m.GenerateRemediationFn != nil {
		return m.GenerateRemediationFn(ctx, courseText, weakConcepts, tier)
	}
	return m.Pack, m.Err
}

// GenerateValidationQuiz implements generation.ContentGenerator.
func (m *MockGenerator) GenerateValidationQuiz(
	ctx context.Context,
	courseText string,
	concepts []string,
	tier domain.Difficulty,
) ([]domain.QuizQuestion, error) {
	m.record("GenerateValidationQuiz")
	if m.GenerateValidationQuizFn != nil {
		return m.GenerateValidationQuizFn(ctx, courseText, concepts, tier)
	}
	return m.Questions, m.Err
}

// GeneratePracticeExercise implements generation.ContentGenerator.
func (m *MockGenerator) GeneratePracticeExercise(
	ctx context.Context,
	courseText string,
	difficulty domain.Difficulty,
) (*domain.PracticeExercise, error) {
	m.record("GeneratePracticeExercise")
	if m.GeneratePracticeExerciseFn != nil {
		return m.GeneratePracticeExerciseFn(ctx, courseText, difficulty)
	}
	return m.Exercise, m.Err
}

// EvaluateFreeResponse implements generation.ContentGenerator.
func (m *MockGenerator) EvaluateFreeResponse(
	ctx context.Context,
	instruction, studentAnswer, courseText string,
) (*domain.Evaluation, error) {
	m.record("EvaluateFreeResponse")
	if m.EvaluateFreeResponseFn != nil {
		return m.EvaluateFreeResponseFn(ctx, instruction, studentAnswer, courseText)
	}
	return m.Evaluation, m.Err
}
