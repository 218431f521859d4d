package generation

import (
	"context"

	"github.com/lumenlearn/mastery-api/internal/domain"
)

// ContentGenerator defines the boundary between the mastery engine and the
// external AI content service. The engine treats each method as an opaque
// function returning structured content; sequencing, retry policy, and state
// bookkeeping around these calls belong to the caller.
type ContentGenerator interface {
	// GenerateDiagnostic produces the concept-tagged multiple-choice quiz
	// that opens a session.
	GenerateDiagnostic(ctx context.Context, courseText string) ([]domain.QuizQuestion, error)

	// GenerateRemediation produces a lesson and flashcard deck targeting
	// the given weak concepts.
	GenerateRemediation(
		ctx context.Context,
		courseText string,
		weakConcepts []string,
		tier domain.Difficulty,
	) (*domain.RemediationPack, error)

	// GenerateValidationQuiz produces a quiz restricted to the given
	// concepts, used to validate remediation.
	GenerateValidationQuiz(
		ctx context.Context,
		courseText string,
		concepts []string,
		tier domain.Difficulty,
	) ([]domain.QuizQuestion, error)

	// GeneratePracticeExercise produces a free-response exercise at the
	// given difficulty.
	GeneratePracticeExercise(
		ctx context.Context,
		courseText string,
		difficulty domain.Difficulty,
	) (*domain.PracticeExercise, error)

	// EvaluateFreeResponse scores a student's answer to a practice
	// exercise against the course material.
	EvaluateFreeResponse(
		ctx context.Context,
		instruction, studentAnswer, courseText string,
	) (*domain.Evaluation, error)
}
