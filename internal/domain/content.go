package domain

import (
	"errors"
	"strings"
)

// Content-specific validation errors.
var (
	// ErrQuestionTextEmpty is returned when a quiz question has no text.
	ErrQuestionTextEmpty = errors.New("question text cannot be empty")

	// ErrQuestionOptionsInvalid is returned when a quiz question has fewer
	// than two options.
	ErrQuestionOptionsInvalid = errors.New("question must have at least two options")

	// ErrQuestionAnswerOutOfRange is returned when the correct index does
	// not point at one of the question's options.
	ErrQuestionAnswerOutOfRange = errors.New("correct index out of range")

	// ErrFlashcardEmpty is returned when a flashcard is missing its front
	// or back text.
	ErrFlashcardEmpty = errors.New("flashcard front and back cannot be empty")

	// ErrExerciseInstructionEmpty is returned when a practice exercise has
	// no instruction.
	ErrExerciseInstructionEmpty = errors.New("exercise instruction cannot be empty")
)

// Difficulty selects the tier of generated content.
type Difficulty string

// Possible difficulty values.
const (
	DifficultyEasy Difficulty = "easy"
	DifficultyHard Difficulty = "hard"
)

// IsValid reports whether the difficulty is a known tier.
func (d Difficulty) IsValid() bool {
	return d == DifficultyEasy || d == DifficultyHard
}

// QuizQuestion is a single multiple-choice question produced by the content
// generator. Concept is the knowledge unit the question exercises; it may be
// empty for untagged questions, in which case a wrong answer contributes no
// weakness signal.
type QuizQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Concept      string   `json:"concept,omitempty"`
}

// Validate checks if the QuizQuestion has valid data.
func (q *QuizQuestion) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return ErrQuestionTextEmpty
	}

	if len(q.Options) < 2 {
		return ErrQuestionOptionsInvalid
	}

	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return ErrQuestionAnswerOutOfRange
	}

	return nil
}

// Flashcard is a front/back memorization item produced by the content
// generator as part of a remediation pack.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Validate checks if the Flashcard has valid data.
func (f *Flashcard) Validate() error {
	if strings.TrimSpace(f.Front) == "" || strings.TrimSpace(f.Back) == "" {
		return ErrFlashcardEmpty
	}
	return nil
}

// RemediationPack is the lesson content generated for a set of weak
// concepts: explanatory text plus a deck of flashcards to memorize.
type RemediationPack struct {
	LessonText string      `json:"lesson_text"`
	Flashcards []Flashcard `json:"flashcards"`
}

// PracticeExercise is a free-response exercise produced by the content
// generator. Context carries supporting material the student may need.
type PracticeExercise struct {
	Instruction string `json:"instruction"`
	Context     string `json:"context,omitempty"`
}

// Validate checks if the PracticeExercise has valid data.
func (e *PracticeExercise) Validate() error {
	if strings.TrimSpace(e.Instruction) == "" {
		return ErrExerciseInstructionEmpty
	}
	return nil
}

// Evaluation is the generator's judgement of a free-response answer.
type Evaluation struct {
	Score      int    `json:"score"` // 0..100
	IsCorrect  bool   `json:"is_correct"`
	Feedback   string `json:"feedback"`
	Correction string `json:"correction,omitempty"`
}
