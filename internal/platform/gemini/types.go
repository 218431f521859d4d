package gemini

import (
	"fmt"

	"github.com/lumenlearn/mastery-api/internal/domain"
	"github.com/lumenlearn/mastery-api/internal/generation"
)

// Response schemas the prompt templates demand from the model. Each schema
// is validated structurally before conversion; a schema that fails
// validation is a permanent ErrInvalidResponse, not a retry candidate.

type questionSchema struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Concept      string   `json:"concept"`
}

type quizResponse struct {
	Questions []questionSchema `json:"questions"`
}

func (r *quizResponse) toDomain() ([]domain.QuizQuestion, error) {
	if len(r.Questions) == 0 {
		return nil, fmt.Errorf("%w: no questions in response", generation.ErrInvalidResponse)
	}

	questions := make([]domain.QuizQuestion, len(r.Questions))
	for i, q := range r.Questions {
		questions[i] = domain.QuizQuestion{
			Question:     q.Question,
			Options:      q.Options,
			CorrectIndex: q.CorrectIndex,
			Concept:      q.Concept,
		}
		if err := questions[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", generation.ErrInvalidResponse, i, err)
		}
	}

	return questions, nil
}

type flashcardSchema struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type remediationResponse struct {
	LessonText string            `json:"lesson_text"`
	Flashcards []flashcardSchema `json:"flashcards"`
}

func (r *remediationResponse) toDomain() (*domain.RemediationPack, error) {
	if r.LessonText == "" {
		return nil, fmt.Errorf("%w: empty lesson text", generation.ErrInvalidResponse)
	}
	if len(r.Flashcards) == 0 {
		return nil, fmt.Errorf("%w: no flashcards in response", generation.ErrInvalidResponse)
	}

	pack := &domain.RemediationPack{
		LessonText: r.LessonText,
		Flashcards: make([]domain.Flashcard, len(r.Flashcards)),
	}
	for i, f := range r.Flashcards {
		pack.Flashcards[i] = domain.Flashcard{Front: f.Front, Back: f.Back}
		if err := pack.Flashcards[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: flashcard %d: %v", generation.ErrInvalidResponse, i, err)
		}
	}

	return pack, nil
}

type exerciseResponse struct {
	Instruction string `json:"instruction"`
	Context     string `json:"context"`
}

func (r *exerciseResponse) toDomain() (*domain.PracticeExercise, error) {
	exercise := &domain.PracticeExercise{
		Instruction: r.Instruction,
		Context:     r.Context,
	}
	if err := exercise.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidResponse, err)
	}
	return exercise, nil
}

type evaluationResponse struct {
	Score      int    `json:"score"`
	IsCorrect  bool   `json:"is_correct"`
	Feedback   string `json:"feedback"`
	Correction string `json:"correction"`
}

func (r *evaluationResponse) toDomain() (*domain.Evaluation, error) {
	if r.Score < 0 || r.Score > 100 {
		return nil, fmt.Errorf("%w: score %d out of range", generation.ErrInvalidResponse, r.Score)
	}
	return &domain.Evaluation{
		Score:      r.Score,
		IsCorrect:  r.IsCorrect,
		Feedback:   r.Feedback,
		Correction: r.Correction,
	}, nil
}
