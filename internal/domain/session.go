package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Session-specific validation errors.
var (
	// ErrSessionIDEmpty is returned when a session ID is empty or nil.
	ErrSessionIDEmpty = errors.New("session ID cannot be empty")

	// ErrSessionUserIDEmpty is returned when a session's user ID is empty or nil.
	ErrSessionUserIDEmpty = errors.New("session user ID cannot be empty")

	// ErrSessionCourseEmpty is returned when a session is missing its
	// course reference or course text.
	ErrSessionCourseEmpty = errors.New("session course reference and text cannot be empty")

	// ErrAnswerCountMismatch is returned when the number of submitted
	// answers does not match the number of questions in the stage payload.
	ErrAnswerCountMismatch = errors.New("answer count does not match question count")
)

// Stage is a single named state of the mastery path state machine.
type Stage string

// Mastery path stages. Diagnostic is the initial stage; Success and
// Abandoned are the only terminal stages. Analysis of quiz answers happens
// inside the transition out of a quiz stage and is never persisted as a
// stage of its own.
const (
	StageDiagnostic            Stage = "diagnostic"
	StageRemediationLearn      Stage = "remediation_learn"
	StageRemediationFlashcards Stage = "remediation_flashcards"
	StageRemediationQuiz       Stage = "remediation_quiz"
	StageFinalQuiz             Stage = "final_quiz"
	StagePracticeEasy          Stage = "practice_easy"
	StagePracticeHard          Stage = "practice_hard"
	StageSuccess               Stage = "success"
	StageAbandoned             Stage = "abandoned"
)

// IsValid reports whether the stage is one of the known mastery path stages.
func (s Stage) IsValid() bool {
	switch s {
	case StageDiagnostic, StageRemediationLearn, StageRemediationFlashcards,
		StageRemediationQuiz, StageFinalQuiz, StagePracticeEasy,
		StagePracticeHard, StageSuccess, StageAbandoned:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the stage ends the session. Terminal sessions
// accept no further operations.
func (s Stage) IsTerminal() bool {
	return s == StageSuccess || s == StageAbandoned
}

// PayloadKind identifies the shape of a stage payload.
type PayloadKind string

// Possible payload kinds.
const (
	PayloadKindQuiz     PayloadKind = "quiz"
	PayloadKindLesson   PayloadKind = "lesson"
	PayloadKindExercise PayloadKind = "exercise"
)

// StagePayload is the content the session's current stage presents to the
// learner. It is persisted alongside the stage so answers can be graded
// server-side; correct indexes and concept tags never leave the server.
type StagePayload struct {
	Kind       PayloadKind       `json:"kind"`
	Questions  []QuizQuestion    `json:"questions,omitempty"`
	LessonText string            `json:"lesson_text,omitempty"`
	Flashcards []Flashcard       `json:"flashcards,omitempty"`
	DeckID     uuid.UUID         `json:"deck_id,omitempty"`
	Exercise   *PracticeExercise `json:"exercise,omitempty"`
	Difficulty Difficulty        `json:"difficulty,omitempty"`
}

// Validate checks the payload's structural integrity for the given stage.
// A payload that fails this check was either corrupted in storage or written
// by an incompatible version; it must never be silently misinterpreted.
func (p *StagePayload) Validate(stage Stage) error {
	if p == nil {
		return fmt.Errorf("%w: missing payload for stage %q", ErrCorruptPayload, stage)
	}

	switch stage {
	case StageDiagnostic, StageRemediationQuiz, StageFinalQuiz:
		if p.Kind != PayloadKindQuiz {
			return fmt.Errorf("%w: stage %q expects quiz payload, got %q", ErrCorruptPayload, stage, p.Kind)
		}
		if len(p.Questions) == 0 {
			return fmt.Errorf("%w: quiz payload has no questions", ErrCorruptPayload)
		}
		for i := range p.Questions {
			if err := p.Questions[i].Validate(); err != nil {
				return fmt.Errorf("%w: question %d: %v", ErrCorruptPayload, i, err)
			}
		}
	case StageRemediationLearn, StageRemediationFlashcards:
		if p.Kind != PayloadKindLesson {
			return fmt.Errorf("%w: stage %q expects lesson payload, got %q", ErrCorruptPayload, stage, p.Kind)
		}
		if p.DeckID == uuid.Nil {
			return fmt.Errorf("%w: lesson payload has no deck ID", ErrCorruptPayload)
		}
		for i := range p.Flashcards {
			if err := p.Flashcards[i].Validate(); err != nil {
				return fmt.Errorf("%w: flashcard %d: %v", ErrCorruptPayload, i, err)
			}
		}
	case StagePracticeEasy, StagePracticeHard:
		if p.Kind != PayloadKindExercise {
			return fmt.Errorf("%w: stage %q expects exercise payload, got %q", ErrCorruptPayload, stage, p.Kind)
		}
		if p.Exercise == nil {
			return fmt.Errorf("%w: exercise payload has no exercise", ErrCorruptPayload)
		}
		if err := p.Exercise.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptPayload, err)
		}
	case StageSuccess, StageAbandoned:
		// Terminal stages carry no payload.
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStage, stage)
	}

	return nil
}

// MasterySession is one run of the mastery path state machine for a user and
// course. The session exclusively owns its stage and payload; all transitions
// go through the orchestrator and are persisted before any response is sent.
type MasterySession struct {
	ID           uuid.UUID     `json:"id"`
	UserID       uuid.UUID     `json:"user_id"`
	CourseRef    string        `json:"course_ref"`
	CourseText   string        `json:"course_text"`
	Stage        Stage         `json:"stage"`
	WeakConcepts []string      `json:"weak_concepts"`
	Attempts     map[Stage]int `json:"attempts"`
	Payload      *StagePayload `json:"payload,omitempty"`
	XPAwarded    bool          `json:"xp_awarded"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// NewMasterySession creates a session in the diagnostic stage with the given
// diagnostic questions as its payload. Returns an error if validation fails.
func NewMasterySession(
	userID uuid.UUID,
	courseRef, courseText string,
	questions []QuizQuestion,
) (*MasterySession, error) {
	now := time.Now().UTC()
	session := &MasterySession{
		ID:         uuid.New(),
		UserID:     userID,
		CourseRef:  strings.TrimSpace(courseRef),
		CourseText: courseText,
		Stage:      StageDiagnostic,
		Attempts:   make(map[Stage]int),
		Payload: &StagePayload{
			Kind:      PayloadKindQuiz,
			Questions: questions,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	return session, nil
}

// Validate checks if the MasterySession has valid data, including the
// structural integrity of its stage payload.
func (s *MasterySession) Validate() error {
	if s.ID == uuid.Nil {
		return ErrSessionIDEmpty
	}

	if s.UserID == uuid.Nil {
		return ErrSessionUserIDEmpty
	}

	if s.CourseRef == "" || strings.TrimSpace(s.CourseText) == "" {
		return ErrSessionCourseEmpty
	}

	if !s.Stage.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStage, s.Stage)
	}

	if !s.Stage.IsTerminal() {
		if err := s.Payload.Validate(s.Stage); err != nil {
			return err
		}
	}

	return nil
}

// RecordAttempt increments the attempt counter for the given stage.
func (s *MasterySession) RecordAttempt(stage Stage) {
	if s.Attempts == nil {
		s.Attempts = make(map[Stage]int)
	}
	s.Attempts[stage]++
}

// AnswerResult is the graded outcome of a single quiz question.
type AnswerResult struct {
	QuestionIndex int    `json:"question_index"`
	ChosenIndex   int    `json:"chosen_index"`
	CorrectIndex  int    `json:"correct_index"`
	Correct       bool   `json:"correct"`
	Concept       string `json:"concept,omitempty"`
}

// QuizResult is the graded outcome of a full quiz submission. It is produced
// once per attempt and consumed immediately by the orchestrator's analysis;
// it is not persisted beyond the transition it drives.
type QuizResult struct {
	Results      []AnswerResult `json:"results"`
	CorrectCount int            `json:"correct_count"`
}

// GradeQuiz evaluates the chosen answer indexes against the questions.
// Answers must be submitted for every question, in question order.
func GradeQuiz(questions []QuizQuestion, answers []int) (*QuizResult, error) {
	if len(answers) != len(questions) {
		return nil, fmt.Errorf("%w: got %d answers for %d questions",
			ErrAnswerCountMismatch, len(answers), len(questions))
	}

	result := &QuizResult{
		Results: make([]AnswerResult, len(questions)),
	}

	for i, q := range questions {
		correct := answers[i] == q.CorrectIndex
		if correct {
			result.CorrectCount++
		}
		result.Results[i] = AnswerResult{
			QuestionIndex: i,
			ChosenIndex:   answers[i],
			CorrectIndex:  q.CorrectIndex,
			Correct:       correct,
			Concept:       q.Concept,
		}
	}

	return result, nil
}

// WeakConcepts returns the distinct concepts attached to wrongly answered
// questions, in order of first occurrence. Duplicate tags deduplicate;
// untagged questions contribute nothing.
func (r *QuizResult) WeakConcepts() []string {
	seen := make(map[string]struct{})
	var weak []string

	for _, a := range r.Results {
		if a.Correct || a.Concept == "" {
			continue
		}
		if _, ok := seen[a.Concept]; ok {
			continue
		}
		seen[a.Concept] = struct{}{}
		weak = append(weak, a.Concept)
	}

	return weak
}
