package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func validQuestions() []QuizQuestion {
	return []QuizQuestion{
		{Question: "What is 2+2?", Options: []string{"3", "4"}, CorrectIndex: 1, Concept: "addition"},
		{Question: "What is 3*3?", Options: []string{"9", "6"}, CorrectIndex: 0, Concept: "multiplication"},
		{Question: "What is 10/2?", Options: []string{"5", "2"}, CorrectIndex: 0, Concept: "division"},
	}
}

func TestNewMasterySession(t *testing.T) {
	userID := uuid.New()

	session, err := NewMasterySession(userID, "algebra-101", "course material", validQuestions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if session.Stage != StageDiagnostic {
		t.Errorf("Expected diagnostic stage, got %q", session.Stage)
	}
	if session.Payload == nil || session.Payload.Kind != PayloadKindQuiz {
		t.Error("Expected quiz payload")
	}

	_, err = NewMasterySession(uuid.Nil, "algebra-101", "text", validQuestions())
	if err != ErrSessionUserIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrSessionUserIDEmpty, err)
	}

	_, err = NewMasterySession(userID, "", "text", validQuestions())
	if err != ErrSessionCourseEmpty {
		t.Errorf("Expected error %v, got %v", ErrSessionCourseEmpty, err)
	}

	_, err = NewMasterySession(userID, "algebra-101", "text", nil)
	if !errors.Is(err, ErrCorruptPayload) {
		t.Errorf("Expected corrupt payload error for empty questions, got %v", err)
	}
}

func TestGradeQuiz(t *testing.T) {
	questions := validQuestions()

	result, err := GradeQuiz(questions, []int{1, 1, 0})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.CorrectCount != 2 {
		t.Errorf("Expected 2 correct, got %d", result.CorrectCount)
	}
	if !result.Results[0].Correct || result.Results[1].Correct || !result.Results[2].Correct {
		t.Errorf("Unexpected per-question results: %+v", result.Results)
	}

	_, err = GradeQuiz(questions, []int{1})
	if !errors.Is(err, ErrAnswerCountMismatch) {
		t.Errorf("Expected answer count mismatch, got %v", err)
	}
}

func TestQuizResultWeakConcepts(t *testing.T) {
	questions := []QuizQuestion{
		{Question: "q1", Options: []string{"a", "b"}, CorrectIndex: 0, Concept: "fractions"},
		{Question: "q2", Options: []string{"a", "b"}, CorrectIndex: 0, Concept: "fractions"},
		{Question: "q3", Options: []string{"a", "b"}, CorrectIndex: 0, Concept: "decimals"},
		{Question: "q4", Options: []string{"a", "b"}, CorrectIndex: 0}, // untagged
	}

	// All wrong: duplicates deduplicate, untagged contributes nothing.
	result, err := GradeQuiz(questions, []int{1, 1, 1, 1})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	weak := result.WeakConcepts()
	if len(weak) != 2 || weak[0] != "fractions" || weak[1] != "decimals" {
		t.Errorf("Expected [fractions decimals], got %v", weak)
	}

	// All correct: no weak concepts.
	result, err = GradeQuiz(questions, []int{0, 0, 0, 0})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.WeakConcepts()) != 0 {
		t.Errorf("Expected no weak concepts, got %v", result.WeakConcepts())
	}
}

func TestStagePayloadValidate(t *testing.T) {
	deckID := uuid.New()

	cases := []struct {
		name    string
		stage   Stage
		payload *StagePayload
		wantErr bool
	}{
		{
			name:    "quiz payload for diagnostic",
			stage:   StageDiagnostic,
			payload: &StagePayload{Kind: PayloadKindQuiz, Questions: validQuestions()},
		},
		{
			name:    "lesson payload for learn stage",
			stage:   StageRemediationLearn,
			payload: &StagePayload{Kind: PayloadKindLesson, LessonText: "lesson", DeckID: deckID},
		},
		{
			name:    "exercise payload for practice",
			stage:   StagePracticeEasy,
			payload: &StagePayload{Kind: PayloadKindExercise, Exercise: &PracticeExercise{Instruction: "do it"}},
		},
		{
			name:    "missing payload",
			stage:   StageDiagnostic,
			payload: nil,
			wantErr: true,
		},
		{
			name:    "wrong kind for stage",
			stage:   StageFinalQuiz,
			payload: &StagePayload{Kind: PayloadKindLesson, LessonText: "lesson", DeckID: deckID},
			wantErr: true,
		},
		{
			name:    "quiz payload with no questions",
			stage:   StageRemediationQuiz,
			payload: &StagePayload{Kind: PayloadKindQuiz},
			wantErr: true,
		},
		{
			name:    "lesson payload without deck",
			stage:   StageRemediationFlashcards,
			payload: &StagePayload{Kind: PayloadKindLesson, LessonText: "lesson"},
			wantErr: true,
		},
		{
			name:    "exercise payload without exercise",
			stage:   StagePracticeHard,
			payload: &StagePayload{Kind: PayloadKindExercise},
			wantErr: true,
		},
		{
			name:    "question with out of range answer",
			stage:   StageDiagnostic,
			payload: &StagePayload{Kind: PayloadKindQuiz, Questions: []QuizQuestion{{Question: "q", Options: []string{"a", "b"}, CorrectIndex: 5}}},
			wantErr: true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.payload.Validate(c.stage)
			if c.wantErr {
				if !errors.Is(err, ErrCorruptPayload) {
					t.Errorf("Expected corrupt payload error, got %v", err)
				}
			} else if err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestRecordAttempt(t *testing.T) {
	session := &MasterySession{}

	session.RecordAttempt(StageDiagnostic)
	session.RecordAttempt(StageDiagnostic)
	session.RecordAttempt(StageFinalQuiz)

	if session.Attempts[StageDiagnostic] != 2 {
		t.Errorf("Expected 2 diagnostic attempts, got %d", session.Attempts[StageDiagnostic])
	}
	if session.Attempts[StageFinalQuiz] != 1 {
		t.Errorf("Expected 1 final quiz attempt, got %d", session.Attempts[StageFinalQuiz])
	}
}

func TestStageProperties(t *testing.T) {
	if !StageSuccess.IsTerminal() || !StageAbandoned.IsTerminal() {
		t.Error("Expected success and abandoned to be terminal")
	}
	if StageDiagnostic.IsTerminal() || StagePracticeHard.IsTerminal() {
		t.Error("Expected non-terminal stages")
	}
	if Stage("analyzing").IsValid() {
		t.Error("Analysis is not a persistable stage")
	}
}
