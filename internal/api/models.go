package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-api/internal/domain"
	"github.com/lumenlearn/mastery-api/internal/service/mastery"
	"github.com/lumenlearn/mastery-api/internal/service/progression"
)

// The response models are sanitized views of the domain types. Correct
// answer indexes and concept tags stay server-side; a client holding a
// pending quiz payload learns nothing about its answers.

// QuestionView is a quiz question as presented to the learner.
type QuestionView struct {
	Index    int      `json:"index"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// FlashcardView is a flashcard as presented to the learner.
type FlashcardView struct {
	Index int    `json:"index"`
	Front string `json:"front"`
	Back  string `json:"back"`
}

// ExerciseView is a practice exercise as presented to the learner.
type ExerciseView struct {
	Instruction string `json:"instruction"`
	Context     string `json:"context,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
}

// PayloadView is the sanitized stage payload.
type PayloadView struct {
	Kind       string          `json:"kind"`
	Questions  []QuestionView  `json:"questions,omitempty"`
	LessonText string          `json:"lesson_text,omitempty"`
	Flashcards []FlashcardView `json:"flashcards,omitempty"`
	DeckID     string          `json:"deck_id,omitempty"`
	Exercise   *ExerciseView   `json:"exercise,omitempty"`
}

// SessionResponse represents the response data for a mastery session.
type SessionResponse struct {
	ID           string         `json:"id"`
	Stage        string         `json:"stage"`
	CourseRef    string         `json:"course_ref"`
	WeakConcepts []string       `json:"weak_concepts,omitempty"`
	Attempts     map[string]int `json:"attempts,omitempty"`
	Payload      *PayloadView   `json:"payload,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// AnswerResultView reports whether a single answer was correct, without
// revealing which option would have been.
type AnswerResultView struct {
	QuestionIndex int  `json:"question_index"`
	Correct       bool `json:"correct"`
}

// QuizResultView is the graded outcome of a quiz submission.
type QuizResultView struct {
	CorrectCount int                `json:"correct_count"`
	Total        int                `json:"total"`
	Results      []AnswerResultView `json:"results"`
}

// EvaluationView is the graded outcome of a free-response practice answer.
type EvaluationView struct {
	Score      int    `json:"score"`
	IsCorrect  bool   `json:"is_correct"`
	Feedback   string `json:"feedback"`
	Correction string `json:"correction,omitempty"`
}

// CompletionView reports the one-time completion reward.
type CompletionView struct {
	XPAwarded int64 `json:"xp_awarded"`
	Level     int   `json:"level"`
	LeveledUp bool  `json:"leveled_up"`
}

// OutcomeResponse is the response for session operations: the session after
// the transition plus whatever the operation produced.
type OutcomeResponse struct {
	Session    SessionResponse `json:"session"`
	Quiz       *QuizResultView `json:"quiz,omitempty"`
	Evaluation *EvaluationView `json:"evaluation,omitempty"`
	Completion *CompletionView `json:"completion,omitempty"`
}

// CardProgressResponse represents the response data for flashcard progress.
type CardProgressResponse struct {
	DeckID         string    `json:"deck_id"`
	CardIndex      int       `json:"card_index"`
	EaseFactor     float64   `json:"ease_factor"`
	IntervalDays   int       `json:"interval_days"`
	Repetitions    int       `json:"repetitions"`
	LastReviewedAt time.Time `json:"last_reviewed_at"`
	NextReviewAt   time.Time `json:"next_review_at"`
}

// EnergyResponse represents the response data for an energy account.
type EnergyResponse struct {
	Balance        int       `json:"balance"`
	IsPremium      bool      `json:"is_premium"`
	LastRefillDate time.Time `json:"last_refill_date"`
}

// ReferralResponse reports the outcome of a referral credit request.
type ReferralResponse struct {
	Credited bool           `json:"credited"`
	Account  EnergyResponse `json:"account"`
}

// ProgressionResponse represents the response data for a progression
// snapshot.
type ProgressionResponse struct {
	XP               int64   `json:"xp"`
	Level            int     `json:"level"`
	LevelThreshold   int64   `json:"level_threshold"`
	NextThreshold    int64   `json:"next_threshold"`
	ProgressFraction float64 `json:"progress_fraction"`
	LeveledUp        bool    `json:"leveled_up,omitempty"`
}

// ConceptResponse represents the response data for a concept mastery signal.
type ConceptResponse struct {
	Name       string    `json:"name"`
	Weak       bool      `json:"weak"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// sessionToResponse converts a domain.MasterySession to a SessionResponse,
// stripping answer keys and concept tags from any quiz payload.
func sessionToResponse(session *domain.MasterySession) SessionResponse {
	resp := SessionResponse{
		ID:           session.ID.String(),
		Stage:        string(session.Stage),
		CourseRef:    session.CourseRef,
		WeakConcepts: session.WeakConcepts,
		CreatedAt:    session.CreatedAt,
		UpdatedAt:    session.UpdatedAt,
	}

	if len(session.Attempts) > 0 {
		resp.Attempts = make(map[string]int, len(session.Attempts))
		for stage, count := range session.Attempts {
			resp.Attempts[string(stage)] = count
		}
	}

	if session.Payload != nil {
		resp.Payload = payloadToView(session.Payload)
	}

	return resp
}

func payloadToView(payload *domain.StagePayload) *PayloadView {
	view := &PayloadView{
		Kind:       string(payload.Kind),
		LessonText: payload.LessonText,
	}

	for i, q := range payload.Questions {
		view.Questions = append(view.Questions, QuestionView{
			Index:    i,
			Question: q.Question,
			Options:  q.Options,
		})
	}

	for i, card := range payload.Flashcards {
		view.Flashcards = append(view.Flashcards, FlashcardView{
			Index: i,
			Front: card.Front,
			Back:  card.Back,
		})
	}

	if payload.DeckID != uuid.Nil {
		view.DeckID = payload.DeckID.String()
	}

	if payload.Exercise != nil {
		view.Exercise = &ExerciseView{
			Instruction: payload.Exercise.Instruction,
			Context:     payload.Exercise.Context,
			Difficulty:  string(payload.Difficulty),
		}
	}

	return view
}

// outcomeToResponse converts a mastery.Outcome to an OutcomeResponse.
func outcomeToResponse(outcome *mastery.Outcome) OutcomeResponse {
	resp := OutcomeResponse{
		Session: sessionToResponse(outcome.Session),
	}

	if outcome.Quiz != nil {
		quiz := &QuizResultView{
			CorrectCount: outcome.Quiz.CorrectCount,
			Total:        len(outcome.Quiz.Results),
		}
		for _, a := range outcome.Quiz.Results {
			quiz.Results = append(quiz.Results, AnswerResultView{
				QuestionIndex: a.QuestionIndex,
				Correct:       a.Correct,
			})
		}
		resp.Quiz = quiz
	}

	if outcome.Evaluation != nil {
		resp.Evaluation = &EvaluationView{
			Score:      outcome.Evaluation.Score,
			IsCorrect:  outcome.Evaluation.IsCorrect,
			Feedback:   outcome.Evaluation.Feedback,
			Correction: outcome.Evaluation.Correction,
		}
	}

	if outcome.Completion != nil {
		resp.Completion = &CompletionView{
			XPAwarded: outcome.Completion.XPAwarded,
			Level:     outcome.Completion.Level,
			LeveledUp: outcome.Completion.LeveledUp,
		}
	}

	return resp
}

// energyToResponse converts a domain.EnergyAccount to an EnergyResponse.
func energyToResponse(account *domain.EnergyAccount) EnergyResponse {
	return EnergyResponse{
		Balance:        account.Balance,
		IsPremium:      account.IsPremium,
		LastRefillDate: account.LastRefillDate,
	}
}

// snapshotToResponse converts a progression.Snapshot to a ProgressionResponse.
func snapshotToResponse(snapshot *progression.Snapshot, leveledUp bool) ProgressionResponse {
	return ProgressionResponse{
		XP:               snapshot.XP,
		Level:            snapshot.Level,
		LevelThreshold:   snapshot.LevelThreshold,
		NextThreshold:    snapshot.NextThreshold,
		ProgressFraction: snapshot.ProgressFraction,
		LeveledUp:        leveledUp,
	}
}

// progressToResponse converts a domain.FlashcardProgress to a
// CardProgressResponse.
func progressToResponse(progress *domain.FlashcardProgress) CardProgressResponse {
	return CardProgressResponse{
		DeckID:         progress.DeckID.String(),
		CardIndex:      progress.CardIndex,
		EaseFactor:     progress.EaseFactor,
		IntervalDays:   progress.IntervalDays,
		Repetitions:    progress.Repetitions,
		LastReviewedAt: progress.LastReviewedAt,
		NextReviewAt:   progress.NextReviewAt(),
	}
}
