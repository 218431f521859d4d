package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Flashcard progress validation errors.
var (
	ErrEmptyProgressUserID = errors.New("flashcard progress user ID cannot be empty")
	ErrEmptyProgressDeckID = errors.New("flashcard progress deck ID cannot be empty")
	ErrInvalidCardIndex    = errors.New("card index must be greater than or equal to 0")
	ErrInvalidInterval     = errors.New("interval must be at least 1 day")
	ErrInvalidEaseFactor   = errors.New("ease factor must be at least 1.3")
	ErrInvalidRepetitions  = errors.New("repetitions must be greater than or equal to 0")
)

// Default scheduling values for a card that has never been reviewed.
const (
	DefaultEaseFactor   = 2.5
	MinEaseFactor       = 1.3
	DefaultIntervalDays = 1
)

// FlashcardProgress tracks a user's spaced repetition state for a single
// card, identified by deck ID and card index. Cards are addressed by index
// rather than content identity so that equal-looking cards in different
// positions schedule independently. Progress is created on first review and
// never deleted by the engine; deck deletion is an external concern.
type FlashcardProgress struct {
	UserID         uuid.UUID `json:"user_id"`
	DeckID         uuid.UUID `json:"deck_id"`
	CardIndex      int       `json:"card_index"`
	EaseFactor     float64   `json:"ease_factor"`
	IntervalDays   int       `json:"interval_days"`
	Repetitions    int       `json:"repetitions"`
	LastReviewedAt time.Time `json:"last_reviewed_at"`
}

// NewFlashcardProgress creates progress for a card that has never been
// reviewed. The card is due immediately; LastReviewedAt is the zero time
// until the first review is recorded.
func NewFlashcardProgress(userID, deckID uuid.UUID, cardIndex int) (*FlashcardProgress, error) {
	progress := &FlashcardProgress{
		UserID:       userID,
		DeckID:       deckID,
		CardIndex:    cardIndex,
		EaseFactor:   DefaultEaseFactor,
		IntervalDays: DefaultIntervalDays,
		Repetitions:  0,
	}

	if err := progress.Validate(); err != nil {
		return nil, err
	}

	return progress, nil
}

// Validate checks if the FlashcardProgress has valid data.
func (p *FlashcardProgress) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrEmptyProgressUserID
	}

	if p.DeckID == uuid.Nil {
		return ErrEmptyProgressDeckID
	}

	if p.CardIndex < 0 {
		return ErrInvalidCardIndex
	}

	if p.IntervalDays < DefaultIntervalDays {
		return ErrInvalidInterval
	}

	if p.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}

	if p.Repetitions < 0 {
		return ErrInvalidRepetitions
	}

	return nil
}

// NextReviewAt returns the implied due date: the last review plus the
// current interval. For never-reviewed cards the zero time is returned,
// meaning the card is due now.
func (p *FlashcardProgress) NextReviewAt() time.Time {
	if p.LastReviewedAt.IsZero() {
		return time.Time{}
	}
	return p.LastReviewedAt.AddDate(0, 0, p.IntervalDays)
}
