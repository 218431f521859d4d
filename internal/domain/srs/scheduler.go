// Package srs implements the spaced repetition scheduler: a simplified SM-2
// variant with a binary remembered/forgotten grade. Reviews are pure
// functions of the prior progress; identical inputs always produce identical
// schedules, and updates return new progress values rather than mutating the
// input.
package srs

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-api/internal/domain"
)

// Scheduler errors.
var (
	ErrMissingIdentity = errors.New("review requires user, deck, and card identity")
)

// Scheduler computes review schedules for flashcards.
type Scheduler interface {
	// Review applies a review outcome to the card's progress. A nil prior
	// progress means the card has never been reviewed; initial values are
	// assigned before the outcome is applied.
	Review(
		prior *domain.FlashcardProgress,
		userID, deckID uuid.UUID,
		cardIndex int,
		remembered bool,
		now time.Time,
	) (*domain.FlashcardProgress, error)
}

// Verify interface compliance at compile time.
var _ Scheduler = (*scheduler)(nil)

type scheduler struct {
	params *Params
}

// NewScheduler creates a Scheduler with the given parameters.
// Nil params selects the defaults.
func NewScheduler(params *Params) Scheduler {
	if params == nil {
		params = NewDefaultParams()
	}
	return &scheduler{params: params}
}

// Review implements Scheduler.Review.
//
// Remembered: repetitions increment and the interval follows the SM-2
// ladder (1 day, then 6 days, then interval*ease rounded); the ease factor
// grows by the bonus. Forgotten: repetitions and interval reset and the ease
// factor shrinks by the penalty. The ease factor never drops below the
// configured floor.
func (s *scheduler) Review(
	prior *domain.FlashcardProgress,
	userID, deckID uuid.UUID,
	cardIndex int,
	remembered bool,
	now time.Time,
) (*domain.FlashcardProgress, error) {
	if userID == uuid.Nil || deckID == uuid.Nil || cardIndex < 0 {
		return nil, ErrMissingIdentity
	}

	next := &domain.FlashcardProgress{
		UserID:       userID,
		DeckID:       deckID,
		CardIndex:    cardIndex,
		EaseFactor:   s.params.InitialEaseFactor,
		IntervalDays: s.params.FirstInterval,
		Repetitions:  0,
	}
	if prior != nil {
		next.EaseFactor = prior.EaseFactor
		next.IntervalDays = prior.IntervalDays
		next.Repetitions = prior.Repetitions
	}

	if remembered {
		next.Repetitions++
		switch next.Repetitions {
		case 1:
			next.IntervalDays = s.params.FirstInterval
		case 2:
			next.IntervalDays = s.params.SecondInterval
		default:
			next.IntervalDays = int(math.Round(float64(next.IntervalDays) * next.EaseFactor))
		}
		next.EaseFactor = clampEase(next.EaseFactor+s.params.EaseBonus, s.params.MinEaseFactor)
	} else {
		next.Repetitions = 0
		next.IntervalDays = s.params.FirstInterval
		next.EaseFactor = clampEase(next.EaseFactor-s.params.EasePenalty, s.params.MinEaseFactor)
	}

	next.LastReviewedAt = now.UTC()

	if err := next.Validate(); err != nil {
		return nil, err
	}

	return next, nil
}

func clampEase(ease, min float64) float64 {
	if ease < min {
		return min
	}
	return ease
}
