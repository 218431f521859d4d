package srs

// Params defines the configurable parameters of the scheduling algorithm.
// The defaults reproduce the classic SM-2 constants. The ease factor has a
// floor but no ceiling.
type Params struct {
	// InitialEaseFactor is assigned to a card on its first review.
	InitialEaseFactor float64

	// MinEaseFactor is the floor the ease factor is clamped to.
	MinEaseFactor float64

	// EaseBonus is added to the ease factor on a remembered review.
	EaseBonus float64

	// EasePenalty is subtracted from the ease factor on a forgotten review.
	EasePenalty float64

	// FirstInterval and SecondInterval are the fixed intervals, in days,
	// for the first and second consecutive remembered reviews.
	FirstInterval  int
	SecondInterval int
}

// NewDefaultParams returns the standard SM-2 style parameters.
func NewDefaultParams() *Params {
	return &Params{
		InitialEaseFactor: 2.5,
		MinEaseFactor:     1.3,
		EaseBonus:         0.1,
		EasePenalty:       0.2,
		FirstInterval:     1,
		SecondInterval:    6,
	}
}
