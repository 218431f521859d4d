package domain

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// Progression account validation errors.
var (
	ErrEmptyProgressionUserID = errors.New("progression account user ID cannot be empty")
	ErrNegativeXP             = errors.New("xp cannot be negative")
)

// ProgressionAccount is a user's experience point total. XP only ever grows;
// level and level progress are derived from XP and never stored separately.
type ProgressionAccount struct {
	UserID    uuid.UUID `json:"user_id"`
	XP        int64     `json:"xp"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProgressionAccount creates an account with zero experience.
func NewProgressionAccount(userID uuid.UUID) (*ProgressionAccount, error) {
	account := &ProgressionAccount{
		UserID:    userID,
		XP:        0,
		UpdatedAt: time.Now().UTC(),
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}

	return account, nil
}

// Validate checks if the ProgressionAccount has valid data.
func (a *ProgressionAccount) Validate() error {
	if a.UserID == uuid.Nil {
		return ErrEmptyProgressionUserID
	}

	if a.XP < 0 {
		return ErrNegativeXP
	}

	return nil
}

// Level derives the level for an XP total: floor(sqrt(xp/100)) + 1.
// Level 1 starts at 0 XP. Negative totals are treated as zero.
func Level(xp int64) int {
	if xp <= 0 {
		return 1
	}
	return int(math.Floor(math.Sqrt(float64(xp)/100))) + 1
}

// XPThreshold returns the cumulative XP required to complete the given
// level, i.e. the total at which Level first reports level+1.
func XPThreshold(level int) int64 {
	if level < 0 {
		return 0
	}
	return int64(level) * int64(level) * 100
}

// ProgressFraction returns how far into the current level an XP total sits,
// clamped to [0, 1]. A degenerate level span yields 0.
func ProgressFraction(xp int64) float64 {
	level := Level(xp)
	base := XPThreshold(level - 1)
	next := XPThreshold(level)

	if next == base {
		return 0
	}

	fraction := float64(xp-base) / float64(next-base)
	if fraction < 0 {
		return 0
	}
	if fraction > 1 {
		return 1
	}
	return fraction
}

// Level returns the account's derived level.
func (a *ProgressionAccount) Level() int {
	return Level(a.XP)
}

// ProgressFraction returns the account's derived progress within its level.
func (a *ProgressionAccount) ProgressFraction() float64 {
	return ProgressFraction(a.XP)
}
