package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Energy account validation errors.
var (
	ErrEmptyEnergyUserID = errors.New("energy account user ID cannot be empty")
	ErrNegativeBalance   = errors.New("energy balance cannot be negative")
)

// EnergyAccount is a per-user consumable quota for AI-backed operations.
// The balance refills to a fixed daily allotment at most once per calendar
// day (a flat reset, never additive), and referral credits may push it above
// the allotment. Premium accounts have an infinite effective balance: spends
// succeed without mutating the stored balance.
type EnergyAccount struct {
	UserID         uuid.UUID `json:"user_id"`
	Balance        int       `json:"balance"`
	IsPremium      bool      `json:"is_premium"`
	LastRefillDate time.Time `json:"last_refill_date"`
}

// NewEnergyAccount creates an account holding the full daily allotment,
// refilled as of the given day.
func NewEnergyAccount(userID uuid.UUID, allotment int, day time.Time) (*EnergyAccount, error) {
	account := &EnergyAccount{
		UserID:         userID,
		Balance:        allotment,
		LastRefillDate: DayOf(day),
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}

	return account, nil
}

// Validate checks if the EnergyAccount has valid data.
func (a *EnergyAccount) Validate() error {
	if a.UserID == uuid.Nil {
		return ErrEmptyEnergyUserID
	}

	if a.Balance < 0 {
		return ErrNegativeBalance
	}

	return nil
}

// NeedsRefill reports whether the account's last refill happened on an
// earlier calendar day than the given time (UTC).
func (a *EnergyAccount) NeedsRefill(now time.Time) bool {
	return !a.LastRefillDate.Equal(DayOf(now))
}

// DayOf truncates a time to its UTC calendar day. Refill comparisons are
// made on whole days so two refills within the same day are a single no-op.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
