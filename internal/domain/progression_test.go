package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestLevel(t *testing.T) {
	cases := []struct {
		xp    int64
		level int
	}{
		{0, 1},
		{-50, 1},
		{99, 1},
		{100, 2},
		{399, 2},
		{400, 3},
		{899, 3},
		{900, 4},
		{10000, 11},
	}

	for _, c := range cases {
		if got := Level(c.xp); got != c.level {
			t.Errorf("Level(%d) = %d, want %d", c.xp, got, c.level)
		}
	}
}

func TestXPThreshold(t *testing.T) {
	if got := XPThreshold(0); got != 0 {
		t.Errorf("XPThreshold(0) = %d, want 0", got)
	}
	if got := XPThreshold(1); got != 100 {
		t.Errorf("XPThreshold(1) = %d, want 100", got)
	}
	if got := XPThreshold(3); got != 900 {
		t.Errorf("XPThreshold(3) = %d, want 900", got)
	}
	if got := XPThreshold(-2); got != 0 {
		t.Errorf("XPThreshold(-2) = %d, want 0", got)
	}

	// The threshold of level n is exactly where Level first reports n+1.
	for level := 1; level <= 20; level++ {
		at := XPThreshold(level)
		if got := Level(at); got != level+1 {
			t.Errorf("Level(XPThreshold(%d)) = %d, want %d", level, got, level+1)
		}
		if got := Level(at - 1); got != level {
			t.Errorf("Level(XPThreshold(%d)-1) = %d, want %d", level, got, level)
		}
	}
}

func TestProgressFraction(t *testing.T) {
	if got := ProgressFraction(0); got != 0 {
		t.Errorf("ProgressFraction(0) = %f, want 0", got)
	}
	if got := ProgressFraction(50); got != 0.5 {
		t.Errorf("ProgressFraction(50) = %f, want 0.5", got)
	}
	// 250 XP: level 2 spans 100..400, so 150/300.
	if got := ProgressFraction(250); got != 0.5 {
		t.Errorf("ProgressFraction(250) = %f, want 0.5", got)
	}

	// Fraction is always within [0, 1].
	for xp := int64(0); xp <= 5000; xp += 37 {
		f := ProgressFraction(xp)
		if f < 0 || f > 1 {
			t.Fatalf("ProgressFraction(%d) = %f, outside [0, 1]", xp, f)
		}
	}
}

func TestNewProgressionAccount(t *testing.T) {
	userID := uuid.New()

	account, err := NewProgressionAccount(userID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if account.XP != 0 {
		t.Errorf("Expected zero XP, got %d", account.XP)
	}
	if account.Level() != 1 {
		t.Errorf("Expected level 1, got %d", account.Level())
	}

	_, err = NewProgressionAccount(uuid.Nil)
	if err != ErrEmptyProgressionUserID {
		t.Errorf("Expected error %v, got %v", ErrEmptyProgressionUserID, err)
	}
}
