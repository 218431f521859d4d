package energy

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenlearn/mastery-api/internal/mocks"
)

const allotment = 30

func newTestService(t *testing.T) (*Service, *mocks.InMemoryEnergyStore, *time.Time) {
	t.Helper()

	store := mocks.NewInMemoryEnergyStore()
	svc := NewService(store, nil, allotment)

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	return svc, store, &now
}

func TestPeekCreatesFullAccount(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	account, err := svc.Peek(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, allotment, account.Balance)
	assert.False(t, account.IsPremium)
}

func TestSpendAndRefund(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, svc.Spend(ctx, userID, 5))

	account, err := svc.Peek(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, allotment-5, account.Balance)

	require.NoError(t, svc.Refund(ctx, userID, 5))

	account, err = svc.Peek(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, allotment, account.Balance)
}

func TestSpendInsufficientBalance(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	err := svc.Spend(ctx, userID, allotment+1)
	assert.ErrorIs(t, err, ErrInsufficientEnergy)

	// Failed spend leaves the balance untouched.
	account, err := svc.Peek(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, allotment, account.Balance)
}

func TestSpendDrainsToZeroThenFails(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, svc.Spend(ctx, userID, allotment))

	account, err := svc.Peek(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, account.Balance)

	assert.ErrorIs(t, svc.Spend(ctx, userID, 1), ErrInsufficientEnergy)
}

func TestPremiumSpendsWithoutMutation(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.Peek(ctx, userID)
	require.NoError(t, err)
	store.SetPremium(userID, true)

	require.NoError(t, svc.Spend(ctx, userID, 10_000))

	account, err := svc.Peek(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, allotment, account.Balance, "premium spend must not mutate the balance")

	// Refunds are no-ops for premium accounts too.
	require.NoError(t, svc.Refund(ctx, userID, 10_000))
	account, err = svc.Peek(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, allotment, account.Balance)
}

func TestDailyRefillIsFlatAndOncePerDay(t *testing.T) {
	svc, _, now := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, svc.Spend(ctx, userID, 20))

	// Same day: no refill.
	account, err := svc.Peek(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, allotment-20, account.Balance)

	// Next day: flat reset to the allotment, not additive.
	*now = now.Add(24 * time.Hour)
	account, err = svc.Peek(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, allotment, account.Balance)

	// Peeking again the same day does not refill twice.
	require.NoError(t, svc.Spend(ctx, userID, 3))
	account, err = svc.Peek(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, allotment-3, account.Balance)
}

func TestRefillAppliesBeforeSpend(t *testing.T) {
	svc, _, now := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, svc.Spend(ctx, userID, allotment))

	// A spend on the next day sees the fresh allotment.
	*now = now.Add(24 * time.Hour)
	require.NoError(t, svc.Spend(ctx, userID, allotment))

	account, err := svc.Peek(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, account.Balance)
}

func TestCreditReferralIdempotent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	referralID := uuid.New()

	credited, account, err := svc.CreditReferral(ctx, userID, referralID, 15)
	require.NoError(t, err)
	assert.True(t, credited)
	assert.Equal(t, allotment+15, account.Balance, "referral credit may exceed the allotment")

	// Replay of the same referral event changes nothing.
	credited, account, err = svc.CreditReferral(ctx, userID, referralID, 15)
	require.NoError(t, err)
	assert.False(t, credited)
	assert.Equal(t, allotment+15, account.Balance)

	// A different referral event credits again.
	credited, account, err = svc.CreditReferral(ctx, userID, uuid.New(), 10)
	require.NoError(t, err)
	assert.True(t, credited)
	assert.Equal(t, allotment+25, account.Balance)
}

func TestSpendZeroIsNoOp(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, svc.Spend(ctx, userID, 0))

	account, err := svc.Peek(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, allotment, account.Balance)
}
