package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-api/internal/domain"
	"github.com/lumenlearn/mastery-api/internal/platform/logger"
	"github.com/lumenlearn/mastery-api/internal/store"
)

// PostgresEnergyStore implements the store.EnergyStore interface using a
// PostgreSQL database as the storage backend.
//
// Every balance mutation is a single conditional UPDATE, so concurrent
// spends, refills, and credits for the same user serialize on the row
// without any application-level locking.
type PostgresEnergyStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresEnergyStore creates a new PostgreSQL implementation of the
// EnergyStore interface. If logger is nil, a default logger will be used.
func NewPostgresEnergyStore(db store.DBTX, logger *slog.Logger) *PostgresEnergyStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresEnergyStore{
		db:     db,
		logger: logger.With(slog.String("component", "energy_store")),
	}
}

// Ensure PostgresEnergyStore implements store.EnergyStore interface.
var _ store.EnergyStore = (*PostgresEnergyStore)(nil)

// GetOrCreate implements store.EnergyStore.GetOrCreate.
func (s *PostgresEnergyStore) GetOrCreate(
	ctx context.Context,
	userID uuid.UUID,
	allotment int,
	day time.Time,
) (*domain.EnergyAccount, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrEmptyEnergyUserID)
	}

	// DO NOTHING rather than an upsert: a concurrent creator must not have
	// its balance reset by the loser of the race.
	insert := `
		INSERT INTO energy_accounts (user_id, balance, is_premium, last_refill_date)
		VALUES ($1, $2, FALSE, $3)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, insert, userID, allotment, domain.DayOf(day)); err != nil {
		log.Error("failed to create energy account",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	return s.get(ctx, userID)
}

// Refill implements store.EnergyStore.Refill. The date guard in the UPDATE
// means at most one flat reset lands per calendar day, no matter how many
// requests race.
func (s *PostgresEnergyStore) Refill(
	ctx context.Context,
	userID uuid.UUID,
	day time.Time,
	allotment int,
) (*domain.EnergyAccount, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE energy_accounts
		SET balance = $2, last_refill_date = $3
		WHERE user_id = $1 AND last_refill_date < $3
	`
	result, err := s.db.ExecContext(ctx, query, userID, allotment, domain.DayOf(day))
	if err != nil {
		log.Error("failed to refill energy account",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 1 {
		log.Debug("energy account refilled",
			slog.String("user_id", userID.String()),
			slog.Int("allotment", allotment))
	}

	return s.get(ctx, userID)
}

// Consume implements store.EnergyStore.Consume. The balance condition and
// the deduction live in one statement so an underfunded spend cannot slip
// in between a check and an update. Premium accounts match the condition
// but keep their balance untouched.
func (s *PostgresEnergyStore) Consume(ctx context.Context, userID uuid.UUID, amount int) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if amount < 0 {
		return false, fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrNegativeAmount)
	}

	query := `
		UPDATE energy_accounts
		SET balance = CASE WHEN is_premium THEN balance ELSE balance - $2 END
		WHERE user_id = $1 AND (is_premium OR balance >= $2)
	`
	result, err := s.db.ExecContext(ctx, query, userID, amount)
	if err != nil {
		log.Error("failed to consume energy",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int("amount", amount))
		return false, MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, MapError(err)
	}
	if rows == 1 {
		return true, nil
	}

	// No row matched: insufficient balance, or no account at all.
	exists, err := s.exists(ctx, userID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, store.ErrEnergyAccountNotFound
	}
	return false, nil
}

// Refund implements store.EnergyStore.Refund. Premium spends never deducted
// anything, so premium accounts are skipped.
func (s *PostgresEnergyStore) Refund(ctx context.Context, userID uuid.UUID, amount int) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if amount < 0 {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrNegativeAmount)
	}

	query := `
		UPDATE energy_accounts
		SET balance = balance + $2
		WHERE user_id = $1 AND NOT is_premium
	`
	result, err := s.db.ExecContext(ctx, query, userID, amount)
	if err != nil {
		log.Error("failed to refund energy",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int("amount", amount))
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rows == 0 {
		exists, err := s.exists(ctx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return store.ErrEnergyAccountNotFound
		}
	}

	log.Debug("energy refunded",
		slog.String("user_id", userID.String()),
		slog.Int("amount", amount))
	return nil
}

// CreditReferral implements store.EnergyStore.CreditReferral. The dedup
// insert and the balance credit run in a single CTE statement: the credit
// only applies when this call was the one that recorded the referral, so
// replays of the same referral event are no-ops.
func (s *PostgresEnergyStore) CreditReferral(
	ctx context.Context,
	userID, referralID uuid.UUID,
	amount int,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if amount < 0 {
		return false, fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrNegativeAmount)
	}

	query := `
		WITH claimed AS (
			INSERT INTO referral_credits (referral_id, user_id, amount, credited_at)
			VALUES ($2, $1, $3, NOW())
			ON CONFLICT (user_id, referral_id) DO NOTHING
			RETURNING amount
		)
		UPDATE energy_accounts
		SET balance = balance + (SELECT amount FROM claimed)
		WHERE user_id = $1 AND EXISTS (SELECT 1 FROM claimed)
	`
	result, err := s.db.ExecContext(ctx, query, userID, referralID, amount)
	if err != nil {
		log.Error("failed to credit referral",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("referral_id", referralID.String()))
		return false, MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, MapError(err)
	}
	if rows == 0 {
		return false, nil
	}

	log.Info("referral credited",
		slog.String("user_id", userID.String()),
		slog.String("referral_id", referralID.String()),
		slog.Int("amount", amount))
	return true, nil
}

func (s *PostgresEnergyStore) get(ctx context.Context, userID uuid.UUID) (*domain.EnergyAccount, error) {
	query := `
		SELECT user_id, balance, is_premium, last_refill_date
		FROM energy_accounts
		WHERE user_id = $1
	`

	var account domain.EnergyAccount
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&account.UserID,
		&account.Balance,
		&account.IsPremium,
		&account.LastRefillDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrEnergyAccountNotFound
		}
		return nil, MapError(err)
	}

	return &account, nil
}

func (s *PostgresEnergyStore) exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM energy_accounts WHERE user_id = $1`, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, MapError(err)
	}
	return true, nil
}
