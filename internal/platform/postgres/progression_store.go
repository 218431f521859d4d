package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-api/internal/domain"
	"github.com/lumenlearn/mastery-api/internal/platform/logger"
	"github.com/lumenlearn/mastery-api/internal/store"
)

// PostgresProgressionStore implements the store.ProgressionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProgressionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProgressionStore creates a new PostgreSQL implementation of the
// ProgressionStore interface. If logger is nil, a default logger will be used.
func NewPostgresProgressionStore(db store.DBTX, logger *slog.Logger) *PostgresProgressionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProgressionStore{
		db:     db,
		logger: logger.With(slog.String("component", "progression_store")),
	}
}

// Ensure PostgresProgressionStore implements store.ProgressionStore interface.
var _ store.ProgressionStore = (*PostgresProgressionStore)(nil)

// GetOrCreate implements store.ProgressionStore.GetOrCreate.
func (s *PostgresProgressionStore) GetOrCreate(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.ProgressionAccount, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrEmptyProgressionUserID)
	}

	insert := `
		INSERT INTO progression_accounts (user_id, xp, updated_at)
		VALUES ($1, 0, NOW())
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, insert, userID); err != nil {
		log.Error("failed to create progression account",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	query := `
		SELECT user_id, xp, updated_at
		FROM progression_accounts
		WHERE user_id = $1
	`

	var account domain.ProgressionAccount
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&account.UserID,
		&account.XP,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProgressionAccountNotFound
		}
		log.Error("failed to get progression account",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	return &account, nil
}

// AddXP implements store.ProgressionStore.AddXP. The increment happens in
// the database, so concurrent awards for the same user each land exactly
// once and the returned total reflects all of them.
func (s *PostgresProgressionStore) AddXP(
	ctx context.Context,
	userID uuid.UUID,
	amount int64,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if userID == uuid.Nil {
		return 0, fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrEmptyProgressionUserID)
	}
	if amount < 0 {
		return 0, fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrNegativeAmount)
	}

	query := `
		INSERT INTO progression_accounts (user_id, xp, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET xp = progression_accounts.xp + EXCLUDED.xp, updated_at = NOW()
		RETURNING xp
	`

	var newXP int64
	if err := s.db.QueryRowContext(ctx, query, userID, amount).Scan(&newXP); err != nil {
		log.Error("failed to add xp",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int64("amount", amount))
		return 0, MapError(err)
	}

	log.Debug("xp added",
		slog.String("user_id", userID.String()),
		slog.Int64("amount", amount),
		slog.Int64("new_total", newXP))
	return newXP, nil
}
