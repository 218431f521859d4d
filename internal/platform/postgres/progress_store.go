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

// PostgresProgressStore implements the store.FlashcardProgressStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProgressStore creates a new PostgreSQL implementation of the
// FlashcardProgressStore interface. If logger is nil, a default logger will
// be used.
func NewPostgresProgressStore(db store.DBTX, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

// Ensure PostgresProgressStore implements store.FlashcardProgressStore interface.
var _ store.FlashcardProgressStore = (*PostgresProgressStore)(nil)

// Get implements store.FlashcardProgressStore.Get.
func (s *PostgresProgressStore) Get(
	ctx context.Context,
	userID, deckID uuid.UUID,
	cardIndex int,
) (*domain.FlashcardProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, deck_id, card_index, ease_factor, interval_days, repetitions, last_reviewed_at
		FROM flashcard_progress
		WHERE user_id = $1 AND deck_id = $2 AND card_index = $3
	`

	var p domain.FlashcardProgress
	err := s.db.QueryRowContext(ctx, query, userID, deckID, cardIndex).Scan(
		&p.UserID,
		&p.DeckID,
		&p.CardIndex,
		&p.EaseFactor,
		&p.IntervalDays,
		&p.Repetitions,
		&p.LastReviewedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProgressNotFound
		}
		log.Error("failed to get flashcard progress",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("deck_id", deckID.String()),
			slog.Int("card_index", cardIndex))
		return nil, MapError(err)
	}

	return &p, nil
}

// Upsert implements store.FlashcardProgressStore.Upsert.
func (s *PostgresProgressStore) Upsert(ctx context.Context, progress *domain.FlashcardProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO flashcard_progress
			(user_id, deck_id, card_index, ease_factor, interval_days, repetitions, last_reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, deck_id, card_index)
		DO UPDATE SET
			ease_factor = EXCLUDED.ease_factor,
			interval_days = EXCLUDED.interval_days,
			repetitions = EXCLUDED.repetitions,
			last_reviewed_at = EXCLUDED.last_reviewed_at
	`
	_, err := s.db.ExecContext(ctx, query,
		progress.UserID,
		progress.DeckID,
		progress.CardIndex,
		progress.EaseFactor,
		progress.IntervalDays,
		progress.Repetitions,
		progress.LastReviewedAt,
	)
	if err != nil {
		log.Error("failed to upsert flashcard progress",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()),
			slog.String("deck_id", progress.DeckID.String()),
			slog.Int("card_index", progress.CardIndex))
		return MapError(err)
	}

	return nil
}

// ListDeck implements store.FlashcardProgressStore.ListDeck.
func (s *PostgresProgressStore) ListDeck(
	ctx context.Context,
	userID, deckID uuid.UUID,
) ([]*domain.FlashcardProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, deck_id, card_index, ease_factor, interval_days, repetitions, last_reviewed_at
		FROM flashcard_progress
		WHERE user_id = $1 AND deck_id = $2
		ORDER BY card_index ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID, deckID)
	if err != nil {
		log.Error("failed to list deck progress",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("deck_id", deckID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var progress []*domain.FlashcardProgress
	for rows.Next() {
		var p domain.FlashcardProgress
		if err := rows.Scan(
			&p.UserID,
			&p.DeckID,
			&p.CardIndex,
			&p.EaseFactor,
			&p.IntervalDays,
			&p.Repetitions,
			&p.LastReviewedAt,
		); err != nil {
			return nil, MapError(err)
		}
		progress = append(progress, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return progress, nil
}
