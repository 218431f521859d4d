package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-api/internal/domain"
	"github.com/lumenlearn/mastery-api/internal/platform/logger"
	"github.com/lumenlearn/mastery-api/internal/store"
)

// PostgresConceptStore implements the store.ConceptStore interface
// using a PostgreSQL database as the storage backend.
type PostgresConceptStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresConceptStore creates a new PostgreSQL implementation of the
// ConceptStore interface. If logger is nil, a default logger will be used.
func NewPostgresConceptStore(db store.DBTX, logger *slog.Logger) *PostgresConceptStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresConceptStore{
		db:     db,
		logger: logger.With(slog.String("component", "concept_store")),
	}
}

// Ensure PostgresConceptStore implements store.ConceptStore interface.
var _ store.ConceptStore = (*PostgresConceptStore)(nil)

// Upsert implements store.ConceptStore.Upsert.
func (s *PostgresConceptStore) Upsert(ctx context.Context, concept *domain.Concept) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := concept.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO concepts (user_id, name, weak, last_seen_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, name)
		DO UPDATE SET weak = EXCLUDED.weak, last_seen_at = EXCLUDED.last_seen_at
	`
	_, err := s.db.ExecContext(ctx, query,
		concept.UserID,
		concept.Name,
		concept.Weak,
		concept.LastSeenAt,
	)
	if err != nil {
		log.Error("failed to upsert concept",
			slog.String("error", err.Error()),
			slog.String("user_id", concept.UserID.String()),
			slog.String("concept", concept.Name))
		return MapError(err)
	}

	return nil
}

// ListByUser implements store.ConceptStore.ListByUser.
func (s *PostgresConceptStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Concept, error) {
	return s.list(ctx, userID, false)
}

// ListWeakByUser implements store.ConceptStore.ListWeakByUser.
func (s *PostgresConceptStore) ListWeakByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Concept, error) {
	return s.list(ctx, userID, true)
}

func (s *PostgresConceptStore) list(ctx context.Context, userID uuid.UUID, weakOnly bool) ([]*domain.Concept, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, name, weak, last_seen_at
		FROM concepts
		WHERE user_id = $1
	`
	if weakOnly {
		query += ` AND weak`
	}
	query += ` ORDER BY last_seen_at DESC, name ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list concepts",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var concepts []*domain.Concept
	for rows.Next() {
		var c domain.Concept
		if err := rows.Scan(&c.UserID, &c.Name, &c.Weak, &c.LastSeenAt); err != nil {
			return nil, MapError(err)
		}
		concepts = append(concepts, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return concepts, nil
}
