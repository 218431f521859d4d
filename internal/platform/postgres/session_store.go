package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-api/internal/domain"
	"github.com/lumenlearn/mastery-api/internal/platform/logger"
	"github.com/lumenlearn/mastery-api/internal/store"
)

// PostgresSessionStore implements the store.SessionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSessionStore creates a new PostgreSQL implementation of the
// SessionStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresSessionStore(db store.DBTX, logger *slog.Logger) *PostgresSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

// Ensure PostgresSessionStore implements store.SessionStore interface.
var _ store.SessionStore = (*PostgresSessionStore)(nil)

// Create implements store.SessionStore.Create.
func (s *PostgresSessionStore) Create(ctx context.Context, session *domain.MasterySession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("session validation failed during create",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	weakConcepts, attempts, payload, err := marshalSessionFields(session)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO mastery_sessions
			(id, user_id, course_ref, course_text, stage, weak_concepts, attempts, payload, xp_awarded, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = s.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.CourseRef,
		session.CourseText,
		session.Stage,
		weakConcepts,
		attempts,
		payload,
		session.XPAwarded,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()),
			slog.String("user_id", session.UserID.String()))
		return MapError(err)
	}

	log.Debug("session created",
		slog.String("session_id", session.ID.String()),
		slog.String("user_id", session.UserID.String()),
		slog.String("stage", string(session.Stage)))
	return nil
}

// GetByID implements store.SessionStore.GetByID.
func (s *PostgresSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.MasterySession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, course_ref, course_text, stage, weak_concepts, attempts, payload, xp_awarded, created_at, updated_at
		FROM mastery_sessions
		WHERE id = $1
	`

	var (
		session          domain.MasterySession
		stage            string
		weakConceptsJSON []byte
		attemptsJSON     []byte
		payloadJSON      []byte
	)

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.UserID,
		&session.CourseRef,
		&session.CourseText,
		&stage,
		&weakConceptsJSON,
		&attemptsJSON,
		&payloadJSON,
		&session.XPAwarded,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		log.Error("failed to get session",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, MapError(err)
	}

	session.Stage = domain.Stage(stage)
	if err := unmarshalSessionFields(&session, weakConceptsJSON, attemptsJSON, payloadJSON); err != nil {
		log.Warn("stored session payload failed validation",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, err
	}

	return &session, nil
}

// UpdateStage implements store.SessionStore.UpdateStage.
// The update is conditional on the persisted stage still being fromStage,
// making concurrent transitions of the same session mutually exclusive.
func (s *PostgresSessionStore) UpdateStage(
	ctx context.Context,
	session *domain.MasterySession,
	fromStage domain.Stage,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	weakConcepts, attempts, payload, err := marshalSessionFields(session)
	if err != nil {
		return err
	}

	query := `
		UPDATE mastery_sessions
		SET stage = $2, weak_concepts = $3, attempts = $4, payload = $5, updated_at = $6
		WHERE id = $1 AND stage = $7
	`
	result, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.Stage,
		weakConcepts,
		attempts,
		payload,
		time.Now().UTC(),
		fromStage,
	)
	if err != nil {
		log.Error("failed to update session stage",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rows == 0 {
		return s.missingOrStale(ctx, session.ID)
	}

	log.Debug("session stage updated",
		slog.String("session_id", session.ID.String()),
		slog.String("from_stage", string(fromStage)),
		slog.String("to_stage", string(session.Stage)))
	return nil
}

// MarkCompleted implements store.SessionStore.MarkCompleted.
// The xp_awarded flag is claimed in the same statement as the stage change,
// so the completion reward can only ever be granted once per session.
func (s *PostgresSessionStore) MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE mastery_sessions
		SET stage = $2, payload = NULL, xp_awarded = TRUE, updated_at = $3
		WHERE id = $1 AND xp_awarded = FALSE AND stage <> $4
	`
	result, err := s.db.ExecContext(ctx, query,
		id, domain.StageSuccess, time.Now().UTC(), domain.StageAbandoned)
	if err != nil {
		log.Error("failed to mark session completed",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return false, MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, MapError(err)
	}
	if rows == 1 {
		return true, nil
	}

	// Nothing updated: either the session is gone or the reward was
	// already claimed. The latter is a successful no-op.
	exists, err := s.exists(ctx, id)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, store.ErrSessionNotFound
	}
	return false, nil
}

// Abandon implements store.SessionStore.Abandon.
func (s *PostgresSessionStore) Abandon(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE mastery_sessions
		SET stage = $2, payload = NULL, updated_at = $3
		WHERE id = $1 AND stage NOT IN ($4, $5)
	`
	result, err := s.db.ExecContext(ctx, query,
		id, domain.StageAbandoned, time.Now().UTC(), domain.StageSuccess, domain.StageAbandoned)
	if err != nil {
		log.Error("failed to abandon session",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rows == 0 {
		return s.missingOrStale(ctx, id)
	}

	log.Info("session abandoned", slog.String("session_id", id.String()))
	return nil
}

// missingOrStale distinguishes a conditional update that matched no row
// because the session does not exist from one that lost a stage race.
func (s *PostgresSessionStore) missingOrStale(ctx context.Context, id uuid.UUID) error {
	exists, err := s.exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return store.ErrSessionNotFound
	}
	return store.ErrStaleStage
}

func (s *PostgresSessionStore) exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM mastery_sessions WHERE id = $1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, MapError(err)
	}
	return true, nil
}

func marshalSessionFields(session *domain.MasterySession) (weakConcepts, attempts, payload []byte, err error) {
	weakConcepts, err = json.Marshal(session.WeakConcepts)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal weak concepts: %w", err)
	}

	attempts, err = json.Marshal(session.Attempts)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal attempts: %w", err)
	}

	if session.Payload != nil {
		payload, err = json.Marshal(session.Payload)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
	}

	return weakConcepts, attempts, payload, nil
}

func unmarshalSessionFields(session *domain.MasterySession, weakConcepts, attempts, payload []byte) error {
	if len(weakConcepts) > 0 {
		if err := json.Unmarshal(weakConcepts, &session.WeakConcepts); err != nil {
			return fmt.Errorf("%w: weak concepts: %v", domain.ErrCorruptPayload, err)
		}
	}

	if len(attempts) > 0 {
		if err := json.Unmarshal(attempts, &session.Attempts); err != nil {
			return fmt.Errorf("%w: attempts: %v", domain.ErrCorruptPayload, err)
		}
	}

	if len(payload) > 0 {
		session.Payload = &domain.StagePayload{}
		if err := json.Unmarshal(payload, session.Payload); err != nil {
			return fmt.Errorf("%w: payload: %v", domain.ErrCorruptPayload, err)
		}
	}

	// Structural validation catches payloads written by incompatible
	// versions before they can be misinterpreted.
	if !session.Stage.IsTerminal() {
		if err := session.Payload.Validate(session.Stage); err != nil {
			return err
		}
	}

	return nil
}
