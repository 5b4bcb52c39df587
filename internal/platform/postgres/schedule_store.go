package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lingokids/review-api/internal/domain"
	"github.com/lingokids/review-api/internal/platform/logger"
	"github.com/lingokids/review-api/internal/store"
)

const scheduleColumns = `learner_id, item_id, interval_days, repetition_count, easiness_factor,
		due_at, last_reviewed_at, review_count, created_at, updated_at`

// PostgresScheduleStore implements the store.ScheduleStore interface
// using a PostgreSQL database as the storage backend.
type PostgresScheduleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresScheduleStore creates a new PostgreSQL implementation of the ScheduleStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresScheduleStore(db store.DBTX, logger *slog.Logger) *PostgresScheduleStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresScheduleStore{
		db:     db,
		logger: logger.With(slog.String("component", "schedule_store")),
	}
}

// Ensure PostgresScheduleStore implements store.ScheduleStore interface
var _ store.ScheduleStore = (*PostgresScheduleStore)(nil)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (*domain.ScheduleState, error) {
	var state domain.ScheduleState
	var lastReviewed sql.NullTime

	err := row.Scan(
		&state.LearnerID,
		&state.ItemID,
		&state.IntervalDays,
		&state.RepetitionCount,
		&state.EasinessFactor,
		&state.DueAt,
		&lastReviewed,
		&state.ReviewCount,
		&state.CreatedAt,
		&state.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	state.DueAt = state.DueAt.UTC()
	state.CreatedAt = state.CreatedAt.UTC()
	state.UpdatedAt = state.UpdatedAt.UTC()
	if lastReviewed.Valid {
		state.LastReviewedAt = lastReviewed.Time.UTC()
	}
	return &state, nil
}

// Get implements store.ScheduleStore.Get.
// Returns store.ErrScheduleNotFound if the item has never been graded by the learner.
func (s *PostgresScheduleStore) Get(
	ctx context.Context,
	learnerID, itemID uuid.UUID,
) (*domain.ScheduleState, error) {
	return s.get(ctx, learnerID, itemID, false)
}

// GetForUpdate implements store.ScheduleStore.GetForUpdate using SELECT ... FOR UPDATE.
// It must run inside a transaction for the lock to have any effect.
func (s *PostgresScheduleStore) GetForUpdate(
	ctx context.Context,
	learnerID, itemID uuid.UUID,
) (*domain.ScheduleState, error) {
	return s.get(ctx, learnerID, itemID, true)
}

func (s *PostgresScheduleStore) get(
	ctx context.Context,
	learnerID, itemID uuid.UUID,
	forUpdate bool,
) (*domain.ScheduleState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + scheduleColumns + `
		FROM schedule_states
		WHERE learner_id = $1 AND item_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	state, err := scanSchedule(s.db.QueryRowContext(ctx, query, learnerID, itemID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("schedule not found",
				slog.String("learner_id", learnerID.String()),
				slog.String("item_id", itemID.String()))
			return nil, store.ErrScheduleNotFound
		}
		log.Error("failed to get schedule",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()),
			slog.String("item_id", itemID.String()))
		return nil, store.NewStoreError("schedule", "get", "query failed", MapError(err))
	}

	return state, nil
}

// GetMany implements store.ScheduleStore.GetMany.
func (s *PostgresScheduleStore) GetMany(
	ctx context.Context,
	learnerID uuid.UUID,
	itemIDs []uuid.UUID,
) (map[uuid.UUID]*domain.ScheduleState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result := make(map[uuid.UUID]*domain.ScheduleState, len(itemIDs))
	if len(itemIDs) == 0 {
		return result, nil
	}

	args := make([]any, 0, len(itemIDs)+1)
	args = append(args, learnerID)
	placeholders := make([]string, len(itemIDs))
	for i, id := range itemIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}

	query := `SELECT ` + scheduleColumns + `
		FROM schedule_states
		WHERE learner_id = $1 AND item_id IN (` + strings.Join(placeholders, ", ") + `)`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to get schedules",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()),
			slog.Int("item_count", len(itemIDs)))
		return nil, store.NewStoreError("schedule", "get_many", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		state, err := scanSchedule(rows)
		if err != nil {
			return nil, store.NewStoreError("schedule", "get_many", "scan failed", MapError(err))
		}
		result[state.ItemID] = state
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("schedule", "get_many", "row iteration failed", MapError(err))
	}

	return result, nil
}

// Upsert implements store.ScheduleStore.Upsert.
// On conflict the stored row takes every field of state except created_at.
func (s *PostgresScheduleStore) Upsert(ctx context.Context, state *domain.ScheduleState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if state == nil {
		return fmt.Errorf("%w: nil schedule", store.ErrInvalidEntity)
	}
	if err := state.Validate(); err != nil {
		log.Warn("schedule validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("item_id", state.ItemID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	createdAt, updatedAt := bookkeepingTimes(state, time.Now().UTC())
	var lastReviewed sql.NullTime
	if !state.LastReviewedAt.IsZero() {
		lastReviewed = sql.NullTime{Time: state.LastReviewedAt, Valid: true}
	}

	query := `
		INSERT INTO schedule_states (` + scheduleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (learner_id, item_id) DO UPDATE SET
			interval_days = EXCLUDED.interval_days,
			repetition_count = EXCLUDED.repetition_count,
			easiness_factor = EXCLUDED.easiness_factor,
			due_at = EXCLUDED.due_at,
			last_reviewed_at = EXCLUDED.last_reviewed_at,
			review_count = EXCLUDED.review_count,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		state.LearnerID,
		state.ItemID,
		state.IntervalDays,
		state.RepetitionCount,
		state.EasinessFactor,
		state.DueAt,
		lastReviewed,
		state.ReviewCount,
		createdAt,
		updatedAt,
	)
	if err != nil {
		log.Error("failed to upsert schedule",
			slog.String("error", err.Error()),
			slog.String("learner_id", state.LearnerID.String()),
			slog.String("item_id", state.ItemID.String()))
		return store.NewStoreError("schedule", "upsert", "write failed", MapError(err))
	}

	log.Debug("schedule upserted",
		slog.String("learner_id", state.LearnerID.String()),
		slog.String("item_id", state.ItemID.String()),
		slog.Int("interval_days", state.IntervalDays),
		slog.Time("due_at", state.DueAt))
	return nil
}

// Delete implements store.ScheduleStore.Delete.
func (s *PostgresScheduleStore) Delete(ctx context.Context, learnerID, itemID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM schedule_states WHERE learner_id = $1 AND item_id = $2`,
		learnerID, itemID)
	if err != nil {
		log.Error("failed to delete schedule",
			slog.String("error", err.Error()),
			slog.String("item_id", itemID.String()))
		return store.NewStoreError("schedule", "delete", "write failed", MapError(err))
	}

	if err := CheckRowsAffected(result, "schedule"); err != nil {
		if store.IsNotFoundError(err) {
			return store.ErrScheduleNotFound
		}
		return err
	}
	return nil
}

// ListDue implements store.ScheduleStore.ListDue.
func (s *PostgresScheduleStore) ListDue(
	ctx context.Context,
	learnerID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.ScheduleState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		return nil, store.ErrInvalidLimit
	}

	query := `SELECT ` + scheduleColumns + `
		FROM schedule_states
		WHERE learner_id = $1 AND due_at <= $2
		ORDER BY due_at ASC, item_id ASC
		LIMIT $3`

	rows, err := s.db.QueryContext(ctx, query, learnerID, now, limit)
	if err != nil {
		log.Error("failed to list due schedules",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, store.NewStoreError("schedule", "list_due", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var due []*domain.ScheduleState
	for rows.Next() {
		state, err := scanSchedule(rows)
		if err != nil {
			return nil, store.NewStoreError("schedule", "list_due", "scan failed", MapError(err))
		}
		due = append(due, state)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("schedule", "list_due", "row iteration failed", MapError(err))
	}

	log.Debug("listed due schedules",
		slog.String("learner_id", learnerID.String()),
		slog.Int("count", len(due)))
	return due, nil
}

// WithTx implements store.ScheduleStore.WithTx.
func (s *PostgresScheduleStore) WithTx(tx *sql.Tx) store.ScheduleStore {
	return &PostgresScheduleStore{
		db:     tx,
		logger: s.logger,
	}
}

// bookkeepingTimes fills missing created/updated timestamps from now.
func bookkeepingTimes(state *domain.ScheduleState, now time.Time) (time.Time, time.Time) {
	createdAt, updatedAt := state.CreatedAt, state.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}
	if createdAt.IsZero() {
		createdAt = updatedAt
	}
	return createdAt, updatedAt
}
