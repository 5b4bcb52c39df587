package sqlite

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

// ScheduleStore implements store.ScheduleStore on SQLite.
type ScheduleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewScheduleStore creates a SQLite schedule store over a connection or
// transaction managed by the caller. If logger is nil, slog.Default is used.
func NewScheduleStore(db store.DBTX, logger *slog.Logger) *ScheduleStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ScheduleStore{
		db:     db,
		logger: logger.With(slog.String("component", "schedule_store")),
	}
}

var _ store.ScheduleStore = (*ScheduleStore)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (*domain.ScheduleState, error) {
	var (
		state                       domain.ScheduleState
		dueAt, createdAt, updatedAt int64
		lastReviewed                sql.NullInt64
	)

	err := row.Scan(
		&state.LearnerID,
		&state.ItemID,
		&state.IntervalDays,
		&state.RepetitionCount,
		&state.EasinessFactor,
		&dueAt,
		&lastReviewed,
		&state.ReviewCount,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	state.DueAt = fromMillis(dueAt)
	state.CreatedAt = fromMillis(createdAt)
	state.UpdatedAt = fromMillis(updatedAt)
	if lastReviewed.Valid {
		state.LastReviewedAt = fromMillis(lastReviewed.Int64)
	}
	return &state, nil
}

// Get implements store.ScheduleStore.Get.
func (s *ScheduleStore) Get(ctx context.Context, learnerID, itemID uuid.UUID) (*domain.ScheduleState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + scheduleColumns + `
		FROM schedule_states
		WHERE learner_id = ? AND item_id = ?`

	state, err := scanSchedule(s.db.QueryRowContext(ctx, query, learnerID, itemID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrScheduleNotFound
		}
		log.Error("failed to get schedule",
			slog.String("error", err.Error()),
			slog.String("item_id", itemID.String()))
		return nil, store.NewStoreError("schedule", "get", "query failed", MapError(err))
	}
	return state, nil
}

// GetForUpdate implements store.ScheduleStore.GetForUpdate. SQLite has no
// row locks; the single connection already serializes transactions.
func (s *ScheduleStore) GetForUpdate(ctx context.Context, learnerID, itemID uuid.UUID) (*domain.ScheduleState, error) {
	return s.Get(ctx, learnerID, itemID)
}

// GetMany implements store.ScheduleStore.GetMany.
func (s *ScheduleStore) GetMany(
	ctx context.Context,
	learnerID uuid.UUID,
	itemIDs []uuid.UUID,
) (map[uuid.UUID]*domain.ScheduleState, error) {
	result := make(map[uuid.UUID]*domain.ScheduleState, len(itemIDs))
	if len(itemIDs) == 0 {
		return result, nil
	}

	args := make([]any, 0, len(itemIDs)+1)
	args = append(args, learnerID)
	for _, id := range itemIDs {
		args = append(args, id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(itemIDs)), ", ")

	query := `SELECT ` + scheduleColumns + `
		FROM schedule_states
		WHERE learner_id = ? AND item_id IN (` + placeholders + `)`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
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
func (s *ScheduleStore) Upsert(ctx context.Context, state *domain.ScheduleState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if state == nil {
		return fmt.Errorf("%w: nil schedule", store.ErrInvalidEntity)
	}
	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	updatedAt := state.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	createdAt := state.CreatedAt
	if createdAt.IsZero() {
		createdAt = updatedAt
	}
	var lastReviewed sql.NullInt64
	if !state.LastReviewedAt.IsZero() {
		lastReviewed = sql.NullInt64{Int64: toMillis(state.LastReviewedAt), Valid: true}
	}

	query := `
		INSERT INTO schedule_states (` + scheduleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (learner_id, item_id) DO UPDATE SET
			interval_days = excluded.interval_days,
			repetition_count = excluded.repetition_count,
			easiness_factor = excluded.easiness_factor,
			due_at = excluded.due_at,
			last_reviewed_at = excluded.last_reviewed_at,
			review_count = excluded.review_count,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		state.LearnerID,
		state.ItemID,
		state.IntervalDays,
		state.RepetitionCount,
		state.EasinessFactor,
		toMillis(state.DueAt),
		lastReviewed,
		state.ReviewCount,
		toMillis(createdAt),
		toMillis(updatedAt),
	)
	if err != nil {
		log.Error("failed to upsert schedule",
			slog.String("error", err.Error()),
			slog.String("item_id", state.ItemID.String()))
		return store.NewStoreError("schedule", "upsert", "write failed", MapError(err))
	}

	log.Debug("schedule upserted",
		slog.String("item_id", state.ItemID.String()),
		slog.Int("interval_days", state.IntervalDays))
	return nil
}

// Delete implements store.ScheduleStore.Delete.
func (s *ScheduleStore) Delete(ctx context.Context, learnerID, itemID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM schedule_states WHERE learner_id = ? AND item_id = ?`,
		learnerID, itemID)
	if err != nil {
		return store.NewStoreError("schedule", "delete", "write failed", MapError(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("schedule", "delete", "rows affected", err)
	}
	if n == 0 {
		return store.ErrScheduleNotFound
	}
	return nil
}

// ListDue implements store.ScheduleStore.ListDue.
func (s *ScheduleStore) ListDue(
	ctx context.Context,
	learnerID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.ScheduleState, error) {
	if limit <= 0 {
		return nil, store.ErrInvalidLimit
	}

	query := `SELECT ` + scheduleColumns + `
		FROM schedule_states
		WHERE learner_id = ? AND due_at <= ?
		ORDER BY due_at ASC, item_id ASC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, learnerID, toMillis(now), limit)
	if err != nil {
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
	return due, nil
}

// WithTx implements store.ScheduleStore.WithTx.
func (s *ScheduleStore) WithTx(tx *sql.Tx) store.ScheduleStore {
	return &ScheduleStore{db: tx, logger: s.logger}
}
