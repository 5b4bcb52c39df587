package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lingokids/review-api/internal/domain"
)

// ScheduleStore defines the interface for schedule record persistence.
// Records are keyed by (learner ID, item ID).
type ScheduleStore interface {
	// Get retrieves the schedule for one learner and item.
	// Returns ErrScheduleNotFound if the item has never been graded.
	Get(ctx context.Context, learnerID, itemID uuid.UUID) (*domain.ScheduleState, error)

	// GetForUpdate is like Get but locks the row until the surrounding
	// transaction ends, where the backend supports row locks.
	GetForUpdate(ctx context.Context, learnerID, itemID uuid.UUID) (*domain.ScheduleState, error)

	// GetMany retrieves the stored schedules for the given items, keyed by
	// item ID. Items without a stored schedule are absent from the map.
	GetMany(ctx context.Context, learnerID uuid.UUID, itemIDs []uuid.UUID) (map[uuid.UUID]*domain.ScheduleState, error)

	// Upsert inserts the schedule or replaces the stored one with the same key.
	// Returns a validation error wrapping ErrInvalidEntity if state is invalid.
	Upsert(ctx context.Context, state *domain.ScheduleState) error

	// Delete removes the schedule for one learner and item.
	// Returns ErrScheduleNotFound if there is nothing to delete.
	Delete(ctx context.Context, learnerID, itemID uuid.UUID) error

	// ListDue returns up to limit schedules of the learner whose due time is
	// at or before now, oldest due first.
	ListDue(ctx context.Context, learnerID uuid.UUID, now time.Time, limit int) ([]*domain.ScheduleState, error)

	// WithTx returns a ScheduleStore that runs its queries in tx.
	WithTx(tx *sql.Tx) ScheduleStore
}
