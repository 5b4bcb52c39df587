// Package storetest holds behavior tests shared by every store.ScheduleStore
// implementation.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lingokids/review-api/internal/domain"
	"github.com/lingokids/review-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty, isolated store for one subtest.
type Factory func(t *testing.T) store.ScheduleStore

// Base is a whole-second UTC instant every backend stores without loss.
var Base = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

// NewState returns a valid reviewed schedule due offsetDays after Base.
func NewState(t *testing.T, learnerID uuid.UUID, offsetDays int) *domain.ScheduleState {
	t.Helper()
	state, err := domain.NewScheduleState(learnerID, uuid.New(), Base)
	require.NoError(t, err)
	state.IntervalDays = 6
	state.RepetitionCount = 2
	state.EasinessFactor = 2.36
	state.ReviewCount = 3
	state.LastReviewedAt = Base.AddDate(0, 0, -1)
	state.DueAt = Base.AddDate(0, 0, offsetDays)
	state.UpdatedAt = Base
	return state
}

// RunScheduleStoreTests exercises the store.ScheduleStore contract.
func RunScheduleStoreTests(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("Get missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, uuid.New(), uuid.New())
		assert.ErrorIs(t, err, store.ErrScheduleNotFound)
		assert.True(t, store.IsNotFoundError(err))
	})

	t.Run("Upsert and Get round trip", func(t *testing.T) {
		s := newStore(t)
		want := NewState(t, uuid.New(), 2)
		require.NoError(t, s.Upsert(ctx, want))

		got, err := s.Get(ctx, want.LearnerID, want.ItemID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("GetForUpdate", func(t *testing.T) {
		s := newStore(t)
		want := NewState(t, uuid.New(), 1)
		require.NoError(t, s.Upsert(ctx, want))

		got, err := s.GetForUpdate(ctx, want.LearnerID, want.ItemID)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		_, err = s.GetForUpdate(ctx, want.LearnerID, uuid.New())
		assert.ErrorIs(t, err, store.ErrScheduleNotFound)
	})

	t.Run("Fresh schedule keeps zero last review", func(t *testing.T) {
		s := newStore(t)
		fresh, err := domain.NewScheduleState(uuid.New(), uuid.New(), Base)
		require.NoError(t, err)
		require.NoError(t, s.Upsert(ctx, fresh))

		got, err := s.Get(ctx, fresh.LearnerID, fresh.ItemID)
		require.NoError(t, err)
		assert.True(t, got.IsNew())
		assert.Equal(t, domain.DefaultEasinessFactor, got.EasinessFactor)
		assert.Equal(t, Base, got.DueAt)
	})

	t.Run("Upsert replaces and keeps created_at", func(t *testing.T) {
		s := newStore(t)
		state := NewState(t, uuid.New(), 0)
		require.NoError(t, s.Upsert(ctx, state))

		updated := state.Clone()
		updated.IntervalDays = 15
		updated.RepetitionCount = 3
		updated.EasinessFactor = 1.3
		updated.ReviewCount = 4
		updated.DueAt = Base.AddDate(0, 0, 15)
		updated.CreatedAt = Base.AddDate(1, 0, 0)
		updated.UpdatedAt = Base.Add(time.Hour)
		require.NoError(t, s.Upsert(ctx, updated))

		got, err := s.Get(ctx, state.LearnerID, state.ItemID)
		require.NoError(t, err)
		assert.Equal(t, 15, got.IntervalDays)
		assert.Equal(t, 3, got.RepetitionCount)
		assert.Equal(t, 1.3, got.EasinessFactor)
		assert.Equal(t, 4, got.ReviewCount)
		assert.Equal(t, Base.AddDate(0, 0, 15), got.DueAt)
		assert.Equal(t, state.CreatedAt, got.CreatedAt)
		assert.Equal(t, Base.Add(time.Hour), got.UpdatedAt)
	})

	t.Run("Upsert rejects invalid schedules", func(t *testing.T) {
		s := newStore(t)
		assert.ErrorIs(t, s.Upsert(ctx, nil), store.ErrInvalidEntity)

		bad := NewState(t, uuid.New(), 0)
		bad.EasinessFactor = 1.1
		err := s.Upsert(ctx, bad)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.ErrorIs(t, err, domain.ErrInvalidEasinessFactor)
	})

	t.Run("GetMany", func(t *testing.T) {
		s := newStore(t)
		learnerID := uuid.New()
		a := NewState(t, learnerID, 0)
		b := NewState(t, learnerID, 1)
		other := NewState(t, uuid.New(), 0)
		for _, st := range []*domain.ScheduleState{a, b, other} {
			require.NoError(t, s.Upsert(ctx, st))
		}

		got, err := s.GetMany(ctx, learnerID, []uuid.UUID{a.ItemID, b.ItemID, other.ItemID, uuid.New()})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, a, got[a.ItemID])
		assert.Equal(t, b, got[b.ItemID])

		empty, err := s.GetMany(ctx, learnerID, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("ListDue", func(t *testing.T) {
		s := newStore(t)
		learnerID := uuid.New()
		overdue := NewState(t, learnerID, -3)
		dueNow := NewState(t, learnerID, 0)
		later := NewState(t, learnerID, 4)
		otherLearner := NewState(t, uuid.New(), -10)
		for _, st := range []*domain.ScheduleState{dueNow, later, otherLearner, overdue} {
			require.NoError(t, s.Upsert(ctx, st))
		}

		due, err := s.ListDue(ctx, learnerID, Base, 10)
		require.NoError(t, err)
		require.Len(t, due, 2)
		assert.Equal(t, overdue.ItemID, due[0].ItemID)
		assert.Equal(t, dueNow.ItemID, due[1].ItemID)

		limited, err := s.ListDue(ctx, learnerID, Base.AddDate(0, 0, 30), 1)
		require.NoError(t, err)
		require.Len(t, limited, 1)
		assert.Equal(t, overdue.ItemID, limited[0].ItemID)

		none, err := s.ListDue(ctx, uuid.New(), Base, 10)
		require.NoError(t, err)
		assert.Empty(t, none)

		_, err = s.ListDue(ctx, learnerID, Base, 0)
		assert.ErrorIs(t, err, store.ErrInvalidLimit)
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore(t)
		state := NewState(t, uuid.New(), 0)
		require.NoError(t, s.Upsert(ctx, state))

		require.NoError(t, s.Delete(ctx, state.LearnerID, state.ItemID))
		_, err := s.Get(ctx, state.LearnerID, state.ItemID)
		assert.ErrorIs(t, err, store.ErrScheduleNotFound)

		assert.ErrorIs(t, s.Delete(ctx, state.LearnerID, state.ItemID), store.ErrScheduleNotFound)
	})
}
