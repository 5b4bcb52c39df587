package review_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lingokids/review-api/internal/domain"
	"github.com/lingokids/review-api/internal/domain/srs"
	"github.com/lingokids/review-api/internal/platform/sqlite"
	"github.com/lingokids/review-api/internal/service/review"
	"github.com/lingokids/review-api/internal/store"
	"github.com/lingokids/review-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClock is a settable clock shared by the engine and the service.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

type fixture struct {
	db        *sql.DB
	schedules store.ScheduleStore
	service   review.Service
	clock     *testClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.OpenSQLite(t)

	clock := &testClock{now: time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)}
	engine, err := srs.NewService(srs.WithClock(clock.Now))
	require.NoError(t, err)

	schedules := sqlite.NewScheduleStore(db, nil)
	return &fixture{
		db:        db,
		schedules: schedules,
		service:   review.NewService(db, schedules, engine, review.WithClock(clock.Now)),
		clock:     clock,
	}
}

func TestSubmitGrade(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	learnerID, itemID := uuid.New(), uuid.New()

	// First grade creates the record.
	first, err := f.service.SubmitGrade(ctx, learnerID, itemID, domain.QualityGood)
	require.NoError(t, err)
	assert.Equal(t, 1, first.IntervalDays)
	assert.Equal(t, 1, first.RepetitionCount)
	assert.Equal(t, f.clock.now.AddDate(0, 0, 1), first.DueAt)

	stored, err := f.schedules.Get(ctx, learnerID, itemID)
	require.NoError(t, err)
	assert.Equal(t, first, stored)

	// Second grade builds on the stored record.
	f.clock.now = f.clock.now.AddDate(0, 0, 1)
	second, err := f.service.SubmitGrade(ctx, learnerID, itemID, domain.QualityPerfect)
	require.NoError(t, err)
	assert.Equal(t, 6, second.IntervalDays)
	assert.Equal(t, 2, second.RepetitionCount)
	assert.InDelta(t, 2.6, second.EasinessFactor, 1e-9)
	assert.Equal(t, 2, second.ReviewCount)

	// A lapse resets repetitions but keeps the easiness factor.
	lapse, err := f.service.SubmitGrade(ctx, learnerID, itemID, domain.QualityHardWrong)
	require.NoError(t, err)
	assert.Equal(t, 0, lapse.RepetitionCount)
	assert.Equal(t, 1, lapse.IntervalDays)
	assert.InDelta(t, 2.6, lapse.EasinessFactor, 1e-9)
}

func TestSubmitGrade_InvalidInput(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	learnerID, itemID := uuid.New(), uuid.New()

	_, err := f.service.SubmitGrade(ctx, learnerID, itemID, 6)
	assert.ErrorIs(t, err, domain.ErrInvalidGrade)

	_, err = f.schedules.Get(ctx, learnerID, itemID)
	assert.ErrorIs(t, err, store.ErrScheduleNotFound, "invalid grade must not write")

	_, err = f.service.SubmitGrade(ctx, uuid.Nil, itemID, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidID)
	_, err = f.service.SubmitGrade(ctx, learnerID, uuid.Nil, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestGetSchedule(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	learnerID, itemID := uuid.New(), uuid.New()

	fresh, err := f.service.GetSchedule(ctx, learnerID, itemID)
	require.NoError(t, err)
	assert.True(t, fresh.IsNew())
	assert.Equal(t, f.clock.now, fresh.DueAt)

	_, err = f.schedules.Get(ctx, learnerID, itemID)
	assert.ErrorIs(t, err, store.ErrScheduleNotFound, "reading must not create a record")

	graded, err := f.service.SubmitGrade(ctx, learnerID, itemID, 5)
	require.NoError(t, err)

	got, err := f.service.GetSchedule(ctx, learnerID, itemID)
	require.NoError(t, err)
	assert.Equal(t, graded, got)
}

func TestDueSchedules(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	learnerID := uuid.New()

	_, err := f.service.DueSchedules(ctx, learnerID, 10)
	assert.ErrorIs(t, err, review.ErrNoReviewsDue)

	failed, good := uuid.New(), uuid.New()
	_, err = f.service.SubmitGrade(ctx, learnerID, good, 5)
	require.NoError(t, err)
	_, err = f.service.SubmitGrade(ctx, learnerID, failed, 0)
	require.NoError(t, err)

	// Both are due one day later.
	f.clock.now = f.clock.now.AddDate(0, 0, 1)
	due, err := f.service.DueSchedules(ctx, learnerID, 10)
	require.NoError(t, err)
	assert.Len(t, due, 2)

	due, err = f.service.DueSchedules(ctx, learnerID, 1)
	require.NoError(t, err)
	assert.Len(t, due, 1)

	_, err = f.service.DueSchedules(ctx, learnerID, 0)
	assert.ErrorIs(t, err, review.ErrInvalidLimit)
}

func TestPostpone(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	learnerID, itemID := uuid.New(), uuid.New()

	graded, err := f.service.SubmitGrade(ctx, learnerID, itemID, 4)
	require.NoError(t, err)

	postponed, err := f.service.Postpone(ctx, learnerID, itemID, 3)
	require.NoError(t, err)
	assert.Equal(t, graded.DueAt.AddDate(0, 0, 3), postponed.DueAt)
	assert.Equal(t, graded.RepetitionCount, postponed.RepetitionCount)
	assert.Equal(t, graded.EasinessFactor, postponed.EasinessFactor)

	stored, err := f.schedules.Get(ctx, learnerID, itemID)
	require.NoError(t, err)
	assert.Equal(t, postponed.DueAt, stored.DueAt)

	_, err = f.service.Postpone(ctx, learnerID, itemID, 0)
	assert.ErrorIs(t, err, srs.ErrInvalidDays)
}

func TestLoadDeck(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	learnerID := uuid.New()

	items := []review.DeckItem{
		{ID: uuid.New(), Front: "perro", Back: "dog"},
		{ID: uuid.New(), Front: "gato", Back: "cat"},
	}
	_, err := f.service.SubmitGrade(ctx, learnerID, items[1].ID, 5)
	require.NoError(t, err)

	cards, err := f.service.LoadDeck(ctx, learnerID, items)
	require.NoError(t, err)
	require.Len(t, cards, 2)

	assert.Equal(t, items[0].ID, cards[0].ItemID)
	assert.True(t, cards[0].Schedule.IsNew())
	assert.Equal(t, items[1].ID, cards[1].ItemID)
	assert.Equal(t, 1, cards[1].Schedule.RepetitionCount)

	assert.Equal(t, 1, review.CountDue(cards, f.clock.now))

	t.Run("Rejects bad decks", func(t *testing.T) {
		dup := []review.DeckItem{items[0], items[0]}
		_, err := f.service.LoadDeck(ctx, learnerID, dup)
		assert.ErrorIs(t, err, review.ErrInvalidDeck)

		blank := []review.DeckItem{{ID: uuid.New(), Front: " ", Back: "x"}}
		_, err = f.service.LoadDeck(ctx, learnerID, blank)
		assert.ErrorIs(t, err, review.ErrInvalidDeck)

		noID := []review.DeckItem{{Front: "a", Back: "b"}}
		_, err = f.service.LoadDeck(ctx, learnerID, noID)
		assert.ErrorIs(t, err, review.ErrInvalidDeck)
	})

	t.Run("Empty deck", func(t *testing.T) {
		cards, err := f.service.LoadDeck(ctx, learnerID, nil)
		require.NoError(t, err)
		assert.Empty(t, cards)
	})
}
