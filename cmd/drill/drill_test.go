package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lingokids/review-api/internal/domain"
	"github.com/lingokids/review-api/internal/domain/srs"
	"github.com/lingokids/review-api/internal/platform/sqlite"
	"github.com/lingokids/review-api/internal/service/review"
	"github.com/lingokids/review-api/internal/session"
	"github.com/lingokids/review-api/internal/store"
	"github.com/lingokids/review-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var drillNow = time.Date(2026, 2, 9, 17, 30, 0, 0, time.UTC)

type drillFixture struct {
	schedules store.ScheduleStore
	reviews   review.Service
	engine    srs.Service
	learnerID uuid.UUID
	deck      *Deck
}

func newDrillFixture(t *testing.T) *drillFixture {
	t.Helper()
	db := testdb.OpenSQLite(t)

	clock := func() time.Time { return drillNow }
	engine, err := srs.NewService(srs.WithClock(clock))
	require.NoError(t, err)

	deck, err := parseDeck(strings.NewReader(coloursDeck))
	require.NoError(t, err)

	schedules := sqlite.NewScheduleStore(db, nil)
	return &drillFixture{
		schedules: schedules,
		reviews:   review.NewService(db, schedules, engine, review.WithClock(clock)),
		engine:    engine,
		learnerID: uuid.New(),
		deck:      deck,
	}
}

func (f *drillFixture) controller(t *testing.T, persister session.Persister, opts ...session.Option) *session.Controller {
	t.Helper()
	cards, err := f.reviews.LoadDeck(context.Background(), f.learnerID, f.deck.Items)
	require.NoError(t, err)
	c, err := session.New(cards, f.engine, persister, opts...)
	require.NoError(t, err)
	return c
}

func TestDrill_GradesAndPersists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newDrillFixture(t)
	c := f.controller(t, review.NewRetryingPersister(f.schedules))

	// rojo: 4, azul: 5, rojo: 5, then quit on azul's front.
	input := "\n4\n\n5\n\n5\nq\n"
	var out bytes.Buffer
	require.NoError(t, newDrill(c, strings.NewReader(input), &out, 0).run(ctx))

	assert.Equal(t, session.StateComplete, c.State())
	assert.Equal(t, 3, c.Reviewed())
	assert.Contains(t, out.String(), "[1/2] rojo")
	assert.Contains(t, out.String(), "-> blue")
	assert.Contains(t, out.String(), "reviewed 3 card(s)")

	rojo, err := f.schedules.Get(ctx, f.learnerID, f.deck.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, rojo.RepetitionCount)
	assert.Equal(t, 6, rojo.IntervalDays)
	assert.InDelta(t, 2.6, rojo.EasinessFactor, 1e-9)

	azul, err := f.schedules.Get(ctx, f.learnerID, f.deck.Items[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, azul.RepetitionCount)
	assert.True(t, drillNow.AddDate(0, 0, 1).Equal(azul.DueAt))

	// A second run picks up where the first left off.
	cards, err := f.reviews.LoadDeck(ctx, f.learnerID, f.deck.Items)
	require.NoError(t, err)
	assert.Equal(t, 2, cards[0].Schedule.RepetitionCount)
	assert.Equal(t, 0, review.CountDue(cards, drillNow))
}

func TestDrill_RejectsBadGrades(t *testing.T) {
	t.Parallel()
	f := newDrillFixture(t)
	c := f.controller(t, review.NewRetryingPersister(f.schedules))

	input := "\nok\n9\n3\n"
	var out bytes.Buffer
	require.NoError(t, newDrill(c, strings.NewReader(input), &out, 0).run(context.Background()))

	assert.Equal(t, 1, c.Reviewed())
	assert.Equal(t, 2, strings.Count(out.String(), "please type a number from 0 to 5"))
}

func TestDrill_StopsAfterMaxReviews(t *testing.T) {
	t.Parallel()
	f := newDrillFixture(t)
	c := f.controller(t, review.NewRetryingPersister(f.schedules))

	input := strings.Repeat("\n5\n", 10)
	var out bytes.Buffer
	require.NoError(t, newDrill(c, strings.NewReader(input), &out, 3).run(context.Background()))

	assert.Equal(t, 3, c.Reviewed())
	assert.Equal(t, session.StateComplete, c.State())
}

func TestDrill_SinglePass(t *testing.T) {
	t.Parallel()
	f := newDrillFixture(t)
	c := f.controller(t, review.NewRetryingPersister(f.schedules), session.WithSinglePass())

	input := strings.Repeat("\n1\n", 10)
	var out bytes.Buffer
	require.NoError(t, newDrill(c, strings.NewReader(input), &out, 0).run(context.Background()))

	assert.Equal(t, 2, c.Reviewed())
}

func TestDrill_ReportsUnsavedProgress(t *testing.T) {
	t.Parallel()
	f := newDrillFixture(t)
	storeDown := errors.New("disk full")
	c := f.controller(t, session.PersisterFunc(func(context.Context, *domain.ScheduleState) error {
		return storeDown
	}))

	input := "\n5\n\n5\n"
	var out bytes.Buffer
	err := newDrill(c, strings.NewReader(input), &out, 0).run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, storeDown)
	assert.Equal(t, 2, c.Reviewed(), "failed writes must not stop the drill")
	assert.Len(t, c.Pending(), 2)
	assert.Contains(t, out.String(), "progress not saved yet")
	assert.Contains(t, out.String(), "2 schedule(s) could not be saved")
}

func TestDrill_InterruptKeepsPendingWrites(t *testing.T) {
	t.Parallel()
	f := newDrillFixture(t)

	// The first write fails; later writes go to the store and, like any
	// context-aware persister, refuse a cancelled context.
	saver := review.NewRetryingPersister(f.schedules, review.WithRetries(0))
	firstSave := make(chan struct{})
	calls := 0
	c := f.controller(t, session.PersisterFunc(func(ctx context.Context, state *domain.ScheduleState) error {
		calls++
		if calls == 1 {
			close(firstSave)
			return errors.New("database is locked")
		}
		return saver.SaveSchedule(ctx, state)
	}))

	in, feed := io.Pipe()
	t.Cleanup(func() { _ = feed.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out bytes.Buffer
	result := make(chan error, 1)
	go func() { result <- newDrill(c, in, &out, 0).run(ctx) }()

	_, err := io.WriteString(feed, "\n5\n")
	require.NoError(t, err)

	select {
	case <-firstSave:
	case <-time.After(5 * time.Second):
		t.Fatal("grade was never persisted")
	}

	// The drill now waits for input on the next card; no more lines arrive.
	cancel()

	select {
	case err := <-result:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("drill kept waiting for input after cancellation")
	}

	assert.Equal(t, session.StateComplete, c.State())
	assert.Empty(t, c.Pending())
	assert.Contains(t, out.String(), "interrupted")
	assert.NotContains(t, out.String(), "could not be saved")

	rojo, err := f.schedules.Get(context.Background(), f.learnerID, f.deck.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, rojo.RepetitionCount)
}
