package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lingokids/review-api/internal/domain"
)

// DefaultPersistTimeout bounds each Persister call so a slow store never
// blocks the session indefinitely.
const DefaultPersistTimeout = 5 * time.Second

// Engine computes the next schedule for a graded card. srs.Service
// implements it.
type Engine interface {
	ComputeNextSchedule(
		current *domain.ScheduleState,
		quality domain.Quality,
	) (*domain.ScheduleState, error)
}

// Persister writes an updated schedule to durable storage.
type Persister interface {
	SaveSchedule(ctx context.Context, state *domain.ScheduleState) error
}

// PersisterFunc adapts a function to the Persister interface.
type PersisterFunc func(ctx context.Context, state *domain.ScheduleState) error

// SaveSchedule implements Persister.
func (f PersisterFunc) SaveSchedule(ctx context.Context, state *domain.ScheduleState) error {
	return f(ctx, state)
}

// Option configures a Controller.
type Option func(*Controller)

// WithPersistTimeout sets the bound applied to each Persister call.
func WithPersistTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.persistTimeout = d
		}
	}
}

// WithSinglePass makes the session complete once every card has been graded
// once. Without it the session cycles through the deck until End is called.
func WithSinglePass() Option {
	return func(c *Controller) {
		c.singlePass = true
	}
}

// WithLogger sets the logger used for session events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller presents an ordered deck front-then-back and records one grade
// per card visit. See the package documentation for concurrency rules.
type Controller struct {
	cards     []*domain.Card
	engine    Engine
	persister Persister

	index    int
	state    State
	reviewed int

	singlePass bool
	graded     map[int]struct{}

	// pending holds schedules whose write failed, in first-failure order.
	pending []*domain.ScheduleState

	persistTimeout time.Duration
	logger         *slog.Logger
}

// New creates a Controller positioned on the front of the first card. An empty
// deck yields a Controller that is already complete.
func New(cards []*domain.Card, engine Engine, persister Persister, opts ...Option) (*Controller, error) {
	if engine == nil {
		return nil, ErrNilEngine
	}
	if persister == nil {
		return nil, ErrNilPersister
	}

	seen := make(map[uuid.UUID]struct{}, len(cards))
	for i, card := range cards {
		if card == nil {
			return nil, fmt.Errorf("card %d: %w", i, domain.ErrValidation)
		}
		if err := card.Validate(); err != nil {
			return nil, fmt.Errorf("card %d: %w", i, err)
		}
		if _, dup := seen[card.ItemID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateItem, card.ItemID)
		}
		seen[card.ItemID] = struct{}{}
	}

	c := &Controller{
		cards:          append([]*domain.Card(nil), cards...),
		engine:         engine,
		persister:      persister,
		state:          StateShowingFront,
		graded:         make(map[int]struct{}),
		persistTimeout: DefaultPersistTimeout,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(slog.String("component", "review_session"))

	if len(c.cards) == 0 {
		c.state = StateComplete
		c.logger.Debug("empty deck, session complete")
	}

	return c, nil
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Index returns the position of the current card in the deck.
func (c *Controller) Index() int {
	return c.index
}

// Current returns the card being shown, or nil once the session is complete.
func (c *Controller) Current() *domain.Card {
	if c.state == StateComplete {
		return nil
	}
	return c.cards[c.index]
}

// Cards returns the deck with its in-memory schedules.
func (c *Controller) Cards() []*domain.Card {
	return c.cards
}

// Reviewed returns the number of grading events recorded in this session.
func (c *Controller) Reviewed() int {
	return c.reviewed
}

// Reveal shows the back of the current card. It has no scheduling effect.
func (c *Controller) Reveal() error {
	switch c.state {
	case StateComplete:
		return ErrSessionComplete
	case StateShowingFront:
		c.state = StateShowingBack
		return nil
	default:
		return fmt.Errorf("%w: reveal from %s", ErrInvalidTransition, c.state)
	}
}

// Grade records the learner's recall quality for the current card, replaces
// its schedule with the engine's result, persists it and moves on to the next
// card, wrapping around at the end of the deck.
//
// An invalid grade returns the engine's error and leaves the controller where
// it was. A failed write returns a *PersistError after advancing: the new
// schedule stays in memory and is queued for Flush.
func (c *Controller) Grade(ctx context.Context, quality domain.Quality) error {
	switch c.state {
	case StateComplete:
		return ErrSessionComplete
	case StateShowingBack:
	default:
		return fmt.Errorf("%w: grade from %s", ErrInvalidTransition, c.state)
	}

	card := c.cards[c.index]
	next, err := c.engine.ComputeNextSchedule(card.Schedule, quality)
	if err != nil {
		c.logger.Warn("grade rejected",
			slog.String("item_id", card.ItemID.String()),
			slog.Int("quality", int(quality)),
			slog.String("error", err.Error()))
		return err
	}

	card.Schedule = next
	c.reviewed++
	c.state = StateAdvancing

	c.logger.Debug("card graded",
		slog.String("item_id", card.ItemID.String()),
		slog.Int("quality", int(quality)),
		slog.Int("interval_days", next.IntervalDays),
		slog.Int("repetition_count", next.RepetitionCount),
		slog.Float64("easiness_factor", next.EasinessFactor))

	persistErr := c.persist(ctx, next)
	c.advance()

	return persistErr
}

// End terminates the session. It is safe to call more than once.
func (c *Controller) End() {
	if c.state != StateComplete {
		c.logger.Debug("session ended by owner", slog.Int("reviewed", c.reviewed))
	}
	c.state = StateComplete
}

// Pending returns copies of the schedules that still need to be written.
func (c *Controller) Pending() []*domain.ScheduleState {
	out := make([]*domain.ScheduleState, len(c.pending))
	for i, s := range c.pending {
		out[i] = s.Clone()
	}
	return out
}

// Flush retries every pending write. Successful writes are dropped from the
// queue; the returned error joins the failures that remain.
func (c *Controller) Flush(ctx context.Context) error {
	queued := c.pending
	c.pending = nil

	var errs []error
	for _, state := range queued {
		if err := c.persist(ctx, state); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// persist saves state with a bounded timeout. On failure the state is queued,
// replacing any older pending schedule for the same item.
func (c *Controller) persist(ctx context.Context, state *domain.ScheduleState) error {
	saveCtx, cancel := context.WithTimeout(ctx, c.persistTimeout)
	defer cancel()

	err := c.persister.SaveSchedule(saveCtx, state)
	if err == nil {
		c.dropPending(state.ItemID)
		return nil
	}

	c.logger.Error("failed to persist schedule",
		slog.String("item_id", state.ItemID.String()),
		slog.String("error", err.Error()))
	c.queuePending(state)

	return &PersistError{ItemID: state.ItemID, Err: err}
}

func (c *Controller) queuePending(state *domain.ScheduleState) {
	for i, p := range c.pending {
		if p.ItemID == state.ItemID {
			c.pending[i] = state
			return
		}
	}
	c.pending = append(c.pending, state)
}

func (c *Controller) dropPending(itemID uuid.UUID) {
	for i, p := range c.pending {
		if p.ItemID == itemID {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}

// advance moves from StateAdvancing to the front of the next card, or to
// StateComplete when single-pass mode has seen every card.
func (c *Controller) advance() {
	if c.singlePass {
		c.graded[c.index] = struct{}{}
		if len(c.graded) == len(c.cards) {
			c.state = StateComplete
			c.logger.Debug("single pass finished", slog.Int("reviewed", c.reviewed))
			return
		}
	}

	c.index = (c.index + 1) % len(c.cards)
	c.state = StateShowingFront
}
