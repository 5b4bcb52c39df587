package review

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
	"github.com/lingokids/review-api/internal/domain/srs"
	"github.com/lingokids/review-api/internal/platform/logger"
	"github.com/lingokids/review-api/internal/store"
)

// DeckItem is one learnable item as authored in a deck.
type DeckItem struct {
	ID    uuid.UUID `yaml:"id"    json:"id"`
	Front string    `yaml:"front" json:"front"`
	Back  string    `yaml:"back"  json:"back"`
}

// Service exposes schedule operations for one learner at a time.
type Service interface {
	// DueSchedules returns up to limit schedules due now, oldest first.
	// Returns ErrNoReviewsDue when nothing is due.
	DueSchedules(ctx context.Context, learnerID uuid.UUID, limit int) ([]*domain.ScheduleState, error)

	// GetSchedule returns the stored schedule for an item, or a fresh
	// unsaved one if the learner has never graded it.
	GetSchedule(ctx context.Context, learnerID, itemID uuid.UUID) (*domain.ScheduleState, error)

	// SubmitGrade applies a recall grade to the item's schedule and stores
	// the result. An invalid grade returns an error matching
	// domain.ErrInvalidGrade and changes nothing.
	SubmitGrade(
		ctx context.Context,
		learnerID, itemID uuid.UUID,
		quality domain.Quality,
	) (*domain.ScheduleState, error)

	// Postpone moves the item's next review days later without changing
	// its learning state.
	Postpone(ctx context.Context, learnerID, itemID uuid.UUID, days int) (*domain.ScheduleState, error)

	// LoadDeck pairs deck items with the learner's stored schedules, in deck
	// order. Items never graded get a fresh schedule.
	LoadDeck(ctx context.Context, learnerID uuid.UUID, items []DeckItem) ([]*domain.Card, error)
}

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	db        *sql.DB
	schedules store.ScheduleStore
	engine    srs.Service
	clock     srs.Clock
	logger    *slog.Logger
}

// Option configures the review service.
type Option func(*serviceImpl)

// WithClock sets the time source used to decide what is due. It should match
// the engine's clock.
func WithClock(clock srs.Clock) Option {
	return func(s *serviceImpl) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *serviceImpl) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates the review service. db is used to open transactions in
// which schedules is rebound with WithTx.
func NewService(db *sql.DB, schedules store.ScheduleStore, engine srs.Service, opts ...Option) Service {
	if db == nil {
		panic("db cannot be nil")
	}
	if schedules == nil {
		panic("schedules cannot be nil")
	}
	if engine == nil {
		panic("engine cannot be nil")
	}

	s := &serviceImpl{
		db:        db,
		schedules: schedules,
		engine:    engine,
		clock:     srs.SystemClock,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("component", "review_service"))

	return s
}

func validateIDs(learnerID, itemID uuid.UUID) error {
	if learnerID == uuid.Nil {
		return fmt.Errorf("%w: learner ID", domain.ErrInvalidID)
	}
	if itemID == uuid.Nil {
		return fmt.Errorf("%w: item ID", domain.ErrInvalidID)
	}
	return nil
}

// DueSchedules implements Service.DueSchedules.
func (s *serviceImpl) DueSchedules(
	ctx context.Context,
	learnerID uuid.UUID,
	limit int,
) ([]*domain.ScheduleState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if learnerID == uuid.Nil {
		return nil, fmt.Errorf("%w: learner ID", domain.ErrInvalidID)
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	due, err := s.schedules.ListDue(ctx, learnerID, s.clock(), limit)
	if err != nil {
		log.Error("failed to list due schedules",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, NewServiceError("due_schedules", "failed to list due schedules", err)
	}
	if len(due) == 0 {
		log.Debug("no reviews due", slog.String("learner_id", learnerID.String()))
		return nil, ErrNoReviewsDue
	}

	return due, nil
}

// GetSchedule implements Service.GetSchedule.
func (s *serviceImpl) GetSchedule(
	ctx context.Context,
	learnerID, itemID uuid.UUID,
) (*domain.ScheduleState, error) {
	if err := validateIDs(learnerID, itemID); err != nil {
		return nil, err
	}

	state, err := s.schedules.Get(ctx, learnerID, itemID)
	if errors.Is(err, store.ErrScheduleNotFound) {
		return s.engine.NewSchedule(learnerID, itemID)
	}
	if err != nil {
		return nil, NewServiceError("get_schedule", "failed to load schedule", err)
	}
	return state, nil
}

// SubmitGrade implements Service.SubmitGrade.
func (s *serviceImpl) SubmitGrade(
	ctx context.Context,
	learnerID, itemID uuid.UUID,
	quality domain.Quality,
) (*domain.ScheduleState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := validateIDs(learnerID, itemID); err != nil {
		return nil, err
	}
	if err := quality.Validate(); err != nil {
		log.Warn("invalid grade submitted",
			slog.String("learner_id", learnerID.String()),
			slog.String("item_id", itemID.String()),
			slog.Int("quality", int(quality)))
		return nil, err
	}

	var next *domain.ScheduleState
	err := s.update(ctx, learnerID, itemID, func(current *domain.ScheduleState) (*domain.ScheduleState, error) {
		var err error
		next, err = s.engine.ComputeNextSchedule(current, quality)
		return next, err
	})
	if err != nil {
		log.Error("failed to submit grade",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()),
			slog.String("item_id", itemID.String()))
		return nil, NewServiceError("submit_grade", "failed to apply grade", err)
	}

	log.Debug("grade applied",
		slog.String("learner_id", learnerID.String()),
		slog.String("item_id", itemID.String()),
		slog.Int("quality", int(quality)),
		slog.Int("interval_days", next.IntervalDays),
		slog.Float64("easiness_factor", next.EasinessFactor),
		slog.Time("due_at", next.DueAt))
	return next, nil
}

// Postpone implements Service.Postpone.
func (s *serviceImpl) Postpone(
	ctx context.Context,
	learnerID, itemID uuid.UUID,
	days int,
) (*domain.ScheduleState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := validateIDs(learnerID, itemID); err != nil {
		return nil, err
	}
	if days < 1 {
		return nil, srs.ErrInvalidDays
	}

	var next *domain.ScheduleState
	err := s.update(ctx, learnerID, itemID, func(current *domain.ScheduleState) (*domain.ScheduleState, error) {
		var err error
		next, err = s.engine.PostponeReview(current, days)
		return next, err
	})
	if err != nil {
		log.Error("failed to postpone review",
			slog.String("error", err.Error()),
			slog.String("item_id", itemID.String()),
			slog.Int("days", days))
		return nil, NewServiceError("postpone", "failed to postpone review", err)
	}

	return next, nil
}

// update loads (or initializes) the schedule under a row lock, applies fn and
// stores the result, all in one transaction.
func (s *serviceImpl) update(
	ctx context.Context,
	learnerID, itemID uuid.UUID,
	fn func(current *domain.ScheduleState) (*domain.ScheduleState, error),
) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txSchedules := s.schedules.WithTx(tx)

		current, err := txSchedules.GetForUpdate(ctx, learnerID, itemID)
		if errors.Is(err, store.ErrScheduleNotFound) {
			current, err = s.engine.NewSchedule(learnerID, itemID)
		}
		if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		return txSchedules.Upsert(ctx, next)
	})
}

// LoadDeck implements Service.LoadDeck.
func (s *serviceImpl) LoadDeck(
	ctx context.Context,
	learnerID uuid.UUID,
	items []DeckItem,
) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if learnerID == uuid.Nil {
		return nil, fmt.Errorf("%w: learner ID", domain.ErrInvalidID)
	}

	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for i, item := range items {
		if item.ID == uuid.Nil {
			return nil, fmt.Errorf("%w: item %d has no id", ErrInvalidDeck, i)
		}
		if strings.TrimSpace(item.Front) == "" || strings.TrimSpace(item.Back) == "" {
			return nil, fmt.Errorf("%w: item %s needs a front and a back", ErrInvalidDeck, item.ID)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("%w: item %s appears twice", ErrInvalidDeck, item.ID)
		}
		seen[item.ID] = struct{}{}
		ids = append(ids, item.ID)
	}

	stored, err := s.schedules.GetMany(ctx, learnerID, ids)
	if err != nil {
		return nil, NewServiceError("load_deck", "failed to load schedules", err)
	}

	cards := make([]*domain.Card, 0, len(items))
	for _, item := range items {
		schedule, ok := stored[item.ID]
		if !ok {
			schedule, err = s.engine.NewSchedule(learnerID, item.ID)
			if err != nil {
				return nil, err
			}
		}

		card, err := domain.NewCard(item.ID, item.Front, item.Back, schedule)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDeck, err)
		}
		cards = append(cards, card)
	}

	log.Debug("deck loaded",
		slog.String("learner_id", learnerID.String()),
		slog.Int("cards", len(cards)),
		slog.Int("previously_reviewed", len(stored)))
	return cards, nil
}

// CountDue reports how many cards are due at now.
func CountDue(cards []*domain.Card, now time.Time) int {
	n := 0
	for _, c := range cards {
		if c.Schedule.IsDue(now) {
			n++
		}
	}
	return n
}
