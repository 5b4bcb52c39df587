package srs

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lingokids/review-api/internal/domain"
)

// Common errors
var (
	ErrNilSchedule = errors.New("schedule state cannot be nil")
	ErrInvalidDays = errors.New("postpone days must be at least 1")
)

// Clock returns the current time. It is injected so that schedule
// computations are deterministic under test.
type Clock func() time.Time

// SystemClock is the default Clock.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// Service defines the interface for SRS algorithm operations.
// Implementations hold no mutable state and are safe for concurrent use.
type Service interface {
	// NewSchedule creates the schedule for an item the learner has never seen.
	NewSchedule(learnerID, itemID uuid.UUID) (*domain.ScheduleState, error)

	// ComputeNextSchedule returns the schedule that results from grading
	// current with quality. It returns an *domain.InvalidGradeError when
	// quality is outside [0,5].
	ComputeNextSchedule(
		current *domain.ScheduleState,
		quality domain.Quality,
	) (*domain.ScheduleState, error)

	// PostponeReview pushes the due date forward by a number of days without
	// touching the learning state. The result is never more than
	// Params.MaxInterval days from now.
	PostponeReview(current *domain.ScheduleState, days int) (*domain.ScheduleState, error)
}

// Option configures a Service.
type Option func(*defaultService)

// WithClock sets the time source used for due dates.
func WithClock(clock Clock) Option {
	return func(s *defaultService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithParams sets custom algorithm parameters.
func WithParams(params *Params) Option {
	return func(s *defaultService) {
		if params != nil {
			s.params = params
		}
	}
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
	clock  Clock
}

// NewService creates a new SRS service. Without options it uses the default
// parameters and the system clock.
func NewService(opts ...Option) (Service, error) {
	s := &defaultService{
		params: NewDefaultParams(),
		clock:  SystemClock,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.params.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// NewSchedule implements Service.NewSchedule
func (s *defaultService) NewSchedule(learnerID, itemID uuid.UUID) (*domain.ScheduleState, error) {
	state, err := domain.NewScheduleState(learnerID, itemID, s.clock())
	if err != nil {
		return nil, err
	}
	state.EasinessFactor = s.params.InitialEasinessFactor
	return state, nil
}

// ComputeNextSchedule implements Service.ComputeNextSchedule
func (s *defaultService) ComputeNextSchedule(
	current *domain.ScheduleState,
	quality domain.Quality,
) (*domain.ScheduleState, error) {
	if err := quality.Validate(); err != nil {
		return nil, err
	}

	if current == nil {
		return nil, ErrNilSchedule
	}

	if err := current.Validate(); err != nil {
		return nil, err
	}

	return calculateNextState(current, quality, s.clock(), s.params), nil
}

// PostponeReview implements Service.PostponeReview
func (s *defaultService) PostponeReview(
	current *domain.ScheduleState,
	days int,
) (*domain.ScheduleState, error) {
	if current == nil {
		return nil, ErrNilSchedule
	}

	if days < 1 {
		return nil, ErrInvalidDays
	}

	now := s.clock()
	if days > s.params.MaxInterval {
		days = s.params.MaxInterval
	}

	next := current.Clone()
	next.DueAt = current.DueAt.AddDate(0, 0, days)
	if limit := now.AddDate(0, 0, s.params.MaxInterval); next.DueAt.After(limit) {
		next.DueAt = limit
	}
	next.UpdatedAt = now

	return next, nil
}
