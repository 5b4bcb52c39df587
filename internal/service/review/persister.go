package review

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lingokids/review-api/internal/domain"
	"github.com/lingokids/review-api/internal/platform/logger"
	"github.com/lingokids/review-api/internal/session"
	"github.com/lingokids/review-api/internal/store"
	"github.com/sethvargo/go-retry"
)

// Default retry settings for RetryingPersister.
const (
	DefaultPersistRetries = 3
	DefaultRetryBackoff   = 50 * time.Millisecond
)

// RetryingPersister writes session schedules to a ScheduleStore, retrying
// transient failures with exponential backoff. Invalid schedules are not
// retried.
type RetryingPersister struct {
	schedules store.ScheduleStore
	retries   uint64
	backoff   time.Duration
	logger    *slog.Logger
}

var _ session.Persister = (*RetryingPersister)(nil)

// PersisterOption configures a RetryingPersister.
type PersisterOption func(*RetryingPersister)

// WithRetries sets how many times a failed write is retried.
func WithRetries(n int) PersisterOption {
	return func(p *RetryingPersister) {
		if n >= 0 {
			p.retries = uint64(n)
		}
	}
}

// WithBackoff sets the first retry delay; later delays double.
func WithBackoff(d time.Duration) PersisterOption {
	return func(p *RetryingPersister) {
		if d > 0 {
			p.backoff = d
		}
	}
}

// WithPersisterLogger sets the persister logger.
func WithPersisterLogger(logger *slog.Logger) PersisterOption {
	return func(p *RetryingPersister) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewRetryingPersister creates a persister over schedules.
func NewRetryingPersister(schedules store.ScheduleStore, opts ...PersisterOption) *RetryingPersister {
	if schedules == nil {
		panic("schedules cannot be nil")
	}

	p := &RetryingPersister{
		schedules: schedules,
		retries:   DefaultPersistRetries,
		backoff:   DefaultRetryBackoff,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(slog.String("component", "schedule_persister"))
	return p
}

// SaveSchedule implements session.Persister.
func (p *RetryingPersister) SaveSchedule(ctx context.Context, state *domain.ScheduleState) error {
	log := logger.FromContextOrDefault(ctx, p.logger)

	backoff := retry.WithMaxRetries(p.retries, retry.NewExponential(p.backoff))

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := p.schedules.Upsert(ctx, state)
		if err == nil {
			return nil
		}
		if errors.Is(err, store.ErrInvalidEntity) {
			return err
		}

		log.Warn("schedule write failed",
			slog.String("error", err.Error()),
			slog.String("item_id", state.ItemID.String()),
			slog.Int("attempt", attempt))
		return retry.RetryableError(err)
	})
}
