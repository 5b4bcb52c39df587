package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/lingokids/review-api/internal/domain"
	"github.com/lingokids/review-api/internal/service/review"
)

// GradeCall records one SubmitGrade invocation.
type GradeCall struct {
	LearnerID uuid.UUID
	ItemID    uuid.UUID
	Quality   domain.Quality
}

// MockReviewService implements review.Service for testing.
type MockReviewService struct {
	DueSchedulesFn func(ctx context.Context, learnerID uuid.UUID, limit int) ([]*domain.ScheduleState, error)
	GetScheduleFn  func(ctx context.Context, learnerID, itemID uuid.UUID) (*domain.ScheduleState, error)
	SubmitGradeFn  func(
		ctx context.Context,
		learnerID, itemID uuid.UUID,
		quality domain.Quality,
	) (*domain.ScheduleState, error)
	PostponeFn func(ctx context.Context, learnerID, itemID uuid.UUID, days int) (*domain.ScheduleState, error)
	LoadDeckFn func(ctx context.Context, learnerID uuid.UUID, items []review.DeckItem) ([]*domain.Card, error)

	// Defaults used when the function fields are nil.
	Schedules []*domain.ScheduleState
	Schedule  *domain.ScheduleState
	Cards     []*domain.Card
	Err       error

	mu         sync.Mutex
	gradeCalls []GradeCall
}

var _ review.Service = (*MockReviewService)(nil)

// GradeCalls returns the SubmitGrade calls seen so far.
func (m *MockReviewService) GradeCalls() []GradeCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]GradeCall(nil), m.gradeCalls...)
}

// DueSchedules implements review.Service.
func (m *MockReviewService) DueSchedules(
	ctx context.Context,
	learnerID uuid.UUID,
	limit int,
) ([]*domain.ScheduleState, error) {
	if m.DueSchedulesFn != nil {
		return m.DueSchedulesFn(ctx, learnerID, limit)
	}
	return m.Schedules, m.Err
}

// GetSchedule implements review.Service.
func (m *MockReviewService) GetSchedule(
	ctx context.Context,
	learnerID, itemID uuid.UUID,
) (*domain.ScheduleState, error) {
	if m.GetScheduleFn != nil {
		return m.GetScheduleFn(ctx, learnerID, itemID)
	}
	return m.Schedule, m.Err
}

// SubmitGrade implements review.Service.
func (m *MockReviewService) SubmitGrade(
	ctx context.Context,
	learnerID, itemID uuid.UUID,
	quality domain.Quality,
) (*domain.ScheduleState, error) {
	m.mu.Lock()
	m.gradeCalls = append(m.gradeCalls, GradeCall{LearnerID: learnerID, ItemID: itemID, Quality: quality})
	m.mu.Unlock()

	if m.SubmitGradeFn != nil {
		return m.SubmitGradeFn(ctx, learnerID, itemID, quality)
	}
	return m.Schedule, m.Err
}

// Postpone implements review.Service.
func (m *MockReviewService) Postpone(
	ctx context.Context,
	learnerID, itemID uuid.UUID,
	days int,
) (*domain.ScheduleState, error) {
	if m.PostponeFn != nil {
		return m.PostponeFn(ctx, learnerID, itemID, days)
	}
	return m.Schedule, m.Err
}

// LoadDeck implements review.Service.
func (m *MockReviewService) LoadDeck(
	ctx context.Context,
	learnerID uuid.UUID,
	items []review.DeckItem,
) ([]*domain.Card, error) {
	if m.LoadDeckFn != nil {
		return m.LoadDeckFn(ctx, learnerID, items)
	}
	return m.Cards, m.Err
}
