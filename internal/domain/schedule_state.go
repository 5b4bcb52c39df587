package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Defaults for a freshly introduced item.
const (
	DefaultIntervalDays   = 1
	DefaultEasinessFactor = 2.5

	// MinEasinessFactor is the floor the easiness factor is clamped to.
	MinEasinessFactor = 1.3
)

// Common validation errors for ScheduleState
var (
	ErrEmptyScheduleLearnerID = errors.New("schedule learner ID cannot be empty")
	ErrEmptyScheduleItemID    = errors.New("schedule item ID cannot be empty")
	ErrInvalidInterval        = errors.New("interval must be at least 1 day")
	ErrInvalidRepetitionCount = errors.New("repetition count cannot be negative")
	ErrInvalidEasinessFactor  = errors.New("easiness factor must be at least 1.3")
)

// ScheduleState is one learner's memory state for one learnable item.
// It is created on first exposure to the item and replaced exactly once per
// grading event.
type ScheduleState struct {
	LearnerID       uuid.UUID `json:"learner_id"`
	ItemID          uuid.UUID `json:"item_id"`
	IntervalDays    int       `json:"interval_days"`    // Days until DueAt at last computation
	RepetitionCount int       `json:"repetition_count"` // Consecutive successful reviews
	EasinessFactor  float64   `json:"easiness_factor"`  // Interval growth multiplier, >= 1.3
	DueAt           time.Time `json:"due_at"`           // When the item should next be shown
	LastReviewedAt  time.Time `json:"last_reviewed_at"` // Zero until the first review
	ReviewCount     int       `json:"review_count"`     // Total reviews, lapses included
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewScheduleState creates the schedule for an item the learner has never
// seen. The item is due immediately.
func NewScheduleState(learnerID, itemID uuid.UUID, now time.Time) (*ScheduleState, error) {
	s := &ScheduleState{
		LearnerID:       learnerID,
		ItemID:          itemID,
		IntervalDays:    DefaultIntervalDays,
		RepetitionCount: 0,
		EasinessFactor:  DefaultEasinessFactor,
		DueAt:           now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate checks the ScheduleState invariants.
func (s *ScheduleState) Validate() error {
	if s.LearnerID == uuid.Nil {
		return ErrEmptyScheduleLearnerID
	}

	if s.ItemID == uuid.Nil {
		return ErrEmptyScheduleItemID
	}

	if s.IntervalDays < 1 {
		return ErrInvalidInterval
	}

	if s.RepetitionCount < 0 {
		return ErrInvalidRepetitionCount
	}

	if s.EasinessFactor < MinEasinessFactor {
		return ErrInvalidEasinessFactor
	}

	return nil
}

// IsNew reports whether the item has never been reviewed.
func (s *ScheduleState) IsNew() bool {
	return s.LastReviewedAt.IsZero()
}

// IsDue reports whether the item should be shown at the given time.
func (s *ScheduleState) IsDue(now time.Time) bool {
	return !s.DueAt.After(now)
}

// Clone returns a copy of s. ScheduleState holds only value fields, so a
// shallow copy is a full copy.
func (s *ScheduleState) Clone() *ScheduleState {
	c := *s
	return &c
}
