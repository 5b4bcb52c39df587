package api

import (
	"time"

	"github.com/lingokids/review-api/internal/domain"
)

// DefaultDueLimit is used when GET /reviews/due has no limit parameter.
const (
	DefaultDueLimit = 20
	MaxDueLimit     = 100
)

// GradeRequest is the body of POST /reviews/items/{itemID}/grade.
// Quality is a pointer so that a missing field is distinguishable from 0.
type GradeRequest struct {
	Quality *int `json:"quality" validate:"required"`
}

// PostponeRequest is the body of POST /reviews/items/{itemID}/postpone.
type PostponeRequest struct {
	Days int `json:"days" validate:"required,gte=1,lte=365"`
}

// ScheduleResponse is the JSON form of a schedule.
type ScheduleResponse struct {
	ItemID          string     `json:"item_id"`
	IntervalDays    int        `json:"interval_days"`
	RepetitionCount int        `json:"repetition_count"`
	EasinessFactor  float64    `json:"easiness_factor"`
	DueAt           time.Time  `json:"due_at"`
	LastReviewedAt  *time.Time `json:"last_reviewed_at,omitempty"`
	ReviewCount     int        `json:"review_count"`
}

// DueResponse is the body of GET /reviews/due.
type DueResponse struct {
	Schedules []ScheduleResponse `json:"schedules"`
	Count     int                `json:"count"`
}

func scheduleToResponse(s *domain.ScheduleState) ScheduleResponse {
	resp := ScheduleResponse{
		ItemID:          s.ItemID.String(),
		IntervalDays:    s.IntervalDays,
		RepetitionCount: s.RepetitionCount,
		EasinessFactor:  s.EasinessFactor,
		DueAt:           s.DueAt.UTC(),
		ReviewCount:     s.ReviewCount,
	}
	if !s.LastReviewedAt.IsZero() {
		reviewed := s.LastReviewedAt.UTC()
		resp.LastReviewedAt = &reviewed
	}
	return resp
}
