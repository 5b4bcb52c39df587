package srs

import (
	"math"
	"time"

	"github.com/lingokids/review-api/internal/domain"
)

// calculateNewEasinessFactor applies the SM-2 adjustment for a successful review.
//
//	EF' = EF + (0.1 - (5-q) * (0.08 + (5-q) * 0.02))
//
// A perfect grade raises EF by 0.1, a 4 leaves it unchanged and a 3 lowers it
// by 0.14. The result is clamped to params.MinEasinessFactor; there is no
// ceiling.
func calculateNewEasinessFactor(currentEF float64, quality domain.Quality, params *Params) float64 {
	miss := float64(domain.MaxQuality - quality)
	newEF := currentEF + (0.1 - miss*(0.08+miss*0.02))

	if newEF < params.MinEasinessFactor {
		newEF = params.MinEasinessFactor
	}

	return newEF
}

// calculateNewInterval determines the next interval in days for a successful
// review. The choice depends on the repetition count *before* this review:
//
//   - 0: first success in the streak, params.FirstInterval (1 day)
//   - 1: second success, params.SecondInterval (6 days)
//   - otherwise: previous interval times the previous easiness factor, rounded
//
// The result stays within [1, params.MaxInterval].
func calculateNewInterval(
	currentInterval int,
	repetitionCount int,
	easinessFactor float64,
	params *Params,
) int {
	var interval int
	switch repetitionCount {
	case 0:
		interval = params.FirstInterval
	case 1:
		interval = params.SecondInterval
	default:
		// Saturate in float64 so a long streak can't overflow int.
		next := math.Round(float64(currentInterval) * easinessFactor)
		if next > float64(params.MaxInterval) {
			next = float64(params.MaxInterval)
		}
		interval = int(next)
	}

	if interval > params.MaxInterval {
		interval = params.MaxInterval
	}
	if interval < 1 {
		interval = 1
	}
	return interval
}

// calculateNextReviewDate converts an interval into a due timestamp.
// AddDate keeps the wall-clock time of day across DST changes.
func calculateNextReviewDate(interval int, now time.Time) time.Time {
	return now.AddDate(0, 0, interval)
}

// calculateNextState returns a new ScheduleState for the given grade. The
// input is never modified.
//
// A failing grade (below params.PassingQuality) resets the streak: the
// repetition count drops to 0, the interval to params.LapseInterval, and the
// easiness factor is left as it was. Prior streak length does not protect
// against a lapse.
//
// A passing grade computes the interval from the prior repetition count and
// prior easiness factor, then increments the count and adjusts the easiness
// factor.
func calculateNextState(
	current *domain.ScheduleState,
	quality domain.Quality,
	now time.Time,
	params *Params,
) *domain.ScheduleState {
	next := current.Clone()

	next.ReviewCount++
	next.LastReviewedAt = now
	next.UpdatedAt = now

	if quality < params.PassingQuality {
		next.RepetitionCount = 0
		next.IntervalDays = params.LapseInterval
		next.DueAt = calculateNextReviewDate(next.IntervalDays, now)
		return next
	}

	next.IntervalDays = calculateNewInterval(
		current.IntervalDays,
		current.RepetitionCount,
		current.EasinessFactor,
		params,
	)
	next.RepetitionCount = current.RepetitionCount + 1
	next.EasinessFactor = calculateNewEasinessFactor(current.EasinessFactor, quality, params)
	next.DueAt = calculateNextReviewDate(next.IntervalDays, now)

	return next
}
