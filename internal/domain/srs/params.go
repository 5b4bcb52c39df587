package srs

import (
	"errors"
	"fmt"

	"github.com/lingokids/review-api/internal/domain"
)

// ErrInvalidParams is returned when a Params value is internally inconsistent.
var ErrInvalidParams = errors.New("invalid SRS parameters")

// DefaultMaxInterval caps review intervals at roughly a century.
const DefaultMaxInterval = 36500

// Params defines all configurable parameters for the SRS algorithm
type Params struct {
	// Easiness limits. There is deliberately no ceiling.
	MinEasinessFactor     float64
	InitialEasinessFactor float64

	// Grades at or above PassingQuality count as successful recall
	PassingQuality domain.Quality

	// Fixed intervals for the start of a repetition streak and after a lapse
	FirstInterval  int
	SecondInterval int
	LapseInterval  int

	// No interval, and no postponed due date, lies more than MaxInterval
	// days ahead.
	MaxInterval int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	MinEasinessFactor     float64
	InitialEasinessFactor float64
	FirstInterval         int
	SecondInterval        int
	LapseInterval         int
	MaxInterval           int
}

// NewDefaultParams creates a new Params instance with the classic SM-2 values
func NewDefaultParams() *Params {
	return &Params{
		MinEasinessFactor:     domain.MinEasinessFactor,
		InitialEasinessFactor: domain.DefaultEasinessFactor,
		PassingQuality:        domain.QualityHard,
		FirstInterval:         1,
		SecondInterval:        6,
		LapseInterval:         1,
		MaxInterval:           DefaultMaxInterval,
	}
}

// NewParams creates a new Params instance with custom configuration.
// Zero fields keep their default values.
func NewParams(config ParamsConfig) (*Params, error) {
	params := NewDefaultParams()

	if config.MinEasinessFactor > 0 {
		params.MinEasinessFactor = config.MinEasinessFactor
	}
	if config.InitialEasinessFactor > 0 {
		params.InitialEasinessFactor = config.InitialEasinessFactor
	}
	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}
	if config.LapseInterval > 0 {
		params.LapseInterval = config.LapseInterval
	}
	if config.MaxInterval > 0 {
		params.MaxInterval = config.MaxInterval
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	return params, nil
}

// Validate checks that the parameters keep every ScheduleState invariant intact.
func (p *Params) Validate() error {
	if p.MinEasinessFactor < domain.MinEasinessFactor {
		return fmt.Errorf("%w: min easiness factor %.2f below %.2f",
			ErrInvalidParams, p.MinEasinessFactor, domain.MinEasinessFactor)
	}
	if p.InitialEasinessFactor < p.MinEasinessFactor {
		return fmt.Errorf("%w: initial easiness factor %.2f below minimum %.2f",
			ErrInvalidParams, p.InitialEasinessFactor, p.MinEasinessFactor)
	}
	if err := p.PassingQuality.Validate(); err != nil {
		return fmt.Errorf("%w: passing quality: %v", ErrInvalidParams, err)
	}
	if p.FirstInterval < 1 || p.SecondInterval < 1 || p.LapseInterval < 1 {
		return fmt.Errorf("%w: intervals must be at least 1 day", ErrInvalidParams)
	}
	if p.MaxInterval < p.FirstInterval || p.MaxInterval < p.SecondInterval || p.MaxInterval < p.LapseInterval {
		return fmt.Errorf("%w: max interval %d below a fixed interval", ErrInvalidParams, p.MaxInterval)
	}
	return nil
}
