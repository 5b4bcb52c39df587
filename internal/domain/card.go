package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Card-specific validation errors
var (
	// ErrCardItemIDEmpty is returned when a card's item ID is empty or nil.
	ErrCardItemIDEmpty = errors.New("card item ID cannot be empty")

	// ErrCardFrontEmpty is returned when a card has no front content.
	ErrCardFrontEmpty = errors.New("card front cannot be empty")

	// ErrCardBackEmpty is returned when a card has no back content.
	ErrCardBackEmpty = errors.New("card back cannot be empty")

	// ErrCardScheduleMissing is returned when a card has no schedule attached.
	ErrCardScheduleMissing = errors.New("card schedule cannot be nil")

	// ErrCardScheduleMismatch is returned when the attached schedule belongs
	// to a different item.
	ErrCardScheduleMismatch = errors.New("card schedule does not belong to card item")
)

// Card pairs a front/back content pair with the learner's current schedule
// for that item. Cards live only for the duration of a review session and
// are discarded once their schedule is written back.
type Card struct {
	ItemID   uuid.UUID      `json:"item_id"`
	Front    string         `json:"front"`
	Back     string         `json:"back"`
	Schedule *ScheduleState `json:"schedule"`
}

// NewCard creates a Card and validates it.
func NewCard(itemID uuid.UUID, front, back string, schedule *ScheduleState) (*Card, error) {
	card := &Card{
		ItemID:   itemID,
		Front:    front,
		Back:     back,
		Schedule: schedule,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
func (c *Card) Validate() error {
	if c.ItemID == uuid.Nil {
		return ErrCardItemIDEmpty
	}

	if strings.TrimSpace(c.Front) == "" {
		return ErrCardFrontEmpty
	}

	if strings.TrimSpace(c.Back) == "" {
		return ErrCardBackEmpty
	}

	if c.Schedule == nil {
		return ErrCardScheduleMissing
	}

	if c.Schedule.ItemID != c.ItemID {
		return ErrCardScheduleMismatch
	}

	return c.Schedule.Validate()
}
