package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Common errors returned by the Controller.
var (
	// ErrInvalidTransition is returned when an action is not allowed in the
	// current state, e.g. grading before the back was revealed.
	ErrInvalidTransition = errors.New("invalid session transition")

	// ErrSessionComplete is returned for any action after the session ended.
	ErrSessionComplete = errors.New("session complete")

	// ErrPersistFailed is matched by every *PersistError.
	ErrPersistFailed = errors.New("failed to persist schedule")

	// ErrNilEngine is returned when a Controller is created without an engine.
	ErrNilEngine = errors.New("review engine cannot be nil")

	// ErrNilPersister is returned when a Controller is created without a persister.
	ErrNilPersister = errors.New("persister cannot be nil")

	// ErrDuplicateItem is returned when the same item appears twice in a deck.
	ErrDuplicateItem = errors.New("duplicate item in deck")
)

// PersistError reports that a freshly computed schedule could not be saved.
// The schedule is kept in memory and queued for Flush.
type PersistError struct {
	ItemID uuid.UUID
	Err    error
}

// Error implements the error interface for PersistError.
func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist schedule for item %s: %v", e.ItemID, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *PersistError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrPersistFailed.
func (e *PersistError) Is(target error) bool {
	return target == ErrPersistFailed
}
