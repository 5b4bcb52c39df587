// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidGrade is returned when a recall quality grade is outside [0,5].
	// The concrete error is an *InvalidGradeError.
	ErrInvalidGrade = errors.New("invalid grade")
)

// InvalidGradeError reports a quality grade outside the accepted range.
// It signals a bug upstream (e.g. a widget offering the wrong range); callers
// must not retry with the same input.
type InvalidGradeError struct {
	Quality int
}

// Error implements the error interface.
func (e *InvalidGradeError) Error() string {
	return fmt.Sprintf("invalid grade %d: quality must be between %d and %d",
		e.Quality, MinQuality, MaxQuality)
}

// Is lets errors.Is match InvalidGradeError against ErrInvalidGrade.
func (e *InvalidGradeError) Is(target error) bool {
	return target == ErrInvalidGrade
}
