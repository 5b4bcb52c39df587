package review

import (
	"errors"
	"fmt"
)

// Common error types for the review service
var (
	// ErrNoReviewsDue indicates that the learner has nothing due for review.
	ErrNoReviewsDue = errors.New("no reviews due")

	// ErrInvalidLimit indicates a non-positive page size.
	ErrInvalidLimit = errors.New("limit must be positive")

	// ErrInvalidDeck indicates that a deck item is missing an ID or content.
	ErrInvalidDeck = errors.New("invalid deck")
)

// ServiceError wraps errors from the review service with the failed operation.
// This allows consumers to differentiate between service failures
// using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "submit_grade")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError returns a ServiceError for operation.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
