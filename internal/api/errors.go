package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lingokids/review-api/internal/api/shared"
	"github.com/lingokids/review-api/internal/domain"
	"github.com/lingokids/review-api/internal/domain/srs"
	"github.com/lingokids/review-api/internal/service/auth"
	"github.com/lingokids/review-api/internal/service/review"
	"github.com/lingokids/review-api/internal/store"
)

// MapErrorToStatusCode maps service errors to HTTP status codes without
// exposing their types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrInvalidSubject),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, domain.ErrInvalidGrade),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, srs.ErrInvalidDays),
		errors.Is(err, review.ErrInvalidLimit),
		errors.Is(err, review.ErrInvalidDeck),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	case errors.Is(err, review.ErrNoReviewsDue):
		return http.StatusNoContent

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrInvalidSubject),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, store.ErrNotFound):
		return "Schedule not found"
	case errors.Is(err, store.ErrDuplicate):
		return "Schedule already exists"

	case errors.Is(err, domain.ErrInvalidGrade):
		return fmt.Sprintf("Quality must be between %d and %d", domain.MinQuality, domain.MaxQuality)
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, srs.ErrInvalidDays):
		return "Days must be at least 1"
	case errors.Is(err, review.ErrInvalidLimit):
		return "Limit must be positive"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, review.ErrInvalidDeck):
		return "Invalid schedule data"
	}

	var serviceErr *review.ServiceError
	if errors.As(err, &serviceErr) {
		switch serviceErr.Operation {
		case "submit_grade":
			return "Failed to submit grade"
		case "postpone":
			return "Failed to postpone review"
		case "due_schedules":
			return "Failed to list due reviews"
		}
	}
	return "An unexpected error occurred"
}

// SanitizeValidationError turns a validator error into a message naming the
// first offending field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}

	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
