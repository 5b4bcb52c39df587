package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lingokids/review-api/internal/api/shared"
	"github.com/lingokids/review-api/internal/domain"
	"github.com/lingokids/review-api/internal/platform/logger"
)

// getPathUUID parses the named chi path parameter as a UUID.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is required", domain.ErrInvalidID, paramName)
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: %s has invalid format", domain.ErrInvalidID, paramName)
	}
	return id, nil
}

// handleLearnerAndItem extracts the authenticated learner and the itemID path
// parameter. It writes the error response itself and returns false when
// either is missing.
func handleLearnerAndItem(w http.ResponseWriter, r *http.Request, fallback *slog.Logger) (uuid.UUID, uuid.UUID, bool) {
	log := logger.FromContextOrDefault(r.Context(), fallback)

	learnerID, ok := shared.LearnerIDFromContext(r.Context())
	if !ok {
		log.Warn("learner ID not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Learner ID not found or invalid")
		return uuid.Nil, uuid.Nil, false
	}

	itemID, err := getPathUUID(r, "itemID")
	if err != nil {
		log.Warn("invalid item ID", slog.String("value", chi.URLParam(r, "itemID")))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid item ID", err)
		return uuid.Nil, uuid.Nil, false
	}

	return learnerID, itemID, true
}

// parseLimit reads the limit query parameter, defaulting to DefaultDueLimit
// and capping at MaxDueLimit.
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return DefaultDueLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, fmt.Errorf("%w: limit %q", domain.ErrValidation, raw)
	}
	return min(limit, MaxDueLimit), nil
}
