package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lingokids/review-api/internal/api/shared"
	"github.com/lingokids/review-api/internal/domain"
	"github.com/lingokids/review-api/internal/platform/logger"
	"github.com/lingokids/review-api/internal/service/review"
)

// ReviewHandler serves the learner's review schedules.
type ReviewHandler struct {
	reviews review.Service
	logger  *slog.Logger
}

// NewReviewHandler creates a ReviewHandler.
func NewReviewHandler(reviews review.Service, logger *slog.Logger) *ReviewHandler {
	if reviews == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("review service cannot be nil for ReviewHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ReviewHandler")
	}

	return &ReviewHandler{
		reviews: reviews,
		logger:  logger.With(slog.String("component", "review_handler")),
	}
}

// Routes registers the handler on r. Authentication is applied by the caller.
func (h *ReviewHandler) Routes(r chi.Router) {
	r.Get("/reviews/due", h.GetDueReviews)
	r.Route("/reviews/items/{itemID}", func(r chi.Router) {
		r.Get("/", h.GetSchedule)
		r.Post("/grade", h.SubmitGrade)
		r.Post("/postpone", h.Postpone)
	})
}

// GetDueReviews handles GET /reviews/due?limit=N.
func (h *ReviewHandler) GetDueReviews(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := shared.LearnerIDFromContext(r.Context())
	if !ok {
		log.Warn("learner ID not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Learner ID not found or invalid")
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Limit must be a positive integer", err)
		return
	}

	due, err := h.reviews.DueSchedules(r.Context(), learnerID, limit)
	if errors.Is(err, review.ErrNoReviewsDue) {
		log.Debug("no reviews due")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	resp := DueResponse{Schedules: make([]ScheduleResponse, 0, len(due)), Count: len(due)}
	for _, s := range due {
		resp.Schedules = append(resp.Schedules, scheduleToResponse(s))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetSchedule handles GET /reviews/items/{itemID}.
func (h *ReviewHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	learnerID, itemID, ok := handleLearnerAndItem(w, r, h.logger)
	if !ok {
		return
	}

	schedule, err := h.reviews.GetSchedule(r.Context(), learnerID, itemID)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, scheduleToResponse(schedule))
}

// SubmitGrade handles POST /reviews/items/{itemID}/grade.
func (h *ReviewHandler) SubmitGrade(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, itemID, ok := handleLearnerAndItem(w, r, h.logger)
	if !ok {
		return
	}

	var req GradeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	schedule, err := h.reviews.SubmitGrade(r.Context(), learnerID, itemID, domain.Quality(*req.Quality))
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	log.Debug("grade submitted",
		slog.String("item_id", itemID.String()),
		slog.Int("quality", *req.Quality),
		slog.Int("interval_days", schedule.IntervalDays))
	shared.RespondWithJSON(w, r, http.StatusOK, scheduleToResponse(schedule))
}

// Postpone handles POST /reviews/items/{itemID}/postpone.
func (h *ReviewHandler) Postpone(w http.ResponseWriter, r *http.Request) {
	learnerID, itemID, ok := handleLearnerAndItem(w, r, h.logger)
	if !ok {
		return
	}

	var req PostponeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	schedule, err := h.reviews.Postpone(r.Context(), learnerID, itemID, req.Days)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, scheduleToResponse(schedule))
}

func (h *ReviewHandler) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
}
