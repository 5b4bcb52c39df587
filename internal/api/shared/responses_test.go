package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lingokids/review-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithJSON(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "/api/reviews/due", nil)
	rec := httptest.NewRecorder()

	RespondWithJSON(rec, req, http.StatusCreated, map[string]int{"interval_days": 6})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"interval_days": 6}`, rec.Body.String())
}

func TestRespondWithJSON_EncodeFailure(t *testing.T) {
	t.Parallel()
	log, buf := logger.NewTestLogger()

	ctx := logger.WithLogger(SetTraceID(context.Background()), log)
	req := httptest.NewRequest(http.MethodGet, "/api/reviews/items/x", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	// Years past 9999 have no RFC 3339 form.
	RespondWithJSON(rec, req, http.StatusOK, map[string]time.Time{
		"due_at": time.Date(23238, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Internal server error", body.Error)
	assert.Equal(t, GetTraceID(ctx), body.TraceID)

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ERROR", entries[0]["level"])
}

func TestRespondWithErrorAndLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		opts      []ResponseOption
		wantLevel string
	}{
		{name: "server error", status: http.StatusInternalServerError, wantLevel: "ERROR"},
		{name: "client error", status: http.StatusBadRequest, wantLevel: "DEBUG"},
		{name: "rate limited", status: http.StatusTooManyRequests, wantLevel: "WARN"},
		{
			name:      "elevated client error",
			status:    http.StatusUnauthorized,
			opts:      []ResponseOption{WithElevatedLogLevel()},
			wantLevel: "WARN",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			log, buf := logger.NewTestLogger()

			ctx := logger.WithLogger(SetTraceID(context.Background()), log)
			req := httptest.NewRequest(http.MethodPost, "/api/reviews/items/x/grade", nil).WithContext(ctx)
			rec := httptest.NewRecorder()

			cause := errors.New("dial postgres://review:hunter2@db:5432/review")
			RespondWithErrorAndLog(rec, req, tc.status, "Something went wrong", cause, tc.opts...)

			assert.Equal(t, tc.status, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "Something went wrong", body.Error)
			assert.Equal(t, GetTraceID(ctx), body.TraceID)
			assert.NotContains(t, rec.Body.String(), "hunter2")

			entries, err := buf.GetLogEntries()
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, tc.wantLevel, entries[0]["level"])
			assert.Equal(t, body.TraceID, entries[0]["trace_id"])
			assert.NotContains(t, entries[0]["error"], "hunter2")
		})
	}
}

func TestRespondWithError_NoTraceID(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "/api/reviews/due", nil)
	rec := httptest.NewRecorder()

	RespondWithError(rec, req, http.StatusNotFound, "Schedule not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error": "Schedule not found"}`, rec.Body.String())
}
