package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lingokids/review-api/internal/api"
	"github.com/lingokids/review-api/internal/config"
	"github.com/lingokids/review-api/internal/platform/logger"
	"github.com/lingokids/review-api/internal/platform/migrations"
	"github.com/lingokids/review-api/internal/platform/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var serverNow = time.Date(2026, 6, 15, 8, 0, 0, 0, time.UTC)

func testConfig(dbPath string) *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: 8080, LogLevel: "debug"},
		Database: config.DatabaseConfig{Driver: "sqlite", URL: dbPath},
		Auth:     config.AuthConfig{JWTSecret: "test-secret-that-is-at-least-32-chars-long"},
		Session:  config.SessionConfig{PersistTimeoutSeconds: 5, PersistRetries: 1},
	}
}

func newTestApp(t *testing.T) *application {
	t.Helper()
	ctx := context.Background()
	log, _ := logger.NewTestLogger()
	cfg := testConfig(filepath.Join(t.TempDir(), "review.db"))

	db, err := sqlite.Open(ctx, cfg.Database.URL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, handleMigrations(ctx, cfg, db, "up", log))

	app, err := newApplication(cfg, log, db, func() time.Time { return serverNow })
	require.NoError(t, err)
	return app
}

func send(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	rec := send(t, app.setupRouter(), http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouter_RequiresToken(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	router := app.setupRouter()

	rec := send(t, router, http.MethodGet, "/api/reviews/due", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))

	rec = send(t, router, http.MethodGet, "/api/reviews/due", "not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_GradeFlow(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	router := app.setupRouter()

	learnerID, itemID := uuid.New(), uuid.New()
	token, err := app.jwtService.GenerateToken(context.Background(), learnerID)
	require.NoError(t, err)
	itemPath := "/api/reviews/items/" + itemID.String()

	// Nothing stored yet.
	rec := send(t, router, http.MethodGet, "/api/reviews/due", token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = send(t, router, http.MethodGet, itemPath, token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var schedule api.ScheduleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schedule))
	assert.Equal(t, 1, schedule.IntervalDays)
	assert.InDelta(t, 2.5, schedule.EasinessFactor, 1e-9)

	grades := []struct {
		quality  string
		interval int
		reps     int
		ef       float64
	}{
		{"4", 1, 1, 2.5},
		{"5", 6, 2, 2.6},
		{"2", 1, 0, 2.6},
	}
	for _, g := range grades {
		rec = send(t, router, http.MethodPost, itemPath+"/grade", token, `{"quality": `+g.quality+`}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schedule))
		assert.Equal(t, g.interval, schedule.IntervalDays, "quality %s", g.quality)
		assert.Equal(t, g.reps, schedule.RepetitionCount, "quality %s", g.quality)
		assert.InDelta(t, g.ef, schedule.EasinessFactor, 1e-9, "quality %s", g.quality)
		assert.True(t, serverNow.AddDate(0, 0, g.interval).Equal(schedule.DueAt))
	}
	assert.Equal(t, 3, schedule.ReviewCount)

	rec = send(t, router, http.MethodPost, itemPath+"/grade", token, `{"quality": 6}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(t, router, http.MethodPost, itemPath+"/postpone", token, `{"days": 2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schedule))
	assert.True(t, serverNow.AddDate(0, 0, 3).Equal(schedule.DueAt))
	assert.Equal(t, 1, schedule.IntervalDays)

	// Another learner sees nothing of this learner's schedules.
	other, err := app.jwtService.GenerateToken(context.Background(), uuid.New())
	require.NoError(t, err)
	rec = send(t, router, http.MethodGet, itemPath, other, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schedule))
	assert.Equal(t, 0, schedule.ReviewCount)
}

func TestHandleMigrations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	log, _ := logger.NewTestLogger()
	cfg := testConfig(filepath.Join(t.TempDir(), "migrate.db"))

	db, err := sqlite.Open(ctx, cfg.Database.URL)
	require.NoError(t, err)
	defer db.Close()

	for _, cmd := range []string{"up", "version", "status", "down"} {
		require.NoError(t, handleMigrations(ctx, cfg, db, cmd, log), cmd)
	}

	version, err := migrations.Version(ctx, db, migrations.DialectSQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)

	assert.Error(t, handleMigrations(ctx, cfg, db, "create", log))
}
