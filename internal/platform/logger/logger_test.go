package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/lingokids/review-api/internal/config"
	"github.com/lingokids/review-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWithWriter(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	tests := []struct {
		name       string
		level      string
		wantLevels []string
	}{
		{"Debug level", "debug", []string{"DEBUG", "INFO"}},
		{"Info level", "INFO", []string{"INFO"}},
		{"Error level", "error", nil},
		{"Invalid level falls back to info", "chatty", []string{"INFO"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &logger.TestLogBuffer{}
			log, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: tt.level}, buf)
			require.NoError(t, err)
			require.NotNil(t, log)
			assert.Same(t, log, slog.Default())

			log.Debug("debug message")
			log.Info("info message", slog.String("component", "test"))

			entries, err := buf.GetLogEntries()
			require.NoError(t, err)

			var levels []string
			for _, e := range entries {
				levels = append(levels, e["level"].(string))
			}
			assert.Equal(t, tt.wantLevels, levels)
		})
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	level, ok := logger.ParseLevel("Warn")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelWarn, level)

	level, ok = logger.ParseLevel("")
	assert.False(t, ok)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	scoped, buf := logger.NewTestLogger()
	fallback, _ := logger.NewTestLogger()

	ctx := logger.WithLogger(context.Background(), scoped)
	assert.Same(t, scoped, logger.FromContext(ctx))
	assert.Same(t, scoped, logger.FromContextOrDefault(ctx, fallback))

	assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))
	assert.NotNil(t, logger.FromContext(context.Background()))
	assert.NotNil(t, logger.FromContextOrDefault(context.Background(), nil))

	logger.FromContext(ctx).Info("scoped entry", slog.String("trace_id", "abc"))
	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0]["trace_id"])
}
