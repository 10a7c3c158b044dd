package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultLoggerInitialized(t *testing.T) {
	require.NotNil(t, GetLogger(), "Logger should be initialized")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name          string
		level         string
		expectedLevel slog.Level
	}{
		{"debug level", "debug", slog.LevelDebug},
		{"info level", "info", slog.LevelInfo},
		{"warn level", "warn", slog.LevelWarn},
		{"warning level", "warning", slog.LevelWarn},
		{"error level", "error", slog.LevelError},
		{"default for unknown", "invalid", slog.LevelInfo},
		{"empty", "", slog.LevelInfo},
		{"uppercase", "DEBUG", slog.LevelDebug},
		{"padded", " warn ", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expectedLevel, ParseLevel(tt.level))
		})
	}
}

func TestNewLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn")

	require.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	logger.Info("dropped")
	require.Empty(t, buf.String())

	logger.Warn("kept", "session_id", "abc")
	require.Contains(t, buf.String(), "msg=kept")
	require.Contains(t, buf.String(), "session_id=abc")
}

func TestInitLoggerSetsDefault(t *testing.T) {
	InitLogger("debug")
	t.Cleanup(func() { InitLogger("info") })

	require.Equal(t, GetLogger(), slog.Default())
	require.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
}
