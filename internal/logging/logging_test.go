package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelWarn},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warning", slog.LevelWarn},
		{"warn", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"critical", LevelCritical},
		{"10", slog.LevelDebug},
		{"20", slog.LevelInfo},
		{"30", slog.LevelWarn},
		{"40", slog.LevelError},
		{"50", LevelCritical},
		{" 20 ", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	t.Run("TextFiltersBelowLevel", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New("WARNING", "text", &buf)
		require.NoError(t, err)

		logger.Info("hidden")
		logger.Warn("shown", "key", "APP_PORT")

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, "msg=shown")
		assert.Contains(t, out, "key=APP_PORT")
	})

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New("10", "json", &buf)
		require.NoError(t, err)

		logger.Debug("resolved", "key", "APP_VERSION")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "DEBUG", entry["level"])
		assert.Equal(t, "APP_VERSION", entry["key"])
	})

	t.Run("CriticalLabel", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New("CRITICAL", "json", &buf)
		require.NoError(t, err)

		logger.Error("dropped")
		logger.Log(context.Background(), LevelCritical, "kept")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "CRITICAL", entry["level"])
		assert.Equal(t, "kept", entry["msg"])
	})

	t.Run("Errors", func(t *testing.T) {
		_, err := New("nope", "text", &bytes.Buffer{})
		assert.Error(t, err)
		_, err = New("INFO", "xml", &bytes.Buffer{})
		assert.Error(t, err)
	})
}
