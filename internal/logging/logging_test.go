package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Not parallel: New replaces the slog default.
func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "json", "debug")
	logger.Debug("record rejected", "record", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "record rejected", line["msg"])
	assert.Equal(t, "DEBUG", line["level"])
	assert.InDelta(t, 3, line["record"], 0)
}

func TestNew_LevelFilter(t *testing.T) {
	tests := []struct {
		level   string
		debugOK bool
		infoOK  bool
		warnOK  bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"", false, true, true},
		{"bogus", false, true, true},
		{"warn", false, false, true},
		{"error", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&buf, "text", tt.level)

			logger.Debug("d")
			assert.Equal(t, tt.debugOK, buf.Len() > 0, "debug")
			buf.Reset()
			logger.Info("i")
			assert.Equal(t, tt.infoOK, buf.Len() > 0, "info")
			buf.Reset()
			logger.Warn("w")
			assert.Equal(t, tt.warnOK, buf.Len() > 0, "warn")
		})
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	logger := Discard()
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelError, slog.LevelError + 4} {
		assert.False(t, logger.Enabled(t.Context(), level), "level %v", level)
	}
}
