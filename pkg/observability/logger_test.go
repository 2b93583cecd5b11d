package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("creates text logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelInfo, Format: LogFormatText, Output: &buf})

		logger.Info("test message", "key", "value")

		assert.Contains(t, buf.String(), "test message")
		assert.Contains(t, buf.String(), "key=value")
	})

	t.Run("creates JSON logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelInfo, Format: LogFormatJSON, Output: &buf})

		logger.Info("test message", "key", "value")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "test message", entry["msg"])
		assert.Equal(t, "value", entry["key"])
	})

	t.Run("respects log level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: "WARN", Output: &buf})

		logger.Debug("debug message")
		logger.Info("info message")
		logger.Warn("warn message")

		assert.NotContains(t, buf.String(), "debug message")
		assert.NotContains(t, buf.String(), "info message")
		assert.Contains(t, buf.String(), "warn message")
	})

	t.Run("adds service attributes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Format: LogFormatJSON, Output: &buf, Service: "meditrack", Environment: "test"})

		logger.Info("test")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "meditrack", entry["service"])
		assert.Equal(t, "test", entry["env"])
	})

	t.Run("adds context values", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Format: LogFormatJSON, Output: &buf})
		ctx := NewCommandContext(WithCorrelationID(context.Background(), "corr-1"), "appointment.book")

		logger.With("doctor", "d-1").InfoContext(ctx, "booked")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "corr-1", entry[CorrelationIDKey])
		assert.Equal(t, "appointment.book", entry[OperationKey])
		assert.Equal(t, "d-1", entry["doctor"])
	})
}

func TestNewCommandContext(t *testing.T) {
	ctx := NewCommandContext(context.Background(), "schedule.available")
	assert.NotEmpty(t, CorrelationIDFromContext(ctx))
	assert.Equal(t, "schedule.available", OperationFromContext(ctx))

	kept := NewCommandContext(WithCorrelationID(context.Background(), "abc"), "x")
	assert.Equal(t, "abc", CorrelationIDFromContext(kept))

	assert.Empty(t, CorrelationIDFromContext(context.Background()))
}

func TestNopLogger(t *testing.T) {
	assert.NotPanics(t, func() { NopLogger().Error("ignored") })
}
