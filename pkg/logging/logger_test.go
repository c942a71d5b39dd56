package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	logger := NewLogger()
	require.NotNil(t, logger)
	require.NotNil(t, logger.Logger)
}

func TestLogLevelFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected slog.Level
	}{
		{"debug level", "DEBUG", slog.LevelDebug},
		{"info level", "INFO", slog.LevelInfo},
		{"warn level", "WARN", slog.LevelWarn},
		{"warning level", "WARNING", slog.LevelWarn},
		{"error level", "ERROR", slog.LevelError},
		{"lowercase debug", "debug", slog.LevelDebug},
		{"padded value", " error ", slog.LevelError},
		{"invalid level", "INVALID", slog.LevelInfo},
		{"empty value", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(LevelEnv, tt.envValue)
			assert.Equal(t, tt.expected, getLogLevelFromEnv())
		})
	}
}

func TestSessionID(t *testing.T) {
	t.Run("generated IDs are unique hex", func(t *testing.T) {
		id1 := GenerateSessionID()
		id2 := GenerateSessionID()
		assert.Len(t, id1, 16)
		assert.NotEqual(t, id1, id2)
	})

	t.Run("context round trip", func(t *testing.T) {
		ctx := WithSessionID(context.Background(), "flight-42")
		assert.Equal(t, "flight-42", GetSessionID(ctx))
	})

	t.Run("missing ID", func(t *testing.T) {
		assert.Equal(t, "", GetSessionID(context.Background()))
	})

	t.Run("auto-generate on empty", func(t *testing.T) {
		ctx := WithSessionID(context.Background(), "")
		assert.Len(t, GetSessionID(ctx), 16)
	})
}

func TestSanitizeAttributes(t *testing.T) {
	tests := []struct {
		name     string
		attr     slog.Attr
		expected string
	}{
		{"password field", slog.String("password", "secret123"), "[REDACTED]"},
		{"token field", slog.String("auth_token", "bearer-token"), "[REDACTED]"},
		{"api key", slog.String("metrics_api_key", "abc"), "[REDACTED]"},
		{"vehicle field", slog.String("vehicle", "rotorcraft"), "rotorcraft"},
		{"session id is kept", slog.String("session_id", "abc123"), "abc123"},
		{"case insensitive", slog.String("PASSWORD", "secret123"), "[REDACTED]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeAttributes(nil, tt.attr).Value.String())
		})
	}
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLoggerMethods(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, slog.LevelDebug)
	ctx := WithSessionID(context.Background(), "test-id-123")

	t.Run("info logging", func(t *testing.T) {
		buf.Reset()
		logger.Info(ctx, "engine started", "vehicle", "rotorcraft")

		entry := decodeEntry(t, &buf)
		assert.Equal(t, "engine started", entry["msg"])
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "test-id-123", entry["session_id"])
		assert.Equal(t, "rotorcraft", entry["vehicle"])
	})

	t.Run("error logging", func(t *testing.T) {
		buf.Reset()
		logger.Error(ctx, "config rejected", errors.New("tick rate must be positive"))

		entry := decodeEntry(t, &buf)
		assert.Equal(t, "ERROR", entry["level"])
		assert.Equal(t, "tick rate must be positive", entry["error"])
	})

	t.Run("debug logging", func(t *testing.T) {
		buf.Reset()
		logger.Debug(ctx, "tick", "n", 1)
		assert.Equal(t, "DEBUG", decodeEntry(t, &buf)["level"])
	})

	t.Run("warn logging", func(t *testing.T) {
		buf.Reset()
		logger.Warn(ctx, "catch-up limit reached")
		assert.Equal(t, "WARN", decodeEntry(t, &buf)["level"])
	})
}

func TestLogWithoutSessionID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, slog.LevelInfo)

	logger.Info(context.Background(), "test message")
	assert.NotContains(t, buf.String(), "session_id")
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	require.NotNil(t, logger)
	logger.Info(context.Background(), "dropped")
	logger.Error(context.Background(), "dropped", errors.New("x"))
}

func TestWrapError(t *testing.T) {
	t.Run("wrap nil error", func(t *testing.T) {
		assert.NoError(t, WrapError(nil, "context"))
	})

	t.Run("wrap error with context", func(t *testing.T) {
		originalErr := errors.New("original error")
		wrapped := WrapError(originalErr, "additional context")

		assert.EqualError(t, wrapped, "additional context: original error")
		assert.ErrorIs(t, wrapped, originalErr)
	})

	t.Run("wrap error with formatted context", func(t *testing.T) {
		wrapped := WrapError(errors.New("original error"), "context with %s and %d", "string", 42)
		assert.EqualError(t, wrapped, "context with string and 42: original error")
	})
}
