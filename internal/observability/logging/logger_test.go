package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"kudos-dispatch/internal/handler/http/requestid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_LevelFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		enabled  slog.Level
		disabled slog.Level
	}{
		{name: "default level is info", logLevel: "", enabled: slog.LevelInfo, disabled: slog.LevelDebug},
		{name: "debug enables debug", logLevel: "debug", enabled: slog.LevelDebug, disabled: slog.LevelDebug - 4},
		{name: "unknown value stays at info", logLevel: "verbose", enabled: slog.LevelInfo, disabled: slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.logLevel != "" {
				t.Setenv("LOG_LEVEL", tt.logLevel)
			}

			logger := NewLogger()

			assert.True(t, logger.Enabled(context.Background(), tt.enabled))
			assert.False(t, logger.Enabled(context.Background(), tt.disabled))
		})
	}
}

func TestNewTextLogger(t *testing.T) {
	logger := NewTextLogger()

	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
}

func TestWithRequestID_AddsField(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := requestid.WithRequestID(context.Background(), "9be0a5a3-6462-4f9f-8a4f-10ad9a2308dc")
	logger := WithRequestID(ctx, base)

	logger.Info("batch dispatched", slog.Int("processed", 3))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "9be0a5a3-6462-4f9f-8a4f-10ad9a2308dc", entry["request_id"])
	assert.Equal(t, "batch dispatched", entry["msg"])
}

func TestWithRequestID_NoIDInContext(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	logger := WithRequestID(context.Background(), base)

	logger.Info("startup")

	assert.False(t, strings.Contains(buf.String(), "request_id"))
}
