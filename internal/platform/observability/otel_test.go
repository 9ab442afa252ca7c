package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for raw, want := range cases {
		got, err := ParseLevel(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}
	_, err := ParseLevel("loud")
	require.Error(t, err)
}

func TestInit_LogsJSONWithServiceAttributes(t *testing.T) {
	var buf bytes.Buffer
	instruments, shutdown, err := Init(context.Background(), Settings{
		ServiceName:   "users-orders-api",
		Environment:   "test",
		LogLevel:      slog.LevelWarn,
		LogOutput:     &buf,
		TraceExporter: ExporterNone,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	instruments.Logger.Info("dropped")
	instruments.Logger.Warn("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), `"service":"users-orders-api"`)
	assert.Contains(t, buf.String(), `"environment":"test"`)

	_, span := instruments.Tracer("test").Start(context.Background(), "op")
	span.End()
	assert.NotNil(t, instruments.Meter("test"))
}
