package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frobware/go-bpfarray/logging"
)

func testTime() time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
}

func TestFilteringHandler_Enabled(t *testing.T) {
	spec := &logging.Spec{
		BaseLevel: logging.LevelWarn,
		Components: map[string]logging.Level{
			"manager": logging.LevelDebug,
			"store":   logging.LevelTrace,
		},
	}

	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: logging.LevelTrace.ToSlog()})
	handler := logging.NewFilteringHandler(inner, spec)

	// Base handler (no component) uses warn level
	assert.False(t, handler.Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, handler.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelError))

	// Manager component uses debug level
	managerHandler := handler.WithAttrs([]slog.Attr{slog.String("component", "manager")})
	assert.True(t, managerHandler.Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, managerHandler.Enabled(context.Background(), logging.LevelTrace.ToSlog()))

	// Store component uses trace level
	storeHandler := handler.WithAttrs([]slog.Attr{slog.String("component", "store")})
	assert.True(t, storeHandler.Enabled(context.Background(), logging.LevelTrace.ToSlog()))
}

func TestFilteringHandler_Handle(t *testing.T) {
	spec := &logging.Spec{
		BaseLevel: logging.LevelWarn,
		Components: map[string]logging.Level{
			"manager": logging.LevelDebug,
		},
	}

	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: logging.LevelTrace.ToSlog()})
	handler := logging.NewFilteringHandler(inner, spec)

	ctx := context.Background()

	// Debug message without component should be filtered
	r := slog.NewRecord(testTime(), slog.LevelDebug, "debug message", 0)
	require.NoError(t, handler.Handle(ctx, r))
	assert.Empty(t, buf.String())

	// Warn message without component should pass
	buf.Reset()
	r = slog.NewRecord(testTime(), slog.LevelWarn, "warn message", 0)
	require.NoError(t, handler.Handle(ctx, r))
	assert.Contains(t, buf.String(), "warn message")

	// Debug message with manager component should pass
	managerHandler := handler.WithAttrs([]slog.Attr{slog.String("component", "manager")})
	buf.Reset()
	r = slog.NewRecord(testTime(), slog.LevelDebug, "manager debug", 0)
	require.NoError(t, managerHandler.Handle(ctx, r))
	assert.Contains(t, buf.String(), "manager debug")
}

func TestFilteringHandler_WithGroup(t *testing.T) {
	spec := &logging.Spec{
		BaseLevel: logging.LevelInfo,
		Components: map[string]logging.Level{
			"manager": logging.LevelDebug,
		},
	}

	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: logging.LevelTrace.ToSlog()})
	handler := logging.NewFilteringHandler(inner, spec)

	// WithGroup should preserve the component
	managerHandler := handler.WithAttrs([]slog.Attr{slog.String("component", "manager")})
	groupHandler := managerHandler.WithGroup("lookup")

	assert.True(t, groupHandler.Enabled(context.Background(), slog.LevelDebug))
}

func TestFilteringHandler_Integration(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{
		CLISpec: "warn,store=debug",
		Output:  &buf,
	})
	require.NoError(t, err)

	logger.Debug("root debug")
	assert.Empty(t, buf.String())

	buf.Reset()
	logger.Warn("root warn")
	assert.Contains(t, buf.String(), "root warn")

	storeLogger := logger.With("component", "store")

	buf.Reset()
	storeLogger.Debug("store debug")
	assert.Contains(t, buf.String(), "store debug")
}

func TestParseSpec(t *testing.T) {
	spec, err := logging.ParseSpec("warn,manager=debug,store=trace")
	require.NoError(t, err)
	assert.Equal(t, logging.LevelWarn, spec.BaseLevel)
	assert.Equal(t, logging.LevelDebug, spec.LevelFor("manager"))
	assert.Equal(t, logging.LevelTrace, spec.LevelFor("store"))
	assert.Equal(t, logging.LevelWarn, spec.LevelFor("kernel"))
}

func TestParseSpecEmpty(t *testing.T) {
	spec, err := logging.ParseSpec("")
	require.NoError(t, err)
	assert.Equal(t, logging.LevelInfo, spec.BaseLevel)
}

func TestParseSpecErrors(t *testing.T) {
	for _, s := range []string{"bogus", "info,=debug", "manager=debug,info", "info,manager=bogus"} {
		_, err := logging.ParseSpec(s)
		assert.Error(t, err, "spec %q", s)
	}
}
