package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitializeTracing_Disabled(t *testing.T) {
	tracing, err := InitializeTracing("", discardLogger())
	require.NoError(t, err)

	_, span := tracing.Tracer().Start(context.Background(), "noop")
	assert.False(t, span.IsRecording())
	span.End()

	assert.NoError(t, tracing.Shutdown(context.Background()))
}

func TestInitializeTracing_WritesSpans(t *testing.T) {
	traceFile := filepath.Join(t.TempDir(), "traces", "run.jsonl")

	tracing, err := InitializeTracing(traceFile, discardLogger())
	require.NoError(t, err)

	ctx, span := tracing.Tracer().Start(context.Background(), "merge")
	assert.True(t, span.IsRecording())
	SetSpanAttributes(ctx, map[string]interface{}{
		"rows":    50,
		"dropped": int64(4),
		"ratio":   0.5,
		"ok":      true,
		"state":   "Ohio",
		"other":   []int{1},
	})
	RecordError(ctx, errors.New("boom"))
	span.End()

	require.NoError(t, tracing.Shutdown(context.Background()))

	content, err := os.ReadFile(traceFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"Name":"merge"`)
	assert.Contains(t, string(content), "boom")
	assert.Contains(t, string(content), "gunstats")
}

func TestSpanHelpers_NoSpan(t *testing.T) {
	// Must not panic without a recording span
	SetSpanAttributes(context.Background(), map[string]interface{}{"k": "v"})
	RecordError(context.Background(), errors.New("ignored"))
}
