package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// LogRecord is one captured log call
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogCapture is a slog.Handler that keeps every record in memory
type LogCapture struct {
	mu      *sync.Mutex
	records *[]LogRecord
	attrs   []slog.Attr
}

// NewLogCapture creates an empty capture
func NewLogCapture() *LogCapture {
	return &LogCapture{mu: &sync.Mutex{}, records: &[]LogRecord{}}
}

// CaptureDefault installs a capture as slog.Default until the test ends
func CaptureDefault(t *testing.T) *LogCapture {
	t.Helper()

	capture := NewLogCapture()
	previous := slog.Default()
	slog.SetDefault(slog.New(capture))
	t.Cleanup(func() { slog.SetDefault(previous) })
	return capture
}

// Enabled implements slog.Handler; every level is kept
func (h *LogCapture) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle implements slog.Handler
func (h *LogCapture) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	*h.records = append(*h.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	return nil
}

// WithAttrs implements slog.Handler; derived handlers share the record buffer
func (h *LogCapture) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &LogCapture{mu: h.mu, records: h.records, attrs: merged}
}

// WithGroup implements slog.Handler. Groups are flattened.
func (h *LogCapture) WithGroup(string) slog.Handler {
	return h
}

// Records returns a copy of everything captured so far
func (h *LogCapture) Records() []LogRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]LogRecord, len(*h.records))
	copy(out, *h.records)
	return out
}

// Find returns the first record at level whose message contains message
func (h *LogCapture) Find(level slog.Level, message string) (LogRecord, bool) {
	for _, r := range h.Records() {
		if r.Level == level && strings.Contains(r.Message, message) {
			return r, true
		}
	}
	return LogRecord{}, false
}

// AssertLogged fails the test unless a matching record was captured
func AssertLogged(t *testing.T, h *LogCapture, level slog.Level, message string) LogRecord {
	t.Helper()

	r, ok := h.Find(level, message)
	if !ok {
		t.Errorf("no %s log containing %q", level, message)
		for _, rec := range h.Records() {
			t.Logf("  [%s] %s %v", rec.Level, rec.Message, rec.Attrs)
		}
	}
	return r
}

// AssertNoErrors fails the test if anything was logged at error level
func AssertNoErrors(t *testing.T, h *LogCapture) {
	t.Helper()

	for _, r := range h.Records() {
		if r.Level >= slog.LevelError {
			t.Errorf("unexpected error log: %s %v", r.Message, r.Attrs)
		}
	}
}
