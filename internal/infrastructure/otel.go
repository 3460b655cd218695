package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"gunstats/internal/config"
)

// TracerName is the instrumentation scope for pipeline spans
const TracerName = "gunstats/pipeline"

// Tracing owns the tracer provider of a run. A zero-config Tracing hands
// out no-op spans.
type Tracing struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	sink     io.Closer
	logger   *slog.Logger
}

// InitializeTracing exports spans as JSON lines to traceFile. An empty path
// disables tracing.
func InitializeTracing(traceFile string, logger *slog.Logger) (*Tracing, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if traceFile == "" {
		return &Tracing{tracer: noop.NewTracerProvider().Tracer(TracerName), logger: logger}, nil
	}

	if err := os.MkdirAll(filepath.Dir(traceFile), 0755); err != nil {
		return nil, fmt.Errorf("failed to create trace directory: %w", err)
	}
	file, err := os.Create(traceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace file: %w", err)
	}

	t, err := newTracing(file, logger)
	if err != nil {
		file.Close()
		return nil, err
	}
	t.sink = file

	logger.Info("Tracing initialized", slog.String("trace_file", traceFile))
	return t, nil
}

func newTracing(w io.Writer, logger *slog.Logger) (*Tracing, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(config.AppName),
		semconv.ServiceVersion(config.AppVersion),
	)

	// Syncer so a short-lived CLI run never drops spans
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return &Tracing{
		provider: tp,
		tracer:   tp.Tracer(TracerName, trace.WithInstrumentationVersion(config.AppVersion)),
		logger:   logger,
	}, nil
}

// Tracer returns the pipeline tracer
func (t *Tracing) Tracer() trace.Tracer {
	return t.tracer
}

// Shutdown flushes pending spans and closes the trace file
func (t *Tracing) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}

	var errs []error
	if err := t.provider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
	}
	if t.sink != nil {
		if err := t.sink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("trace file close: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("tracing shutdown errors: %v", errs)
	}

	t.logger.DebugContext(ctx, "Tracing shutdown complete")
	return nil
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanAttributes sets attributes on the current span
func SetSpanAttributes(ctx context.Context, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			span.SetAttributes(attribute.String(k, val))
		case int:
			span.SetAttributes(attribute.Int(k, val))
		case int64:
			span.SetAttributes(attribute.Int64(k, val))
		case float64:
			span.SetAttributes(attribute.Float64(k, val))
		case bool:
			span.SetAttributes(attribute.Bool(k, val))
		default:
			span.SetAttributes(attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}
}
