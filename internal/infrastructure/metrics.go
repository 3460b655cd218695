package infrastructure

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// PipelineMetrics collects per-run counters for the ETL stages. Every
// method is safe on a nil receiver so callers need no enabled check.
type PipelineMetrics struct {
	registry      *prometheus.Registry
	rowsProcessed *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	stepFailures  *prometheus.CounterVec
	droppedStates prometheus.Gauge
}

// NewPipelineMetrics registers the pipeline collectors on a private registry
func NewPipelineMetrics() *PipelineMetrics {
	m := &PipelineMetrics{
		registry: prometheus.NewRegistry(),
		rowsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gunstats_rows_processed_total",
			Help: "Rows emitted by each pipeline stage",
		}, []string{"stage"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gunstats_stage_duration_seconds",
			Help:    "Wall time of each pipeline stage",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"stage"}),
		stepFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gunstats_step_failures_total",
			Help: "Pipeline steps that ended in an error",
		}, []string{"stage"}),
		droppedStates: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gunstats_merge_dropped_states",
			Help: "States lost by the inner join with the population table",
		}),
	}

	m.registry.MustRegister(
		m.rowsProcessed,
		m.stageDuration,
		m.stepFailures,
		m.droppedStates,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveStage records the output size and duration of a stage
func (m *PipelineMetrics) ObserveStage(stage string, rows int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rowsProcessed.WithLabelValues(stage).Add(float64(rows))
	m.stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// StageFailed counts a failed step
func (m *PipelineMetrics) StageFailed(stage string) {
	if m == nil {
		return
	}
	m.stepFailures.WithLabelValues(stage).Inc()
}

// SetDroppedStates records how many states the merge discarded
func (m *PipelineMetrics) SetDroppedStates(n int) {
	if m == nil {
		return
	}
	m.droppedStates.Set(float64(n))
}

// Registry exposes the underlying registry for tests and custom exporters
func (m *PipelineMetrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// WriteToFile dumps the registry in the text exposition format, the layout
// node_exporter's textfile collector reads.
func (m *PipelineMetrics) WriteToFile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
