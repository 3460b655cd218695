package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"gunstats/internal/config"
	"gunstats/internal/infrastructure"
	"gunstats/internal/maps"
)

// Options configures a Runner. Only Config is required.
type Options struct {
	Config  *config.Config
	Metrics *infrastructure.PipelineMetrics
	Tracer  trace.Tracer
	Store   RunStore
	Capture maps.CaptureFunc
	// TraceID identifies the run; a fresh UUID is used when empty
	TraceID string
	// Steps replaces DefaultSteps
	Steps []Step
}

// Runner executes pipeline steps in dependency order, at most once each
type Runner struct {
	registry *Registry
	state    *RunState
	env      *Env
	tracer   trace.Tracer
}

// NewRunner registers the steps and prepares an empty run
func NewRunner(opts Options) (*Runner, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("runner requires a config")
	}

	steps := opts.Steps
	if steps == nil {
		steps = DefaultSteps()
	}

	registry := NewRegistry()
	for _, s := range steps {
		if err := registry.Register(s); err != nil {
			return nil, err
		}
	}
	if _, err := registry.GetDependencyOrder(); err != nil {
		return nil, err
	}

	traceID := opts.TraceID
	if traceID == "" {
		traceID = infrastructure.GenerateTraceID()
	}
	state := NewRunState(traceID)
	for _, s := range steps {
		state.SetStep(s.ID(), NewStepState(s.ID(), s.Name()))
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(infrastructure.TracerName)
	}

	return &Runner{
		registry: registry,
		state:    state,
		tracer:   tracer,
		env: &Env{
			Config:  opts.Config,
			Paths:   config.NewPaths(opts.Config.Data.OutputDir),
			Results: &Results{},
			Store:   opts.Store,
			Capture: opts.Capture,
			Metrics: opts.Metrics,
		},
	}, nil
}

// Results returns the outputs gathered so far
func (r *Runner) Results() *Results {
	return r.env.Results
}

// State returns the run state
func (r *Runner) State() *RunState {
	return r.state
}

// Paths returns the output layout of the run
func (r *Runner) Paths() *config.Paths {
	return r.env.Paths
}

// Run executes stepID after any of its dependencies that have not run yet
func (r *Runner) Run(ctx context.Context, stepID string) error {
	steps, err := r.registry.Resolve(stepID)
	if err != nil {
		return err
	}
	return r.execute(ctx, steps)
}

// RunAll executes every registered step
func (r *Runner) RunAll(ctx context.Context) error {
	steps, err := r.registry.GetDependencyOrder()
	if err != nil {
		return err
	}
	return r.execute(ctx, steps)
}

func (r *Runner) execute(ctx context.Context, steps []Step) error {
	ctx = infrastructure.WithTraceID(ctx, r.state.ID)
	r.state.Start()

	ctx, span := r.tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(
			attribute.String("run.id", r.state.ID),
			attribute.Int("run.steps", len(steps)),
		))
	defer span.End()

	slog.InfoContext(ctx, "run_start", slog.Int("step_count", len(steps)))

	for i, step := range steps {
		stepState := r.state.GetStep(step.ID())
		if stepState.Done() {
			slog.DebugContext(ctx, "step_reused",
				slog.String("step", step.ID()),
				slog.String("status", string(stepState.GetStatus())))
			continue
		}

		if err := ctx.Err(); err != nil {
			r.state.Cancel()
			slog.WarnContext(ctx, "run_cancelled", slog.String("step", step.ID()))
			return NewCancellationError(step.ID(), err)
		}

		slog.InfoContext(ctx, "executing_step",
			slog.String("step", step.ID()),
			slog.Int("step_number", i+1),
			slog.Int("total_steps", len(steps)))

		if err := r.executeStep(ctx, step, stepState); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			r.state.Fail(err)
			return err
		}
	}

	r.state.Complete()
	slog.InfoContext(ctx, "run_completed", slog.String("run_id", r.state.ID))
	return nil
}

func (r *Runner) executeStep(ctx context.Context, step Step, stepState *StepState) error {
	ctx, span := r.tracer.Start(ctx, "pipeline.step."+step.ID(),
		trace.WithAttributes(attribute.String("step.id", step.ID())))
	defer span.End()

	stepState.Start()
	start := time.Now()
	rows, err := step.Execute(ctx, r.env)
	elapsed := time.Since(start)

	var skip *skipError
	switch {
	case errors.As(err, &skip):
		stepState.Skip(skip.reason)
		span.SetAttributes(attribute.Bool("step.skipped", true))
		slog.InfoContext(ctx, "step_skipped",
			slog.String("step", step.ID()),
			slog.String("reason", skip.reason))
		return nil

	case err != nil:
		stepState.Fail(err)
		r.env.Metrics.StageFailed(step.ID())
		infrastructure.RecordError(ctx, err)
		slog.ErrorContext(ctx, "step_failed",
			slog.String("step", step.ID()),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()))
		return NewExecutionError(step.ID(), err)
	}

	stepState.Complete(rows)
	r.env.Metrics.ObserveStage(step.ID(), rows, elapsed)
	span.SetAttributes(attribute.Int("step.rows", rows))
	slog.InfoContext(ctx, "step_completed",
		slog.String("step", step.ID()),
		slog.Int("rows", rows),
		slog.Duration("elapsed", elapsed))
	return nil
}
