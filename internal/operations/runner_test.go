package operations

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"gunstats/internal/config"
	apperrors "gunstats/internal/errors"
	"gunstats/internal/infrastructure"
	"gunstats/internal/maps"
	"gunstats/internal/shared/testutil"
	"gunstats/internal/store"
	"gunstats/pkg/contracts/domain"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	in := testutil.WriteInputs(t)
	cfg := config.Default()
	cfg.Data.NICSCSV = in.NICS
	cfg.Data.PopulationCSV = in.Population
	cfg.Data.GeoJSON = in.GeoJSON
	cfg.Data.OutputDir = in.OutputDir
	return cfg
}

func fakeCapture(ctx context.Context, htmlPath, pngPath string, opts maps.CaptureOptions) error {
	return os.WriteFile(pngPath, []byte("png"), 0644)
}

func TestRunner_RunAll(t *testing.T) {
	cfg := testConfig(t)
	logs := testutil.CaptureDefault(t)

	db, err := store.Open(store.MemoryPath)
	require.NoError(t, err)
	defer db.Close()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	metrics := infrastructure.NewPipelineMetrics()

	runner, err := NewRunner(Options{
		Config:  cfg,
		Metrics: metrics,
		Tracer:  tp.Tracer("test"),
		Store:   db,
		Capture: fakeCapture,
		TraceID: "run-1",
	})
	require.NoError(t, err)
	require.NoError(t, runner.RunAll(context.Background()))

	res := runner.Results()

	assert.Equal(t, domain.Extremum{State: "Florida", Year: 2016, Count: 130000}, res.Handgun)
	assert.Equal(t, domain.Extremum{State: "Florida", Year: 2016, Count: 81000}, res.LongGun)

	require.Len(t, res.StateTotals, 3)
	assert.Equal(t, "Alabama", res.StateTotals[0].State)

	require.Len(t, res.Rates, 3)
	assert.Equal(t, []string{"Texas"}, res.Merge.MissingPopulation)
	assert.InDelta(t, 46.996, res.Rates[0].PermitPerc, 1e-9)
	assert.InDelta(t, 600.0, res.Rates[2].PermitPerc, 1e-9)

	assert.InDelta(t, (46.996+1.1+600)/3, res.Analysis.OldMean, 1e-9)
	assert.Less(t, res.Analysis.NewMean, res.Analysis.OldMean)
	assert.Equal(t, 600.0, res.Rates[2].PermitPerc, "imputation must not touch the rate table")

	require.Len(t, res.Yearly, 2)
	assert.Equal(t, 2015, res.Yearly[0].Year)

	require.Len(t, res.Maps, 3)
	for _, a := range res.Maps {
		assert.FileExists(t, a.HTMLPath)
		assert.FileExists(t, a.PNGPath)
	}

	assert.Len(t, res.Reports, 4, "three CSV files and the workbook")
	for _, p := range res.Reports {
		assert.FileExists(t, p)
	}

	require.NotNil(t, res.Run)
	assert.Equal(t, "run-1", res.Run.TraceID)
	stored, err := db.RatesForRun(context.Background(), res.Run.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 3)

	assert.Equal(t, RunStatusCompleted, runner.State().GetStatus())
	for _, id := range runner.registry.ListIDs() {
		assert.Equal(t, StepStatusCompleted, runner.State().GetStep(id).GetStatus(), id)
	}

	spans := recorder.Ended()
	assert.Len(t, spans, len(DefaultSteps())+1)
	assert.Equal(t, "pipeline.run", spans[len(spans)-1].Name())

	n, err := promtestutil.GatherAndCount(metrics.Registry(), "gunstats_rows_processed_total")
	require.NoError(t, err)
	assert.Equal(t, len(DefaultSteps()), n)
	assert.Equal(t, 1.0, gaugeValue(t, metrics, "gunstats_merge_dropped_states"))

	prepared := testutil.AssertLogged(t, logs, slog.LevelInfo, "nics_prepared")
	assert.Equal(t, int64(5), prepared.Attrs["unique_states"])
	assert.Equal(t, int64(6), prepared.Attrs["state_years"])

	warn := testutil.AssertLogged(t, logs, slog.LevelWarn, "Merge dropped")
	assert.Equal(t, []string{"Texas"}, warn.Attrs["missing_population"])
	completed := testutil.AssertLogged(t, logs, slog.LevelInfo, "run_completed")
	assert.Equal(t, "run-1", completed.Attrs["run_id"])
	testutil.AssertNoErrors(t, logs)
}

func gaugeValue(t *testing.T, m *infrastructure.PipelineMetrics, name string) float64 {
	t.Helper()

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestRunner_RunReusesDependencies(t *testing.T) {
	cfg := testConfig(t)
	calls := map[string]int{}
	counting := func(id string, rows int) StepFunc {
		return func(ctx context.Context, env *Env) (int, error) {
			calls[id]++
			return rows, nil
		}
	}

	runner, err := NewRunner(Options{
		Config: cfg,
		Steps: []Step{
			NewStep("load", "Load", nil, counting("load", 10)),
			NewStep("a", "A", []string{"load"}, counting("a", 1)),
			NewStep("b", "B", []string{"load"}, counting("b", 2)),
		},
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, runner.Run(ctx, "a"))
	assert.Equal(t, StepStatusPending, runner.State().GetStep("b").GetStatus())

	require.NoError(t, runner.Run(ctx, "b"))
	require.NoError(t, runner.RunAll(ctx))

	assert.Equal(t, map[string]int{"load": 1, "a": 1, "b": 1}, calls)
	assert.Equal(t, 10, runner.State().GetStep("load").Rows)
}

func TestRunner_PartialPipeline(t *testing.T) {
	runner, err := NewRunner(Options{Config: testConfig(t)})
	require.NoError(t, err)

	require.NoError(t, runner.Run(context.Background(), StepAnalysis))

	res := runner.Results()
	assert.Equal(t, "Kentucky", res.Analysis.State)
	assert.Equal(t, 1, res.Analysis.Matches)
	assert.Empty(t, res.Maps)
	assert.Equal(t, StepStatusPending, runner.State().GetStep(StepExtremes).GetStatus())
}

func TestRunner_SkippedSteps(t *testing.T) {
	cfg := testConfig(t)
	cfg.Export.CSV = false
	cfg.Export.XLSX = false

	runner, err := NewRunner(Options{Config: cfg})
	require.NoError(t, err)

	require.NoError(t, runner.Run(context.Background(), StepExport))
	require.NoError(t, runner.Run(context.Background(), StepPersist))

	assert.Equal(t, StepStatusSkipped, runner.State().GetStep(StepExport).GetStatus())
	assert.Equal(t, StepStatusSkipped, runner.State().GetStep(StepPersist).GetStatus())
	assert.Empty(t, runner.Results().Reports)
	assert.Nil(t, runner.Results().Run)
}

func TestRunner_StepFailure(t *testing.T) {
	cfg := testConfig(t)
	logs := testutil.CaptureDefault(t)
	cfg.Data.NICSCSV = filepath.Join(t.TempDir(), "absent.csv")
	metrics := infrastructure.NewPipelineMetrics()

	runner, err := NewRunner(Options{Config: cfg, Metrics: metrics})
	require.NoError(t, err)

	err = runner.RunAll(context.Background())
	require.Error(t, err)
	assert.True(t, IsStepError(err, ErrorTypeExecution))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeResource))

	assert.Equal(t, RunStatusFailed, runner.State().GetStatus())
	assert.Equal(t, StepStatusFailed, runner.State().GetStep(StepRead).GetStatus())
	assert.Equal(t, StepStatusPending, runner.State().GetStep(StepExtremes).GetStatus())

	n, err := promtestutil.GatherAndCount(metrics.Registry(), "gunstats_step_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	failed := testutil.AssertLogged(t, logs, slog.LevelError, "step_failed")
	assert.Equal(t, StepRead, failed.Attrs["step"])
}

func TestRunner_NonPositivePopulation(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "pop.csv")
	require.NoError(t, os.WriteFile(path, []byte("state,pop_2014\nAlabama,0\n"), 0644))
	cfg.Data.PopulationCSV = path

	runner, err := NewRunner(Options{Config: cfg})
	require.NoError(t, err)

	err = runner.Run(context.Background(), StepRates)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNumeric))
}

func TestRunner_Cancelled(t *testing.T) {
	runner, err := NewRunner(Options{Config: testConfig(t)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = runner.RunAll(ctx)
	assert.True(t, IsStepError(err, ErrorTypeCancellation))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, RunStatusCancelled, runner.State().GetStatus())
}

func TestNewRunner_Errors(t *testing.T) {
	_, err := NewRunner(Options{})
	assert.Error(t, err)

	_, err = NewRunner(Options{
		Config: config.Default(),
		Steps:  []Step{stub("a", "b"), stub("b", "a")},
	})
	assert.True(t, IsStepError(err, ErrorTypeDependency))

	runner, err := NewRunner(Options{Config: config.Default()})
	require.NoError(t, err)
	assert.NotEmpty(t, runner.State().ID)
	assert.Equal(t, config.NewPaths(config.DefaultOutputDir), runner.Paths())
}
