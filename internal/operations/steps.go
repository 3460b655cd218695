package operations

import (
	"context"
	"log/slog"
	"slices"

	"gunstats/internal/analytics"
	"gunstats/internal/dataprocessing"
	"gunstats/internal/exporter"
	"gunstats/internal/infrastructure"
	"gunstats/internal/maps"
	"gunstats/internal/store"
	"gunstats/pkg/contracts/domain"
)

// Step IDs
const (
	StepRead      = "read"
	StepExtremes  = "extremes"
	StepStates    = "states"
	StepRates     = "rates"
	StepAnalysis  = "analysis"
	StepEvolution = "evolution"
	StepMaps      = "maps"
	StepExport    = "export"
	StepPersist   = "persist"
)

// headRows is how many rows the read step logs at debug level
const headRows = 5

// DefaultSteps returns the pipeline in execution order
func DefaultSteps() []Step {
	return []Step{
		NewStep(StepRead, "Read and clean NICS data", nil, readStep),
		NewStep(StepExtremes, "Biggest handgun and long gun totals", []string{StepRead}, extremesStep),
		NewStep(StepStates, "Group by state and filter territories", []string{StepRead}, statesStep),
		NewStep(StepRates, "Merge population and compute rates", []string{StepStates}, ratesStep),
		NewStep(StepAnalysis, "Impute outlier state", []string{StepRates}, analysisStep),
		NewStep(StepEvolution, "Yearly totals", []string{StepRead}, evolutionStep),
		NewStep(StepMaps, "Render choropleth maps", []string{StepRates}, mapsStep),
		NewStep(StepExport, "Export reports", []string{StepRates, StepEvolution}, exportStep),
		NewStep(StepPersist, "Persist run", []string{StepAnalysis}, persistStep),
	}
}

func readStep(ctx context.Context, env *Env) (int, error) {
	raw, err := dataprocessing.LoadTable(ctx, env.Config.Data.NICSCSV)
	if err != nil {
		return 0, err
	}
	slog.DebugContext(ctx, "raw_head",
		slog.Any("columns", raw.Columns),
		slog.Any("rows", raw.Head(headRows)))

	records, err := dataprocessing.Prepare(raw)
	if err != nil {
		return 0, err
	}

	res := env.Results
	res.Raw = raw
	res.Records = records
	res.StateYear = dataprocessing.GroupByStateAndYear(records)

	states, _ := raw.Column(domain.ColumnState)
	slices.Sort(states)
	slog.InfoContext(ctx, "nics_prepared",
		slog.Int("records", len(records)),
		slog.Int("unique_states", len(slices.Compact(states))),
		slog.Int("state_years", len(res.StateYear)))
	return len(res.StateYear), nil
}

func extremesStep(ctx context.Context, env *Env) (int, error) {
	res := env.Results

	handgun, err := analytics.BiggestHandguns(res.StateYear)
	if err != nil {
		return 0, err
	}
	longGun, err := analytics.BiggestLongGuns(res.StateYear)
	if err != nil {
		return 0, err
	}
	res.Handgun, res.LongGun = handgun, longGun

	slog.InfoContext(ctx, "extremes_found",
		slog.String("handgun_state", handgun.State),
		slog.Int("handgun_year", handgun.Year),
		slog.Int64("handgun_count", handgun.Count),
		slog.String("long_gun_state", longGun.State),
		slog.Int("long_gun_year", longGun.Year),
		slog.Int64("long_gun_count", longGun.Count))
	return 2, nil
}

func statesStep(ctx context.Context, env *Env) (int, error) {
	totals := dataprocessing.GroupByState(env.Results.StateYear)
	slog.InfoContext(ctx, "states_grouped", slog.Int("unique_states", len(totals)))

	env.Results.StateTotals = dataprocessing.FilterStates(totals, env.Config.Analysis.ExcludedStates)
	return len(env.Results.StateTotals), nil
}

func ratesStep(ctx context.Context, env *Env) (int, error) {
	population, err := dataprocessing.LoadPopulation(ctx, env.Config.Data.PopulationCSV)
	if err != nil {
		return 0, err
	}

	merged, stats := dataprocessing.MergePopulation(env.Results.StateTotals, population)
	env.Metrics.SetDroppedStates(stats.Dropped())
	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"merge.matched": stats.Matched,
		"merge.dropped": stats.Dropped(),
	})

	rates, err := dataprocessing.CalculateRates(merged)
	if err != nil {
		return 0, err
	}

	res := env.Results
	res.Population = population
	res.Merge = stats
	res.Rates = rates
	return len(rates), nil
}

func analysisStep(ctx context.Context, env *Env) (int, error) {
	a, err := analytics.AnalyzeStateData(env.Results.Rates, env.Config.Analysis.ImputeState)
	if err != nil {
		return 0, err
	}
	env.Results.Analysis = a

	slog.InfoContext(ctx, "state_analyzed",
		slog.String("state", a.State),
		slog.Int("matches", a.Matches),
		slog.Float64("old_mean", a.OldMean),
		slog.Float64("new_mean", a.NewMean))
	return len(a.Imputed), nil
}

func evolutionStep(ctx context.Context, env *Env) (int, error) {
	env.Results.Yearly = analytics.TimeEvolution(env.Results.StateYear)
	slog.DebugContext(ctx, "yearly_totals", slog.Int("years", len(env.Results.Yearly)))
	return len(env.Results.Yearly), nil
}

func mapsStep(ctx context.Context, env *Env) (int, error) {
	boundaries, err := maps.LoadBoundaries(ctx, env.Config.Data.GeoJSON)
	if err != nil {
		return 0, err
	}

	renderer := maps.NewRenderer(env.Paths, env.Config.Maps, boundaries)
	if env.Capture != nil {
		renderer.WithCapture(env.Capture)
	}

	artifacts, err := renderer.RenderAll(ctx, env.Results.Rates)
	env.Results.Maps = artifacts
	return len(artifacts), err
}

func exportStep(ctx context.Context, env *Env) (int, error) {
	cfg := env.Config.Export
	if !cfg.CSV && !cfg.XLSX {
		return 0, SkipStep("csv and xlsx export disabled")
	}

	report := exporter.Report{
		StateYear: env.Results.StateYear,
		Rates:     env.Results.Rates,
		Yearly:    env.Results.Yearly,
	}

	var written []string
	if cfg.CSV {
		paths, err := exporter.NewCSVWriter(env.Paths).WriteReport(report)
		written = append(written, paths...)
		if err != nil {
			env.Results.Reports = written
			return len(written), err
		}
	}
	if cfg.XLSX {
		path, err := exporter.NewWorkbookExporter(env.Paths).Export(report)
		if err != nil {
			env.Results.Reports = written
			return len(written), err
		}
		written = append(written, path)
	}

	env.Results.Reports = written
	slog.InfoContext(ctx, "reports_written", slog.Any("files", written))
	return len(written), nil
}

func persistStep(ctx context.Context, env *Env) (int, error) {
	if env.Store == nil {
		return 0, SkipStep("no sqlite_path configured")
	}

	summary := store.RunSummary{
		TraceID:          infrastructure.GetTraceID(ctx),
		NICSSource:       env.Config.Data.NICSCSV,
		PopulationSource: env.Config.Data.PopulationCSV,
		Analysis:         env.Results.Analysis,
		Merge:            env.Results.Merge,
	}
	run, err := env.Store.SaveRun(ctx, summary, env.Results.Rates)
	if err != nil {
		return 0, err
	}
	env.Results.Run = run
	return len(run.Rates), nil
}
