package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"gunstats/internal/config"
	apperrors "gunstats/internal/errors"
	"gunstats/internal/infrastructure"
	"gunstats/internal/operations"
	"gunstats/internal/store"
)

// shutdownTimeout bounds flushing traces after a run
const shutdownTimeout = 5 * time.Second

// cliFlags are the persistent overrides applied on top of the loaded config
type cliFlags struct {
	configFile string
	nics       string
	population string
	geojson    string
	out        string
	sqlite     string
	noMaps     bool
}

// app carries what every subcommand shares for one invocation
type app struct {
	flags   cliFlags
	stdout  io.Writer
	stderr  io.Writer
	cfg     *config.Config
	logger  *slog.Logger
	tracing *infrastructure.Tracing
	metrics *infrastructure.PipelineMetrics
	store   *store.Store
	runner  *operations.Runner
}

// newRootCommand builds the command tree. The caller runs teardown after
// Execute, whether or not the command failed.
func newRootCommand(stdout, stderr io.Writer) (*cobra.Command, *app) {
	a := &app{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:           config.AppName,
		Short:         "NICS firearm background check statistics",
		Version:       config.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsSetup(cmd) {
				return nil
			}
			return a.setup(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&a.flags.configFile, "config", "c", "", "YAML config file (default gunstats.yaml or configs/gunstats.yaml)")
	pf.StringVar(&a.flags.nics, "nics", "", "NICS background checks CSV path or URL")
	pf.StringVar(&a.flags.population, "population", "", "State population CSV path or URL")
	pf.StringVar(&a.flags.geojson, "geojson", "", "US states GeoJSON path or URL")
	pf.StringVarP(&a.flags.out, "out", "o", "", "Output directory")
	pf.StringVar(&a.flags.sqlite, "sqlite", "", "SQLite database recording each run")
	pf.BoolVar(&a.flags.noMaps, "no-screenshot", false, "Write map HTML without capturing PNGs")

	rootCmd.AddCommand(
		a.stepCommand("clean", "Load and clean the NICS table (step 1)", operations.StepRead, a.printClean),
		a.stepCommand("extremes", "Biggest handgun and long gun totals (step 2)", operations.StepExtremes, a.printExtremes),
		a.stepCommand("states", "Group by state and drop territories (step 3)", operations.StepStates, a.printStates),
		a.stepCommand("rates", "Per-capita permit, handgun and long gun rates (step 4)", operations.StepRates, a.printRates),
		a.stepCommand("analyze", "Impute the outlier state and compare means (step 5)", operations.StepAnalysis, a.printAnalysis),
		a.stepCommand("maps", "Render choropleth maps (step 6)", operations.StepMaps, a.printMaps),
		a.stepCommand("evolution", "Yearly totals across all states", operations.StepEvolution, a.printEvolution),
		a.stepCommand("export", "Write CSV reports and the workbook", operations.StepExport, a.printReports),
		a.allCommand(),
		a.runsCommand(),
	)

	return rootCmd, a
}

// needsSetup is false for cobra's built-in help and completion commands, which
// must not load config or touch the output tree.
func needsSetup(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return true
}

// setup loads config, logging, observability and the runner
func (a *app) setup(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if a.flags.configFile != "" {
		cfg, err = config.LoadFrom(a.flags.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return apperrors.NewConfigError("failed to load configuration", err)
	}
	a.applyFlags(cmd, cfg)
	a.cfg = cfg

	paths := config.NewPaths(cfg.Data.OutputDir)
	cfg.Logging.FilePath = cfg.LogFilePath(paths)

	logger, err := infrastructure.NewLogger(cfg.Logging, a.stderr)
	if err != nil {
		return apperrors.NewConfigError("failed to initialize logger", err)
	}
	slog.SetDefault(logger)
	a.logger = logger

	if err := paths.EnsureDirectories(); err != nil {
		return apperrors.NewResourceError("failed to create output directories", err)
	}

	a.tracing, err = infrastructure.InitializeTracing(cfg.Observability.TraceFile, logger)
	if err != nil {
		return apperrors.NewConfigError("failed to initialize tracing", err)
	}
	a.metrics = infrastructure.NewPipelineMetrics()

	opts := operations.Options{
		Config:  cfg,
		Metrics: a.metrics,
		Tracer:  a.tracing.Tracer(),
	}
	if cfg.Export.SQLitePath != "" {
		a.store, err = store.Open(cfg.Export.SQLitePath)
		if err != nil {
			return err
		}
		opts.Store = a.store
	}

	a.runner, err = operations.NewRunner(opts)
	if err != nil {
		return err
	}

	logger.Debug("Command initialized",
		slog.String("command", cmd.Name()),
		slog.String("run_id", a.runner.State().ID))
	return nil
}

// applyFlags overrides config values with the flags the user set
func (a *app) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("nics") {
		cfg.Data.NICSCSV = a.flags.nics
	}
	if changed("population") {
		cfg.Data.PopulationCSV = a.flags.population
	}
	if changed("geojson") {
		cfg.Data.GeoJSON = a.flags.geojson
	}
	if changed("out") {
		cfg.Data.OutputDir = a.flags.out
	}
	if changed("sqlite") {
		cfg.Export.SQLitePath = a.flags.sqlite
	}
	if a.flags.noMaps {
		cfg.Maps.Screenshot = false
	}
}

// teardown flushes metrics and traces and closes the store
func (a *app) teardown(ctx context.Context) error {
	var errs []error

	if a.metrics != nil && a.cfg != nil {
		if err := a.metrics.WriteToFile(a.cfg.Observability.MetricsFile); err != nil {
			errs = append(errs, err)
		}
	}
	if a.tracing != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := a.tracing.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, err)
		}
		a.store = nil
	}
	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// stepCommand runs one pipeline step, with its dependencies, then prints its result
func (a *app) stepCommand(use, short, stepID string, show func()) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.runner.Run(cmd.Context(), stepID); err != nil {
				a.logger.ErrorContext(cmd.Context(), "Command failed",
					slog.String("command", use),
					slog.String("error", err.Error()))
				return err
			}
			show()
			return nil
		},
	}
}

func (a *app) allCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run every step and print every result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.runner.RunAll(cmd.Context()); err != nil {
				a.logger.ErrorContext(cmd.Context(), "Command failed",
					slog.String("command", "all"),
					slog.String("error", err.Error()))
				return err
			}
			for _, show := range []func(){
				a.printClean, a.printExtremes, a.printStates, a.printRates,
				a.printAnalysis, a.printEvolution, a.printMaps, a.printReports,
			} {
				show()
			}
			if run := a.runner.Results().Run; run != nil {
				fmt.Fprintf(a.stdout, "Run %d saved to %s\n", run.ID, a.cfg.Export.SQLitePath)
			}
			return nil
		},
	}
}

func (a *app) runsCommand() *cobra.Command {
	var (
		limit int
		runID uint
	)
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List runs recorded in the SQLite database, or the rates of one run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.store == nil {
				return apperrors.NewConfigError("no SQLite database configured, set --sqlite or export.sqlite_path", nil)
			}
			if runID > 0 {
				rates, err := a.store.RatesForRun(cmd.Context(), runID)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "Run %d: %d states\n", runID, len(rates))
				a.printRateTable(rates)
				return nil
			}

			runs, err := a.store.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			a.printRuns(runs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum runs to list, 0 for all")
	cmd.Flags().UintVar(&runID, "id", 0, "Show the stored rate table of this run")
	return cmd
}
