package config

import "time"

// Application constants
const (
	// Application Info
	AppName    = "gunstats"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. GUNSTATS_LOGGING_LEVEL
	EnvPrefix = "GUNSTATS"

	// Input defaults (relative to the working directory)
	DefaultNICSFile       = "data/nics-firearm-background-checks.csv"
	DefaultPopulationFile = "data/us-state-populations.csv"
	DefaultGeoJSON        = "https://raw.githubusercontent.com/python-visualization/folium/main/examples/data/us-states.json"

	// Output layout
	DefaultOutputDir  = "data"
	DefaultReportsDir = "reports"
	DefaultMapsDir    = "maps"
	DefaultLogsDir    = "logs"

	// Report file names
	StateYearTotalsCSV = "state_year_totals.csv"
	StateRatesCSV      = "state_rates.csv"
	YearlyTotalsCSV    = "yearly_totals.csv"
	WorkbookFile       = "gunstats.xlsx"

	// Analysis
	DefaultImputeState = "Kentucky"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogOutput = "console"
	// LogFileName is placed under Paths.LogsDir unless logging.file_path is set
	LogFileName = "gunstats.log"

	// Map capture
	DefaultRenderWait    = 2 * time.Second
	DefaultCaptureWidth  = 1280
	DefaultCaptureHeight = 800
)

// DefaultExcludedStates are the territories removed before the population merge
var DefaultExcludedStates = []string{"Guam", "Mariana Islands", "Puerto Rico", "Virgin Islands"}
