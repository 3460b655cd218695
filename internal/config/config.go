package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging       LoggingConfig       `yaml:"logging" envconfig:"LOGGING"`
	Data          DataConfig          `yaml:"data" envconfig:"DATA"`
	Analysis      AnalysisConfig      `yaml:"analysis" envconfig:"ANALYSIS"`
	Export        ExportConfig        `yaml:"export" envconfig:"EXPORT"`
	Observability ObservabilityConfig `yaml:"observability" envconfig:"OBSERVABILITY"`
	Maps          MapsConfig          `yaml:"maps" envconfig:"MAPS"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// DataConfig points at the pipeline inputs and the output root
type DataConfig struct {
	NICSCSV       string `yaml:"nics_csv" envconfig:"NICS_CSV" validate:"required"`
	PopulationCSV string `yaml:"population_csv" envconfig:"POPULATION_CSV" validate:"required"`
	GeoJSON       string `yaml:"geojson" envconfig:"GEOJSON"`
	OutputDir     string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
}

// AnalysisConfig holds the knobs of the core pipeline
type AnalysisConfig struct {
	// ExcludedStates are removed from the state aggregate before merging
	ExcludedStates []string `yaml:"excluded_states" envconfig:"EXCLUDED_STATES" validate:"dive,required"`
	// ImputeState is the outlier whose permit_perc is replaced by the mean
	ImputeState string `yaml:"impute_state" envconfig:"IMPUTE_STATE" validate:"required"`
}

// ExportConfig selects the report sinks
type ExportConfig struct {
	CSV        bool   `yaml:"csv" envconfig:"CSV"`
	XLSX       bool   `yaml:"xlsx" envconfig:"XLSX"`
	SQLitePath string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
}

// ObservabilityConfig contains metrics and tracing sinks. Empty paths disable them.
type ObservabilityConfig struct {
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	TraceFile   string `yaml:"trace_file" envconfig:"TRACE_FILE"`
}

// MapsConfig controls choropleth rendering and capture
type MapsConfig struct {
	Screenshot bool          `yaml:"screenshot" envconfig:"SCREENSHOT"`
	Headless   bool          `yaml:"headless" envconfig:"HEADLESS"`
	RenderWait time.Duration `yaml:"render_wait" envconfig:"RENDER_WAIT" validate:"gte=0"`
	Width      int           `yaml:"width" envconfig:"WIDTH" validate:"gt=0"`
	Height     int           `yaml:"height" envconfig:"HEIGHT" validate:"gt=0"`
}

// Load builds the configuration from defaults, an optional YAML file, an optional
// .env file and environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit YAML path. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// No default tags on the struct: envconfig only overrides what is set
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// loadDotEnv exports variables from a dotenv file without overriding the environment
func loadDotEnv(filePath string) error {
	if !FileExists(filePath) {
		return nil
	}
	return godotenv.Load(filePath)
}

// normalize trims list entries and lowercases the log level
func (c *Config) normalize() {
	states := c.Analysis.ExcludedStates[:0]
	for _, s := range c.Analysis.ExcludedStates {
		if s = strings.TrimSpace(s); s != "" {
			states = append(states, s)
		}
	}
	c.Analysis.ExcludedStates = states

	c.Logging.Level = strings.ToLower(c.Logging.Level)
}

// LogFilePath returns logging.file_path, or LogFileName under the logs directory
// of paths when it is unset.
func (c *Config) LogFilePath(paths *Paths) string {
	if c.Logging.FilePath != "" {
		return c.Logging.FilePath
	}
	return paths.GetLogPath(LogFileName)
}

// Validate checks struct constraints
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	// Check for config file in common locations
	locations := []string{
		"gunstats.yaml",
		"configs/gunstats.yaml",
	}

	for _, location := range locations {
		if FileExists(location) {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
			Output: DefaultLogOutput,
		},
		Data: DataConfig{
			NICSCSV:       DefaultNICSFile,
			PopulationCSV: DefaultPopulationFile,
			GeoJSON:       DefaultGeoJSON,
			OutputDir:     DefaultOutputDir,
		},
		Analysis: AnalysisConfig{
			ExcludedStates: append([]string(nil), DefaultExcludedStates...),
			ImputeState:    DefaultImputeState,
		},
		Export: ExportConfig{
			CSV:  true,
			XLSX: true,
		},
		Maps: MapsConfig{
			Screenshot: true,
			Headless:   true,
			RenderWait: DefaultRenderWait,
			Width:      DefaultCaptureWidth,
			Height:     DefaultCaptureHeight,
		},
	}
}
