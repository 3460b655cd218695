package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the output paths of a run
type Paths struct {
	DataDir    string
	ReportsDir string
	MapsDir    string
	LogsDir    string
}

// NewPaths lays out the output tree under outputDir:
//
//	<outputDir>/
//	  ├── reports/   (CSV and workbook exports)
//	  ├── maps/      (choropleth HTML and PNG)
//	  └── logs/
func NewPaths(outputDir string) *Paths {
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}

	return &Paths{
		DataDir:    outputDir,
		ReportsDir: filepath.Join(outputDir, DefaultReportsDir),
		MapsDir:    filepath.Join(outputDir, DefaultMapsDir),
		LogsDir:    filepath.Join(outputDir, DefaultLogsDir),
	}
}

// EnsureDirectories creates all output directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.ReportsDir,
		p.MapsDir,
		p.LogsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}

		logger.Debug("Ensured directory exists",
			slog.String("directory", dir))
	}

	return nil
}

// GetReportPath returns the full path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetMapPath returns the full path for a map artifact
func (p *Paths) GetMapPath(filename string) string {
	return filepath.Join(p.MapsDir, filename)
}

// GetLogPath returns the full path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
