// Package config provides configuration management for gunstats.
// It loads settings from several sources, validates them, and resolves the
// directories the pipeline writes to.
//
// # Configuration Sources
//
// Configuration is layered in the following order, later sources winning:
//
//	1. Default values (Default)
//	2. YAML file (gunstats.yaml or configs/gunstats.yaml)
//	3. A .env file in the working directory
//	4. Environment variables
//
// # Environment Variables
//
// All environment variables follow the pattern GUNSTATS_<SECTION>_<KEY>:
//
//	GUNSTATS_DATA_NICS_CSV=data/nics-firearm-background-checks.csv
//	GUNSTATS_DATA_POPULATION_CSV=data/us-state-populations.csv
//	GUNSTATS_ANALYSIS_EXCLUDED_STATES="Guam,Puerto Rico"
//	GUNSTATS_LOGGING_LEVEL=debug
//	GUNSTATS_EXPORT_SQLITE_PATH=data/gunstats.db
//
// # Path Management
//
// Paths derives every output location from Data.OutputDir:
//
//	paths := config.NewPaths(cfg.Data.OutputDir)
//	ratesCSV := paths.GetReportPath(config.StateRatesCSV)
//	mapHTML := paths.GetMapPath("permit_perc_map.html")
package config
