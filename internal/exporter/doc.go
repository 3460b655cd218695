// Package exporter writes pipeline results to disk.
//
// CSVWriter: CSV export with streaming and an optional UTF-8 BOM for Excel
// compatibility. WriteReport emits state_year_totals.csv, state_rates.csv and
// yearly_totals.csv under the reports directory.
//
// WorkbookExporter: a single gunstats.xlsx holding the Rates, StateYear and
// Yearly sheets plus a line chart of the yearly evolution.
//
// Example usage:
//
//	paths := config.NewPaths(cfg.Data.OutputDir)
//	report := exporter.Report{StateYear: yearly, Rates: rates, Yearly: evolution}
//
//	files, err := exporter.NewCSVWriter(paths).WriteReport(report)
//	workbook, err := exporter.NewWorkbookExporter(paths).Export(report)
package exporter
