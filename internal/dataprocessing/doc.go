// Package dataprocessing implements the NICS extract-transform pipeline:
// loading delimited tables, cleaning and reshaping them, aggregating check
// counts by state and year, and deriving per-capita rates.
//
// # Data Flow
//
//	LoadTable → CleanTable → SplitDate → EraseMonth → ToRecords
//	         → GroupByStateAndYear → GroupByState → FilterStates
//	         → MergePopulation (+ LoadPopulation) → CalculateRates
//
// Every stage returns a new value; inputs are never modified.
//
// # Usage
//
//	raw, err := dataprocessing.LoadTable(ctx, cfg.Data.NICSCSV)
//	if err != nil {
//	    return err
//	}
//	records, err := dataprocessing.Prepare(raw)
//	yearly := dataprocessing.GroupByStateAndYear(records)
//	states := dataprocessing.FilterStates(dataprocessing.GroupByState(yearly), cfg.Analysis.ExcludedStates)
//
// # Error Handling
//
// Failures are *errors.AppError values:
//
//	- RESOURCE: the input file or URL could not be opened
//	- SCHEMA: a required column is missing or a count cell is invalid
//	- PARSING: malformed CSV or a month cell that is not YYYY-MM
//	- NUMERIC: a population that is zero or negative
//
// States that fail to join are not errors; MergePopulation reports them in
// domain.MergeStats.
package dataprocessing
