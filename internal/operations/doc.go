// Package operations runs the gunstats pipeline as a set of dependent steps.
//
// Each step reads the results of the steps it depends on and stores its own
// output in a shared Results value, so running a later step after an earlier
// one reuses the earlier output instead of recomputing it.
//
// Steps, in their natural order:
//
//	read       load the NICS table, clean it, split dates, group by state and year
//	extremes   find the biggest handgun and long gun (state, year) totals
//	states     group by state and drop the excluded territories
//	rates      merge population and compute per-capita percentages
//	analysis   impute the outlier state's permit_perc with the mean
//	evolution  sum the counts per year
//	maps       render the three choropleths
//	export     write CSV reports and the workbook
//	persist    save the run to SQLite when a store is configured
//
// Example usage:
//
//	runner, err := operations.NewRunner(operations.Options{Config: cfg, Metrics: metrics})
//	if err != nil {
//		return err
//	}
//	if err := runner.Run(ctx, operations.StepAnalysis); err != nil {
//		return err
//	}
//	fmt.Println(runner.Results().Analysis.NewMean)
package operations
