// Package analytics holds the read-only reporters that run on aggregated
// NICS data: extremum search, the permit_perc outlier imputation and the
// yearly time series. No function here mutates its input.
package analytics
