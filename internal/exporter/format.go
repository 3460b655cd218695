package exporter

import (
	"strconv"
)

// formatPerc keeps full precision; percentages are often far below 0.01
func formatPerc(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}
