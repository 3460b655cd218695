package maps

import (
	"fmt"
	"math"
)

// YlGnBu is the six-class yellow-green-blue sequential palette
var YlGnBu = []string{"#ffffcc", "#c7e9b4", "#7fcdbb", "#41b6c4", "#2c7fb8", "#253494"}

// NoDataColor fills states without a value
const NoDataColor = "#d9d9d9"

// Scale maps values onto palette classes with equal-width bins
type Scale struct {
	Breaks []float64
	Colors []string
}

// NewScale spans [min, max] of values with one bin per palette color.
// NaN values are ignored.
func NewScale(values []float64, palette []string) Scale {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		lo, hi = 0, 0
	}

	breaks := make([]float64, len(palette)+1)
	step := (hi - lo) / float64(len(palette))
	for i := range breaks {
		breaks[i] = lo + step*float64(i)
	}
	breaks[len(palette)] = hi

	return Scale{Breaks: breaks, Colors: palette}
}

// Class returns the palette index of v, clamped to the outer bins
func (s Scale) Class(v float64) int {
	last := len(s.Colors) - 1
	for i := 0; i < last; i++ {
		if v < s.Breaks[i+1] {
			return i
		}
	}
	return last
}

// Color returns the fill for v
func (s Scale) Color(v float64) string {
	if math.IsNaN(v) {
		return NoDataColor
	}
	return s.Colors[s.Class(v)]
}

// LegendEntry is one row of the rendered legend
type LegendEntry struct {
	Color string
	Label string
}

// Legend lists each class with its value range
func (s Scale) Legend() []LegendEntry {
	entries := make([]LegendEntry, len(s.Colors))
	for i, c := range s.Colors {
		entries[i] = LegendEntry{
			Color: c,
			Label: fmt.Sprintf("%.2f - %.2f", s.Breaks[i], s.Breaks[i+1]),
		}
	}
	return entries
}
