package dataprocessing

import (
	"log/slog"
	"slices"

	"gunstats/pkg/contracts/domain"
)

// MergePopulation inner-joins state totals with the population table on exact
// state equality. Rows without a partner on either side are dropped and
// reported in the returned stats. Output keeps the order of totals.
// A state repeated in population keeps its first row; the repeats are
// listed in stats.DuplicatePopulation.
func MergePopulation(totals []domain.StateTotal, population []domain.PopulationRecord) ([]domain.RateRecord, domain.MergeStats) {
	var stats domain.MergeStats

	popByState := make(map[string]int64, len(population))
	for _, p := range population {
		if _, dup := popByState[p.State]; dup {
			if !slices.Contains(stats.DuplicatePopulation, p.State) {
				stats.DuplicatePopulation = append(stats.DuplicatePopulation, p.State)
			}
			continue
		}
		popByState[p.State] = p.Pop2014
	}
	slices.Sort(stats.DuplicatePopulation)

	seen := make(map[string]struct{}, len(totals))
	merged := make([]domain.RateRecord, 0, len(totals))

	for _, t := range totals {
		pop, ok := popByState[t.State]
		if !ok {
			stats.DroppedStates = append(stats.DroppedStates, t.State)
			continue
		}
		seen[t.State] = struct{}{}
		merged = append(merged, domain.RateRecord{
			State:   t.State,
			Counts:  t.Counts,
			Pop2014: pop,
		})
	}
	stats.Matched = len(merged)

	for state := range popByState {
		if _, ok := seen[state]; !ok {
			stats.MissingPopulation = append(stats.MissingPopulation, state)
		}
	}
	slices.Sort(stats.MissingPopulation)

	if len(stats.DuplicatePopulation) > 0 {
		slog.Warn("Population has duplicate states, first row kept",
			slog.Any("duplicate_population", stats.DuplicatePopulation))
	}

	if stats.Dropped() > 0 {
		slog.Warn("Merge dropped unmatched states",
			slog.Int("matched", stats.Matched),
			slog.Any("dropped_states", stats.DroppedStates),
			slog.Any("missing_population", stats.MissingPopulation))
	} else {
		slog.Info("Merged population", slog.Int("matched", stats.Matched))
	}

	return merged, stats
}
