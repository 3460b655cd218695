package dataprocessing

import (
	"log/slog"

	"gunstats/pkg/contracts/domain"
)

// FilterStates removes every total whose state is in excluded. Order of the
// remaining rows is preserved.
func FilterStates(totals []domain.StateTotal, excluded []string) []domain.StateTotal {
	deny := make(map[string]struct{}, len(excluded))
	for _, s := range excluded {
		deny[s] = struct{}{}
	}

	out := make([]domain.StateTotal, 0, len(totals))
	for _, t := range totals {
		if _, drop := deny[t.State]; drop {
			continue
		}
		out = append(out, t)
	}

	slog.Info("Filtered states",
		slog.Int("kept", len(out)),
		slog.Int("removed", len(totals)-len(out)))
	return out
}
