package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"gunstats/internal/analytics"
	"gunstats/internal/store"
	"gunstats/pkg/contracts/domain"
)

// headRows is how many rows the clean command previews
const headRows = 5

func (a *app) table(header string, rows func(w *tabwriter.Writer)) {
	w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, header)
	rows(w)
	w.Flush()
}

func (a *app) printClean() {
	res := a.runner.Results()
	fmt.Fprintf(a.stdout, "Loaded %d rows, %d monthly records, %d state-year totals\n",
		res.Raw.RowCount(), len(res.Records), len(res.StateYear))

	n := min(headRows, len(res.StateYear))
	a.table("year\tstate\tpermit\thandgun\tlong_gun\t", func(w *tabwriter.Writer) {
		for _, t := range res.StateYear[:n] {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t\n", t.Year, t.State, t.Permit, t.Handgun, t.LongGun)
		}
	})
}

func (a *app) printExtremes() {
	res := a.runner.Results()
	fmt.Fprintln(a.stdout, res.Handgun.Sentence("handguns"))
	fmt.Fprintln(a.stdout, res.LongGun.Sentence("long guns"))
}

func (a *app) printStates() {
	res := a.runner.Results()
	names := make([]string, len(res.StateTotals))
	for i, t := range res.StateTotals {
		names[i] = t.State
	}
	fmt.Fprintf(a.stdout, "%d states after excluding %s\n",
		len(names), strings.Join(a.cfg.Analysis.ExcludedStates, ", "))
	fmt.Fprintln(a.stdout, strings.Join(names, ", "))
}

func (a *app) printRates() {
	res := a.runner.Results()
	if n := res.Merge.Dropped(); n > 0 {
		fmt.Fprintf(a.stdout, "Merge dropped %d states: %s\n", n,
			strings.Join(append(append([]string{}, res.Merge.DroppedStates...), res.Merge.MissingPopulation...), ", "))
	}
	if len(res.Merge.DuplicatePopulation) > 0 {
		fmt.Fprintf(a.stdout, "Duplicate population rows ignored for: %s\n",
			strings.Join(res.Merge.DuplicatePopulation, ", "))
	}
	a.printRateTable(res.Rates)
}

func (a *app) printRateTable(rates []domain.RateRecord) {
	a.table("state\tpop_2014\tpermit_perc\thandgun_perc\tlonggun_perc\t", func(w *tabwriter.Writer) {
		for _, r := range rates {
			fmt.Fprintf(w, "%s\t%d\t%.4f\t%.4f\t%.4f\t\n", r.State, r.Pop2014, r.PermitPerc, r.HandgunPerc, r.LongGunPerc)
		}
	})
}

func (a *app) printAnalysis() {
	for _, line := range analytics.Narrative(a.runner.Results().Analysis) {
		fmt.Fprintln(a.stdout, line)
	}
}

func (a *app) printEvolution() {
	a.table("year\tpermit\thandgun\tlong_gun\t", func(w *tabwriter.Writer) {
		for _, y := range a.runner.Results().Yearly {
			fmt.Fprintf(w, "%d\t%d\t%d\t%d\t\n", y.Year, y.Permit, y.Handgun, y.LongGun)
		}
	})
}

func (a *app) printMaps() {
	for _, m := range a.runner.Results().Maps {
		fmt.Fprintf(a.stdout, "%s map: %s", m.Column, m.HTMLPath)
		if m.PNGPath != "" {
			fmt.Fprintf(a.stdout, " (%s)", m.PNGPath)
		}
		fmt.Fprintln(a.stdout)
	}
}

func (a *app) printReports() {
	for _, p := range a.runner.Results().Reports {
		fmt.Fprintf(a.stdout, "Wrote %s\n", p)
	}
}

func (a *app) printRuns(runs []store.Run) {
	a.table("id\tcreated\tstate\told_mean\tnew_mean\tdropped\ttrace_id\t", func(w *tabwriter.Writer) {
		for _, r := range runs {
			fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%.2f\t%d\t%s\t\n",
				r.ID, r.CreatedAt.Format(time.RFC3339), r.ImputeState, r.OldMean, r.NewMean, r.DroppedStates, r.TraceID)
		}
	})
}
