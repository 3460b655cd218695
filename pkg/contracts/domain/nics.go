package domain

import "fmt"

// Column names of the NICS background-check table
const (
	ColumnMonth   = "month"
	ColumnYear    = "year"
	ColumnState   = "state"
	ColumnPermit  = "permit"
	ColumnHandgun = "handgun"
	ColumnLongGun = "long_gun"

	// ColumnLongGunLegacy is the spelling used by some releases of the dataset
	ColumnLongGunLegacy = "longgun"

	ColumnPop2014     = "pop_2014"
	ColumnPermitPerc  = "permit_perc"
	ColumnHandgunPerc = "handgun_perc"
	ColumnLongGunPerc = "longgun_perc"
)

// CleanColumns is the exact projection kept by the cleaner, in output order
var CleanColumns = []string{ColumnMonth, ColumnState, ColumnPermit, ColumnHandgun, ColumnLongGun}

// Counts holds the three background-check counters tracked per observation
type Counts struct {
	Permit  int64 `json:"permit" csv:"permit"`
	Handgun int64 `json:"handgun" csv:"handgun"`
	LongGun int64 `json:"long_gun" csv:"long_gun"`
}

// Add accumulates other into c
func (c *Counts) Add(other Counts) {
	c.Permit += other.Permit
	c.Handgun += other.Handgun
	c.LongGun += other.LongGun
}

// Field returns the counter named by one of the count column names
func (c Counts) Field(column string) (int64, bool) {
	switch column {
	case ColumnPermit:
		return c.Permit, true
	case ColumnHandgun:
		return c.Handgun, true
	case ColumnLongGun:
		return c.LongGun, true
	default:
		return 0, false
	}
}

// CheckRecord is one monthly observation after the month column has been erased
type CheckRecord struct {
	Year  int    `json:"year" csv:"year"`
	State string `json:"state" csv:"state"`
	Counts
}

// StateYearTotal is the sum of all observations sharing (Year, State)
type StateYearTotal struct {
	Year  int    `json:"year" csv:"year"`
	State string `json:"state" csv:"state"`
	Counts
}

// StateTotal is the sum of a state's observations across all years
type StateTotal struct {
	State string `json:"state" csv:"state"`
	Counts
}

// YearTotal is the sum over every state for one year
type YearTotal struct {
	Year int `json:"year" csv:"year"`
	Counts
}

// PopulationRecord is one row of the population reference table
type PopulationRecord struct {
	State   string `json:"state" csv:"state" validate:"required"`
	Pop2014 int64  `json:"pop_2014" csv:"pop_2014"`
}

// RateRecord is a state total joined with its population plus per-capita percentages
type RateRecord struct {
	State string `json:"state" csv:"state"`
	Counts
	Pop2014     int64   `json:"pop_2014" csv:"pop_2014"`
	PermitPerc  float64 `json:"permit_perc" csv:"permit_perc"`
	HandgunPerc float64 `json:"handgun_perc" csv:"handgun_perc"`
	LongGunPerc float64 `json:"longgun_perc" csv:"longgun_perc"`
}

// Perc returns the percentage field named by one of the *_perc column names
func (r RateRecord) Perc(column string) (float64, bool) {
	switch column {
	case ColumnPermitPerc:
		return r.PermitPerc, true
	case ColumnHandgunPerc:
		return r.HandgunPerc, true
	case ColumnLongGunPerc:
		return r.LongGunPerc, true
	default:
		return 0, false
	}
}

// Extremum is the (state, year, count) tuple reported for a maximum search
type Extremum struct {
	State string `json:"state"`
	Year  int    `json:"year"`
	Count int64  `json:"count"`
}

// Sentence renders the extremum for a count kind such as "handguns"
func (e Extremum) Sentence(kind string) string {
	return fmt.Sprintf("The state with the highest number of %s is %s in the year %d with %d %s.",
		kind, e.State, e.Year, e.Count, kind)
}

// StateAnalysis is the outcome of the outlier-imputation demonstration
type StateAnalysis struct {
	State   string       `json:"state"`
	Matches int          `json:"matches"`
	OldMean float64      `json:"old_mean"`
	NewMean float64      `json:"new_mean"`
	Imputed []RateRecord `json:"-"`
}

// MergeStats counts what the inner join kept and dropped
type MergeStats struct {
	Matched int `json:"matched"`
	// DroppedStates are firearm states with no population row
	DroppedStates []string `json:"dropped_states,omitempty"`
	// MissingPopulation are population states with no firearm row
	MissingPopulation []string `json:"missing_population,omitempty"`
	// DuplicatePopulation are states with more than one population row
	DuplicatePopulation []string `json:"duplicate_population,omitempty"`
}

// Dropped returns how many rows on either side the join discarded
func (m MergeStats) Dropped() int {
	return len(m.DroppedStates) + len(m.MissingPopulation)
}
