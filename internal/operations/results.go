package operations

import (
	"context"

	"gunstats/internal/config"
	"gunstats/internal/infrastructure"
	"gunstats/internal/maps"
	"gunstats/internal/store"
	"gunstats/pkg/contracts/domain"
)

// Results holds what each step produced. Fields stay zero until the
// producing step has run.
type Results struct {
	// read
	Raw       *domain.Table
	Records   []domain.CheckRecord
	StateYear []domain.StateYearTotal

	// extremes
	Handgun domain.Extremum
	LongGun domain.Extremum

	// states
	StateTotals []domain.StateTotal

	// rates
	Population []domain.PopulationRecord
	Merge      domain.MergeStats
	Rates      []domain.RateRecord

	Analysis domain.StateAnalysis
	Yearly   []domain.YearTotal
	Maps     []maps.Artifact
	Reports  []string
	Run      *store.Run
}

// RunStore persists finished runs
type RunStore interface {
	SaveRun(ctx context.Context, summary store.RunSummary, rates []domain.RateRecord) (*store.Run, error)
}

// Env is what a step body can reach
type Env struct {
	Config  *config.Config
	Paths   *config.Paths
	Results *Results
	Store   RunStore
	Capture maps.CaptureFunc
	Metrics *infrastructure.PipelineMetrics
}
