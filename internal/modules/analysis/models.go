// Package analysis orchestrates the full batch: reclassification,
// working-capital indicators, risk scoring, valuation, ranking,
// clustering and portfolio allocation across the company universe.
package analysis

import (
	"time"

	"github.com/brvalue/fleuriet/internal/modules/fleuriet"
	"github.com/brvalue/fleuriet/internal/modules/portfolio"
	"github.com/brvalue/fleuriet/internal/modules/ranking"
	"github.com/brvalue/fleuriet/internal/modules/risk"
	"github.com/brvalue/fleuriet/internal/modules/valuation"
)

// Run statuses persisted with each batch.
const (
	StatusCompleted = "completed"
	StatusEmpty     = "empty"
)

// Failure stages recorded when a company drops out of a run.
const (
	StageStatements = "statements"
	StageMarketData = "market_data"
	StageValuation  = "valuation"
)

// CompanyAnalysis is the complete per-company output of one run.
type CompanyAnalysis struct {
	Ticker string `json:"ticker"`
	Sector string `json:"sector"`

	// Per-period working-capital history, most recent first. The head
	// period drives risk scoring and valuation.
	Periods []fleuriet.Indicators `json:"periods"`

	Risk      risk.Score       `json:"risk"`
	Valuation valuation.Result `json:"valuation"`
}

// Failure records one company excluded from a run, with the stage that
// rejected it.
type Failure struct {
	Ticker string `json:"ticker"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// Result is the output of one full batch run.
type Result struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Status     string    `json:"status"`

	// Reason is set when the run produced no companies.
	Reason string `json:"reason,omitempty"`

	RiskFreeRate float64 `json:"risk_free_rate"`

	Companies []CompanyAnalysis `json:"companies"`
	Failures  []Failure         `json:"failures"`

	Summary       Summary                    `json:"summary"`
	Composite     []ranking.CompositeEntry   `json:"composite"`
	Rankings      map[string][]ranking.Entry `json:"rankings"`
	SectorRanks   map[string][]ranking.Entry `json:"sector_ranks"`
	Opportunities ranking.Opportunities      `json:"opportunities"`
	Clusters      ranking.ClusterResult      `json:"clusters"`
	Allocation    portfolio.Allocation       `json:"allocation"`
}

// Summary aggregates headline statistics over the companies that made it
// through a run. Averages cover only companies where the metric is defined.
type Summary struct {
	CompaniesAnalyzed int `json:"companies_analyzed"`
	CompaniesFailed   int `json:"companies_failed"`

	PositiveEVA int `json:"positive_eva"`
	PositiveEFV int `json:"positive_efv"`

	AvgEVAPct    float64 `json:"avg_eva_pct"`
	AvgEFVPct    float64 `json:"avg_efv_pct"`
	AvgUpsidePct float64 `json:"avg_upside_pct"`

	BestEVA    string `json:"best_eva,omitempty"`
	BestEFV    string `json:"best_efv,omitempty"`
	BestUpside string `json:"best_upside,omitempty"`
}
