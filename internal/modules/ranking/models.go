// Package ranking orders and groups companies by their valuation metrics.
package ranking

import (
	"github.com/brvalue/fleuriet/internal/domain"
)

// Metric names accepted by simple rankings.
const (
	MetricEVAPct    = "eva_pct"
	MetricEFVPct    = "efv_pct"
	MetricUpsidePct = "upside_pct"
	MetricROIC      = "roic"
	MetricLiquidity = "liquidity"
)

// CompanyMetrics is the per-company slice of the valuation output consumed
// by ranking, clustering and allocation.
type CompanyMetrics struct {
	Ticker string `json:"ticker"`
	Sector string `json:"sector"`

	EVAPct    domain.Value `json:"eva_pct"`
	EFVPct    domain.Value `json:"efv_pct"`
	UpsidePct domain.Value `json:"upside_pct"`
	ROIC      domain.Value `json:"roic"`
	Liquidity domain.Value `json:"liquidity"` // long-term liquidity indicator (ILD)

	PresentWealth domain.Value `json:"present_wealth"`
	FutureWealth  float64      `json:"future_wealth"`

	// Used by the portfolio allocator.
	EVA             domain.Value `json:"eva"`
	CapitalEmployed float64      `json:"capital_employed"`
}

// Entry is one row of a simple descending ranking.
type Entry struct {
	Ticker string  `json:"ticker"`
	Value  float64 `json:"value"`
}

// CompositeEntry is one row of the weighted composite ranking.
type CompositeEntry struct {
	Ticker string  `json:"ticker"`
	Score  float64 `json:"score"`
	Rank   int     `json:"rank"`
}

// ClusterResult groups companies by valuation profile. When fewer than
// three companies are available the grouping is meaningless and
// InsufficientData is set with no assignments.
type ClusterResult struct {
	InsufficientData bool           `json:"insufficient_data"`
	K                int            `json:"k"`
	Assignments      map[string]int `json:"assignments"`
	Centroids        [][]float64    `json:"centroids"`
}

// Opportunities buckets companies by what makes them attractive.
type Opportunities struct {
	ValueCreators []string `json:"value_creators"` // positive EVA%
	GrowthPlays   []string `json:"growth_plays"`   // positive EFV%
	Undervalued   []string `json:"undervalued"`    // upside above 20%
	Best          []Entry  `json:"best"`           // top five by combined score
}
