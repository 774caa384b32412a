// Package portfolio turns ranked company metrics into portfolio weights
// and aggregates portfolio-level value creation.
package portfolio

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/brvalue/fleuriet/internal/domain"
	"github.com/brvalue/fleuriet/internal/modules/ranking"
)

// Allocation score weights. EFV gets extra weight: the allocator favors
// companies whose value creation is still ahead of them.
const (
	scoreWeightEVA    = 1.0
	scoreWeightEFV    = 1.5
	scoreWeightUpside = 1.0
)

// Position is one allocated company.
type Position struct {
	Ticker string  `json:"ticker"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

// Allocation is the proposed portfolio with its aggregate value metrics.
type Allocation struct {
	Positions []Position   `json:"positions"`
	EVA       domain.Value `json:"eva"`
	EVAPct    domain.Value `json:"eva_pct"`
}

// Allocator builds score-proportional portfolios.
type Allocator struct {
	log zerolog.Logger
}

// NewAllocator creates a portfolio allocator.
func NewAllocator(log zerolog.Logger) *Allocator {
	return &Allocator{log: log.With().Str("component", "portfolio").Logger()}
}

// AllocationScore blends the value metrics into the allocation score.
// Undefined metrics contribute nothing.
func AllocationScore(m ranking.CompanyMetrics) float64 {
	return scoreWeightEVA*m.EVAPct.Or(0) +
		scoreWeightEFV*m.EFVPct.Or(0) +
		scoreWeightUpside*m.UpsidePct.Or(0)
}

type scoredCompany struct {
	metrics ranking.CompanyMetrics
	score   float64
}

// Allocate weights companies proportionally to their positive allocation
// scores. Companies with negative scores are excluded. Without any
// positive score, zero-score companies are admitted at equal weights.
func (a *Allocator) Allocate(companies []ranking.CompanyMetrics) Allocation {
	var included []scoredCompany
	total := 0.0
	for _, m := range companies {
		score := AllocationScore(m)
		if score <= 0 {
			continue
		}
		included = append(included, scoredCompany{metrics: m, score: score})
		total += score
	}

	if len(included) == 0 {
		for _, m := range companies {
			if AllocationScore(m) == 0 {
				included = append(included, scoredCompany{metrics: m})
			}
		}
	}

	if len(included) == 0 {
		a.log.Debug().Msg("No companies with positive allocation score")
		return Allocation{EVA: domain.Undefined(), EVAPct: domain.Undefined()}
	}

	alloc := Allocation{Positions: make([]Position, 0, len(included))}

	equalWeight := 1.0 / float64(len(included))
	for _, s := range included {
		weight := equalWeight
		if total > 0 {
			weight = s.score / total
		}
		alloc.Positions = append(alloc.Positions, Position{
			Ticker: s.metrics.Ticker,
			Score:  s.score,
			Weight: weight,
		})
	}

	sort.SliceStable(alloc.Positions, func(i, j int) bool {
		return alloc.Positions[i].Weight > alloc.Positions[j].Weight
	})

	alloc.EVA, alloc.EVAPct = a.aggregateEVA(included, alloc.Positions)
	return alloc
}

// aggregateEVA sums weight-scaled EVA over companies with a valid EVA and
// positive capital employed, and expresses it against the weighted
// capital base.
func (a *Allocator) aggregateEVA(included []scoredCompany, positions []Position) (domain.Value, domain.Value) {
	weightByTicker := make(map[string]float64, len(positions))
	for _, p := range positions {
		weightByTicker[p.Ticker] = p.Weight
	}

	totalEVA := 0.0
	weightedCapital := 0.0
	counted := 0
	for _, s := range included {
		eva, ok := s.metrics.EVA.Float()
		if !ok || s.metrics.CapitalEmployed <= 0 {
			continue
		}
		w := weightByTicker[s.metrics.Ticker]
		totalEVA += w * eva
		weightedCapital += w * s.metrics.CapitalEmployed
		counted++
	}

	if counted == 0 {
		return domain.Undefined(), domain.Undefined()
	}
	return domain.Some(totalEVA), domain.Div(totalEVA, weightedCapital).Mul(100)
}
