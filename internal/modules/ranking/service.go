package ranking

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/brvalue/fleuriet/internal/domain"
)

// Combined score weights for the simple opportunity score. Undefined
// metrics contribute nothing.
const (
	combinedWeightEVA    = 0.4
	combinedWeightEFV    = 0.4
	combinedWeightUpside = 0.2
)

// undervaluedThresholdPct marks the upside above which a company counts
// as undervalued.
const undervaluedThresholdPct = 20.0

// Service ranks, buckets and clusters company metrics.
type Service struct {
	log zerolog.Logger
}

// NewService creates a ranking service.
func NewService(log zerolog.Logger) *Service {
	return &Service{log: log.With().Str("component", "ranking").Logger()}
}

// metricValue extracts a named metric from a company record.
func metricValue(m CompanyMetrics, metric string) domain.Value {
	switch metric {
	case MetricEVAPct:
		return m.EVAPct
	case MetricEFVPct:
		return m.EFVPct
	case MetricUpsidePct:
		return m.UpsidePct
	case MetricROIC:
		return m.ROIC
	case MetricLiquidity:
		return m.Liquidity
	default:
		return domain.Undefined()
	}
}

// RankBy sorts companies descending by a single metric. Companies whose
// metric is undefined are excluded, not ranked last.
func (s *Service) RankBy(companies []CompanyMetrics, metric string) []Entry {
	entries := make([]Entry, 0, len(companies))
	for _, m := range companies {
		if v, ok := metricValue(m, metric).Float(); ok {
			entries = append(entries, Entry{Ticker: m.Ticker, Value: v})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value > entries[j].Value
	})
	return entries
}

// CombinedScore blends EVA%, EFV% and upside into a single opportunity
// score. Undefined metrics count as zero contribution.
func CombinedScore(m CompanyMetrics) float64 {
	return combinedWeightEVA*m.EVAPct.Or(0) +
		combinedWeightEFV*m.EFVPct.Or(0) +
		combinedWeightUpside*m.UpsidePct.Or(0)
}

// CompositeRanking scores companies with the weighted criteria over
// min-max scaled metric columns. Scalers are fit across the whole
// collection; a company's undefined metric scales to zero for that
// column.
func (s *Service) CompositeRanking(companies []CompanyMetrics, criteria Criteria) []CompositeEntry {
	if len(companies) == 0 {
		return nil
	}

	w := criteria.Normalized()

	columns := []struct {
		metric string
		weight float64
	}{
		{MetricEVAPct, w.ValueCreation},
		{MetricEFVPct, w.FutureValue},
		{MetricUpsidePct, w.Upside},
		{MetricROIC, w.Profitability},
		{MetricLiquidity, w.Liquidity},
	}

	scalers := make(map[string]minMaxScaler, len(columns))
	for _, col := range columns {
		var values []float64
		for _, m := range companies {
			if v, ok := metricValue(m, col.metric).Float(); ok {
				values = append(values, v)
			}
		}
		scalers[col.metric] = fitScaler(values)
	}

	entries := make([]CompositeEntry, 0, len(companies))
	for _, m := range companies {
		score := 0.0
		for _, col := range columns {
			if v, ok := metricValue(m, col.metric).Float(); ok {
				score += col.weight * scalers[col.metric].scale(v)
			}
		}
		entries = append(entries, CompositeEntry{Ticker: m.Ticker, Score: score})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// FindOpportunities buckets companies by what makes them attractive and
// picks the top five by combined score.
func (s *Service) FindOpportunities(companies []CompanyMetrics) Opportunities {
	var opp Opportunities

	scored := make([]Entry, 0, len(companies))
	for _, m := range companies {
		if v, ok := m.EVAPct.Float(); ok && v > 0 {
			opp.ValueCreators = append(opp.ValueCreators, m.Ticker)
		}
		if v, ok := m.EFVPct.Float(); ok && v > 0 {
			opp.GrowthPlays = append(opp.GrowthPlays, m.Ticker)
		}
		if v, ok := m.UpsidePct.Float(); ok && v > undervaluedThresholdPct {
			opp.Undervalued = append(opp.Undervalued, m.Ticker)
		}
		scored = append(scored, Entry{Ticker: m.Ticker, Value: CombinedScore(m)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Value > scored[j].Value
	})
	if len(scored) > 5 {
		scored = scored[:5]
	}
	opp.Best = scored

	return opp
}

// SectorRankings produces per-sector sub-rankings by combined score.
func (s *Service) SectorRankings(companies []CompanyMetrics) map[string][]Entry {
	bySector := make(map[string][]Entry)
	for _, m := range companies {
		sector := SectorFor(m)
		bySector[sector] = append(bySector[sector], Entry{
			Ticker: m.Ticker,
			Value:  CombinedScore(m),
		})
	}

	for sector := range bySector {
		entries := bySector[sector]
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Value > entries[j].Value
		})
		bySector[sector] = entries
	}
	return bySector
}
