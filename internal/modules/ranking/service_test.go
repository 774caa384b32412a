package ranking

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brvalue/fleuriet/internal/domain"
)

func metrics(ticker string, evaPct, efvPct, upsidePct float64) CompanyMetrics {
	return CompanyMetrics{
		Ticker:    ticker,
		EVAPct:    domain.Some(evaPct),
		EFVPct:    domain.Some(efvPct),
		UpsidePct: domain.Some(upsidePct),
	}
}

func newTestService() *Service {
	return NewService(zerolog.Nop())
}

func TestRankByDescending(t *testing.T) {
	svc := newTestService()
	companies := []CompanyMetrics{
		metrics("AAA3", 5, 0, 0),
		metrics("BBB3", 15, 0, 0),
		metrics("CCC3", 10, 0, 0),
	}

	entries := svc.RankBy(companies, MetricEVAPct)
	require.Len(t, entries, 3)
	assert.Equal(t, "BBB3", entries[0].Ticker)
	assert.Equal(t, "CCC3", entries[1].Ticker)
	assert.Equal(t, "AAA3", entries[2].Ticker)
}

func TestRankByExcludesUndefined(t *testing.T) {
	svc := newTestService()
	undefinedEVA := CompanyMetrics{Ticker: "UND3"}
	companies := []CompanyMetrics{metrics("AAA3", 5, 0, 0), undefinedEVA}

	entries := svc.RankBy(companies, MetricEVAPct)
	require.Len(t, entries, 1)
	assert.Equal(t, "AAA3", entries[0].Ticker)
}

func TestCombinedScore(t *testing.T) {
	m := metrics("AAA3", 10, 20, 30)
	assert.InDelta(t, 0.4*10+0.4*20+0.2*30, CombinedScore(m), 1e-9)
}

func TestCombinedScoreUndefinedContributesZero(t *testing.T) {
	m := CompanyMetrics{Ticker: "AAA3", EVAPct: domain.Some(10)}
	assert.InDelta(t, 4.0, CombinedScore(m), 1e-9)
}

func TestCompositeRankingOrdersByWeightedScaledScore(t *testing.T) {
	svc := newTestService()
	companies := []CompanyMetrics{
		metrics("LOW3", 0, 0, 0),
		metrics("MID3", 5, 5, 5),
		metrics("TOP3", 10, 10, 10),
	}

	entries := svc.CompositeRanking(companies, DefaultCriteria())
	require.Len(t, entries, 3)

	assert.Equal(t, "TOP3", entries[0].Ticker)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "MID3", entries[1].Ticker)
	assert.Equal(t, "LOW3", entries[2].Ticker)
	assert.Equal(t, 3, entries[2].Rank)

	// Scaling is fit across the collection: the best company scales to 1
	// on every defined column
	assert.Greater(t, entries[0].Score, entries[1].Score)
	assert.Greater(t, entries[1].Score, entries[2].Score)
}

func TestCompositeRankingNormalizesWeights(t *testing.T) {
	svc := newTestService()
	companies := []CompanyMetrics{
		metrics("AAA3", 0, 0, 0),
		metrics("BBB3", 10, 10, 10),
	}

	// Same proportions at a different scale must produce the same order
	// and scores
	a := svc.CompositeRanking(companies, Criteria{ValueCreation: 3, FutureValue: 3, Upside: 2, Profitability: 1, Liquidity: 1})
	b := svc.CompositeRanking(companies, Criteria{ValueCreation: 0.3, FutureValue: 0.3, Upside: 0.2, Profitability: 0.1, Liquidity: 0.1})

	require.Len(t, a, 2)
	assert.Equal(t, a[0].Ticker, b[0].Ticker)
	assert.InDelta(t, a[0].Score, b[0].Score, 1e-9)
}

func TestFindOpportunities(t *testing.T) {
	svc := newTestService()
	companies := []CompanyMetrics{
		metrics("CRE3", 5, -1, 0),   // value creator only
		metrics("GRO3", -2, 8, 0),   // growth play only
		metrics("CHE3", -2, -1, 45), // undervalued only
		metrics("ALL3", 9, 9, 50),   // everything
		metrics("NON3", -5, -5, 5),  // nothing
	}

	opp := svc.FindOpportunities(companies)

	assert.ElementsMatch(t, []string{"CRE3", "ALL3"}, opp.ValueCreators)
	assert.ElementsMatch(t, []string{"GRO3", "ALL3"}, opp.GrowthPlays)
	assert.ElementsMatch(t, []string{"CHE3", "ALL3"}, opp.Undervalued)
	require.NotEmpty(t, opp.Best)
	assert.Equal(t, "ALL3", opp.Best[0].Ticker)
}

func TestFindOpportunitiesBestCapsAtFive(t *testing.T) {
	svc := newTestService()
	var companies []CompanyMetrics
	for _, ticker := range []string{"A3", "B3", "C3", "D3", "E3", "F3", "G3"} {
		companies = append(companies, metrics(ticker, 1, 1, 1))
	}

	opp := svc.FindOpportunities(companies)
	assert.Len(t, opp.Best, 5)
}

func TestSectorRankings(t *testing.T) {
	svc := newTestService()
	companies := []CompanyMetrics{
		metrics("VALE3", 10, 0, 0),
		metrics("PETR4", 20, 0, 0),
		metrics("PETR3", 5, 0, 0),
	}

	bySector := svc.SectorRankings(companies)

	oilGas := bySector["Oil & Gas"]
	require.Len(t, oilGas, 2)
	assert.Equal(t, "PETR4", oilGas[0].Ticker)
	assert.Equal(t, "PETR3", oilGas[1].Ticker)
	assert.Len(t, bySector["Mining"], 1)
}

func TestSectorForPrefersExplicitSector(t *testing.T) {
	m := CompanyMetrics{Ticker: "PETR4", Sector: "Energy"}
	assert.Equal(t, "Energy", SectorFor(m))
	assert.Equal(t, "Oil & Gas", SectorFor(CompanyMetrics{Ticker: "PETR4"}))
	assert.Equal(t, "Other", SectorFor(CompanyMetrics{Ticker: "ZZZZ9"}))
}
