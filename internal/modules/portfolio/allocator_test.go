package portfolio

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brvalue/fleuriet/internal/domain"
	"github.com/brvalue/fleuriet/internal/modules/ranking"
)

func newTestAllocator() *Allocator {
	return NewAllocator(zerolog.Nop())
}

func company(ticker string, evaPct, efvPct, upsidePct float64) ranking.CompanyMetrics {
	return ranking.CompanyMetrics{
		Ticker:    ticker,
		EVAPct:    domain.Some(evaPct),
		EFVPct:    domain.Some(efvPct),
		UpsidePct: domain.Some(upsidePct),
	}
}

func TestAllocateProportionalWeights(t *testing.T) {
	a := newTestAllocator()

	// Scores: AAA3 = 10 + 1.5*10 + 5 = 30; BBB3 = 4 + 1.5*2 + 3 = 10
	companies := []ranking.CompanyMetrics{
		company("AAA3", 10, 10, 5),
		company("BBB3", 4, 2, 3),
	}

	alloc := a.Allocate(companies)
	require.Len(t, alloc.Positions, 2)

	assert.Equal(t, "AAA3", alloc.Positions[0].Ticker)
	assert.InDelta(t, 0.75, alloc.Positions[0].Weight, 1e-9)
	assert.Equal(t, "BBB3", alloc.Positions[1].Ticker)
	assert.InDelta(t, 0.25, alloc.Positions[1].Weight, 1e-9)

	sum := alloc.Positions[0].Weight + alloc.Positions[1].Weight
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestAllocateExcludesNonPositiveScores(t *testing.T) {
	a := newTestAllocator()
	companies := []ranking.CompanyMetrics{
		company("GOOD3", 10, 10, 10),
		company("BAD3", -10, -10, -10),
	}

	alloc := a.Allocate(companies)
	require.Len(t, alloc.Positions, 1)
	assert.Equal(t, "GOOD3", alloc.Positions[0].Ticker)
	assert.InDelta(t, 1.0, alloc.Positions[0].Weight, 1e-12)
}

func TestAllocateEmptyWhenNoPositiveScores(t *testing.T) {
	a := newTestAllocator()
	alloc := a.Allocate([]ranking.CompanyMetrics{company("BAD3", -1, -1, -1)})

	assert.Empty(t, alloc.Positions)
	assert.False(t, alloc.EVA.Valid())
	assert.False(t, alloc.EVAPct.Valid())
}

func TestAllocateEqualWeightsWhenAllScoresZero(t *testing.T) {
	a := newTestAllocator()
	companies := []ranking.CompanyMetrics{
		company("FLAT3", 0, 0, 0),
		company("FLAT4", 0, 0, 0),
		company("BAD3", -1, -1, -1),
	}

	alloc := a.Allocate(companies)
	require.Len(t, alloc.Positions, 2)

	for _, p := range alloc.Positions {
		assert.Zero(t, p.Score)
		assert.InDelta(t, 0.5, p.Weight, 1e-12)
	}
}

func TestAllocatePortfolioEVA(t *testing.T) {
	a := newTestAllocator()

	c1 := company("AAA3", 10, 10, 5) // score 30
	c1.EVA = domain.Some(300)
	c1.CapitalEmployed = 1000

	c2 := company("BBB3", 4, 2, 3) // score 10
	c2.EVA = domain.Some(100)
	c2.CapitalEmployed = 2000

	alloc := a.Allocate([]ranking.CompanyMetrics{c1, c2})

	// weights 0.75 / 0.25
	wantEVA := 0.75*300 + 0.25*100
	wantCapital := 0.75*1000 + 0.25*2000

	eva, ok := alloc.EVA.Float()
	require.True(t, ok)
	assert.InDelta(t, wantEVA, eva, 1e-9)

	evaPct, ok := alloc.EVAPct.Float()
	require.True(t, ok)
	assert.InDelta(t, wantEVA/wantCapital*100, evaPct, 1e-9)
}

func TestAllocatePortfolioEVASkipsInvalidInputs(t *testing.T) {
	a := newTestAllocator()

	valid := company("OK3", 10, 10, 10)
	valid.EVA = domain.Some(200)
	valid.CapitalEmployed = 1000

	noEVA := company("NOEVA3", 10, 10, 10)
	noEVA.CapitalEmployed = 1000

	noCapital := company("NOCE3", 10, 10, 10)
	noCapital.EVA = domain.Some(500)

	alloc := a.Allocate([]ranking.CompanyMetrics{valid, noEVA, noCapital})
	require.Len(t, alloc.Positions, 3)

	// Only the valid company contributes to the aggregate
	eva, ok := alloc.EVA.Float()
	require.True(t, ok)

	var validWeight float64
	for _, p := range alloc.Positions {
		if p.Ticker == "OK3" {
			validWeight = p.Weight
		}
	}
	assert.InDelta(t, validWeight*200, eva, 1e-9)
}
