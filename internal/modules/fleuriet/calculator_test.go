package fleuriet

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brvalue/fleuriet/internal/modules/reclassification"
)

func TestClassifyStructure(t *testing.T) {
	tests := []struct {
		name string
		cdg  float64
		ncg  float64
		want StructureType
	}{
		{"positive CDG and NCG, non-negative T", 200, 70, StructureOptimal},
		{"positive CDG and NCG, negative T", 70, 200, StructureHighRisk},
		{"positive CDG, negative NCG", 100, -50, StructureSolid},
		{"negative CDG, positive NCG", -100, 50, StructureMaximumRisk},
		{"negative CDG and NCG, negative T", -200, -70, StructureWorst},
		{"negative CDG and NCG, non-negative T", -70, -200, StructureElevatedRisk},
		{"zero CDG", 0, 50, StructureUnclassified},
		{"zero NCG", 50, 0, StructureUnclassified},
		{"both zero", 0, 0, StructureUnclassified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyStructure(tt.cdg, tt.ncg, tt.cdg-tt.ncg)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyStructureZeroTreasuryIsNonNegative(t *testing.T) {
	// CDG == NCG makes T exactly zero, which still counts as optimal
	assert.Equal(t, StructureOptimal, ClassifyStructure(70, 70, 0))
	assert.Equal(t, StructureElevatedRisk, ClassifyStructure(-70, -70, 0))
}

func TestCalculateWorkingCapitalIndicators(t *testing.T) {
	period := reclassification.ReclassifiedPeriod{
		Receivables:           100,
		Inventory:             50,
		Payables:              80,
		Equity:                500,
		NonCurrentLiabilities: 100,
		NonCurrentAssets:      400,
		Revenue:               1000,
		COGS:                  -600,
	}

	ind := Calculate(period)

	assert.Equal(t, 70.0, ind.NCG)
	assert.Equal(t, 200.0, ind.CDG)
	assert.Equal(t, 130.0, ind.T)
	assert.Equal(t, StructureOptimal, ind.Structure)

	// T = CDG - NCG must hold exactly
	assert.InDelta(t, ind.CDG-ind.NCG, ind.T, 1e-9)
}

func TestCalculateCycleIndicators(t *testing.T) {
	period := reclassification.ReclassifiedPeriod{
		Receivables: 100,
		Inventory:   60,
		Payables:    30,
		Revenue:     1000,
		COGS:        -365, // negative expense, magnitude used
	}

	ind := Calculate(period)

	pmr, ok := ind.ReceivableDays.Float()
	assert.True(t, ok)
	assert.InDelta(t, 36.5, pmr, 1e-9)

	pme, ok := ind.InventoryDays.Float()
	assert.True(t, ok)
	assert.InDelta(t, 60.0, pme, 1e-9)

	pmp, ok := ind.PayableDays.Float()
	assert.True(t, ok)
	assert.InDelta(t, 30.0, pmp, 1e-9)

	cycle, ok := ind.FinancialCycle.Float()
	assert.True(t, ok)
	assert.InDelta(t, 66.5, cycle, 1e-9)
}

func TestCalculatePeriodROIC(t *testing.T) {
	period := reclassification.ReclassifiedPeriod{
		Receivables:      200,
		Inventory:        100,
		Payables:         50,
		NonCurrentAssets: 750,
		EBIT:             150,
	}

	// NOPAT = 150 * 0.66 = 99 over capital employed 1000
	roic, ok := Calculate(period).ROIC.Float()
	assert.True(t, ok)
	assert.InDelta(t, 0.099, roic, 1e-9)
}

func TestCalculateROICUndefinedWithoutCapital(t *testing.T) {
	ind := Calculate(reclassification.ReclassifiedPeriod{
		Payables: 500,
		EBIT:     100,
	})

	assert.False(t, ind.ROIC.Valid(), "negative capital employed has no ROIC")
}

func TestCalculateUndefinedOnZeroDenominators(t *testing.T) {
	ind := Calculate(reclassification.ReclassifiedPeriod{
		Receivables: 100,
		Inventory:   50,
	})

	assert.False(t, ind.ReceivableDays.Valid(), "no revenue means no receivable days")
	assert.False(t, ind.InventoryDays.Valid(), "no COGS means no inventory days")
	assert.False(t, ind.FinancialCycle.Valid())
}

func TestCalculateIsIdempotent(t *testing.T) {
	period := reclassification.ReclassifiedPeriod{
		Receivables:           100,
		Inventory:             50,
		Payables:              80,
		Equity:                500,
		NonCurrentLiabilities: 100,
		NonCurrentAssets:      400,
		Revenue:               1000,
		COGS:                  -600,
	}

	first := Calculate(period)
	second := Calculate(period)
	assert.Equal(t, first, second)
}

func TestStructureLabels(t *testing.T) {
	assert.Equal(t, "optimal", StructureOptimal.Label())
	assert.Equal(t, "maximum risk", StructureMaximumRisk.Label())
	assert.Equal(t, "unclassified", StructureUnclassified.Label())
}
