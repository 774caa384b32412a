package reclassification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/brvalue/fleuriet/internal/domain"
)

func row(code string, value float64) domain.StatementRow {
	return domain.StatementRow{
		CompanyID:     1,
		ReferenceDate: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		AccountCode:   code,
		Value:         value,
		StatementType: domain.StatementConsolidated,
		Version:       1,
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		code string
		want Category
	}{
		{"total assets", "1", CategoryTotalAssets},
		{"cash", "1.01.01", CategoryTreasuryAssets},
		{"financial investments", "1.01.02", CategoryTreasuryAssets},
		{"receivables", "1.01.03", CategoryReceivables},
		{"inventory", "1.01.04", CategoryInventory},
		{"non-current assets", "1.02", CategoryNonCurrentAssets},
		{"suppliers", "2.01.02", CategoryPayables},
		{"short-term debt", "2.01.04", CategoryTreasuryLiabilities},
		{"non-current liabilities", "2.02", CategoryNonCurrentLiabilities},
		{"equity", "2.03", CategoryEquity},
		{"revenue", "3.01", CategoryRevenue},
		{"income tax", "3.10", CategoryIncomeTax},
		{"detail below mapped level", "1.01.03.01", CategoryOther},
		{"long-term debt detail", "2.02.01", CategoryOther},
		{"unmapped code", "7.01", CategoryOther},
		{"empty code", "", CategoryOther},
		{"surrounding whitespace", " 1.01.04 ", CategoryInventory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.code))
		})
	}
}

func TestReclassifyPeriodSingleRow(t *testing.T) {
	period := ReclassifyPeriod([]domain.StatementRow{row("1.01.03", 150.0)})

	assert.Equal(t, 150.0, period.Receivables)
	assert.Zero(t, period.Inventory)
	assert.Zero(t, period.Payables)
	assert.Zero(t, period.TotalAssets)
	assert.Zero(t, period.Other)
}

func TestReclassifyPeriodSumsSameCategory(t *testing.T) {
	period := ReclassifyPeriod([]domain.StatementRow{
		row("1.01.01", 100.0), // cash
		row("1.01.02", 40.0),  // financial investments
		row("1.01.06", 10.0),
		row("1.01.07", 5.0),
	})

	assert.Equal(t, 140.0, period.TreasuryAssets)
	assert.Equal(t, 15.0, period.OtherCyclicalAssets)
}

func TestReclassifyPeriodDeduplication(t *testing.T) {
	t.Run("consolidated wins over interim", func(t *testing.T) {
		interim := row("3.01", 500.0)
		interim.StatementType = domain.StatementInterim
		interim.Version = 9

		consolidated := row("3.01", 800.0)
		consolidated.Version = 1

		period := ReclassifyPeriod([]domain.StatementRow{interim, consolidated})
		assert.Equal(t, 800.0, period.Revenue)
	})

	t.Run("latest version wins within same statement type", func(t *testing.T) {
		v1 := row("3.01", 500.0)
		v2 := row("3.01", 520.0)
		v2.Version = 2

		period := ReclassifyPeriod([]domain.StatementRow{v2, v1})
		assert.Equal(t, 520.0, period.Revenue)
	})
}

func TestCyclicalAggregates(t *testing.T) {
	period := ReclassifiedPeriod{
		Receivables:              100,
		Inventory:                50,
		OtherCyclicalAssets:      20,
		Payables:                 80,
		OtherCyclicalLiabilities: 30,
	}

	assert.Equal(t, 170.0, period.CyclicalAssets())
	assert.Equal(t, 110.0, period.CyclicalLiabilities())
}
