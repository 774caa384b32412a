package reclassification

import (
	"time"

	"github.com/brvalue/fleuriet/internal/domain"
)

// ReclassifiedPeriod holds the summed value of each account category for
// one company and one reference period.
type ReclassifiedPeriod struct {
	ReferenceDate time.Time `json:"reference_date"`

	TotalAssets         float64 `json:"total_assets"`
	TreasuryAssets      float64 `json:"treasury_assets"`
	Receivables         float64 `json:"receivables"`
	Inventory           float64 `json:"inventory"`
	OtherCyclicalAssets float64 `json:"other_cyclical_assets"`
	NonCurrentAssets    float64 `json:"non_current_assets"`

	OtherCyclicalLiabilities float64 `json:"other_cyclical_liabilities"`
	Payables                 float64 `json:"payables"`
	TreasuryLiabilities      float64 `json:"treasury_liabilities"`
	NonCurrentLiabilities    float64 `json:"non_current_liabilities"`
	Equity                   float64 `json:"equity"`

	Revenue           float64 `json:"revenue"`
	COGS              float64 `json:"cogs"`
	EBIT              float64 `json:"ebit"`
	FinancialExpenses float64 `json:"financial_expenses"`
	PretaxIncome      float64 `json:"pretax_income"`
	IncomeTax         float64 `json:"income_tax"`
	NetIncome         float64 `json:"net_income"`

	Other float64 `json:"other"`
}

// CyclicalAssets returns the operating current assets tied to the business
// cycle.
func (p ReclassifiedPeriod) CyclicalAssets() float64 {
	return p.Receivables + p.Inventory + p.OtherCyclicalAssets
}

// CyclicalLiabilities returns the operating current liabilities tied to the
// business cycle.
func (p ReclassifiedPeriod) CyclicalLiabilities() float64 {
	return p.Payables + p.OtherCyclicalLiabilities
}

// ReclassifyPeriod maps statement rows for one company and one period into
// category sums. It is a pure function: rows are read, never mutated.
//
// When the same account code appears more than once (a restated filing),
// only the preferred row is kept: consolidated statements win over interim
// ones, then the highest filing version wins.
func ReclassifyPeriod(rows []domain.StatementRow) ReclassifiedPeriod {
	// Deduplicate by account code first
	preferred := make(map[string]domain.StatementRow, len(rows))
	for _, row := range rows {
		existing, ok := preferred[row.AccountCode]
		if !ok || prefers(row, existing) {
			preferred[row.AccountCode] = row
		}
	}

	var period ReclassifiedPeriod
	for _, row := range preferred {
		if period.ReferenceDate.IsZero() || row.ReferenceDate.After(period.ReferenceDate) {
			period.ReferenceDate = row.ReferenceDate
		}
		period.add(Classify(row.AccountCode), row.Value)
	}

	return period
}

// prefers reports whether candidate should replace current for the same
// account code.
func prefers(candidate, current domain.StatementRow) bool {
	if candidate.StatementType != current.StatementType {
		return candidate.StatementType == domain.StatementConsolidated
	}
	return candidate.Version > current.Version
}

func (p *ReclassifiedPeriod) add(category Category, value float64) {
	switch category {
	case CategoryTotalAssets:
		p.TotalAssets += value
	case CategoryTreasuryAssets:
		p.TreasuryAssets += value
	case CategoryReceivables:
		p.Receivables += value
	case CategoryInventory:
		p.Inventory += value
	case CategoryOtherCyclicalAssets:
		p.OtherCyclicalAssets += value
	case CategoryNonCurrentAssets:
		p.NonCurrentAssets += value
	case CategoryOtherCyclicalLiabilities:
		p.OtherCyclicalLiabilities += value
	case CategoryPayables:
		p.Payables += value
	case CategoryTreasuryLiabilities:
		p.TreasuryLiabilities += value
	case CategoryNonCurrentLiabilities:
		p.NonCurrentLiabilities += value
	case CategoryEquity:
		p.Equity += value
	case CategoryRevenue:
		p.Revenue += value
	case CategoryCOGS:
		p.COGS += value
	case CategoryEBIT:
		p.EBIT += value
	case CategoryFinancialExpenses:
		p.FinancialExpenses += value
	case CategoryPretaxIncome:
		p.PretaxIncome += value
	case CategoryIncomeTax:
		p.IncomeTax += value
	case CategoryNetIncome:
		p.NetIncome += value
	default:
		p.Other += value
	}
}
