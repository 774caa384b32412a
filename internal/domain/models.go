// Package domain provides core domain models and types.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// StatementType distinguishes annual consolidated filings from interim ones.
type StatementType string

const (
	// StatementConsolidated is an annual consolidated filing (CVM "DFP").
	StatementConsolidated StatementType = "DFP"
	// StatementInterim is a quarterly interim filing (CVM "ITR").
	StatementInterim StatementType = "ITR"
)

// StatementRow is one reported account value from a regulatory filing.
// Rows are immutable and sourced from the ingestion layer; one row per
// account per filing period.
type StatementRow struct {
	CompanyID     int           `json:"company_id"` // CVM registration code
	ReferenceDate time.Time     `json:"reference_date"`
	AccountCode   string        `json:"account_code"` // e.g. "1.01.03"
	AccountDesc   string        `json:"account_description"`
	Value         float64       `json:"value"`
	StatementType StatementType `json:"statement_type"`
	Version       int           `json:"version"` // filing version, higher supersedes lower
}

// Validate rejects malformed rows at the ingestion boundary so calculation
// code never has to defend against them.
func (r StatementRow) Validate() error {
	if r.CompanyID <= 0 {
		return fmt.Errorf("statement row: invalid company id %d", r.CompanyID)
	}
	if strings.TrimSpace(r.AccountCode) == "" {
		return fmt.Errorf("statement row: empty account code")
	}
	if r.ReferenceDate.IsZero() {
		return fmt.Errorf("statement row: zero reference date for account %s", r.AccountCode)
	}
	if r.StatementType != StatementConsolidated && r.StatementType != StatementInterim {
		return fmt.Errorf("statement row: unknown statement type %q", r.StatementType)
	}
	return nil
}

// Company identifies a listed company and its static classification data.
// CVMCode is the registry code as published by the regulator, kept as a
// string to preserve leading zeros.
type Company struct {
	Ticker  string `json:"ticker"`
	Name    string `json:"company_name"`
	CVMCode string `json:"cvm_code"`
	Sector  string `json:"sector"`
}

// CompanyFinancialData is the most recent financial snapshot for one
// company, populated once per analysis cycle from storage and treated as
// read-only by the engine.
type CompanyFinancialData struct {
	Company

	// Market data
	MarketCap         float64 `json:"market_cap"`
	StockPrice        float64 `json:"stock_price"`
	SharesOutstanding float64 `json:"shares_outstanding"`

	// Income statement
	Revenue           float64 `json:"revenue"`
	EBIT              float64 `json:"ebit"`
	NetIncome         float64 `json:"net_income"`
	PretaxIncome      float64 `json:"pretax_income"` // trailing sum
	IncomeTax         float64 `json:"income_tax"`    // trailing sum
	FinancialExpenses float64 `json:"financial_expenses"`

	// Balance sheet
	TotalAssets        float64 `json:"total_assets"`
	NonCurrentAssets   float64 `json:"non_current_assets"`
	TotalDebt          float64 `json:"total_debt"`
	Equity             float64 `json:"equity"`
	CurrentAssets      float64 `json:"current_assets"`
	CurrentLiabilities float64 `json:"current_liabilities"`
	Cash               float64 `json:"cash"`
	Receivables        float64 `json:"accounts_receivable"`
	Inventory          float64 `json:"inventory"`
	Payables           float64 `json:"accounts_payable"`
	PPE                float64 `json:"property_plant_equipment"`
	Capex              float64 `json:"capex"`

	CollectedAt time.Time `json:"collected_at"`
}
