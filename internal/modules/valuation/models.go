// Package valuation computes cost of capital, economic value added and
// intrinsic value estimates for a company.
package valuation

import (
	"github.com/brvalue/fleuriet/internal/domain"
)

// Params holds the market assumptions behind the valuation. The risk-free
// rate is injected per run; the rest are business constants.
type Params struct {
	TaxRate           float64 // statutory IR+CSLL rate, used when the effective rate is unusable
	RiskFreeRate      float64
	MarketRiskPremium float64
	PerpetuityGrowth  float64
}

// Result holds the full valuation chain for one company. Ratios that
// depend on an undefined denominator carry no value: downstream consumers
// exclude them rather than treating them as zero.
type Result struct {
	Ticker string `json:"ticker"`

	EffectiveTaxRate float64 `json:"effective_tax_rate"`
	NOPAT            float64 `json:"nopat"`
	WorkingCapital   float64 `json:"working_capital"`
	CapitalEmployed  float64 `json:"capital_employed"`
	Beta             float64 `json:"beta"`

	ROIC domain.Value `json:"roic"`
	Ke   float64      `json:"ke"`
	Kd   float64      `json:"kd"`
	WACC domain.Value `json:"wacc"`

	EVA    domain.Value `json:"eva"`
	EVAPct domain.Value `json:"eva_pct"`

	PresentWealth domain.Value `json:"present_wealth"`
	FutureWealth  float64      `json:"future_wealth"`
	EFV           domain.Value `json:"efv"`
	EFVPct        domain.Value `json:"efv_pct"`

	IntrinsicValue domain.Value `json:"intrinsic_value"`
	EquityValue    domain.Value `json:"equity_value"`
	FairPrice      domain.Value `json:"fair_price"`
	UpsidePct      domain.Value `json:"upside_pct"`
}
