package valuation

import (
	"math"

	"github.com/brvalue/fleuriet/internal/domain"
)

const (
	// Effective tax rates above this ceiling come from distorted trailing
	// results (tax credits, one-off reversals) and are clamped to it.
	maxEffectiveTaxRate = 0.45

	// Kd above this ceiling signals distressed debt or a bad interest
	// figure; above it the equity-proxy rule applies instead.
	maxCostOfDebt = 0.35

	// Kd proxy when no usable debt cost exists: debt holders take less
	// risk than shareholders.
	kdEquityProxy = 0.7

	// WACC outside this band means garbage inputs, not a usable discount
	// rate.
	minSaneWACC = 0.01
	maxSaneWACC = 0.40

	// Upside outside this band is treated as a data artifact and dropped.
	minUpsidePct = -99.0
	maxUpsidePct = 1000.0
)

// Calculator derives the valuation chain from fundamentals and market data.
type Calculator struct {
	params Params
}

// NewCalculator creates a calculator with the given market assumptions.
func NewCalculator(params Params) *Calculator {
	return &Calculator{params: params}
}

// EffectiveTaxRate derives the trailing effective tax rate from income tax
// over pretax income. Magnitudes are used because CVM reports the tax line
// as a negative expense. Falls back to the statutory rate when pretax
// income is zero; implausibly high ratios are clamped to the ceiling.
func (c *Calculator) EffectiveTaxRate(incomeTax, pretaxIncome float64) float64 {
	if pretaxIncome == 0 {
		return c.params.TaxRate
	}
	rate := math.Abs(incomeTax / pretaxIncome)
	if rate > maxEffectiveTaxRate {
		return maxEffectiveTaxRate
	}
	return rate
}

// CostOfEquity applies CAPM.
func (c *Calculator) CostOfEquity(beta float64) float64 {
	return c.params.RiskFreeRate + beta*c.params.MarketRiskPremium
}

// CostOfDebt estimates the pre-tax cost of debt from the trailing interest
// expense. Without usable figures, or above the ceiling, it proxies from
// the cost of equity.
func (c *Calculator) CostOfDebt(interestExpense, totalDebt, ke float64) float64 {
	interest := math.Abs(interestExpense)
	if totalDebt > 0 && interest > 0 {
		kd := interest / totalDebt
		if kd <= maxCostOfDebt {
			return kd
		}
	}
	return kdEquityProxy * ke
}

// WACC blends the cost of equity and after-tax cost of debt by market
// value weights. Undefined when total capital is not positive or the
// result falls outside the sanity band.
func (c *Calculator) WACC(marketCap, totalDebt, ke, kd, taxRate float64) domain.Value {
	total := marketCap + totalDebt
	if total <= 0 {
		return domain.Undefined()
	}

	we := marketCap / total
	wd := totalDebt / total
	wacc := we*ke + wd*kd*(1-taxRate)

	if wacc <= minSaneWACC || wacc >= maxSaneWACC {
		return domain.Undefined()
	}
	return domain.Some(wacc)
}

// Calculate runs the full chain for one company.
//
// Working capital here is the valuation variant (receivables + inventory
// minus payables); capital employed adds the non-current assets on top of
// it. ROIC and everything downstream are undefined when capital employed
// is not positive.
func (c *Calculator) Calculate(data domain.CompanyFinancialData, beta float64) Result {
	r := Result{
		Ticker: data.Ticker,
		Beta:   beta,
	}

	r.EffectiveTaxRate = c.EffectiveTaxRate(data.IncomeTax, data.PretaxIncome)
	r.NOPAT = data.EBIT * (1 - r.EffectiveTaxRate)

	r.WorkingCapital = data.Receivables + data.Inventory - data.Payables
	r.CapitalEmployed = r.WorkingCapital + data.NonCurrentAssets

	if r.CapitalEmployed > 0 {
		r.ROIC = domain.Some(r.NOPAT / r.CapitalEmployed)
	}

	r.Ke = c.CostOfEquity(beta)
	r.Kd = c.CostOfDebt(data.FinancialExpenses, data.TotalDebt, r.Ke)
	r.WACC = c.WACC(data.MarketCap, data.TotalDebt, r.Ke, r.Kd, r.EffectiveTaxRate)

	roic, roicOK := r.ROIC.Float()
	wacc, waccOK := r.WACC.Float()

	if roicOK && waccOK {
		spread := roic - wacc
		r.EVA = domain.Some(r.CapitalEmployed * spread)
		r.EVAPct = domain.Some(spread * 100)
	}

	r.FutureWealth = (data.MarketCap + data.TotalDebt) - r.CapitalEmployed

	if eva, ok := r.EVA.Float(); ok && waccOK {
		r.PresentWealth = domain.Some(eva / wacc)
	}

	if pw, ok := r.PresentWealth.Float(); ok {
		efv := r.FutureWealth - pw
		r.EFV = domain.Some(efv)
		r.EFVPct = domain.Div(efv, r.CapitalEmployed).Mul(100)
		r.UpsidePct = upside(efv, data.MarketCap)
	}

	r.IntrinsicValue = c.intrinsicValue(r.CapitalEmployed, r.EVA, r.WACC)

	if iv, ok := r.IntrinsicValue.Float(); ok {
		equity := iv - (data.TotalDebt - data.Cash)
		r.EquityValue = domain.Some(equity)
		r.FairPrice = domain.Div(equity, data.SharesOutstanding)
	}

	return r
}

// intrinsicValue applies the perpetuity-growth variant: the capital base
// plus the EVA stream grown at g and discounted at WACC. Undefined when
// WACC does not exceed the growth rate.
func (c *Calculator) intrinsicValue(capitalEmployed float64, eva, wacc domain.Value) domain.Value {
	evaVal, ok := eva.Float()
	if !ok {
		return domain.Undefined()
	}
	waccVal, ok := wacc.Float()
	if !ok || waccVal <= c.params.PerpetuityGrowth {
		return domain.Undefined()
	}

	g := c.params.PerpetuityGrowth
	return domain.Some(capitalEmployed + evaVal*(1+g)/(waccVal-g))
}

// upside expresses the future value gap relative to the current market
// cap, filtered against obvious data artifacts.
func upside(efv, marketCap float64) domain.Value {
	v := domain.Div(efv, marketCap).Mul(100)
	pct, ok := v.Float()
	if !ok {
		return domain.Undefined()
	}
	if pct < minUpsidePct || pct > maxUpsidePct {
		return domain.Undefined()
	}
	return v
}
