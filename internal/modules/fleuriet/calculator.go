package fleuriet

import (
	"math"

	"github.com/brvalue/fleuriet/internal/domain"
	"github.com/brvalue/fleuriet/internal/modules/reclassification"
)

// daysPerYear is used by the cycle indicators (PMR, PME, PMP).
const daysPerYear = 365.0

// statutoryTaxRate is the Brazilian corporate rate (IRPJ + CSLL) applied
// to the per-period ROIC. The valuation chain uses the effective rate
// instead, derived from the actual tax line.
const statutoryTaxRate = 0.34

// Calculate derives the Fleuriet indicators from a reclassified period.
// Pure function: one input period, one output record.
func Calculate(period reclassification.ReclassifiedPeriod) Indicators {
	ncg := period.CyclicalAssets() - period.CyclicalLiabilities()
	cdg := (period.Equity + period.NonCurrentLiabilities) - period.NonCurrentAssets
	t := cdg - ncg

	ind := Indicators{
		ReferenceDate: period.ReferenceDate,
		NCG:           ncg,
		CDG:           cdg,
		T:             t,
		Structure:     ClassifyStructure(cdg, ncg, t),
	}

	// ILD measures how much of the long-term applications the treasury
	// balance could cover.
	ind.ILD = domain.Div(t, period.NonCurrentAssets+ncg)

	// Cycle indicators in days. COGS is reported as a negative expense,
	// so its magnitude is used.
	ind.ReceivableDays = domain.Div(period.Receivables, period.Revenue).Mul(daysPerYear)
	ind.InventoryDays = domain.Div(period.Inventory, math.Abs(period.COGS)).Mul(daysPerYear)
	ind.PayableDays = domain.Div(period.Payables, math.Abs(period.COGS)).Mul(daysPerYear)

	if pmr, ok1 := ind.ReceivableDays.Float(); ok1 {
		if pme, ok2 := ind.InventoryDays.Float(); ok2 {
			if pmp, ok3 := ind.PayableDays.Float(); ok3 {
				ind.FinancialCycle = domain.Some(pmr + pme - pmp)
			}
		}
	}

	// Period ROIC over operating capital (working capital plus fixed
	// assets), at the statutory rate.
	capitalEmployed := period.Receivables + period.Inventory - period.Payables + period.NonCurrentAssets
	if capitalEmployed > 0 {
		nopat := period.EBIT * (1 - statutoryTaxRate)
		ind.ROIC = domain.Some(nopat / capitalEmployed)
	}

	return ind
}

// ClassifyStructure maps the sign combination of (CDG, NCG, T) to one of
// the six Fleuriet structure types. A zero treasury balance counts as
// non-negative. Combinations where CDG or NCG is exactly zero are not
// covered by the model and come back unclassified.
func ClassifyStructure(cdg, ncg, t float64) StructureType {
	switch {
	case cdg > 0 && ncg > 0 && t >= 0:
		return StructureOptimal
	case cdg > 0 && ncg > 0 && t < 0:
		return StructureHighRisk
	case cdg > 0 && ncg < 0:
		return StructureSolid
	case cdg < 0 && ncg > 0:
		return StructureMaximumRisk
	case cdg < 0 && ncg < 0 && t < 0:
		return StructureWorst
	case cdg < 0 && ncg < 0 && t >= 0:
		return StructureElevatedRisk
	default:
		return StructureUnclassified
	}
}
