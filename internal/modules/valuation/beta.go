package valuation

import (
	"gonum.org/v1/gonum/stat"
)

const (
	// Minimum price observations per series before a regression is
	// attempted, and minimum paired returns for a usable slope.
	minPriceRows     = 60
	minPairedReturns = 50
	defaultBeta      = 1.0
	betaShrinkSlope  = 0.67
	betaShrinkAnchor = 0.33
)

// EstimateBeta regresses the stock's simple returns against the benchmark
// index returns and shrinks the slope toward 1.0 (Blume adjustment).
// Returns the neutral default when the history is too short to trust.
func EstimateBeta(stockPrices, benchmarkPrices []float64) float64 {
	if len(stockPrices) < minPriceRows || len(benchmarkPrices) < minPriceRows {
		return defaultBeta
	}

	stockReturns, benchReturns := pairedReturns(stockPrices, benchmarkPrices)
	if len(stockReturns) < minPairedReturns {
		return defaultBeta
	}

	// Slope of stock returns on benchmark returns
	_, slope := stat.LinearRegression(benchReturns, stockReturns, nil, false)
	if slope != slope { // NaN from a degenerate series
		return defaultBeta
	}

	return betaShrinkSlope*slope + betaShrinkAnchor*defaultBeta
}

// pairedReturns converts both price series into simple returns, truncated
// to the shorter length and skipping pairs with a non-positive base price.
func pairedReturns(stock, bench []float64) (stockReturns, benchReturns []float64) {
	n := len(stock)
	if len(bench) < n {
		n = len(bench)
	}

	stockReturns = make([]float64, 0, n-1)
	benchReturns = make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		if stock[i-1] <= 0 || bench[i-1] <= 0 {
			continue
		}
		stockReturns = append(stockReturns, stock[i]/stock[i-1]-1)
		benchReturns = append(benchReturns, bench[i]/bench[i-1]-1)
	}
	return stockReturns, benchReturns
}
