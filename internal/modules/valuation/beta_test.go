package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// linearSeries builds a price series that moves perfectly with the factor
// applied to the benchmark's daily return.
func linearSeries(n int, base, dailyReturn float64) []float64 {
	prices := make([]float64, n)
	prices[0] = base
	for i := 1; i < n; i++ {
		prices[i] = prices[i-1] * (1 + dailyReturn)
	}
	return prices
}

func TestEstimateBetaPerfectCorrelation(t *testing.T) {
	n := 100
	bench := make([]float64, n)
	bench[0] = 100
	for i := 1; i < n; i++ {
		// Alternate returns so the regression has variance
		r := 0.01
		if i%2 == 0 {
			r = -0.005
		}
		bench[i] = bench[i-1] * (1 + r)
	}

	// Identical return series: raw slope 1.0, shrinkage keeps it at 1.0
	beta := EstimateBeta(bench, bench)
	assert.InDelta(t, 1.0, beta, 1e-6)
}

func TestEstimateBetaAmplifiedStock(t *testing.T) {
	n := 100
	bench := make([]float64, n)
	stock := make([]float64, n)
	bench[0], stock[0] = 100, 100
	for i := 1; i < n; i++ {
		// Alternate benchmark returns so the regression has variance
		r := 0.01
		if i%2 == 0 {
			r = -0.005
		}
		bench[i] = bench[i-1] * (1 + r)
		stock[i] = stock[i-1] * (1 + 2*r)
	}

	// Raw slope 2.0, shrunk: 0.67*2 + 0.33 = 1.67
	beta := EstimateBeta(stock, bench)
	assert.InDelta(t, 1.67, beta, 1e-3)
}

func TestEstimateBetaInsufficientHistory(t *testing.T) {
	short := linearSeries(30, 100, 0.01)
	long := linearSeries(100, 100, 0.01)

	assert.Equal(t, 1.0, EstimateBeta(short, long))
	assert.Equal(t, 1.0, EstimateBeta(long, short))
	assert.Equal(t, 1.0, EstimateBeta(nil, nil))
}

func TestEstimateBetaSkipsNonPositivePrices(t *testing.T) {
	stock := linearSeries(100, 100, 0.01)
	bench := linearSeries(100, 100, 0.01)

	// Corrupt most of the benchmark series; too few pairs remain
	for i := 10; i < 70; i++ {
		bench[i] = 0
	}

	assert.Equal(t, 1.0, EstimateBeta(stock, bench))
}
