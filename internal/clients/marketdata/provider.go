// Package marketdata defines the market data provider boundary and its
// HTTP and caching implementations.
package marketdata

import (
	"context"
	"time"
)

// Quote is a point-in-time market snapshot for one ticker.
type Quote struct {
	Ticker            string    `json:"ticker"`
	Price             float64   `json:"price"`
	MarketCap         float64   `json:"market_cap"`
	SharesOutstanding float64   `json:"shares_outstanding"`
	TotalDebt         float64   `json:"total_debt"`
	Cash              float64   `json:"cash"`
	CollectedAt       time.Time `json:"collected_at"`
}

// PricePoint is one daily close.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Provider supplies market data to the analysis engine. It is injected
// so the engine can run against deterministic fixtures in tests; the
// run cache decorator scopes benchmark fetches to one batch run.
type Provider interface {
	// Snapshot returns the current quote for a ticker.
	Snapshot(ctx context.Context, ticker string) (Quote, error)

	// History returns daily closes for a ticker from a start date
	// onward, oldest first.
	History(ctx context.Context, ticker string, from time.Time) ([]PricePoint, error)
}

// Closes extracts the close column from a price series.
func Closes(points []PricePoint) []float64 {
	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Close
	}
	return closes
}
