package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingProvider counts upstream calls.
type countingProvider struct {
	snapshotCalls int
	historyCalls  int
}

func (p *countingProvider) Snapshot(_ context.Context, ticker string) (Quote, error) {
	p.snapshotCalls++
	return Quote{Ticker: ticker, Price: 10}, nil
}

func (p *countingProvider) History(_ context.Context, _ string, _ time.Time) ([]PricePoint, error) {
	p.historyCalls++
	return []PricePoint{{Date: time.Now(), Close: 100}}, nil
}

func TestRunCacheFetchesOncePerRun(t *testing.T) {
	upstream := &countingProvider{}
	cache := NewRunCache(upstream)
	ctx := context.Background()
	from := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := cache.Snapshot(ctx, "IBOV")
		require.NoError(t, err)
		_, err = cache.History(ctx, "IBOV", from)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, upstream.snapshotCalls)
	assert.Equal(t, 1, upstream.historyCalls)
}

func TestRunCacheKeysByTickerAndStart(t *testing.T) {
	upstream := &countingProvider{}
	cache := NewRunCache(upstream)
	ctx := context.Background()

	_, err := cache.History(ctx, "IBOV", time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = cache.History(ctx, "IBOV", time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = cache.History(ctx, "WEGE3", time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 3, upstream.historyCalls)
}

func TestClosesExtraction(t *testing.T) {
	points := []PricePoint{{Close: 1}, {Close: 2}, {Close: 3}}
	assert.Equal(t, []float64{1, 2, 3}, Closes(points))
}
