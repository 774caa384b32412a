package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/brvalue/fleuriet/internal/clients/retry"
)

// HTTPClient implements Provider against a JSON quote service.
type HTTPClient struct {
	baseURL     string
	client      *http.Client
	retryPolicy retry.Policy
	log         zerolog.Logger
}

// NewHTTPClient creates a market data client for the given base URL.
func NewHTTPClient(baseURL string, timeout time.Duration, policy retry.Policy, log zerolog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		client:      &http.Client{Timeout: timeout},
		retryPolicy: policy,
		log:         log.With().Str("client", "marketdata").Logger(),
	}
}

type quoteResponse struct {
	Ticker            string  `json:"ticker"`
	Price             float64 `json:"price"`
	MarketCap         float64 `json:"market_cap"`
	SharesOutstanding float64 `json:"shares_outstanding"`
	TotalDebt         float64 `json:"total_debt"`
	Cash              float64 `json:"cash"`
}

type historyResponse struct {
	Prices []struct {
		Date  string  `json:"date"`
		Close float64 `json:"close"`
	} `json:"prices"`
}

// Snapshot fetches the current quote for a ticker.
func (c *HTTPClient) Snapshot(ctx context.Context, ticker string) (Quote, error) {
	endpoint := fmt.Sprintf("%s/quote/%s", c.baseURL, url.PathEscape(strings.ToUpper(ticker)))

	var parsed quoteResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return Quote{}, fmt.Errorf("quote fetch for %s failed: %w", ticker, err)
	}

	return Quote{
		Ticker:            strings.ToUpper(ticker),
		Price:             parsed.Price,
		MarketCap:         parsed.MarketCap,
		SharesOutstanding: parsed.SharesOutstanding,
		TotalDebt:         parsed.TotalDebt,
		Cash:              parsed.Cash,
		CollectedAt:       time.Now().UTC(),
	}, nil
}

// History fetches daily closes for a ticker from a start date onward.
func (c *HTTPClient) History(ctx context.Context, ticker string, from time.Time) ([]PricePoint, error) {
	endpoint := fmt.Sprintf("%s/history/%s?from=%s",
		c.baseURL, url.PathEscape(strings.ToUpper(ticker)), from.UTC().Format("2006-01-02"))

	var parsed historyResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, fmt.Errorf("history fetch for %s failed: %w", ticker, err)
	}

	points := make([]PricePoint, 0, len(parsed.Prices))
	for _, p := range parsed.Prices {
		date, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q in history for %s: %w", p.Date, ticker, err)
		}
		points = append(points, PricePoint{Date: date, Close: p.Close})
	}
	return points, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	return c.retryPolicy.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	})
}
