// Package bcb fetches reference rates from the Brazilian central bank
// open data API (SGS series).
package bcb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/brvalue/fleuriet/internal/clients/retry"
)

// selicSeriesID is the SGS series for the SELIC target rate.
const selicSeriesID = 432

// Client for the BCB SGS open data API.
type Client struct {
	baseURL     string
	client      *http.Client
	retryPolicy retry.Policy
	log         zerolog.Logger
}

// NewClient creates a new BCB client.
func NewClient(baseURL string, timeout time.Duration, policy retry.Policy, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.bcb.gov.br"
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		client:      &http.Client{Timeout: timeout},
		retryPolicy: policy,
		log:         log.With().Str("client", "bcb").Logger(),
	}
}

// seriesPoint is one observation in an SGS series response. Values come
// back as strings with the rate in percent.
type seriesPoint struct {
	Date  string `json:"data"`
	Value string `json:"valor"`
}

// SelicRate fetches the latest SELIC target rate as a decimal fraction
// (0.105 for 10.5%).
func (c *Client) SelicRate(ctx context.Context) (float64, error) {
	url := fmt.Sprintf("%s/dados/serie/bcdata.sgs.%d/dados/ultimos/1?formato=json",
		c.baseURL, selicSeriesID)

	var rate float64
	err := c.retryPolicy.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
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

		var points []seriesPoint
		if err := json.NewDecoder(resp.Body).Decode(&points); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		if len(points) == 0 {
			return fmt.Errorf("empty series response")
		}

		// Brazilian locale uses a comma decimal separator
		raw := strings.ReplaceAll(points[len(points)-1].Value, ",", ".")
		pct, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid rate value %q: %w", points[len(points)-1].Value, err)
		}

		rate = pct / 100
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("selic fetch failed: %w", err)
	}

	c.log.Debug().Float64("rate", rate).Msg("Fetched SELIC rate")
	return rate, nil
}

// SelicRateOrDefault fetches the SELIC rate, falling back to the given
// default when the API is unreachable. The fallback is logged, never
// silent.
func (c *Client) SelicRateOrDefault(ctx context.Context, fallback float64) float64 {
	rate, err := c.SelicRate(ctx)
	if err != nil {
		c.log.Warn().Err(err).Float64("fallback", fallback).Msg("SELIC fetch failed, using default rate")
		return fallback
	}
	return rate
}
