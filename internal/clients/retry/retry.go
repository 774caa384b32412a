// Package retry provides a bounded retry policy with exponential backoff
// and jitter for rate-limited external fetches.
package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Policy bounds retries at the fetch boundary. Calculation code never
// retries; only external calls do.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration // doubled per attempt
	MaxDelay    time.Duration
}

// DefaultPolicy matches the pacing expected by the upstream public APIs.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
	}
}

// Do runs fn until it succeeds, the attempts are exhausted, or the
// context is done. Between attempts it sleeps for an exponentially
// growing delay with up to 25% random jitter to avoid thundering-herd
// retries against a rate limiter.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := p.delayFor(attempt)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("retry aborted: %w", ctx.Err())
			}
		}

		if lastErr = fn(); lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}

func (p Policy) delayFor(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = time.Second
	}

	delay := base * time.Duration(1<<uint(attempt-1))
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}

	jitter := time.Duration(rand.Int63n(int64(delay)/4 + 1))
	return delay + jitter
}
