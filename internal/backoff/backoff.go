// Package backoff provides jittered exponential backoff for transient
// provider errors (rate limits, flaky networks).
package backoff

import (
	"context"
	"math/rand/v2"
	"time"
)

// MaxAttempts bounds retries; exceeding it turns a transient error into a
// permanent one.
const MaxAttempts = 3

// maxDelay caps the exponential growth.
const maxDelay = 30 * time.Second

// Delay returns the wait duration for attempt n (0-indexed) with jitter.
func Delay(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > maxDelay {
		base = maxDelay
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// Sleep waits the backoff delay for the attempt, or returns early when the
// context is cancelled.
func Sleep(ctx context.Context, attempt int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(Delay(attempt)):
		return nil
	}
}
