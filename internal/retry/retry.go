// Package retry provides bounded retries with exponential backoff and jitter
// for transient HTTP failures.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/jobscout-dev/jobscout/internal/model"
)

// Do runs fn, retrying transient failures up to maxRetries additional times.
// baseDelay is the delay before the first retry, doubled on each subsequent
// attempt with ±30% jitter; an HTTPError's Retry-After takes precedence.
func Do(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func() error) error {
	err := fn()
	if err == nil || !IsRetryable(err) {
		return err
	}

	lastErr := err
	for attempt := 1; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(backoffDelay(attempt, baseDelay, lastErr)):
		}

		if err := fn(); err == nil || !IsRetryable(err) {
			return err
		} else {
			lastErr = err
		}
	}
	return lastErr
}

// backoffDelay computes baseDelay * 2^(attempt-1) with ±30% jitter.
func backoffDelay(attempt int, baseDelay time.Duration, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	delay := baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
}

// IsRetryable reports whether err represents a transient failure worth
// retrying: 429, 5xx, and non-HTTP errors (network, DNS). Context
// cancellation and other 4xx codes are terminal.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == 429 {
			return true
		}
		return httpErr.StatusCode >= 500
	}
	return true
}
