/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package retry implements bounded exponential backoff for API requests
// that fail with rate limit or transient server errors.
package retry

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/chainguard-dev/clog"
)

// RetryConfig configures retry behavior for API requests.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts. 0 disables
	// retries entirely.
	MaxRetries int
	// BaseBackoff is the delay before the first retry. Each later retry
	// doubles it.
	BaseBackoff time.Duration
	// MaxBackoff caps both the computed backoff and any server hint.
	MaxBackoff time.Duration
	// MaxJitter is the maximum random jitter added to each delay.
	MaxJitter time.Duration
}

// Validate checks that the retry configuration has valid values.
func (c RetryConfig) Validate() error {
	if c.MaxRetries < 0 {
		return errors.New("max retries cannot be negative")
	}
	if c.BaseBackoff < 0 {
		return errors.New("base backoff cannot be negative")
	}
	if c.MaxBackoff < 0 {
		return errors.New("max backoff cannot be negative")
	}
	if c.MaxJitter < 0 {
		return errors.New("max jitter cannot be negative")
	}
	if c.MaxRetries > 0 && c.MaxBackoff > 0 && c.BaseBackoff > c.MaxBackoff {
		return fmt.Errorf("base backoff %v exceeds max backoff %v", c.BaseBackoff, c.MaxBackoff)
	}
	return nil
}

// DefaultRetryConfig returns a configuration suited to the API's rate
// limits. Clients do not retry unless one is set explicitly.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  3,
		BaseBackoff: 1 * time.Second,
		MaxBackoff:  30 * time.Second,
		MaxJitter:   250 * time.Millisecond,
	}
}

// Backoff returns the delay before retry number attempt (0-based),
// without jitter: BaseBackoff * 2^attempt capped at MaxBackoff.
func (c RetryConfig) Backoff(attempt int) time.Duration {
	d := c.BaseBackoff << attempt
	if d < c.BaseBackoff { // overflow
		d = c.MaxBackoff
	}
	if c.MaxBackoff > 0 {
		d = min(d, c.MaxBackoff)
	}
	return d
}

// DelayHinter is implemented by errors that carry a server-provided delay,
// such as a Retry-After header. A positive hint replaces the computed
// backoff for that attempt, still capped at MaxBackoff.
type DelayHinter interface {
	RetryDelay() time.Duration
}

func (c RetryConfig) delay(attempt int, err error) time.Duration {
	d := c.Backoff(attempt)
	var h DelayHinter
	if errors.As(err, &h) {
		if hint := h.RetryDelay(); hint > 0 {
			d = hint
			if c.MaxBackoff > 0 {
				d = min(d, c.MaxBackoff)
			}
		}
	}
	if c.MaxJitter > 0 {
		if n, err := rand.Int(rand.Reader, big.NewInt(int64(c.MaxJitter))); err == nil {
			d += time.Duration(n.Int64())
		}
	}
	return d
}

// RetryWithBackoff executes fn, retrying errors that isRetryable accepts
// until it succeeds, returns a non-retryable error, the retries run out,
// or ctx is done.
func RetryWithBackoff[T any](ctx context.Context, cfg RetryConfig, operation string, isRetryable func(error) bool, fn func() (T, error)) (T, error) {
	var result T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, lastErr = fn()
		if lastErr == nil {
			return result, nil
		}
		if !isRetryable(lastErr) {
			return result, lastErr
		}
		if attempt >= cfg.MaxRetries {
			break
		}

		wait := cfg.delay(attempt, lastErr)
		clog.FromContext(ctx).With("operation", operation).
			With("attempt", attempt+1).
			With("max_retries", cfg.MaxRetries).
			With("backoff", wait).
			With("error", lastErr.Error()).
			Warn("Request failed, retrying")

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(wait):
		}
	}

	return result, fmt.Errorf("%s failed after %d retries: %w", operation, cfg.MaxRetries, lastErr)
}
