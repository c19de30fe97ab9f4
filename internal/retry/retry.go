// Package retry runs operations with exponential backoff. It is shared by the
// node client, which retries single requests, and the listener driver, which
// retries a whole block when the database is busy.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/goran-ethernal/RWAListener/pkg/config"
)

// Classifier reports whether an error is worth another attempt.
type Classifier func(err error) bool

// IsTransient classifies network failures, timeouts, rate limiting and
// temporary server errors as retryable.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	return false
}

var transientMarkers = []string{
	// timeouts
	"timeout",
	"deadline exceeded",
	// rate limiting
	"429",
	"too many requests",
	"rate limit",
	// temporary server errors
	"502",
	"503",
	"504",
	"bad gateway",
	"service unavailable",
	// pool exhaustion
	"connection pool",
	"no available connection",
}

// Backoff computes the wait before the given attempt with ±25% jitter.
// The first attempt never waits.
func Backoff(attempt int, cfg *config.RetryConfig) time.Duration {
	if attempt <= 1 {
		return 0
	}

	backoff := float64(cfg.InitialBackoff.Duration) * math.Pow(cfg.BackoffMultiplier, float64(attempt-2))
	if backoff > float64(cfg.MaxBackoff.Duration) {
		backoff = float64(cfg.MaxBackoff.Duration)
	}

	jitterRange := backoff * 0.25 //nolint:mnd
	backoff += (rand.Float64() * 2 * jitterRange) - jitterRange //nolint:gosec
	if backoff < 0 {
		backoff = 0
	}

	return time.Duration(backoff)
}

// Do executes fn until it succeeds, returns an error the classifier rejects,
// the attempts are exhausted or the context is done.
// A nil config executes fn once.
func Do(ctx context.Context, cfg *config.RetryConfig, operation string, retryable Classifier, fn func() error) error {
	if cfg == nil {
		return fn()
	}

	var lastErr error
	start := time.Now()

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if wait := Backoff(attempt, cfg); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("context cancelled during backoff (attempt %d/%d): %w",
					attempt, cfg.MaxAttempts, ctx.Err())
			}
			retriesInc(operation)
		}

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled before attempt %d: %w", attempt, err)
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) {
			return fmt.Errorf("non-retryable error on attempt %d/%d: %w", attempt, cfg.MaxAttempts, err)
		}
	}

	exhaustedInc(operation)
	return fmt.Errorf("all %d attempts failed after %v (last error: %w)",
		cfg.MaxAttempts, time.Since(start), lastErr)
}
