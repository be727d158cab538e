package common

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrThrottled marks a failure caused by the remote quota. The next attempt
	// waits the policy's MaxDelay.
	ErrThrottled = errors.New("request throttled")
	// ErrRetriesExhausted is returned once every attempt failed.
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// RetryPolicy controls WithRetry.
type RetryPolicy struct {
	// Permanent reports failures that must not be retried. Nil retries everything.
	Permanent  func(error) bool
	Name       string
	Attempts   int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
}

// CatalogReadPolicy backs off from base and caps every wait at eight times
// base, so an analyst waiting on a catalog sync is never stalled for long.
func CatalogReadPolicy(attempts int, base time.Duration) RetryPolicy {
	return RetryPolicy{
		Name:       "catalog read",
		Attempts:   max(attempts, 1),
		BaseDelay:  base,
		MaxDelay:   8 * base,
		Multiplier: 2,
	}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = 0
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = p.BaseDelay
	}
	if p.Multiplier < 1 {
		p.Multiplier = 1
	}
	if p.Name == "" {
		p.Name = "operation"
	}
	return p
}

// WithRetry runs op until it succeeds, fails permanently, runs out of attempts
// or ctx ends. The last failure is wrapped in ErrRetriesExhausted.
func WithRetry(ctx context.Context, p RetryPolicy, op func(context.Context) error) error {
	p = p.withDefaults()
	delay := p.BaseDelay

	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if p.Permanent != nil && p.Permanent(err) {
			return err
		}
		if attempt >= p.Attempts {
			return fmt.Errorf("%w: %s after %d attempts: %w", ErrRetriesExhausted, p.Name, attempt, err)
		}

		wait := delay
		if errors.Is(err, ErrThrottled) {
			wait = p.MaxDelay
		}
		LogDebug("Retrying after failure", Fields{
			"operation": p.Name,
			"attempt":   attempt,
			"wait":      wait.String(),
			"error":     err.Error(),
		})

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay = min(time.Duration(float64(delay)*p.Multiplier), p.MaxDelay)
	}
}
