// Package retry reruns an operation with capped, jittered exponential
// backoff.
package retry

import (
	"context"
	"errors"
	"math/rand/v2"
	"net"
	"time"

	"nathanbeddoewebdev/ccev/internal/domain"
)

// Policy says how often and how patiently to retry.
type Policy struct {
	// Attempts is the total number of calls, including the first.
	Attempts int
	// Base is the ceiling of the first backoff; it doubles per attempt.
	Base time.Duration
	// Cap bounds every backoff. Zero means no bound.
	Cap time.Duration
	// Retryable decides whether an error is worth another attempt.
	// Nil means Transient.
	Retryable func(error) bool
}

// Do calls fn until it succeeds, returns a non-retryable error, runs out
// of attempts, or ctx ends. The last error from fn is returned.
func (p Policy) Do(ctx context.Context, fn func(context.Context) error) error {
	attempts := max(p.Attempts, 1)
	retryable := p.Retryable
	if retryable == nil {
		retryable = Transient
	}

	var err error
	for attempt := 1; ; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			if err != nil {
				return err
			}
			return cerr
		}
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt >= attempts || !retryable(err) {
			return err
		}
		if !wait(ctx, Backoff(p.Base, p.Cap, attempt)) {
			return err
		}
	}
}

// Transient reports whether err looks temporary: a network timeout, an
// expired deadline, or an upstream rate limit.
func Transient(err error) bool {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, domain.ErrRateLimited):
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Backoff returns a random delay in [0, min(base*2^(attempt-1), cap)].
func Backoff(base, cap time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	ceiling := base
	for i := 1; i < attempt; i++ {
		if cap > 0 && ceiling >= cap {
			break
		}
		ceiling *= 2
	}
	if cap > 0 && ceiling > cap {
		ceiling = cap
	}
	return rand.N(ceiling + 1)
}

func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
