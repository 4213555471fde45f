package codegen

import (
	"context"
	"math/rand/v2"
	"time"
)

// Backoff returns how long to wait before the given (1-based) retry.
type Backoff func(attempt int) time.Duration

// RandomBackoff waits a uniformly random duration in [0, max).
func RandomBackoff(max time.Duration) Backoff {
	return func(int) time.Duration {
		if max <= 0 {
			return 0
		}
		return rand.N(max)
	}
}

// RetryOnConflict runs op up to maxAttempts times while it fails with an
// error isConflict accepts. Any other error is returned immediately. When the
// attempts run out the last conflict is wrapped in *AllocationExhaustedError.
func RetryOnConflict(ctx context.Context, maxAttempts int, backoff Backoff, isConflict func(error) bool, op func(attempt int) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var last error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		last = op(attempt)
		if last == nil {
			return nil
		}
		if !isConflict(last) {
			return last
		}
		if attempt == maxAttempts {
			break
		}

		if backoff != nil {
			if err := sleep(ctx, backoff(attempt)); err != nil {
				return err
			}
		}
	}

	return &AllocationExhaustedError{Attempts: maxAttempts, Last: last}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
