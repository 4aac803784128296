// Package retry provides a reusable attempt policy for operations whose
// failures fall into classes with different backoff behavior.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted wraps the final attempt error once a policy runs out of
// attempts.
var ErrExhausted = errors.New("attempts exhausted")

// Verdict directs the policy after a failed attempt.
type Verdict struct {
	// Retry indicates another attempt may succeed.
	Retry bool
	// Delay is slept before the next attempt when Retry is true.
	Delay time.Duration
}

// Classifier inspects an attempt error and decides whether and how to retry.
// The attempt index is zero-based.
type Classifier func(attempt int, err error) Verdict

// Policy runs an operation up to MaxAttempts times, consulting Classify on
// each failure. A nil Classify retries every failure immediately.
type Policy struct {
	MaxAttempts int
	// SoftDelay is slept before retrying an attempt whose result was
	// rejected by the accept hook.
	SoftDelay time.Duration
	Classify  Classifier
}

// Do runs fn under the policy. When accept is non-nil, a successful result
// that accept rejects is retried after SoftDelay; on the final attempt the
// rejected result is returned as-is. A non-retryable error classification
// returns that error immediately. Exhausting all attempts returns an error
// wrapping both ErrExhausted and the final attempt error.
func Do[T any](ctx context.Context, p Policy, fn func(context.Context) (T, error), accept func(T) bool) (T, error) {
	var zero T
	var lastErr error

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := range attempts {
		result, err := fn(ctx)
		if err == nil {
			if accept == nil || accept(result) {
				return result, nil
			}
			if attempt == attempts-1 {
				return result, nil
			}
			if err := sleep(ctx, p.SoftDelay); err != nil {
				return zero, err
			}
			continue
		}

		lastErr = err

		verdict := Verdict{Retry: true}
		if p.Classify != nil {
			verdict = p.Classify(attempt, err)
		}
		if !verdict.Retry {
			return zero, err
		}
		if attempt < attempts-1 {
			if err := sleep(ctx, verdict.Delay); err != nil {
				return zero, err
			}
		}
	}

	return zero, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempts, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
