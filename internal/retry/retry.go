// Package retry provides a small retry executor with a fixed attempt bound,
// a fixed delay between attempts and a caller-supplied retryable predicate.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy describes how an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int
	// Delay is slept between attempts.
	Delay time.Duration
	// Retryable reports whether err warrants another attempt. A nil
	// predicate never retries.
	Retryable func(err error) bool
	// BeforeRetry runs after a retryable failure and before the delay,
	// e.g. to refresh a credential or re-establish a connection.
	BeforeRetry func(ctx context.Context, attempt int, err error)
}

// ExhaustedError is returned when every attempt failed with a retryable error.
type ExhaustedError struct {
	// Attempts is how many times the operation ran.
	Attempts int
	// Last is the error from the final attempt.
	Last error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d retries: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Do runs op until it succeeds, returns a non-retryable error, or the
// attempt bound is reached. Non-retryable errors are returned unchanged.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if p.Retryable == nil || !p.Retryable(err) {
			return err
		}
		last = err
		if attempt == attempts {
			break
		}
		if p.BeforeRetry != nil {
			p.BeforeRetry(ctx, attempt, err)
		}
		if err := sleep(ctx, p.Delay); err != nil {
			return err
		}
	}
	return &ExhaustedError{Attempts: attempts, Last: last}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
