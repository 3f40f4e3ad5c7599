package appsync

import (
	"context"
	"errors"
	"time"

	"github.com/jpillora/backoff"
)

// nonRetryableError wraps a terminal error so retry stops after the
// current attempt instead of being retried.
type nonRetryableError struct {
	err error
}

func (e *nonRetryableError) Error() string { return e.err.Error() }
func (e *nonRetryableError) Unwrap() error { return e.err }
func (e *nonRetryableError) Is(target error) bool {
	return target == ErrNonRetryable //nolint: errorlint
}

// nonRetryable marks err so retry aborts after one attempt.
func nonRetryable(err error) error {
	if err == nil {
		return nil
	}

	return &nonRetryableError{err: err}
}

// retry runs fn with jittered exponential backoff until it succeeds, the
// context is cancelled, or fn returns a non-retryable error. maxDelay caps
// the backoff ceiling; the base and factor mirror the teacher pack's
// jpillora/backoff defaults.
func retry[T any](ctx context.Context, maxDelay time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	b := &backoff.Backoff{
		Min:    100 * time.Millisecond,
		Max:    maxDelay,
		Factor: 2,
		Jitter: true,
	}
	for {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		var nonRetryableErr *nonRetryableError
		if errors.As(err, &nonRetryableErr) {
			return result, nonRetryableErr.err
		}
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(b.Duration()):
		}
	}
}
