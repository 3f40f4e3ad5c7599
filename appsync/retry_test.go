package appsync

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()
	attempts := 0
	result, err := retry(t.Context(), 50*time.Millisecond, func(context.Context) (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errors.New("transient")
		}

		return 42, nil
	})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if result != 42 {
		t.Fatalf("got %v, want 42", result)
	}
	if attempts != 3 {
		t.Fatalf("got %v attempts, want 3", attempts)
	}
}

func TestRetryStopsImmediatelyOnNonRetryable(t *testing.T) {
	t.Parallel()
	attempts := 0
	wantErr := errors.New("bad credentials")
	_, err := retry(t.Context(), 50*time.Millisecond, func(context.Context) (int, error) {
		attempts++

		return 0, nonRetryable(wantErr)
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("got %v, want %v", err, wantErr)
	}
	if attempts != 1 {
		t.Fatalf("got %v attempts, want exactly 1", attempts)
	}
}

func TestRetryRespectsContextCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err := retry(ctx, 50*time.Millisecond, func(context.Context) (int, error) {
		return 0, errors.New("always fails")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestNonRetryableIsMatchesSentinel(t *testing.T) {
	t.Parallel()
	err := nonRetryable(errors.New("401"))
	if !errors.Is(err, ErrNonRetryable) {
		t.Fatal("expected nonRetryable error to match ErrNonRetryable")
	}
}

func TestNonRetryableOfNilIsNil(t *testing.T) {
	t.Parallel()
	if err := nonRetryable(nil); err != nil {
		t.Fatalf("got %v, want nil", err)
	}
}
