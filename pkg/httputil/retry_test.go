package httputil

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry_NonRetryableFailsFast(t *testing.T) {
	boom := errors.New("boom")
	calls := 0

	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return boom
	})

	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (plain errors must not retry)", calls)
	}
}

func TestRetry_RetryableSucceedsEventually(t *testing.T) {
	calls := 0

	err := Retry(context.Background(), 5, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return &RetryableError{Err: errors.New("transient")}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	transient := errors.New("transient")
	calls := 0

	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return &RetryableError{Err: transient}
	})

	if !errors.Is(err, transient) {
		t.Errorf("err = %v, want last transient error", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Minute, func() error {
		return &RetryableError{Err: errors.New("transient")}
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRetryableErrorUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := &RetryableError{Err: cause}

	if !errors.Is(err, cause) {
		t.Error("RetryableError should unwrap to its cause")
	}
}
