package scanner

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryPolicyBacksOff(t *testing.T) {
	var delays []time.Duration
	p := retryPolicy{
		retries: 3,
		backoff: time.Millisecond,
		onRetry: func(attempt int, delay time.Duration, err error) {
			delays = append(delays, delay)
		},
	}

	calls := 0
	err := p.do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	want := []time.Duration{time.Millisecond, 2 * time.Millisecond}
	if len(delays) != len(want) || delays[0] != want[0] || delays[1] != want[1] {
		t.Fatalf("delays = %v, want %v", delays, want)
	}
}

func TestRetryPolicyGivesUp(t *testing.T) {
	wantErr := errors.New("connection refused")
	calls := 0
	err := retryPolicy{retries: 2, backoff: time.Millisecond}.do(context.Background(), func(context.Context) error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestRetryPolicyStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retryPolicy{retries: 5, backoff: time.Hour}.do(ctx, func(context.Context) error {
		calls++
		cancel()
		return errors.New("timeout")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}
