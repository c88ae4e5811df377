package scanner

import (
	"context"
	"time"
)

const maxRetryDelay = 30 * time.Second

// retryPolicy retries a call with exponential backoff capped at maxRetryDelay.
type retryPolicy struct {
	retries int
	backoff time.Duration
	onRetry func(attempt int, delay time.Duration, err error)
}

func (p retryPolicy) do(ctx context.Context, fn func(context.Context) error) error {
	retries := p.retries
	if retries < 0 {
		retries = 0
	}
	delay := p.backoff
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= retries {
			return err
		}
		if p.onRetry != nil {
			p.onRetry(attempt+1, delay, err)
		}
		if !sleep(ctx, delay) {
			return ctx.Err()
		}

		delay *= 2
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
}

// sleep waits for d and reports false if ctx was cancelled first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
