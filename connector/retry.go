package connector

import (
	"context"
	"time"
)

// retryConnect calls connectFn until it succeeds, the attempts run out or ctx ends. The
// delay starts at BaseDelay and grows by Backoff, capped at MaxDelay.
func retryConnect[T any](ctx context.Context, opts *RetryConfig, connectFn func(context.Context) (T, error)) (T, error) {
	if opts == nil {
		return connectFn(ctx)
	}

	attempts := opts.MaxRetries + 1
	delay := opts.BaseDelay
	if delay == 0 {
		delay = time.Second // default
	}
	backoff := opts.Backoff
	if backoff < 1 {
		backoff = 2
	}

	var (
		conn T
		err  error
	)
	for i := 0; i < attempts; i++ {
		conn, err = connectFn(ctx)
		if err == nil {
			return conn, nil
		}
		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-time.After(delay):
			delay = time.Duration(float64(delay) * backoff)
			if opts.MaxDelay > 0 && delay > opts.MaxDelay {
				delay = opts.MaxDelay
			}
		}
	}
	return conn, err
}
