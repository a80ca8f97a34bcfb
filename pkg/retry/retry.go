// Package retry re-runs an operation that fails transiently.
package retry

import (
	"context"
	"time"
)

// Option configures Do.
type Option func(*config)

type config struct {
	maxRetries int
	backoff    func(int) time.Duration
	retryable  func(error) bool
}

func defaultConfig() *config {
	return &config{
		maxRetries: 0,
		backoff:    ConstantBackoff(0),
		retryable:  func(error) bool { return true },
	}
}

// WithMaxRetries sets how many times a failed call is retried.
// Default is 0 (a single attempt).
func WithMaxRetries(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithBackoff sets the wait before retry attempt n (starting at 1).
func WithBackoff(backoff func(attempt int) time.Duration) Option {
	return func(c *config) {
		if backoff != nil {
			c.backoff = backoff
		}
	}
}

// WithRetryable limits retries to errors for which fn returns true.
func WithRetryable(fn func(error) bool) Option {
	return func(c *config) {
		if fn != nil {
			c.retryable = fn
		}
	}
}

// ConstantBackoff returns a backoff function that always returns the same duration.
func ConstantBackoff(d time.Duration) func(int) time.Duration {
	return func(_ int) time.Duration {
		return d
	}
}

// ExponentialBackoff returns a backoff function that increases the duration exponentially.
// backoff = initial * 2^(attempt-1)
func ExponentialBackoff(initial time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		if attempt <= 1 {
			return initial
		}
		return initial * time.Duration(1<<(attempt-1))
	}
}

// Do calls fn until it succeeds, the retries are used up, the error is not
// retryable or ctx is done. It returns the last error of fn, or the context
// error when cancelled while waiting.
func Do(ctx context.Context, fn func(ctx context.Context) error, opts ...Option) error {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt >= cfg.maxRetries || !cfg.retryable(err) {
			return err
		}

		timer := time.NewTimer(cfg.backoff(attempt + 1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
