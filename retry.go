package lingocache

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxAttempts int           // Total attempts, first call included
	BaseDelay   time.Duration // Initial backoff delay
	MaxDelay    time.Duration // Backoff cap
}

// DefaultRetryConfig returns the retry policy for provider calls:
// five attempts, exponential backoff with jitter for rate limits.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    30 * time.Second,
	}
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// WithRetry executes fn with bounded retries. Rate-limited errors sleep
// an exponentially growing, jittered delay between attempts; other
// retryable errors are retried immediately. Non-retryable errors and
// exhaustion propagate the last error.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	var lastErr error
	var zero T

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return zero, err
		}
		if attempt == attempts-1 {
			break
		}
		if !isRateLimited(err) {
			continue
		}

		delay := backoffDelay(cfg, attempt)
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, lastErr
}

// backoffDelay doubles the base delay per attempt, caps it, and adds up
// to 25% random jitter so concurrent retries do not align.
func backoffDelay(cfg RetryConfig, attempt int) time.Duration {
	delay := cfg.BaseDelay * time.Duration(1<<attempt)
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(delay)/4 + 1))
	return delay + jitter
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return false
}

// isRateLimited reports whether the error demands backoff before the
// next attempt.
func isRateLimited(err error) bool {
	var providerErr *ProviderError
	return errors.As(err, &providerErr) && providerErr.RateLimited
}

// RetryableProvider wraps a Provider with the retry policy.
type RetryableProvider struct {
	provider Provider
	config   RetryConfig
}

// NewRetryableProvider creates a provider wrapper with retry logic.
func NewRetryableProvider(provider Provider, cfg RetryConfig) *RetryableProvider {
	return &RetryableProvider{provider: provider, config: cfg}
}

// Translate implements Provider with retry logic.
func (p *RetryableProvider) Translate(ctx context.Context, req ProviderRequest) (*ProviderResult, error) {
	return WithRetry(ctx, p.config, func() (*ProviderResult, error) {
		return p.provider.Translate(ctx, req)
	})
}
