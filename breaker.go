package lingocache

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig configures the circuit breaker around a provider.
type BreakerConfig struct {
	MaxFailures uint32        // Consecutive failures before the circuit opens
	Timeout     time.Duration // How long the circuit stays open
}

// DefaultBreakerConfig returns conservative breaker settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures: 5,
		Timeout:     30 * time.Second,
	}
}

// BreakerProvider wraps a Provider with a circuit breaker so a
// persistently failing provider stops consuming retries and rate-limit
// tokens until it recovers.
type BreakerProvider struct {
	provider Provider
	cb       *gobreaker.CircuitBreaker
}

// NewBreakerProvider creates a circuit-breaking provider wrapper.
func NewBreakerProvider(provider Provider, cfg BreakerConfig) *BreakerProvider {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = DefaultBreakerConfig().MaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultBreakerConfig().Timeout
	}

	settings := gobreaker.Settings{
		Name:    "translation-provider",
		Timeout: timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	}

	return &BreakerProvider{
		provider: provider,
		cb:       gobreaker.NewCircuitBreaker(settings),
	}
}

// Translate implements Provider through the circuit breaker. An open
// circuit reports as a retryable, rate-limited provider error so the
// retry layer backs off instead of hammering.
func (p *BreakerProvider) Translate(ctx context.Context, req ProviderRequest) (*ProviderResult, error) {
	result, err := p.cb.Execute(func() (any, error) {
		return p.provider.Translate(ctx, req)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, &ProviderError{
				Message:     "provider circuit open",
				Cause:       err,
				Retryable:   true,
				RateLimited: true,
			}
		}
		return nil, err
	}
	return result.(*ProviderResult), nil
}

// State returns the current breaker state.
func (p *BreakerProvider) State() gobreaker.State {
	return p.cb.State()
}
