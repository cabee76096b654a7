// Package provider defines the translation provider interface and
// implementations.
package provider

import (
	"fmt"
	"sync"

	"github.com/motorplaza/lingocache"
)

// Provider is the interface for translation backends.
// This is an alias to the main package interface for convenience.
type Provider = lingocache.Provider

// Request is an alias to the main package type.
type Request = lingocache.ProviderRequest

// Result is an alias to the main package type.
type Result = lingocache.ProviderResult

// Provider kinds selectable through configuration.
const (
	KindGoogle = "google"
	KindOpenAI = "openai"
	KindMock   = "mock"
)

// Config selects and configures a provider backend.
type Config struct {
	Kind   string
	Google GoogleConfig
	OpenAI OpenAIConfig
}

// New constructs a provider from config. Configuration problems fail
// here, loudly, rather than on the first translation call.
func New(cfg Config) (Provider, error) {
	switch cfg.Kind {
	case KindGoogle:
		return NewGoogleProvider(cfg.Google)
	case KindOpenAI:
		return NewOpenAIProvider(cfg.OpenAI)
	case KindMock:
		return NewMockProvider(), nil
	default:
		return nil, &lingocache.ConfigError{
			Field:   "provider",
			Message: fmt.Sprintf("unknown provider kind %q", cfg.Kind),
		}
	}
}

var (
	defaultOnce     sync.Once
	defaultProvider Provider
	defaultErr      error
)

// Default returns the process-wide provider, constructing it on first
// call. Concurrent first callers cannot race-construct multiple
// clients; the constructed client is stateless and safe for concurrent
// use, so one instance serves the process lifetime.
func Default(cfg Config) (Provider, error) {
	defaultOnce.Do(func() {
		defaultProvider, defaultErr = New(cfg)
	})
	return defaultProvider, defaultErr
}
