package lingocache

import "fmt"

// ProviderError indicates a translation provider failure (API error,
// rate limit, etc.).
type ProviderError struct {
	Message     string
	Cause       error
	Retryable   bool // Whether the operation can be retried
	RateLimited bool // Retry must back off instead of going immediately
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// GlossaryNotFoundError indicates the configured glossary does not
// exist at the provider. It is distinguished from generic provider
// errors because the correct response is a same-request retry without
// the glossary, not a batch failure.
type GlossaryNotFoundError struct {
	Glossary string
	Cause    error
}

func (e *GlossaryNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("glossary %q not found: %v", e.Glossary, e.Cause)
	}
	return fmt.Sprintf("glossary %q not found", e.Glossary)
}

func (e *GlossaryNotFoundError) Unwrap() error {
	return e.Cause
}

// StoreError indicates a cache store operation failure.
type StoreError struct {
	Op    string // "get", "getmany" or "set"
	Key   string
	Cause error
}

func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("store %s %s: %v", e.Op, e.Key, e.Cause)
	}
	return fmt.Sprintf("store %s: %v", e.Op, e.Cause)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// ConfigError indicates invalid or missing configuration (credentials,
// project id, malformed service-account JSON). These are not retryable
// and surface at construction time.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Message)
}

// CountMismatchError indicates the provider returned a different number
// of translations than requested.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("translation count mismatch: expected %d, got %d", e.Expected, e.Got)
}
