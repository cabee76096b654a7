package lingocache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithRetry_SuccessFirstTry(t *testing.T) {
	calls := 0
	result, err := WithRetry(context.Background(), DefaultRetryConfig(), func() (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Errorf("result = %q, want %q", result, "ok")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestWithRetry_NonRetryableStops(t *testing.T) {
	calls := 0
	wantErr := errors.New("bad request")
	_, err := WithRetry(context.Background(), DefaultRetryConfig(), func() (string, error) {
		calls++
		return "", &ProviderError{Message: "permanent", Cause: wantErr, Retryable: false}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retries for non-retryable)", calls)
	}
}

func TestWithRetry_RetryableExhausts(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	calls := 0
	_, err := WithRetry(context.Background(), cfg, func() (string, error) {
		calls++
		return "", &ProviderError{Message: "flaky", Retryable: true}
	})
	if err == nil {
		t.Fatal("expected error after exhaustion")
	}
	if calls != 5 {
		t.Errorf("calls = %d, want 5", calls)
	}
}

func TestWithRetry_RecoversAfterFailures(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	calls := 0
	result, err := WithRetry(context.Background(), cfg, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, &ProviderError{Message: "flaky", Retryable: true}
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != 42 {
		t.Errorf("result = %d, want 42", result)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestWithRetry_NonRateLimitedRetriesImmediately(t *testing.T) {
	// A long base delay would dominate the test runtime if the
	// non-rate-limited path slept between attempts.
	cfg := RetryConfig{MaxAttempts: 4, BaseDelay: 10 * time.Second, MaxDelay: time.Minute}
	start := time.Now()
	calls := 0
	_, err := WithRetry(context.Background(), cfg, func() (string, error) {
		calls++
		return "", &ProviderError{Message: "503", Retryable: true}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 4 {
		t.Errorf("calls = %d, want 4", calls)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("non-rate-limited retries slept %s, want immediate", elapsed)
	}
}

func TestWithRetry_RateLimitedBacksOff(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, BaseDelay: 20 * time.Millisecond, MaxDelay: 100 * time.Millisecond}
	start := time.Now()
	calls := 0
	_, err := WithRetry(context.Background(), cfg, func() (string, error) {
		calls++
		return "", &ProviderError{Message: "429", Retryable: true, RateLimited: true}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	// Two sleeps of at least 20ms and 40ms
	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Errorf("rate-limited retries only took %s, expected backoff", elapsed)
	}
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithRetry(ctx, DefaultRetryConfig(), func() (string, error) {
		return "", &ProviderError{Message: "flaky", Retryable: true}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"retryable provider error", &ProviderError{Retryable: true}, true},
		{"non-retryable provider error", &ProviderError{Retryable: false}, false},
		{"glossary not found", &GlossaryNotFoundError{Glossary: "g"}, false},
		{"context cancelled", context.Canceled, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryableProvider(t *testing.T) {
	calls := 0
	inner := providerFunc(func(ctx context.Context, req ProviderRequest) (*ProviderResult, error) {
		calls++
		if calls < 2 {
			return nil, &ProviderError{Message: "flaky", Retryable: true}
		}
		return &ProviderResult{Translations: []string{"Ciao"}}, nil
	})

	p := NewRetryableProvider(inner, RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond})
	res, err := p.Translate(context.Background(), ProviderRequest{Contents: []string{"Hello"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Translations[0] != "Ciao" {
		t.Errorf("translation = %q, want Ciao", res.Translations[0])
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

// providerFunc adapts a function to the Provider interface.
type providerFunc func(ctx context.Context, req ProviderRequest) (*ProviderResult, error)

func (f providerFunc) Translate(ctx context.Context, req ProviderRequest) (*ProviderResult, error) {
	return f(ctx, req)
}
