package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a deterministic provider for testing and local
// development.
type MockProvider struct {
	mu           sync.Mutex
	Translations map[string]string // Map of source text to translation
	CallCount    int               // Number of times Translate was called
	LastRequest  *Request          // Last request received
	Glossary     bool              // Report glossary as applied
}

// NewMockProvider creates a new mock provider with default
// translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello":   "Hola",
			"World":   "Mundo",
			"Welcome": "Bienvenido",
			"Back":    "Atrás",
		},
	}
}

// Translate returns mock translations: the configured mapping when
// known, the source text bracketed otherwise.
func (m *MockProvider) Translate(_ context.Context, req Request) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.LastRequest = &req

	results := make([]string, len(req.Contents))
	for i, text := range req.Contents {
		if translation, ok := m.Translations[text]; ok {
			results[i] = translation
		} else {
			results[i] = fmt.Sprintf("[%s]", text)
		}
	}

	return &Result{
		Translations:    results,
		GlossaryApplied: req.UseGlossary && m.Glossary,
	}, nil
}

// Reset resets the call count and last request.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
	m.LastRequest = nil
}

// Verify MockProvider implements Provider.
var _ Provider = (*MockProvider)(nil)
