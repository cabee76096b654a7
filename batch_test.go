package lingocache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"
)

// memStore is an in-memory Store with call counters and injectable
// failures.
type memStore struct {
	mu           sync.Mutex
	data         map[string]string
	getManyCalls int
	setCalls     int
	failGet      error
	failSet      error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (s *memStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet != nil {
		return "", false, s.failGet
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *memStore) GetMany(_ context.Context, keys []string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getManyCalls++
	if s.failGet != nil {
		return nil, s.failGet
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := s.data[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (s *memStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCalls++
	if s.failSet != nil {
		return s.failSet
	}
	s.data[key] = value
	return nil
}

func (s *memStore) get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

// fakeProvider translates by applying fn to each content string and
// records every request.
type fakeProvider struct {
	mu       sync.Mutex
	fn       func(string) string
	err      error // returned on every call when set
	glossary bool  // report glossary as applied
	requests []ProviderRequest
}

func upperProvider() *fakeProvider {
	return &fakeProvider{fn: strings.ToUpper}
}

func (p *fakeProvider) Translate(_ context.Context, req ProviderRequest) (*ProviderResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	out := make([]string, len(req.Contents))
	for i, text := range req.Contents {
		out[i] = p.fn(text)
	}
	return &ProviderResult{Translations: out, GlossaryApplied: req.UseGlossary && p.glossary}, nil
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

func (p *fakeProvider) allContents() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, req := range p.requests {
		out = append(out, req.Contents...)
	}
	return out
}

func TestTranslateBatch_EmptyInput(t *testing.T) {
	client := NewBatchClient(upperProvider(), newMemStore())
	out, blog, err := client.TranslateBatch(context.Background(), nil, "en", "fr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected empty output, got %v", out)
	}
	if blog.Requests != 0 {
		t.Errorf("requests = %d, want 0", blog.Requests)
	}
}

func TestTranslateBatch_IdentityLocale(t *testing.T) {
	st := newMemStore()
	p := upperProvider()
	client := NewBatchClient(p, st)

	texts := []string{"Hello", "World"}
	out, blog, err := client.TranslateBatch(context.Background(), texts, "en", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range texts {
		if out[i] != texts[i] {
			t.Errorf("out[%d] = %q, want %q", i, out[i], texts[i])
		}
	}
	if p.callCount() != 0 {
		t.Error("identity path must not call the provider")
	}
	if st.getManyCalls != 0 {
		t.Error("identity path must not read the cache")
	}
	if blog.Requests != 0 || blog.CacheHits != 0 {
		t.Errorf("identity log should be empty, got %+v", blog)
	}
}

func TestTranslateBatch_SecondCallIsCacheHit(t *testing.T) {
	st := newMemStore()
	p := upperProvider()
	client := NewBatchClient(p, st)
	ctx := context.Background()

	first, blog1, err := client.TranslateBatch(ctx, []string{"Hello"}, "en", "fr")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if blog1.CacheMisses != 1 || blog1.CacheHits != 0 {
		t.Errorf("first log = %+v, want 1 miss", blog1)
	}
	if p.callCount() != 1 {
		t.Fatalf("provider calls = %d, want 1", p.callCount())
	}

	second, blog2, err := client.TranslateBatch(ctx, []string{"Hello"}, "en", "fr")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if second[0] != first[0] {
		t.Errorf("second call returned %q, first returned %q", second[0], first[0])
	}
	if blog2.CacheHits != 1 || blog2.CacheMisses != 0 {
		t.Errorf("second log = %+v, want 1 hit", blog2)
	}
	if p.callCount() != 1 {
		t.Errorf("provider calls after second run = %d, want 1 (no new requests)", p.callCount())
	}
}

func TestTranslateBatch_DeduplicatesInputs(t *testing.T) {
	st := newMemStore()
	p := upperProvider()
	client := NewBatchClient(p, st)

	out, _, err := client.TranslateBatch(context.Background(), []string{"Welcome", "Welcome", "Back"}, "en", "fr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("len(out) = %d, want 3", len(out))
	}
	if out[0] != out[1] {
		t.Errorf("duplicate inputs got different outputs: %q vs %q", out[0], out[1])
	}
	if out[0] != "WELCOME" || out[2] != "BACK" {
		t.Errorf("out = %v", out)
	}

	sent := p.allContents()
	if len(sent) != 2 {
		t.Errorf("provider saw %d inputs %v, want 2 unique", len(sent), sent)
	}
}

func TestTranslateBatch_OrderPreservedWithMixedHitsAndMisses(t *testing.T) {
	st := newMemStore()
	// Pre-seed the middle entry only.
	if err := st.Set(context.Background(), TextKey("Beta", "fr"), "BÊTA"); err != nil {
		t.Fatal(err)
	}
	p := upperProvider()
	client := NewBatchClient(p, st)

	out, blog, err := client.TranslateBatch(context.Background(), []string{"Alpha", "Beta", "Gamma"}, "en", "fr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"ALPHA", "BÊTA", "GAMMA"}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %q, want %q", i, out[i], want[i])
		}
	}
	if blog.CacheHits != 1 || blog.CacheMisses != 2 {
		t.Errorf("log = %+v, want 1 hit / 2 misses", blog)
	}
	for _, sent := range p.allContents() {
		if sent == "Beta" {
			t.Error("cached text was sent to the provider")
		}
	}
}

func TestTranslateBatch_OversizedStringSplitsAndRecombines(t *testing.T) {
	st := newMemStore()
	p := upperProvider()
	client := NewBatchClient(p, st)

	big := strings.Repeat("ab", 6000) // 12000 bytes > MaxChunkBytes
	out, blog, err := client.TranslateBatch(context.Background(), []string{big}, "en", "fr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if out[0] != strings.ToUpper(big) {
		t.Error("recombined translation does not cover the full source")
	}
	if blog.Requests < 2 {
		t.Errorf("requests = %d, want >= 2 (string must be split)", blog.Requests)
	}
	for _, sent := range p.allContents() {
		if len(sent) > MaxChunkBytes {
			t.Errorf("provider received %d bytes in one piece, limit is %d", len(sent), MaxChunkBytes)
		}
	}

	// The full text is cached under its own hash.
	if v, ok := st.get(TextKey(big, "fr")); !ok || v != strings.ToUpper(big) {
		t.Error("full oversized text was not persisted under its hash")
	}
}

func TestTranslateBatch_GlossaryNotFoundRetriesWithout(t *testing.T) {
	st := newMemStore()
	p := &fakeProvider{fn: strings.ToUpper}
	glossaryMisses := 0
	wrapped := providerFunc(func(ctx context.Context, req ProviderRequest) (*ProviderResult, error) {
		if req.UseGlossary {
			glossaryMisses++
			return nil, &GlossaryNotFoundError{Glossary: "automotive"}
		}
		return p.Translate(ctx, req)
	})

	client := NewBatchClient(wrapped, st, WithGlossary("automotive"))
	out, blog, err := client.TranslateBatch(context.Background(), []string{"Hello"}, "en", "it")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0] != "HELLO" {
		t.Errorf("out[0] = %q", out[0])
	}
	if glossaryMisses != 1 {
		t.Errorf("glossary attempts = %d, want 1", glossaryMisses)
	}
	if blog.Requests != 2 {
		t.Errorf("requests = %d, want 2 (glossary try + plain retry)", blog.Requests)
	}
	if blog.GlossaryApplied {
		t.Error("glossary must not be reported applied after fallback")
	}
}

func TestTranslateBatch_GlossaryApplied(t *testing.T) {
	st := newMemStore()
	p := &fakeProvider{fn: strings.ToUpper, glossary: true}
	client := NewBatchClient(p, st, WithGlossary("automotive"))

	_, blog, err := client.TranslateBatch(context.Background(), []string{"Hello"}, "en", "it")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !blog.GlossaryApplied {
		t.Error("log should report glossary applied")
	}
}

func TestTranslateBatch_SanitizesProviderOutput(t *testing.T) {
	st := newMemStore()
	p := &fakeProvider{fn: func(string) string { return "Italiano: Ciao" }}
	client := NewBatchClient(p, st)

	out, _, err := client.TranslateBatch(context.Background(), []string{"Hello"}, "en", "it")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0] != "Ciao" {
		t.Errorf("out[0] = %q, want %q", out[0], "Ciao")
	}
	if v, _ := st.get(TextKey("Hello", "it")); v != "Ciao" {
		t.Errorf("stored value = %q, want sanitized %q", v, "Ciao")
	}
}

func TestTranslateBatch_EmptyProviderOutputFallsBackToSource(t *testing.T) {
	st := newMemStore()
	p := &fakeProvider{fn: func(string) string { return "   " }}
	client := NewBatchClient(p, st)

	out, _, err := client.TranslateBatch(context.Background(), []string{"Hello"}, "en", "it")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0] != "Hello" {
		t.Errorf("out[0] = %q, want source fallback %q", out[0], "Hello")
	}
}

func TestTranslateBatch_PartialProgressSurvivesLaterChunkFailure(t *testing.T) {
	st := newMemStore()
	// Two texts that cannot share a 5000-byte chunk: the second chunk
	// fails permanently.
	first := strings.Repeat("a", 4000)
	second := strings.Repeat("b", 4000)

	calls := 0
	p := providerFunc(func(_ context.Context, req ProviderRequest) (*ProviderResult, error) {
		calls++
		if calls > 1 {
			return nil, &ProviderError{Message: "quota exhausted"}
		}
		out := make([]string, len(req.Contents))
		for i, s := range req.Contents {
			out[i] = strings.ToUpper(s)
		}
		return &ProviderResult{Translations: out}, nil
	})

	client := NewBatchClient(p, st)
	_, _, err := client.TranslateBatch(context.Background(), []string{first, second}, "en", "fr")
	if err == nil {
		t.Fatal("expected the batch to fail loudly")
	}

	if _, ok := st.get(TextKey(first, "fr")); !ok {
		t.Error("first chunk's translation should have been persisted before the failure")
	}
	if _, ok := st.get(TextKey(second, "fr")); ok {
		t.Error("failed chunk must not leave a cache entry")
	}
}

func TestTranslateBatch_StoreReadErrorPropagates(t *testing.T) {
	st := newMemStore()
	st.failGet = &StoreError{Op: "getmany", Cause: errors.New("connection refused")}
	client := NewBatchClient(upperProvider(), st)

	_, _, err := client.TranslateBatch(context.Background(), []string{"Hello"}, "en", "fr")
	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("err = %v, want StoreError", err)
	}
}

func TestTranslateBatch_StoreWriteErrorDoesNotFailBatch(t *testing.T) {
	st := newMemStore()
	st.failSet = &StoreError{Op: "set", Cause: errors.New("read-only replica")}
	client := NewBatchClient(upperProvider(), st)

	out, _, err := client.TranslateBatch(context.Background(), []string{"Hello"}, "en", "fr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0] != "HELLO" {
		t.Errorf("out[0] = %q", out[0])
	}
}

func TestTranslateBatch_CountMismatchFails(t *testing.T) {
	st := newMemStore()
	p := providerFunc(func(_ context.Context, req ProviderRequest) (*ProviderResult, error) {
		return &ProviderResult{Translations: []string{}}, nil
	})
	client := NewBatchClient(p, st)

	_, _, err := client.TranslateBatch(context.Background(), []string{"Hello"}, "en", "fr")
	var mismatch *CountMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("err = %v, want CountMismatchError", err)
	}
}

func TestSplitOversized(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
	}{
		{"fits", "hello", 100},
		{"exact limit", strings.Repeat("x", 100), 100},
		{"double", strings.Repeat("x", 200), 100},
		{"multibyte", strings.Repeat("é", 120), 100},
		{"deep split", strings.Repeat("y", 1000), 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts := splitOversized(tt.text, tt.limit)
			joined := ""
			for _, p := range parts {
				if len(p) > tt.limit {
					t.Errorf("part of %d bytes exceeds limit %d", len(p), tt.limit)
				}
				if !utf8.ValidString(p) {
					t.Errorf("part %q is not valid UTF-8", p)
				}
				joined += p
			}
			if joined != tt.text {
				t.Error("parts do not reassemble into the source")
			}
		})
	}
}

func TestSplitOversized_ContinuationByteRun(t *testing.T) {
	// No rune-start byte anywhere past the midpoint: the boundary walk
	// finds nothing and must fall back to a raw byte split instead of
	// recursing on the unshortened input.
	text := strings.Repeat("\x80", 12000)
	parts := splitOversized(text, 5000)
	if len(parts) < 2 {
		t.Fatalf("len(parts) = %d, want >= 2", len(parts))
	}
	joined := ""
	for _, p := range parts {
		if len(p) > 5000 {
			t.Errorf("part of %d bytes exceeds limit", len(p))
		}
		joined += p
	}
	if joined != text {
		t.Error("parts do not reassemble into the source")
	}
}

func TestSplitOversized_RuneWiderThanLimit(t *testing.T) {
	// A three-byte rune against a two-byte limit can only split inside
	// the rune; it must do so rather than recurse forever.
	parts := splitOversized("€€", 2)
	joined := ""
	for _, p := range parts {
		if len(p) > 2 {
			t.Errorf("part of %d bytes exceeds limit", len(p))
		}
		joined += p
	}
	if joined != "€€" {
		t.Errorf("reassembled %q, want %q", joined, "€€")
	}
}

func TestPackChunks(t *testing.T) {
	pieces := []piece{
		{textIdx: 0, source: strings.Repeat("a", 40)},
		{textIdx: 1, source: strings.Repeat("b", 40)},
		{textIdx: 2, source: strings.Repeat("c", 40)},
	}
	chunks := packChunks(pieces, 100)
	if len(chunks) != 2 {
		t.Fatalf("len(chunks) = %d, want 2", len(chunks))
	}
	if len(chunks[0]) != 2 || len(chunks[1]) != 1 {
		t.Errorf("chunk sizes = %d,%d, want 2,1", len(chunks[0]), len(chunks[1]))
	}
}
