package lingocache

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"
)

// BatchClient translates batches of source strings through a Provider,
// using the store cache-aside: inputs already cached are filled from
// the store, only the missing remainder is sent to the provider, and
// fresh translations are persisted as soon as their chunk completes so
// partial progress survives a later chunk failing.
type BatchClient struct {
	provider   Provider
	store      Store
	glossary   string // provider glossary id; empty disables glossary calls
	retry      RetryConfig
	chunkBytes int
}

// BatchOption is a functional option for configuring the BatchClient.
type BatchOption func(*BatchClient)

// WithGlossary enables glossary-aware provider calls using the given
// glossary identifier.
func WithGlossary(id string) BatchOption {
	return func(c *BatchClient) {
		c.glossary = id
	}
}

// WithRetryConfig overrides the provider retry policy.
func WithRetryConfig(cfg RetryConfig) BatchOption {
	return func(c *BatchClient) {
		c.retry = cfg
	}
}

// WithChunkBytes overrides the per-request byte budget.
func WithChunkBytes(n int) BatchOption {
	return func(c *BatchClient) {
		if n > 0 {
			c.chunkBytes = n
		}
	}
}

// NewBatchClient creates a BatchClient over the given provider and
// store.
func NewBatchClient(provider Provider, store Store, opts ...BatchOption) *BatchClient {
	c := &BatchClient{
		provider:   provider,
		store:      store,
		retry:      DefaultRetryConfig(),
		chunkBytes: MaxChunkBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Glossary returns the configured glossary id.
func (c *BatchClient) Glossary() string {
	return c.glossary
}

// piece is one provider-sized fragment of a missing text. Most texts
// are a single piece; oversized texts are split into several.
type piece struct {
	textIdx int // index into the missing-texts slice
	partIdx int
	source  string
}

// TranslateBatch translates texts to the target locale. The returned
// slice is aligned 1:1 with the input order regardless of how cache
// hits and provider chunks interleave. A provider failure after
// retries propagates as an error; translations persisted from earlier
// chunks remain in the store.
func (c *BatchClient) TranslateBatch(ctx context.Context, texts []string, sourceLocale, targetLocale string) ([]string, *BatchLog, error) {
	blog := &BatchLog{}
	if len(texts) == 0 {
		return []string{}, blog, nil
	}

	// Identity path: no cache lookup, no provider call.
	if SameLocale(sourceLocale, targetLocale) {
		out := make([]string, len(texts))
		copy(out, texts)
		return out, blog, nil
	}

	started := time.Now()
	target := NormalizeLocale(targetLocale)

	// Deduplicate by hash, preserving first-appearance order.
	var uniqueTexts []string
	var uniqueKeys []string
	hashFor := make(map[string]string, len(texts))
	seen := make(map[string]bool, len(texts))
	for _, text := range texts {
		hash := HashText(text)
		hashFor[text] = hash
		if !seen[hash] {
			seen[hash] = true
			uniqueTexts = append(uniqueTexts, text)
			uniqueKeys = append(uniqueKeys, CacheKey(hash, target))
		}
	}

	cached, err := c.store.GetMany(ctx, uniqueKeys)
	if err != nil {
		return nil, blog, err
	}

	resolved := make(map[string]string, len(uniqueTexts))
	cachedHashes := make(map[string]bool, len(cached))
	var missing []string
	for i, text := range uniqueTexts {
		hash := hashFor[text]
		if value, ok := cached[uniqueKeys[i]]; ok {
			resolved[hash] = SanitizeTranslation(value, text, target)
			cachedHashes[hash] = true
			continue
		}
		missing = append(missing, text)
	}

	if len(missing) > 0 {
		if err := c.translateMissing(ctx, missing, sourceLocale, target, resolved, blog); err != nil {
			return nil, blog, err
		}
	}

	out := make([]string, len(texts))
	for i, text := range texts {
		hash := hashFor[text]
		if cachedHashes[hash] {
			blog.CacheHits++
		} else {
			blog.CacheMisses++
		}
		out[i] = resolved[hash]
	}

	Debugf("translate batch: %d texts (%d unique, %d missing) %s->%s in %s [bytes=%d requests=%d glossary=%t]",
		len(texts), len(uniqueTexts), len(missing), sourceLocale, target,
		time.Since(started).Round(time.Millisecond), blog.TotalBytes, blog.Requests, blog.GlossaryApplied)

	return out, blog, nil
}

// translateMissing chunks, translates, sanitizes and persists the
// cache misses, filling resolved keyed by source-text hash.
func (c *BatchClient) translateMissing(ctx context.Context, missing []string, sourceLocale, target string, resolved map[string]string, blog *BatchLog) error {
	var pieces []piece
	partTotals := make([]int, len(missing))
	for ti, text := range missing {
		parts := splitOversized(text, c.chunkBytes)
		partTotals[ti] = len(parts)
		for pi, part := range parts {
			pieces = append(pieces, piece{textIdx: ti, partIdx: pi, source: part})
		}
	}

	chunks := packChunks(pieces, c.chunkBytes)

	partsDone := make([]int, len(missing))
	partResults := make([][]string, len(missing))
	for ti := range missing {
		partResults[ti] = make([]string, partTotals[ti])
	}

	for _, chunk := range chunks {
		contents := make([]string, len(chunk))
		for i, p := range chunk {
			contents[i] = p.source
		}

		translations, err := c.translateChunk(ctx, contents, sourceLocale, target, blog)
		if err != nil {
			return err
		}

		for i, p := range chunk {
			partResults[p.textIdx][p.partIdx] = translations[i]
			partsDone[p.textIdx]++
		}

		// Persist every text completed by this chunk before moving on,
		// so earlier progress survives a later chunk failing.
		for _, p := range chunk {
			ti := p.textIdx
			if partsDone[ti] != partTotals[ti] {
				continue
			}
			text := missing[ti]
			hash := HashText(text)
			if _, done := resolved[hash]; done {
				continue
			}
			full := joinParts(partResults[ti])
			full = SanitizeTranslation(full, text, target)
			resolved[hash] = full
			if err := c.store.Set(ctx, CacheKey(hash, target), full); err != nil {
				// A failed cache write costs a future provider call,
				// never the current translation.
				Debugf("cache set failed for %s: %v", CacheKey(hash, target), err)
			}
		}
	}

	return nil
}

// translateChunk issues one provider call with retries. When a glossary
// is configured, the glossary-aware call runs first; a glossary-not-
// found response retries the same chunk without glossary rather than
// failing the batch.
func (c *BatchClient) translateChunk(ctx context.Context, contents []string, sourceLocale, target string, blog *BatchLog) ([]string, error) {
	for _, s := range contents {
		blog.TotalBytes += len(s)
	}

	useGlossary := c.glossary != ""

	result, err := WithRetry(ctx, c.retry, func() (*ProviderResult, error) {
		blog.Requests++
		res, err := c.provider.Translate(ctx, ProviderRequest{
			Contents:           contents,
			SourceLanguageCode: BaseLang(sourceLocale),
			TargetLanguageCode: BaseLang(target),
			MimeType:           PlainTextMime,
			UseGlossary:        useGlossary,
		})
		var gnf *GlossaryNotFoundError
		if err != nil && useGlossary && errors.As(err, &gnf) {
			Debugf("glossary %q not found, retrying chunk without glossary", c.glossary)
			useGlossary = false
			blog.Requests++
			res, err = c.provider.Translate(ctx, ProviderRequest{
				Contents:           contents,
				SourceLanguageCode: BaseLang(sourceLocale),
				TargetLanguageCode: BaseLang(target),
				MimeType:           PlainTextMime,
			})
		}
		return res, err
	})
	if err != nil {
		return nil, err
	}
	if len(result.Translations) != len(contents) {
		return nil, &CountMismatchError{Expected: len(contents), Got: len(result.Translations)}
	}
	if result.GlossaryApplied {
		blog.GlossaryApplied = true
	}

	out := make([]string, len(contents))
	for i, translated := range result.Translations {
		out[i] = SanitizeTranslation(translated, contents[i], target)
	}
	return out, nil
}

// splitOversized hard-splits a string exceeding the byte limit at the
// rune boundary nearest its byte midpoint, recursively. The split may
// break mid-word; that is accepted so an oversized string can never
// wedge the whole batch.
func splitOversized(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	mid := len(text) / 2
	for mid < len(text) && !utf8.RuneStart(text[mid]) {
		mid++
	}
	if mid == len(text) {
		// No rune start in the back half: invalid UTF-8, or a single
		// rune wider than the limit. Split on the raw byte midpoint so
		// both halves always shrink.
		mid = len(text) / 2
	}
	left := splitOversized(text[:mid], limit)
	right := splitOversized(text[mid:], limit)
	return append(left, right...)
}

// packChunks greedily packs pieces into chunks whose cumulative UTF-8
// byte size stays within the limit. Pieces arrive pre-split, so each
// one fits on its own.
func packChunks(pieces []piece, limit int) [][]piece {
	var chunks [][]piece
	var current []piece
	currentBytes := 0
	for _, p := range pieces {
		size := len(p.source)
		if currentBytes+size > limit && len(current) > 0 {
			chunks = append(chunks, current)
			current = nil
			currentBytes = 0
		}
		current = append(current, p)
		currentBytes += size
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

// joinParts reassembles a split text's translated parts. Parts are
// exact substrings of the source, so plain concatenation restores the
// original boundaries.
func joinParts(parts []string) string {
	if len(parts) == 1 {
		return parts[0]
	}
	var out string
	for _, p := range parts {
		out += p
	}
	return out
}
