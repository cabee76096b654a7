package lingocache

import (
	"context"
	"time"
)

// Orchestrator serves the synchronous translation path for page
// renders: best-available translations from the cache, source text for
// everything else, and a fire-and-forget background fill for the
// misses. Its latency is bounded by one store batch read; it never
// waits on the provider and it never returns an error.
type Orchestrator struct {
	store  Store
	filler *Filler
}

// NewOrchestrator creates an Orchestrator over the given store. The
// filler may be nil, in which case misses are returned as source text
// and no background fill happens.
func NewOrchestrator(store Store, filler *Filler) *Orchestrator {
	return &Orchestrator{store: store, filler: filler}
}

// TranslationsOrDefault returns one output per input text, aligned by
// index: the sanitized cached translation when present, the source
// text otherwise. When locale equals defaultLocale the inputs are
// returned unchanged with no store access. Store failures degrade to
// full source-text passthrough.
func (o *Orchestrator) TranslationsOrDefault(ctx context.Context, texts []string, locale, defaultLocale string) []string {
	out := make([]string, len(texts))
	copy(out, texts)

	if len(texts) == 0 || SameLocale(locale, defaultLocale) {
		return out
	}

	started := time.Now()
	target := NormalizeLocale(locale)

	keys := make([]string, len(texts))
	for i, text := range texts {
		keys[i] = TextKey(text, target)
	}

	cached, err := o.store.GetMany(ctx, keys)
	if err != nil {
		// A broken store must not break the render; the user sees
		// source text and the filler retries on its own read.
		Debugf("cache read failed, passing through source text: %v", err)
		o.fill(ctx, texts, defaultLocale, target)
		return out
	}

	var missing []string
	hits := 0
	for i, text := range texts {
		value, ok := cached[keys[i]]
		if !ok {
			missing = append(missing, text)
			continue
		}
		out[i] = SanitizeTranslation(value, text, target)
		hits++
	}

	Debugf("translations or default: %d texts, %d hits, %d missing, %s->%s in %s",
		len(texts), hits, len(missing), defaultLocale, target,
		time.Since(started).Round(time.Millisecond))

	if len(missing) > 0 {
		o.fill(ctx, missing, defaultLocale, target)
	}
	return out
}

// fill schedules a background fill. The goroutine detaches from the
// request's cancellation and traps panics so nothing can surface to
// the synchronous caller.
func (o *Orchestrator) fill(ctx context.Context, texts []string, sourceLocale, targetLocale string) {
	if o.filler == nil {
		return
	}
	background := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				Debugf("background fill panicked: %v", r)
			}
		}()
		o.filler.EnsureTranslations(background, texts, sourceLocale, targetLocale)
	}()
}
