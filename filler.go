package lingocache

import "context"

// Filler performs best-effort background cache fills. Every error is
// swallowed at this layer: a failed fill costs nothing but an
// untranslated string until the next request retries the same miss.
type Filler struct {
	store  Store
	client *BatchClient
}

// NewFiller creates a Filler over the given store and batch client.
func NewFiller(store Store, client *BatchClient) *Filler {
	return &Filler{store: store, client: client}
}

// EnsureTranslations translates whichever of texts are still missing
// from the cache and persists the results. The missing set is
// recomputed here rather than trusted from the caller, so concurrent
// fillers over overlapping texts stay correct: the worst case is a
// duplicate provider call whose idempotent write changes nothing.
func (f *Filler) EnsureTranslations(ctx context.Context, texts []string, sourceLocale, targetLocale string) {
	if len(texts) == 0 || SameLocale(sourceLocale, targetLocale) {
		return
	}

	target := NormalizeLocale(targetLocale)

	var uniqueTexts []string
	var uniqueKeys []string
	seen := make(map[string]bool, len(texts))
	for _, text := range texts {
		key := TextKey(text, target)
		if seen[key] {
			continue
		}
		seen[key] = true
		uniqueTexts = append(uniqueTexts, text)
		uniqueKeys = append(uniqueKeys, key)
	}

	cached, err := f.store.GetMany(ctx, uniqueKeys)
	if err != nil {
		Debugf("fill skipped, cache recheck failed: %v", err)
		return
	}

	var missing []string
	for i, text := range uniqueTexts {
		if _, ok := cached[uniqueKeys[i]]; !ok {
			missing = append(missing, text)
		}
	}
	if len(missing) == 0 {
		return
	}

	translations, _, err := f.client.TranslateBatch(ctx, missing, sourceLocale, target)
	if err != nil {
		Debugf("fill failed for %d texts %s->%s: %v", len(missing), sourceLocale, target, err)
		return
	}

	// TranslateBatch persists per chunk; writing again here keeps the
	// filler correct even with a client that skips persistence, and
	// upserts are idempotent.
	for i, text := range missing {
		if err := f.store.Set(ctx, TextKey(text, target), translations[i]); err != nil {
			Debugf("fill cache set failed: %v", err)
		}
	}
}
