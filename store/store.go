// Package store provides persistent cache store implementations.
//
// A store holds one document per cache key with the translated value
// and a server-assigned update timestamp. Entries never expire; the
// only cache bust is the key itself changing when the source text
// changes.
package store

import "context"

// Store is the interface for translation cache storage.
type Store interface {
	// Get retrieves a cached translation. The boolean reports
	// presence; "not found" is never an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// GetMany retrieves the given keys in one round trip. Absent keys
	// are simply missing from the result map.
	GetMany(ctx context.Context, keys []string) (map[string]string, error)

	// Set upserts a translation. Overwrites are idempotent; the store
	// records an update timestamp.
	Set(ctx context.Context, key, value string) error
}

// EntryLister is implemented by stores that can enumerate their
// entries, enabling export for warmup and migration.
type EntryLister interface {
	Entries(ctx context.Context) (map[string]string, error)
}
