package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// SeedFormat is the JSON structure for cache export/import.
type SeedFormat struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Entries    []SeedEntry       `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// SeedEntry is a single exported cache entry.
type SeedEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Export writes a store's entries to w in JSON format. The store must
// support enumeration.
func Export(ctx context.Context, s Store, w io.Writer, metadata map[string]string) error {
	lister, ok := s.(EntryLister)
	if !ok {
		return fmt.Errorf("store type %T does not support export", s)
	}

	entries, err := lister.Entries(ctx)
	if err != nil {
		return fmt.Errorf("listing cache entries: %w", err)
	}

	seed := SeedFormat{
		Version:    "1.0",
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:    make([]SeedEntry, 0, len(entries)),
		Metadata:   metadata,
	}
	for key, value := range entries {
		seed.Entries = append(seed.Entries, SeedEntry{Key: key, Value: value})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(seed); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ExportToFile exports a store's entries to a file.
// The path is provided by the caller and is intentionally user-controlled.
func ExportToFile(ctx context.Context, s Store, path string, metadata map[string]string) error {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	return Export(ctx, s, f, metadata)
}

// ImportResult contains statistics about an import operation.
type ImportResult struct {
	Version  string
	Metadata map[string]string
	Imported int
	Failed   int
}

// Import reads seed entries from r and upserts them into the store.
// Re-importing the same seed is idempotent.
func Import(ctx context.Context, s Store, r io.Reader) (*ImportResult, error) {
	var seed SeedFormat
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}

	result := &ImportResult{
		Version:  seed.Version,
		Metadata: seed.Metadata,
	}
	for _, e := range seed.Entries {
		if err := s.Set(ctx, e.Key, e.Value); err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}
	return result, nil
}

// ImportFromFile imports seed entries from a file.
// The path is provided by the caller and is intentionally user-controlled.
func ImportFromFile(ctx context.Context, s Store, path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return Import(ctx, s, f)
}
