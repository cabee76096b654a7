package lingocache

import "context"

// MaxChunkBytes is the cumulative UTF-8 byte budget for a single
// provider request. The provider's payload limit is byte-based, so
// chunk packing measures encoded bytes, never runes.
const MaxChunkBytes = 5000

// PlainTextMime is the mime type sent with every provider request.
const PlainTextMime = "text/plain"

// Provider is the interface for external translation backends.
type Provider interface {
	Translate(ctx context.Context, req ProviderRequest) (*ProviderResult, error)
}

// ProviderRequest contains the parameters for one provider call.
type ProviderRequest struct {
	Contents           []string // Source strings, order-preserving
	SourceLanguageCode string
	TargetLanguageCode string
	MimeType           string
	UseGlossary        bool // Attempt a glossary-aware translation
}

// ProviderResult is the outcome of one provider call. Translations are
// aligned 1:1 with the request contents.
type ProviderResult struct {
	Translations    []string
	GlossaryApplied bool
}

// Store is the persistent cache store consumed by the batch client,
// orchestrator and filler. Implementations live in the store package.
//
// Get and GetMany report absence explicitly; an error means the store
// itself failed and callers decide how to degrade.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	GetMany(ctx context.Context, keys []string) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
}

// BatchLog captures diagnostic counters for one TranslateBatch call.
type BatchLog struct {
	TotalBytes      int  // UTF-8 bytes sent to the provider
	Requests        int  // Provider calls issued (including glossary retries)
	CacheHits       int  // Input entries satisfied from the store
	CacheMisses     int  // Input entries that required translation
	GlossaryApplied bool // At least one chunk used the glossary
}
