// Package lingocache implements an on-demand translation cache with
// asynchronous fallback filling.
//
// Rendered page text is looked up in a persistent store keyed by a
// content hash of the source string plus the target locale. Cache hits
// are returned immediately; misses fall back to the source text while a
// background filler translates the missing subset through an external
// provider and persists the results. Subsequent requests observe the
// filled cache.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//	    "os"
//
//	    "github.com/motorplaza/lingocache"
//	    "github.com/motorplaza/lingocache/provider"
//	    "github.com/motorplaza/lingocache/store"
//	)
//
//	func main() {
//	    st, err := store.NewRedisStore(store.RedisConfig{URL: "redis://localhost:6379"})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    p, err := provider.NewOpenAIProvider(provider.OpenAIConfig{APIKey: os.Getenv("OPENAI_API_KEY")})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    client := lingocache.NewBatchClient(p, st)
//	    orch := lingocache.NewOrchestrator(st, lingocache.NewFiller(st, client))
//
//	    // Returns cached translations instantly, source text for misses,
//	    // and schedules a background fill for whatever was missing.
//	    out := orch.TranslationsOrDefault(context.Background(),
//	        []string{"Welcome back"}, "fr", "en")
//	    fmt.Println(out[0])
//	}
package lingocache
