// Command lingocached serves the translation cache endpoint and
// provides cache maintenance subcommands.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/motorplaza/lingocache"
	"github.com/motorplaza/lingocache/config"
	"github.com/motorplaza/lingocache/httpapi"
	"github.com/motorplaza/lingocache/provider"
	"github.com/motorplaza/lingocache/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           lingocache.Name,
		Short:         lingocache.Description,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the translation cache HTTP endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	lingocache.SetDebug(cfg.Debug)

	st, err := store.NewRedisStore(store.RedisConfig{
		URL:       cfg.Redis.URL,
		KeyPrefix: cfg.Redis.KeyPrefix,
	})
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer st.Close()

	providerCfg, err := cfg.ProviderConfig()
	if err != nil {
		return err
	}
	p, err := provider.Default(providerCfg)
	if err != nil {
		return err
	}

	// Resilience chain: circuit breaker inside, rate limit outside.
	// Retries live in the batch client's own policy.
	var translator lingocache.Provider = lingocache.NewBreakerProvider(p, lingocache.BreakerConfig{
		Timeout: cfg.BreakerTimeout,
	})
	if cfg.RateLimitRPM > 0 {
		translator = lingocache.NewRateLimitedProvider(translator, lingocache.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimitRPM,
		})
	}

	var batchOpts []lingocache.BatchOption
	if cfg.GoogleGlossaryID != "" {
		batchOpts = append(batchOpts, lingocache.WithGlossary(cfg.GoogleGlossaryID))
	}
	client := lingocache.NewBatchClient(translator, st, batchOpts...)
	orch := lingocache.NewOrchestrator(st, lingocache.NewFiller(st, client))

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httpapi.NewServer(orch).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("%s %s listening on %s", lingocache.Name, lingocache.FullVersion(), cfg.ListenAddr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newCacheCmd() *cobra.Command {
	cache := &cobra.Command{
		Use:   "cache",
		Short: "Cache maintenance",
	}

	cache.AddCommand(&cobra.Command{
		Use:   "export <file>",
		Short: "Export all cache entries to a JSON seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := connectStore()
			if err != nil {
				return err
			}
			defer st.Close()

			metadata := map[string]string{"exported_by": lingocache.UserAgent()}
			if err := store.ExportToFile(cmd.Context(), st, args[0], metadata); err != nil {
				return err
			}
			fmt.Printf("exported cache to %s\n", args[0])
			return nil
		},
	})

	cache.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Import cache entries from a JSON seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := connectStore()
			if err != nil {
				return err
			}
			defer st.Close()

			result, err := store.ImportFromFile(cmd.Context(), st, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("imported %d entries (%d failed)\n", result.Imported, result.Failed)
			return nil
		},
	})

	return cache
}

func connectStore() (*store.RedisStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	st, err := store.NewRedisStore(store.RedisConfig{
		URL:       cfg.Redis.URL,
		KeyPrefix: cfg.Redis.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return st, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n", lingocache.Name, lingocache.FullVersion())
			if lingocache.BuildDate != "unknown" && lingocache.BuildDate != "" {
				fmt.Printf("  built: %s\n", lingocache.BuildDate)
			}
		},
	}
}
