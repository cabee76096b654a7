// Package config loads environment-driven configuration for the
// translation cache service.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/motorplaza/lingocache/provider"
)

// Config holds the full service configuration.
type Config struct {
	ListenAddr    string
	DefaultLocale string
	Debug         bool

	Redis RedisConfig

	Provider               string
	GoogleCredentialsJSON  string
	GoogleCredentialsFile  string
	GoogleProjectID        string
	GoogleLocation         string
	GoogleFallbackLocation string
	GoogleGlossaryID       string
	OpenAIAPIKey           string
	OpenAIModel            string

	RateLimitRPM   int
	BreakerTimeout time.Duration
}

// RedisConfig holds the cache store connection settings.
type RedisConfig struct {
	URL       string
	KeyPrefix string
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("LINGOCACHE_LISTEN_ADDR", ":8080")
	v.SetDefault("LINGOCACHE_DEFAULT_LOCALE", "en")
	v.SetDefault("LINGOCACHE_PROVIDER", provider.KindGoogle)
	v.SetDefault("LINGOCACHE_RATE_LIMIT_RPM", 0)
	v.SetDefault("LINGOCACHE_BREAKER_TIMEOUT", "30s")
	v.SetDefault("REDIS_URL", "redis://localhost:6379")
	v.SetDefault("GOOGLE_LOCATION", "global")

	for _, key := range []string{
		"LINGOCACHE_DEBUG",
		"REDIS_KEY_PREFIX",
		"GOOGLE_CREDENTIALS_JSON",
		"GOOGLE_APPLICATION_CREDENTIALS",
		"GOOGLE_PROJECT_ID",
		"GOOGLE_FALLBACK_LOCATION",
		"GOOGLE_GLOSSARY_ID",
		"OPENAI_API_KEY",
		"OPENAI_MODEL",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	cfg := &Config{
		ListenAddr:    v.GetString("LINGOCACHE_LISTEN_ADDR"),
		DefaultLocale: v.GetString("LINGOCACHE_DEFAULT_LOCALE"),
		Debug:         v.GetBool("LINGOCACHE_DEBUG"),
		Redis: RedisConfig{
			URL:       v.GetString("REDIS_URL"),
			KeyPrefix: v.GetString("REDIS_KEY_PREFIX"),
		},
		Provider:               v.GetString("LINGOCACHE_PROVIDER"),
		GoogleCredentialsJSON:  v.GetString("GOOGLE_CREDENTIALS_JSON"),
		GoogleCredentialsFile:  v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
		GoogleProjectID:        v.GetString("GOOGLE_PROJECT_ID"),
		GoogleLocation:         v.GetString("GOOGLE_LOCATION"),
		GoogleFallbackLocation: v.GetString("GOOGLE_FALLBACK_LOCATION"),
		GoogleGlossaryID:       v.GetString("GOOGLE_GLOSSARY_ID"),
		OpenAIAPIKey:           v.GetString("OPENAI_API_KEY"),
		OpenAIModel:            v.GetString("OPENAI_MODEL"),
		RateLimitRPM:           v.GetInt("LINGOCACHE_RATE_LIMIT_RPM"),
		BreakerTimeout:         v.GetDuration("LINGOCACHE_BREAKER_TIMEOUT"),
	}

	return cfg, nil
}

// ProviderConfig maps the loaded environment onto a provider
// configuration. Credentials may come inline or from the conventional
// service-account file path.
func (c *Config) ProviderConfig() (provider.Config, error) {
	creds := []byte(c.GoogleCredentialsJSON)
	if len(creds) == 0 && c.GoogleCredentialsFile != "" {
		data, err := os.ReadFile(c.GoogleCredentialsFile)
		if err != nil {
			return provider.Config{}, fmt.Errorf("reading credentials file: %w", err)
		}
		creds = data
	}

	return provider.Config{
		Kind: c.Provider,
		Google: provider.GoogleConfig{
			CredentialsJSON:  creds,
			ProjectID:        c.GoogleProjectID,
			Location:         c.GoogleLocation,
			FallbackLocation: c.GoogleFallbackLocation,
			Glossary:         c.GoogleGlossaryID,
		},
		OpenAI: provider.OpenAIConfig{
			APIKey: c.OpenAIAPIKey,
			Model:  c.OpenAIModel,
		},
	}, nil
}
