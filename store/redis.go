package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/motorplaza/lingocache"
)

// Document field names. One Redis hash per cache key.
const (
	fieldValue     = "value"
	fieldUpdatedAt = "updated_at"
)

// RedisStore is a Redis-backed persistent cache store. Each key maps
// to one hash document holding the translated value and its update
// timestamp. Writes carry no TTL.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	now       func() time.Time
}

// RedisConfig holds configuration for the Redis store.
type RedisConfig struct {
	URL       string // Redis connection URL (e.g. "redis://localhost:6379")
	KeyPrefix string // Prefix for all keys (default: "lingocache:")
}

const defaultKeyPrefix = "lingocache:"

// NewRedisStore creates a Redis store and verifies connectivity.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewRedisStoreFromClient(client, cfg.KeyPrefix), nil
}

// NewRedisStoreFromClient creates a RedisStore from an existing client.
func NewRedisStoreFromClient(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix, now: time.Now}
}

// Get retrieves one document's value.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.HGet(ctx, s.keyPrefix+key, fieldValue).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, &lingocache.StoreError{Op: "get", Key: key, Cause: err}
	}
	return val, true, nil
}

// GetMany retrieves the given keys in a single pipelined round trip.
func (s *RedisStore) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.HGet(ctx, s.keyPrefix+key, fieldValue)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, &lingocache.StoreError{Op: "getmany", Cause: err}
	}

	for i, cmd := range cmds {
		val, err := cmd.Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, &lingocache.StoreError{Op: "getmany", Key: keys[i], Cause: err}
		}
		out[keys[i]] = val
	}
	return out, nil
}

// Set upserts one document with a fresh timestamp.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	err := s.client.HSet(ctx, s.keyPrefix+key,
		fieldValue, value,
		fieldUpdatedAt, s.now().UTC().Format(time.RFC3339),
	).Err()
	if err != nil {
		return &lingocache.StoreError{Op: "set", Key: key, Cause: err}
	}
	return nil
}

// Entries enumerates all documents under the store's prefix via SCAN.
func (s *RedisStore) Entries(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string)
	iter := s.client.Scan(ctx, 0, s.keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		full := iter.Val()
		val, err := s.client.HGet(ctx, full, fieldValue).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, &lingocache.StoreError{Op: "entries", Key: full, Cause: err}
		}
		out[full[len(s.keyPrefix):]] = val
	}
	if err := iter.Err(); err != nil {
		return nil, &lingocache.StoreError{Op: "entries", Cause: err}
	}
	return out, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping tests the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Verify RedisStore implements Store and EntryLister.
var (
	_ Store       = (*RedisStore)(nil)
	_ EntryLister = (*RedisStore)(nil)
)
