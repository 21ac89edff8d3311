package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces idempotency keys in a shared Redis
const DefaultKeyPrefix = "inventa:idempotency:"

// RedisStore implements ResponseStore on Redis so that every API instance
// sees the same keys. Reservation is a single SETNX.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisOptions holds Redis connection settings
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisStoreWithClient(client, ""), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisStore) Reserve(ctx context.Context, key, fingerprint string, ttl time.Duration) (*Entry, error) {
	pending, err := json.Marshal(Entry{Fingerprint: fingerprint, Pending: true})
	if err != nil {
		return nil, err
	}

	// The key can expire between SETNX and GET; one retry covers that.
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, s.keyPrefix+key, pending, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to reserve idempotency key: %w", err)
		}
		if ok {
			return nil, nil
		}

		raw, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read idempotency key: %w", err)
		}
		var existing Entry
		if err := json.Unmarshal(raw, &existing); err != nil {
			return nil, fmt.Errorf("corrupt idempotency entry %q: %w", key, err)
		}
		return &existing, nil
	}
	return nil, fmt.Errorf("idempotency key %q changed during reservation", key)
}

func (s *RedisStore) Complete(ctx context.Context, key string, entry Entry, ttl time.Duration) error {
	entry.Pending = false
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.keyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store idempotent response: %w", err)
	}
	return nil
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Client exposes the underlying client for health checks and tests
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

var _ ResponseStore = (*RedisStore)(nil)
