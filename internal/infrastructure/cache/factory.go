package cache

import (
	"fmt"
	"net"
	"strconv"

	"github.com/inventa/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StoreFactory builds the configured ResponseStore
type StoreFactory struct {
	redis                 config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// StoreFactoryOption configures a StoreFactory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the factory logger
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to
// the in-memory store. Defaults to true.
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStoreFactory creates a factory for the given Redis settings
func NewStoreFactory(redisCfg config.RedisConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		redis:                 redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns a store for backend ("memory" or "redis")
func (f *StoreFactory) Create(backend string) (ResponseStore, error) {
	switch backend {
	case config.IdempotencyBackendMemory:
		f.logger.Info("Using in-memory idempotency store")
		return NewMemoryStore(0), nil
	case config.IdempotencyBackendRedis:
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", backend)
	}

	store, err := NewRedisStore(RedisOptions{
		Addr:     net.JoinHostPort(f.redis.Host, strconv.Itoa(f.redis.Port)),
		Password: f.redis.Password,
		DB:       f.redis.DB,
	})
	if err == nil {
		f.logger.Info("Using Redis idempotency store",
			zap.String("host", f.redis.Host), zap.Int("port", f.redis.Port))
		return store, nil
	}
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store; "+
		"keys will not be shared between instances",
		zap.Error(err),
	)
	return NewMemoryStore(0), nil
}
