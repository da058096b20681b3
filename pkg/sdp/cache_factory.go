package sdp

import (
	"context"
	"errors"
	"fmt"

	"github.com/fivetwenty-io/sdp-client/internal/constants"
)

// Static errors for cache factory operations.
var (
	ErrCacheDisabled         = errors.New("cache disabled")
	ErrKeyNotFoundInAnyCache = errors.New("key not found in any cache")
)

// CacheType identifies a cache backend.
type CacheType string

const (
	// CacheTypeMemory is the in-process cache.
	CacheTypeMemory CacheType = "memory"

	// CacheTypeNATS shares cached responses through a NATS JetStream
	// key-value bucket.
	CacheTypeNATS CacheType = "nats"

	// CacheTypeNone disables caching.
	CacheTypeNone CacheType = "none"
)

// CacheConfig selects and configures a cache backend.
type CacheConfig struct {
	Type    CacheType
	MaxSize int
	NATS    *NATSKVConfig
	Options *CacheOptions
}

// DefaultCacheConfig returns an in-memory cache configuration.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Type:    CacheTypeMemory,
		MaxSize: constants.DefaultCacheSize,
		Options: DefaultCacheOptions(),
	}
}

// NewCacheFromConfig builds the backend the configuration names.
func NewCacheFromConfig(config *CacheConfig) (Cache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	switch config.Type {
	case CacheTypeMemory:
		return NewMemoryCache(config.MaxSize), nil
	case CacheTypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSURLRequired
		}

		return NewNATSKVCache(config.NATS)
	case CacheTypeNone:
		return NewNoOpCache(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCacheType, config.Type)
	}
}

// NoOpCache satisfies Cache while never storing anything.
type NoOpCache struct{}

// NewNoOpCache creates a disabled cache.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get always misses.
func (c *NoOpCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	return nil, ErrCacheDisabled
}

// Set discards the entry.
func (c *NoOpCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	return nil
}

// Delete is a no-op.
func (c *NoOpCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Clear is a no-op.
func (c *NoOpCache) Clear(ctx context.Context) error {
	return nil
}

// Has always reports false.
func (c *NoOpCache) Has(ctx context.Context, key string) bool {
	return false
}

// CacheBuilder assembles a cache configuration fluently.
type CacheBuilder struct {
	config *CacheConfig
}

// NewCacheBuilder starts from the default configuration.
func NewCacheBuilder() *CacheBuilder {
	return &CacheBuilder{config: DefaultCacheConfig()}
}

// WithType selects the backend.
func (b *CacheBuilder) WithType(cacheType CacheType) *CacheBuilder {
	b.config.Type = cacheType

	return b
}

// WithMaxSize bounds the in-memory backend.
func (b *CacheBuilder) WithMaxSize(maxSize int) *CacheBuilder {
	b.config.MaxSize = maxSize

	return b
}

// WithNATS configures the NATS backend and selects it.
func (b *CacheBuilder) WithNATS(natsConfig *NATSKVConfig) *CacheBuilder {
	b.config.Type = CacheTypeNATS
	b.config.NATS = natsConfig

	return b
}

// WithOptions overrides the common cache options.
func (b *CacheBuilder) WithOptions(options *CacheOptions) *CacheBuilder {
	b.config.Options = options

	return b
}

// Build constructs the configured cache.
func (b *CacheBuilder) Build() (Cache, error) {
	return NewCacheFromConfig(b.config)
}

// CacheChain layers caches so a fast local level fronts a shared one. Reads
// try each level in order and backfill earlier levels on a hit; writes go to
// every level.
type CacheChain struct {
	caches []Cache
}

// NewCacheChain layers the given caches, fastest first.
func NewCacheChain(caches ...Cache) *CacheChain {
	return &CacheChain{caches: caches}
}

// Get returns the first hit, backfilling the levels in front of it.
func (c *CacheChain) Get(ctx context.Context, key string) (*CacheEntry, error) {
	for i, cache := range c.caches {
		entry, err := cache.Get(ctx, key)
		if err != nil {
			continue
		}

		for j := 0; j < i; j++ {
			_ = c.caches[j].Set(ctx, key, entry)
		}

		return entry, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrKeyNotFoundInAnyCache, key)
}

// Set stores the entry in every level.
func (c *CacheChain) Set(ctx context.Context, key string, entry *CacheEntry) error {
	for _, cache := range c.caches {
		if err := cache.Set(ctx, key, entry); err != nil {
			return err
		}
	}

	return nil
}

// Delete removes the entry from every level.
func (c *CacheChain) Delete(ctx context.Context, key string) error {
	for _, cache := range c.caches {
		if err := cache.Delete(ctx, key); err != nil {
			return err
		}
	}

	return nil
}

// Clear empties every level.
func (c *CacheChain) Clear(ctx context.Context) error {
	for _, cache := range c.caches {
		if err := cache.Clear(ctx); err != nil {
			return err
		}
	}

	return nil
}

// Has reports whether any level holds the key.
func (c *CacheChain) Has(ctx context.Context, key string) bool {
	for _, cache := range c.caches {
		if cache.Has(ctx, key) {
			return true
		}
	}

	return false
}
