package finch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/finchdesk/finch/internal/constants"
)

// Static cache errors.
var (
	ErrCacheMiss         = errors.New("cache miss")
	ErrCacheDisabled     = errors.New("cache disabled")
	ErrCacheValueTooBig  = errors.New("cache value exceeds size limit")
	ErrNATSURLRequired   = errors.New("NATS URL required for NATS cache")
	ErrUnsupportedCache  = errors.New("unsupported cache type")
)

// CacheEntry is one cached response body.
type CacheEntry struct {
	Value     []byte
	ExpiresAt time.Time
}

// Expired reports whether the entry is past its TTL.
func (e *CacheEntry) Expired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// Cache is a pluggable response cache. Get returns ErrCacheMiss when the key
// is absent or expired.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// CacheKey derives a stable cache key from a request URL. Hashing keeps keys
// inside the character set every backend accepts.
func CacheKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))

	return hex.EncodeToString(sum[:])
}

// MemoryCache is an in-process Cache with a bounded entry count.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry
	maxSize int
}

// NewMemoryCache creates a memory cache holding at most maxSize entries.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = constants.DefaultCacheSize
	}

	return &MemoryCache{
		entries: make(map[string]*CacheEntry),
		maxSize: maxSize,
	}
}

// Get implements Cache.Get.
func (c *MemoryCache) Get(_ context.Context, key string) (*CacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}

	if entry.Expired() {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()

		return nil, ErrCacheMiss
	}

	return entry, nil
}

// Set implements Cache.Set.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if len(value) > constants.MaxCacheValueSize {
		return ErrCacheValueTooBig
	}

	entry := &CacheEntry{Value: value}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		c.evictLocked()
	}

	c.entries[key] = entry

	return nil
}

// evictLocked drops expired entries, then one arbitrary entry if the cache
// is still full. Caller holds the write lock.
func (c *MemoryCache) evictLocked() {
	for key, entry := range c.entries {
		if entry.Expired() {
			delete(c.entries, key)
		}
	}

	if len(c.entries) < c.maxSize {
		return
	}

	for key := range c.entries {
		delete(c.entries, key)

		return
	}
}

// Delete implements Cache.Delete.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)

	return nil
}

// Close implements Cache.Close.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*CacheEntry)

	return nil
}

// NATSKVConfig configures the NATS JetStream KV cache backend.
type NATSKVConfig struct {
	// URL is the NATS server URL, e.g. nats://127.0.0.1:4222.
	URL string

	// Bucket is the KV bucket name. Created on first use if absent.
	Bucket string

	// TTL is applied bucket-wide when the bucket is created.
	TTL time.Duration
}

// NATSKVCache stores responses in a NATS JetStream key-value bucket, letting
// multiple desktop-shell processes share one timeline cache.
type NATSKVCache struct {
	conn *nats.Conn
	kv   nats.KeyValue
}

// NewNATSKVCache connects to NATS and opens (or creates) the bucket.
func NewNATSKVCache(config *NATSKVConfig) (*NATSKVCache, error) {
	if config == nil || config.URL == "" {
		return nil, ErrNATSURLRequired
	}

	bucket := config.Bucket
	if bucket == "" {
		bucket = "finch-response-cache"
	}

	ttl := config.TTL
	if ttl <= 0 {
		ttl = constants.DefaultCacheTTL
	}

	conn, err := nats.Connect(config.URL, nats.Name("finch-response-cache"))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("opening JetStream context: %w", err)
	}

	kv, err := js.KeyValue(bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket: bucket,
			TTL:    ttl,
		})
	}

	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("opening KV bucket %q: %w", bucket, err)
	}

	return &NATSKVCache{conn: conn, kv: kv}, nil
}

// Get implements Cache.Get.
func (c *NATSKVCache) Get(_ context.Context, key string) (*CacheEntry, error) {
	entry, err := c.kv.Get(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, ErrCacheMiss
	}

	if err != nil {
		return nil, fmt.Errorf("reading cache key: %w", err)
	}

	return &CacheEntry{Value: entry.Value()}, nil
}

// Set implements Cache.Set. Expiry is governed by the bucket-wide TTL; the
// per-call ttl is accepted for interface compatibility.
func (c *NATSKVCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	if len(value) > constants.MaxCacheValueSize {
		return ErrCacheValueTooBig
	}

	_, err := c.kv.Put(key, value)
	if err != nil {
		return fmt.Errorf("writing cache key: %w", err)
	}

	return nil
}

// Delete implements Cache.Delete.
func (c *NATSKVCache) Delete(_ context.Context, key string) error {
	err := c.kv.Delete(key)
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("deleting cache key: %w", err)
	}

	return nil
}

// Close implements Cache.Close.
func (c *NATSKVCache) Close() error {
	c.conn.Close()

	return nil
}

// NoOpCache is a cache that does nothing (caching disabled).
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get always misses.
func (c *NoOpCache) Get(_ context.Context, _ string) (*CacheEntry, error) {
	return nil, ErrCacheDisabled
}

// Set discards the value.
func (c *NoOpCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}

// Delete does nothing.
func (c *NoOpCache) Delete(_ context.Context, _ string) error {
	return nil
}

// Close does nothing.
func (c *NoOpCache) Close() error {
	return nil
}
