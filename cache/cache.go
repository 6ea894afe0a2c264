// cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	logger "github.com/bookhive/api/logging"
)

// deleteBatchSize caps how many keys a single pipelined DEL carries.
const deleteBatchSize = 500

// Cache is a namespaced TTL key-value store on top of Redis. It is an
// optimization layer: read and write failures are logged and swallowed, so
// callers always degrade to recomputing. The one consumer for which the
// cache is the source of truth (refresh sessions) handles absence itself.
type Cache struct {
	client    *redis.Client
	prefix    string
	opTimeout time.Duration
}

// New creates a Cache. All keys are namespaced under prefix to avoid
// collisions with unrelated consumers of the same Redis instance. Every
// operation runs under opTimeout so a stalled backend cannot stall a request.
func New(client *redis.Client, prefix string, opTimeout time.Duration) *Cache {
	if opTimeout <= 0 {
		opTimeout = 2 * time.Second
	}
	return &Cache{
		client:    client,
		prefix:    prefix,
		opTimeout: opTimeout,
	}
}

func (c *Cache) key(key string) string {
	return c.prefix + ":" + key
}

func (c *Cache) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.opTimeout)
}

// Get returns the raw string stored under key. A backend error is treated
// as a miss, never surfaced to the caller.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	value, err := c.client.Get(ctx, c.key(key)).Result()
	if err == redis.Nil {
		return "", false
	} else if err != nil {
		logger.Warn("Cache read failed, treating as miss",
			zap.String("key", key),
			zap.Error(err))
		return "", false
	}
	return value, true
}

// GetJSON unmarshals the value stored under key into dest. Missing keys,
// backend errors and undecodable payloads all report a miss.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	value, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(value), dest); err != nil {
		logger.Warn("Cache entry is not valid JSON, treating as miss",
			zap.String("key", key),
			zap.Error(err))
		return false
	}
	return true
}

// Set stores value under key. Strings and byte slices are stored as-is,
// everything else is JSON-encoded. ttl of zero means no expiry. Failures
// are logged and swallowed.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	payload, err := encode(value)
	if err != nil {
		logger.Error("Failed to encode cache value",
			zap.String("key", key),
			zap.Error(err))
		return
	}

	ctx, cancel := c.opContext(ctx)
	defer cancel()

	if err := c.client.Set(ctx, c.key(key), payload, ttl).Err(); err != nil {
		logger.Warn("Cache write failed",
			zap.String("key", key),
			zap.Error(err))
	}
}

// Delete removes the given keys. Best-effort: absence is not an error and
// backend failures are swallowed.
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	namespaced := make([]string, len(keys))
	for i, key := range keys {
		namespaced[i] = c.key(key)
	}

	ctx, cancel := c.opContext(ctx)
	defer cancel()

	if err := c.client.Del(ctx, namespaced...).Err(); err != nil {
		logger.Warn("Cache delete failed",
			zap.Strings("keys", keys),
			zap.Error(err))
	}
}

// DeletePattern removes every key matching the glob-style pattern, e.g.
// "user:42:*". Keys are resolved with SCAN and deleted in pipelined batches.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) {
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	var (
		batch []string
		total int
	)
	iter := c.client.Scan(ctx, 0, c.key(pattern), 0).Iterator()
	flush := func() {
		if len(batch) == 0 {
			return
		}
		pipe := c.client.Pipeline()
		pipe.Del(ctx, batch...)
		if _, err := pipe.Exec(ctx); err != nil {
			logger.Warn("Cache pattern delete batch failed",
				zap.String("pattern", pattern),
				zap.Error(err))
		}
		total += len(batch)
		batch = batch[:0]
	}
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= deleteBatchSize {
			flush()
		}
	}
	if err := iter.Err(); err != nil {
		logger.Warn("Cache pattern scan failed",
			zap.String("pattern", pattern),
			zap.Error(err))
	}
	flush()

	logger.Debug("Cache pattern delete finished",
		zap.String("pattern", pattern),
		zap.Int("deleted", total))
}

// Increment atomically increments the counter under key and refreshes its
// TTL, returning the post-increment value. Used for rate-style counters.
func (c *Cache) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	pipe := c.client.Pipeline()
	incr := pipe.Incr(ctx, c.key(key))
	if ttl > 0 {
		pipe.Expire(ctx, c.key(key), ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}
	return incr.Val(), nil
}

// GetOrSet returns the cached value under key, or invokes producer, caches
// its result and returns it. There is no cross-request single-flight:
// concurrent misses for the same key may each run the producer. That is
// acceptable here because producers are idempotent reads.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, producer func(context.Context) (T, error)) (T, error) {
	var cached T
	if c.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	value, err := producer(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	c.Set(ctx, key, value, ttl)
	return value, nil
}

func encode(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string, []byte:
		return v, nil
	default:
		payload, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return payload, nil
	}
}
