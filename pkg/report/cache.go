package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"jarvis-ai-be/internal/pkg/logger"
)

const CacheKeyPrefix = "report:"

// Cache is the byte store behind CachedGenerator.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

type redisCache struct {
	rdb *redis.Client
}

// NewRedisCache returns nil for a nil client, which disables caching.
func NewRedisCache(rdb *redis.Client) Cache {
	if rdb == nil {
		return nil
	}
	return &redisCache{rdb: rdb}
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, val, ttl).Err()
}

// CachedGenerator serves a generator's sections from the cache. Cache
// failures fall through to the generator; generator errors are not stored.
type CachedGenerator struct {
	inner  Generator
	cache  Cache
	ttl    time.Duration
	logger logger.ILogger
}

// Cached wraps g, or returns g unchanged when cache is nil.
func Cached(g Generator, cache Cache, ttl time.Duration, logger logger.ILogger) Generator {
	if cache == nil {
		return g
	}
	return &CachedGenerator{inner: g, cache: cache, ttl: ttl, logger: logger}
}

func (c *CachedGenerator) Name() string { return c.inner.Name() }

func (c *CachedGenerator) Applies(message string) bool {
	if m, ok := c.inner.(Matcher); ok {
		return m.Applies(message)
	}
	return true
}

func (c *CachedGenerator) Variant(message string) string {
	if v, ok := c.inner.(Varianter); ok {
		return v.Variant(message)
	}
	return ""
}

// CacheKey is report:<name>:<company>:<from>:<to>:<variant>.
func CacheKey(name string, req Request, variant string) string {
	return fmt.Sprintf("%s%s:%d:%s:%s:%s", CacheKeyPrefix, name, req.CompanyID,
		req.Period.FromString(), req.Period.ToString(), variant)
}

func (c *CachedGenerator) Generate(ctx context.Context, req Request) (*Section, error) {
	key := CacheKey(c.inner.Name(), req, c.Variant(req.Message))

	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("REPORT", "Report cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	if ok {
		var sec Section
		if err := json.Unmarshal(raw, &sec); err == nil {
			return &sec, nil
		}
	}

	sec, err := c.inner.Generate(ctx, req)
	if err != nil || sec == nil {
		return sec, err
	}

	if payload, err := json.Marshal(sec); err == nil {
		if err := c.cache.Set(ctx, key, payload, c.ttl); err != nil {
			c.logger.Warn("REPORT", "Report cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}
	return sec, nil
}
