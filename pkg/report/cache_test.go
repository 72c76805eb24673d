package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvis-ai-be/internal/pkg/logger"
)

type memCache struct {
	data   map[string][]byte
	ttl    time.Duration
	getErr error
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (m *memCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	m.data[key] = val
	m.ttl = ttl
	return nil
}

type variantGenerator struct {
	*stubGenerator
}

func (v variantGenerator) Variant(message string) string { return message }

func TestCachedGenerator(t *testing.T) {
	t.Run("second call is served from cache", func(t *testing.T) {
		inner := &stubGenerator{name: "sales", body: "cached body"}
		cache := newMemCache()
		g := Cached(inner, cache, time.Minute, logger.NewNopLogger())

		first, err := g.Generate(context.Background(), testRequest("x"))
		require.NoError(t, err)
		second, err := g.Generate(context.Background(), testRequest("x"))
		require.NoError(t, err)

		assert.Equal(t, 1, inner.calls)
		assert.Equal(t, first, second)
		assert.Equal(t, time.Minute, cache.ttl)
		assert.Contains(t, cache.data, "report:sales:1:2025-06-01:2025-06-30:")
	})

	t.Run("errors are not cached", func(t *testing.T) {
		inner := &stubGenerator{name: "finance", err: errors.New("boom")}
		cache := newMemCache()
		g := Cached(inner, cache, time.Minute, logger.NewNopLogger())

		_, err := g.Generate(context.Background(), testRequest(""))
		assert.Error(t, err)
		assert.Empty(t, cache.data)
	})

	t.Run("cache read failure falls through", func(t *testing.T) {
		inner := &stubGenerator{name: "sales", body: "fresh"}
		cache := newMemCache()
		cache.getErr = errors.New("redis down")
		g := Cached(inner, cache, time.Minute, logger.NewNopLogger())

		sec, err := g.Generate(context.Background(), testRequest(""))
		require.NoError(t, err)
		assert.Equal(t, "fresh", sec.Body)
	})

	t.Run("variant separates keys", func(t *testing.T) {
		inner := variantGenerator{&stubGenerator{name: "mechanic_performance", body: "b"}}
		cache := newMemCache()
		g := Cached(inner, cache, time.Minute, logger.NewNopLogger())

		_, _ = g.Generate(context.Background(), testRequest("efficiency"))
		_, _ = g.Generate(context.Background(), testRequest("orders"))
		assert.Equal(t, 2, inner.calls)
		assert.Len(t, cache.data, 2)
	})

	t.Run("matcher is delegated", func(t *testing.T) {
		inner := gatedGenerator{&stubGenerator{name: "gated", applies: func(m string) bool { return m == "yes" }}}
		g := Cached(inner, newMemCache(), time.Minute, logger.NewNopLogger()).(Matcher)
		assert.True(t, g.Applies("yes"))
		assert.False(t, g.Applies("no"))
	})

	t.Run("nil cache returns the generator", func(t *testing.T) {
		inner := &stubGenerator{name: "sales"}
		assert.Same(t, inner, Cached(inner, nil, time.Minute, logger.NewNopLogger()))
		assert.Nil(t, NewRedisCache(nil))
	})
}
