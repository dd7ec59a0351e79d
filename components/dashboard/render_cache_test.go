package dashboard

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCacheStoresEntry(t *testing.T) {
	cache := NewRenderCache(time.Minute)
	calls := 0
	render := func() (string, error) {
		calls++
		return "html", nil
	}

	val1, err := cache.GetOrRender("key", render)
	require.NoError(t, err)
	val2, err := cache.GetOrRender("key", render)
	require.NoError(t, err)

	assert.Equal(t, "html", val1)
	assert.Equal(t, val1, val2)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, cache.Len())
}

func TestRenderCacheExpires(t *testing.T) {
	cache := NewRenderCache(time.Minute)
	now := time.Date(2024, 1, 30, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	calls := 0
	render := func() (string, error) {
		calls++
		return "fresh", nil
	}

	_, err := cache.GetOrRender("key", render)
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)
	_, err = cache.GetOrRender("key", render)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestRenderCacheDoesNotCacheErrors(t *testing.T) {
	cache := NewRenderCache(time.Minute)
	calls := 0
	render := func() (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("boom")
		}
		return "ok", nil
	}

	_, err := cache.GetOrRender("key", render)
	require.Error(t, err)
	html, err := cache.GetOrRender("key", render)
	require.NoError(t, err)
	assert.Equal(t, "ok", html)
}

func TestRenderCachePurge(t *testing.T) {
	cache := NewRenderCache(time.Minute)
	now := time.Date(2024, 1, 30, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	_, _ = cache.GetOrRender("a", func() (string, error) { return "a", nil })
	now = now.Add(2 * time.Minute)
	_, _ = cache.GetOrRender("b", func() (string, error) { return "b", nil })

	cache.Purge()
	assert.Equal(t, 1, cache.Len())
}

func TestRenderCacheSweepsExpiredKeysOnWrite(t *testing.T) {
	cache := NewRenderCache(time.Minute)
	now := time.Date(2024, 1, 30, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("trend:light:%d", i)
		_, err := cache.GetOrRender(key, func() (string, error) { return "chart", nil })
		require.NoError(t, err)
		now = now.Add(30 * time.Second)
	}

	assert.LessOrEqual(t, cache.Len(), 4)
}

func TestContentHashStable(t *testing.T) {
	data := []ChartData{{Date: "2024-01-30", Executions: 3}}
	assert.Equal(t, contentHash(data), contentHash([]ChartData{{Date: "2024-01-30", Executions: 3}}))
	assert.NotEqual(t, contentHash(data), contentHash([]ChartData{{Date: "2024-01-30", Executions: 4}}))
	assert.Equal(t, "empty", contentHash(nil))
}
