package tilecache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	payload := []byte{1, 2, 3}

	key := Key("osm", "png", payload)
	assert.Equal(t, key, Key("osm", "png", []byte{1, 2, 3}))
	assert.Regexp(t, `^tile:osm:png:[0-9a-f]{16}$`, key)

	assert.NotEqual(t, key, Key("osm", "png", []byte{1, 2, 4}))
	assert.NotEqual(t, key, Key("osm", "jpeg", payload))
	assert.NotEqual(t, key, Key("topo", "png", payload))
	assert.NotEqual(t, key, Key("osm", "png", payload, "scale=1000"))
	assert.NotEqual(t, Key("osm", "png", payload, "a", "bc"), Key("osm", "png", payload, "ab", "c"))
}

func testCache(t *testing.T, cache Cache) {
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "k1", []byte("v1")))

	data, ok, err := cache.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), data)
}

func TestLRUCache(t *testing.T) {
	cache, err := NewLRUCache(2)
	require.NoError(t, err)

	testCache(t, cache)

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "k2", []byte("v2")))
	require.NoError(t, cache.Set(ctx, "k3", []byte("v3")))

	_, ok, err := cache.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Close())
	_, ok, err = cache.Get(ctx, "k3")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cache, err := NewRedisCache(context.Background(), mr.Addr(), time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	testCache(t, cache)

	assert.True(t, mr.Exists("k1"))
	assert.Equal(t, time.Minute, mr.TTL("k1"))

	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(context.Background(), "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewRedisCache_noAddress(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "", 0)
	require.Error(t, err)
}
