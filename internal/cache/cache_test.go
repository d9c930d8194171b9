package cache

import (
	"context"
	"testing"
	"time"

	"team-service/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("SetGet", func(t *testing.T) {
		c := NewMemoryCache(10, time.Minute)
		defer c.Close()

		require.NoError(t, c.Set(ctx, "team:1:count_players", []byte("12"), 0))

		got, err := c.Get(ctx, "team:1:count_players")
		require.NoError(t, err)
		assert.Equal(t, []byte("12"), got)
	})

	t.Run("MissingKey", func(t *testing.T) {
		c := NewMemoryCache(10, time.Minute)
		defer c.Close()

		_, err := c.Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Expiry", func(t *testing.T) {
		c := NewMemoryCache(10, time.Minute)
		defer c.Close()

		now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		c.now = func() time.Time { return now }

		require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
		now = now.Add(2 * time.Second)

		_, err := c.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("EvictsWhenFull", func(t *testing.T) {
		c := NewMemoryCache(2, time.Minute)
		defer c.Close()

		require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Second))
		require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Hour))
		require.NoError(t, c.Set(ctx, "c", []byte("3"), time.Hour))

		assert.Equal(t, 2, c.Len())
		_, err := c.Get(ctx, "a")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = c.Get(ctx, "c")
		assert.NoError(t, err)
	})

	t.Run("Delete", func(t *testing.T) {
		c := NewMemoryCache(10, time.Minute)
		defer c.Close()

		require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
		require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
		require.NoError(t, c.Delete(ctx, "a", "b", "missing"))
		assert.Equal(t, 0, c.Len())
	})

	t.Run("CloseTwice", func(t *testing.T) {
		c := NewMemoryCache(10, time.Minute)
		assert.NoError(t, c.Close())
		assert.NoError(t, c.Close())
	})
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10, time.Minute)
	defer c.Close()

	type captain struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	require.NoError(t, SetJSON(ctx, c, "team:3:captain", captain{ID: 9, Name: "Scottie"}, 0))

	var got captain
	require.NoError(t, GetJSON(ctx, c, "team:3:captain", &got))
	assert.Equal(t, captain{ID: 9, Name: "Scottie"}, got)

	assert.ErrorIs(t, GetJSON(ctx, c, "team:4:captain", &got), ErrNotFound)
}

func TestNew(t *testing.T) {
	c, err := New(config.CacheConfig{Backend: "memory", TTLSeconds: 10})
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)
	c.Close()

	_, err = New(config.CacheConfig{Backend: "memcached"})
	assert.Error(t, err)

	_, err = New(config.CacheConfig{Backend: "redis", RedisURL: "://bad"})
	assert.Error(t, err)
}

func TestRedisCachePrefixKey(t *testing.T) {
	c := &RedisCache{prefix: "team-service:"}
	assert.Equal(t, "team-service:team:1:captain", c.prefixKey("team:1:captain"))
}
