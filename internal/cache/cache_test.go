package cache

import (
	"context"
	"testing"
	"time"

	"mohaa-portal/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)
	defer c.Close()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "mohaa_api_a", []byte("alpha"), 10*time.Second))

	val, ok, err := c.Get(ctx, "mohaa_api_a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alpha", string(val))

	now = now.Add(10 * time.Second)
	_, ok, _ = c.Get(ctx, "mohaa_api_a")
	assert.False(t, ok, "entry must expire exactly at its ttl")

	c.sweep()
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCacheZeroTTLIsNoop(t *testing.T) {
	c := NewMemoryCache(0)
	defer c.Close()

	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), 0))
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCacheDeletePrefix(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)
	defer c.Close()

	c.Set(ctx, "mohaa_api_1", []byte("1"), time.Minute)
	c.Set(ctx, "mohaa_api_2", []byte("2"), time.Minute)
	c.Set(ctx, "other", []byte("3"), time.Minute)

	n, err := c.DeletePrefix(ctx, "mohaa_api_")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, c.Len())
}

func TestNewSelectsDriver(t *testing.T) {
	c, err := New(config.CacheConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.Equal(t, "memory", Name(c))
	c.Close()

	r, err := New(config.CacheConfig{Driver: "redis", RedisURL: "redis://localhost:6379/0", Prefix: "t:"})
	require.NoError(t, err)
	assert.Equal(t, "redis", Name(r))
	r.Close()

	_, err = New(config.CacheConfig{Driver: "redis", RedisURL: "::not a url"})
	assert.Error(t, err)

	_, err = New(config.CacheConfig{Driver: "disk"})
	assert.Error(t, err)
}
