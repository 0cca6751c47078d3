package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2, time.Minute)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))

	data, hit, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte("1"), data)

	// "b" is now least recently used and gets evicted.
	require.NoError(t, c.Set(ctx, "c", []byte("3"), 0))
	_, hit, _ = c.Get(ctx, "b")
	assert.False(t, hit)
	assert.Equal(t, 2, c.Len())

	require.NoError(t, c.Delete(ctx, "a"))
	_, hit, _ = c.Get(ctx, "a")
	assert.False(t, hit)
}

func TestMemoryCacheCopiesValues(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0, 0)

	buf := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", buf, 0))
	buf[0] = 'x'

	data, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(data))
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(4, 10*time.Millisecond)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	assert.Eventually(t, func() bool {
		_, hit, _ := c.Get(ctx, "k")
		return !hit
	}, time.Second, 5*time.Millisecond)
}
