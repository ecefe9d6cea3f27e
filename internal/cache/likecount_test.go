package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *LikeCountCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLikeCountCache(client, time.Minute)
}

func TestLikeCountCacheRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_, ok := c.Get(ctx, "p1")
	require.False(t, ok)

	c.Set(ctx, "p1", 7)
	n, ok := c.Get(ctx, "p1")
	require.True(t, ok)
	require.EqualValues(t, 7, n)

	c.Invalidate(ctx, "p1")
	_, ok = c.Get(ctx, "p1")
	require.False(t, ok)
}

func TestLikeCountCacheDisabled(t *testing.T) {
	// nil client disables the cache without panicking
	c := NewLikeCountCache(nil, time.Minute)
	ctx := context.Background()

	c.Set(ctx, "p1", 7)
	_, ok := c.Get(ctx, "p1")
	require.False(t, ok)
	c.Invalidate(ctx, "p1")

	var nilCache *LikeCountCache
	nilCache.Set(ctx, "p1", 7)
	_, ok = nilCache.Get(ctx, "p1")
	require.False(t, ok)
}
