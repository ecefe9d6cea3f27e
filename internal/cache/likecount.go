package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// LikeCountCache keeps per-post like counts in Redis so hot list pages do
// not hammer the primary store. A nil client disables caching entirely;
// every lookup is then a miss and writes are no-ops.
type LikeCountCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLikeCountCache(client *redis.Client, ttl time.Duration) *LikeCountCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &LikeCountCache{client: client, ttl: ttl}
}

func key(postID string) string { return fmt.Sprintf("like:cnt:%s", postID) }

// Get returns the cached count and whether it was present.
func (c *LikeCountCache) Get(ctx context.Context, postID string) (int64, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}
	val, err := c.client.Get(ctx, key(postID)).Result()
	if err != nil {
		return 0, false
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c *LikeCountCache) Set(ctx context.Context, postID string, count int64) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Set(ctx, key(postID), count, c.ttl).Err()
}

// Invalidate drops the cached count; the next read repopulates it from the DB.
func (c *LikeCountCache) Invalidate(ctx context.Context, postID string) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, key(postID)).Err()
}
