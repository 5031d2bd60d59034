package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tagcord/tagcord-backend/pkg/logger"
)

// ListingCache stores serialized listing pages keyed by query descriptor.
// Invalidation bumps a generation counter instead of scanning keys: stale
// entries simply expire under their TTL while new reads miss past them.
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

const listingGenerationKey = "listing:generation"

func NewListingCache(client *redis.Client, ttl time.Duration) *ListingCache {
	return &ListingCache{client: client, ttl: ttl}
}

func (c *ListingCache) pageKey(ctx context.Context, descriptorKey string) (string, error) {
	gen, err := c.client.Get(ctx, listingGenerationKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return fmt.Sprintf("listing:%d:%s", gen, descriptorKey), nil
}

// GetPage returns the cached page payload for a descriptor, or ok=false on miss.
func (c *ListingCache) GetPage(ctx context.Context, descriptorKey string) ([]byte, bool) {
	key, err := c.pageKey(ctx, descriptorKey)
	if err != nil {
		logger.Warn("Listing cache read skipped", map[string]interface{}{"error": err.Error()})
		return nil, false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Warn("Listing cache read failed", map[string]interface{}{"error": err.Error()})
		return nil, false
	}
	return data, true
}

// SetPage stores a page payload under the current generation.
func (c *ListingCache) SetPage(ctx context.Context, descriptorKey string, payload []byte) {
	key, err := c.pageKey(ctx, descriptorKey)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		logger.Warn("Listing cache write failed", map[string]interface{}{"error": err.Error()})
	}
}

// Invalidate makes every cached page unreachable. Called after any tag mutation.
func (c *ListingCache) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, listingGenerationKey).Err(); err != nil {
		logger.Warn("Listing cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
}
