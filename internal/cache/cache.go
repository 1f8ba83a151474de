// Package cache provides a Redis read-through cache for the search
// payload, so every catalog page load does not hit PostgreSQL.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/tooldex/internal/logger"
)

// searchPayloadKey holds the rendered search payload JSON.
const searchPayloadKey = "tooldex:search-payload"

// SearchCache caches the serialized search payload with a TTL.
type SearchCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewSearchCache creates a SearchCache using the given client.
func NewSearchCache(client *redis.Client, ttl time.Duration, log logger.Logger) *SearchCache {
	return &SearchCache{
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

// Get returns the cached payload bytes, or ok=false on a miss.
// Redis errors degrade to a miss; the caller falls back to the store.
func (c *SearchCache) Get(ctx context.Context) ([]byte, bool) {
	data, err := c.client.Get(ctx, searchPayloadKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Search cache read failed", logger.Error(err))
		}
		return nil, false
	}
	return data, true
}

// Set stores the payload bytes with the configured TTL.
func (c *SearchCache) Set(ctx context.Context, payload []byte) {
	if err := c.client.Set(ctx, searchPayloadKey, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("Search cache write failed", logger.Error(err))
	}
}

// Invalidate drops the cached payload. Called when the catalog changes.
func (c *SearchCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, searchPayloadKey).Err(); err != nil {
		c.logger.Warn("Search cache invalidation failed", logger.Error(err))
	}
}
