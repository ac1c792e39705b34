// internal/search/cache.go
package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"costli-agents/internal/common/database"
	"costli-agents/internal/common/logger"
	"costli-agents/internal/models"
)

type cached struct {
	next   Engine
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

// Cache puts a Redis read-through cache in front of an engine. Cache
// failures are logged and the engine is called directly.
func Cache(next Engine, redis *database.RedisClient, ttl time.Duration, log logger.Logger) Engine {
	return &cached{next: next, redis: redis, ttl: ttl, logger: log}
}

func CacheKey(query string, max int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", query, max)))
	return "search:" + hex.EncodeToString(sum[:])
}

func (c *cached) Name() string { return c.next.Name() }

func (c *cached) Search(ctx context.Context, query string, max int) ([]models.SearchResult, error) {
	key := CacheKey(query, max)

	var hit []models.SearchResult
	err := c.redis.GetJSON(ctx, key, &hit)
	switch {
	case err == nil:
		c.logger.Debug("search cache hit", map[string]interface{}{"query": query})
		return hit, nil
	case !errors.Is(err, database.ErrCacheMiss):
		c.logger.Warn("search cache read failed", map[string]interface{}{"error": err.Error()})
	}

	results, err := c.next.Search(ctx, query, max)
	if err != nil {
		return nil, err
	}
	if len(results) > 0 {
		if err := c.redis.SetJSON(ctx, key, results, c.ttl); err != nil {
			c.logger.Warn("search cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return results, nil
}
