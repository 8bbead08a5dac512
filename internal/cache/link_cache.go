// Package cache holds the Redis-backed hot path caches. The click redirect
// is the only latency-sensitive read in the service, so resolved tracking
// links are cached by short code.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ironcrest/sigforge/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultLinkTTL bounds how long a cached link can serve redirects after
// its row changes.
const DefaultLinkTTL = 5 * time.Minute

// Connect opens a Redis client from a redis:// URL and verifies it with a
// ping.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// LinkCache caches tracking links by short code.
type LinkCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewLinkCache creates a LinkCache. A zero ttl uses DefaultLinkTTL.
func NewLinkCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *LinkCache {
	if ttl <= 0 {
		ttl = DefaultLinkTTL
	}
	return &LinkCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "link_cache").Logger(),
	}
}

func linkKey(code string) string {
	return "sigforge:link:" + code
}

// Get returns the cached link for a short code, or nil on a miss. Cache
// errors are reported as misses so the redirect path can always fall
// through to the database.
func (c *LinkCache) Get(ctx context.Context, code string) *models.TrackingLink {
	data, err := c.client.Get(ctx, linkKey(code)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("code", code).Msg("link cache read failed")
		}
		return nil
	}

	var link models.TrackingLink
	if err := json.Unmarshal(data, &link); err != nil {
		c.logger.Warn().Err(err).Str("code", code).Msg("corrupt link cache entry")
		return nil
	}
	return &link
}

// Set caches a resolved link. Best effort.
func (c *LinkCache) Set(ctx context.Context, link *models.TrackingLink) {
	data, err := json.Marshal(link)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, linkKey(link.ShortCode), data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("code", link.ShortCode).Msg("link cache write failed")
	}
}

// Invalidate drops a cached link, for when its row is deactivated.
func (c *LinkCache) Invalidate(ctx context.Context, code string) {
	if err := c.client.Del(ctx, linkKey(code)).Err(); err != nil {
		c.logger.Warn().Err(err).Str("code", code).Msg("link cache invalidation failed")
	}
}
