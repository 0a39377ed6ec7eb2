// Package cache provides an optional Redis-backed read cache for inquiry
// summaries. All failures are logged and treated as misses so a flaky Redis
// never breaks a read.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// SummaryCache stores rendered inquiry summaries keyed by session id.
type SummaryCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewSummaryCache connects to Redis at redisURL.
func NewSummaryCache(redisURL string, ttl time.Duration) (*SummaryCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewSummaryCacheWithClient(client, ttl), nil
}

// NewSummaryCacheWithClient creates a cache from an existing Redis client.
func NewSummaryCacheWithClient(client *redis.Client, ttl time.Duration) *SummaryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SummaryCache{
		client: client,
		prefix: "summary:",
		ttl:    ttl,
	}
}

func (c *SummaryCache) key(sessionID string) string {
	return c.prefix + sessionID
}

// Get returns the cached summary bytes for the session, or ok=false on a
// miss or any Redis failure.
func (c *SummaryCache) Get(ctx context.Context, sessionID string) ([]byte, bool) {
	value, err := c.client.Get(ctx, c.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		log.Printf("cache: get %s: %v", sessionID, err)
		return nil, false
	}
	return value, true
}

// Set stores the summary bytes under the session id with the configured TTL.
func (c *SummaryCache) Set(ctx context.Context, sessionID string, value []byte) {
	if err := c.client.Set(ctx, c.key(sessionID), value, c.ttl).Err(); err != nil {
		log.Printf("cache: set %s: %v", sessionID, err)
	}
}

// Invalidate drops the cached summary for the session.
func (c *SummaryCache) Invalidate(ctx context.Context, sessionID string) {
	if err := c.client.Del(ctx, c.key(sessionID)).Err(); err != nil {
		log.Printf("cache: invalidate %s: %v", sessionID, err)
	}
}

// Ping verifies Redis connectivity.
func (c *SummaryCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying Redis client.
func (c *SummaryCache) Close() error {
	return c.client.Close()
}
