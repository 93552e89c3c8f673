// Package searchcache keeps recent remote search results in Redis so that
// repeated inline keystrokes for the same term skip the catalog API. The
// cache is a transparent optimization: cached-vs-pending partitioning still
// happens per request against Postgres, so a stale entry only affects
// ranking metadata, never cache-state decisions.
package searchcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Stockpesce/deezer-bot/internal/deezer"
)

const defaultTTL = 5 * time.Minute

// Cache wraps a Redis client. A nil *Cache is valid and caches nothing,
// which is how the bot runs when no Redis address is configured.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, addr string, ttl time.Duration, log zerolog.Logger) (*Cache, error) {
	if ttl == 0 {
		ttl = defaultTTL
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Cache{rdb: rdb, ttl: ttl, log: log}, nil
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

func key(term string, limit int) string {
	return fmt.Sprintf("search:%d:%s", limit, strings.ToLower(strings.TrimSpace(term)))
}

// Get returns the cached result list for a term, if present.
func (c *Cache) Get(ctx context.Context, term string, limit int) ([]deezer.Track, bool) {
	if c == nil {
		return nil, false
	}

	raw, err := c.rdb.Get(ctx, key(term, limit)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Msg("search cache read failed")
		}
		return nil, false
	}

	var tracks []deezer.Track
	if err := json.Unmarshal(raw, &tracks); err != nil {
		c.log.Warn().Err(err).Msg("search cache entry corrupt")
		return nil, false
	}

	return tracks, true
}

// Set stores a result list. Failures are logged and swallowed; the cache
// never fails a search.
func (c *Cache) Set(ctx context.Context, term string, limit int, tracks []deezer.Track) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(tracks)
	if err != nil {
		c.log.Warn().Err(err).Msg("search cache encode failed")
		return
	}
	if err := c.rdb.Set(ctx, key(term, limit), raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Msg("search cache write failed")
	}
}
