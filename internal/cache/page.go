// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go provides a Valkey-backed cache of rendered public output keyed by
// site path. Entries for a path and its query variants ("/blog",
// "/blog?page=2") are dropped together when the path is revalidated.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached output.
	pageKeyPrefix = "page:"

	// DefaultPageTTL is how long rendered output stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// PageCache manages rendered-output caching in Valkey.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a new page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// Key returns the cache key for a site path and its raw query string.
func Key(path, rawQuery string) string {
	if rawQuery == "" {
		return path
	}
	return path + "?" + rawQuery
}

// Get retrieves cached output for a key. Returns false on miss.
func (pc *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := pc.client.Get(ctx, pageKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("page cache hit", "key", key)
	return val, true
}

// Set stores rendered output for a key with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, key string, body []byte) {
	if err := pc.client.Set(ctx, pageKeyPrefix+key, body, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "key", key, "error", err)
	}
}

// InvalidatePaths removes every cached entry for the given paths,
// including their query variants. It returns the first error seen.
func (pc *PageCache) InvalidatePaths(ctx context.Context, paths ...string) error {
	var firstErr error
	for _, p := range paths {
		keys := []string{pageKeyPrefix + p}
		variants, err := pc.scan(ctx, pageKeyPrefix+escapeGlob(p)+"\\?*")
		if err != nil && firstErr == nil {
			firstErr = err
		}
		keys = append(keys, variants...)
		if err := pc.client.Del(ctx, keys...).Err(); err != nil {
			slog.Warn("page cache invalidate error", "path", p, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		slog.Debug("page cache invalidated", "path", p, "keys", len(keys))
	}
	return firstErr
}

// InvalidateAll removes all cached output by scanning for the prefix.
// Used when site settings change, since any page could be affected.
func (pc *PageCache) InvalidateAll(ctx context.Context) error {
	keys, err := pc.scan(ctx, pageKeyPrefix+"*")
	if err != nil {
		return err
	}
	for start := 0; start < len(keys); start += 100 {
		end := min(start+100, len(keys))
		if err := pc.client.Del(ctx, keys[start:end]...).Err(); err != nil {
			slog.Warn("page cache bulk delete error", "error", err)
			return err
		}
	}
	if len(keys) > 0 {
		slog.Info("page cache fully cleared", "deleted", len(keys))
	}
	return nil
}

func (pc *PageCache) scan(ctx context.Context, match string) ([]string, error) {
	var (
		cursor uint64
		out    []string
	)
	for {
		keys, next, err := pc.client.Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			slog.Warn("page cache scan error", "match", match, "error", err)
			return out, err
		}
		out = append(out, keys...)
		cursor = next
		if cursor == 0 {
			return out, nil
		}
	}
}

// escapeGlob escapes the characters SCAN MATCH treats as pattern syntax.
func escapeGlob(s string) string {
	var b []byte
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\':
			b = append(b, '\\')
		}
		b = append(b, s[i])
	}
	return string(b)
}
