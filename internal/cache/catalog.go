// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// catalog.go provides a Valkey-backed JSON cache for storefront reads.
// Category trees, product listings, and product detail payloads are
// stored serialized so repeat requests skip the database entirely.
// Mutation handlers invalidate the affected keys; the cache itself never
// decides when data is stale beyond the TTL.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// catalogKeyPrefix namespaces all catalog cache keys in Valkey.
	catalogKeyPrefix = "catalog:"

	// DefaultTTL is how long a cached catalog response stays valid.
	DefaultTTL = 5 * time.Minute
)

// Well-known cache keys and key prefixes.
const (
	KeyCategoryTree       = "categories:tree"
	KeyCharacteristicTree = "characteristics:tree"
	KeyManufacturers      = "manufacturers"
	PrefixProducts        = "products:"
	PrefixProduct         = "product:"
)

// ProductKey returns the detail cache key for a product slug.
func ProductKey(slug string) string {
	return PrefixProduct + slug
}

// CatalogCache manages serialized catalog responses in Valkey.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache creates a catalog cache backed by the given Valkey client.
func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &CatalogCache{client: client, ttl: ttl}
}

// GetJSON loads a cached value into dest. Returns false on miss or any
// cache error — the caller falls back to the database either way.
func (c *CatalogCache) GetJSON(ctx context.Context, key string, dest any) bool {
	val, err := c.client.Get(ctx, catalogKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		slog.Warn("catalog cache get error", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(val, dest); err != nil {
		slog.Warn("catalog cache decode error", "key", key, "error", err)
		return false
	}
	slog.Debug("catalog cache hit", "key", key)
	return true
}

// SetJSON stores a value under key with the configured TTL. Failures are
// logged and swallowed — serving from the database is always possible.
func (c *CatalogCache) SetJSON(ctx context.Context, key string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		slog.Warn("catalog cache encode error", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, catalogKeyPrefix+key, payload, c.ttl).Err(); err != nil {
		slog.Warn("catalog cache set error", "key", key, "error", err)
	}
}

// Invalidate removes the given keys from the cache.
func (c *CatalogCache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = catalogKeyPrefix + k
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		slog.Warn("catalog cache invalidate error", "keys", keys, "error", err)
	}
	slog.Debug("catalog cache invalidated", "keys", keys)
}

// InvalidatePrefix removes every key under the given prefix by scanning.
// Used after mutations whose affected set is open-ended, e.g. any product
// change invalidates all cached product listings.
func (c *CatalogCache) InvalidatePrefix(ctx context.Context, prefix string) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, catalogKeyPrefix+prefix+"*", 100).Result()
		if err != nil {
			slog.Warn("catalog cache scan error", "prefix", prefix, "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("catalog cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("catalog cache prefix cleared", "prefix", prefix, "deleted", deleted)
	}
}
