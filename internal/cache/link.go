package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/afftrack/afftrack/internal/model"
)

// Cache key prefixes and TTLs.
const (
	slugKeyPrefix     = "link:slug:"
	negCacheKeySuffix = ":neg"

	// DefaultLinkTTL is the TTL for cached link data on the redirect path.
	DefaultLinkTTL = 1 * time.Hour

	// NegativeCacheTTL is the TTL for negative cache entries.
	NegativeCacheTTL = 5 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// GetLink retrieves a cached link by slug.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetLink(ctx context.Context, slug string) (*model.CachedLink, error) {
	key := slugKeyPrefix + slug

	result, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	if len(result) == 0 {
		return nil, ErrCacheMiss
	}

	return &model.CachedLink{
		ID:           result["id"],
		Destination:  result["destination"],
		RedirectType: result["redirect_type"],
		AutoRedirect: result["auto_redirect"],
		Active:       result["active"],
		UpdatedAt:    result["updated_at"],
	}, nil
}

// SetLink stores a link in cache keyed by slug.
func (c *Cache) SetLink(ctx context.Context, link *model.Link) error {
	key := slugKeyPrefix + link.Slug
	cached := link.ToCachedLink()

	fields := map[string]any{
		"id":            cached.ID,
		"destination":   cached.Destination,
		"redirect_type": cached.RedirectType,
		"auto_redirect": cached.AutoRedirect,
		"active":        cached.Active,
		"updated_at":    cached.UpdatedAt,
	}

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, DefaultLinkTTL)
	pipe.Del(ctx, key+negCacheKeySuffix)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache link: %w", err)
	}

	return nil
}

// DeleteLink removes a link from cache by slug.
// Called on update and delete so the redirect path never serves stale state
// for longer than one round trip.
func (c *Cache) DeleteLink(ctx context.Context, slug string) error {
	key := slugKeyPrefix + slug

	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.Del(ctx, key+negCacheKeySuffix)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete link from cache: %w", err)
	}

	return nil
}

// SetNegativeCache marks a slug as known-missing.
func (c *Cache) SetNegativeCache(ctx context.Context, slug string) error {
	key := slugKeyPrefix + slug + negCacheKeySuffix
	return c.client.Set(ctx, key, "1", NegativeCacheTTL).Err()
}

// IsNegativelyCached checks if a slug is marked as known-missing.
func (c *Cache) IsNegativelyCached(ctx context.Context, slug string) (bool, error) {
	key := slugKeyPrefix + slug + negCacheKeySuffix

	result, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return result > 0, nil
}
