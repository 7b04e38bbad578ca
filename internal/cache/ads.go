package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Altair788/DigitalBazaar/internal/domain"
)

const (
	adListKeyPrefix  = "ads:list:"
	adListVersionKey = "ads:list:version"
)

// ErrMiss is returned when the requested entry is not cached.
var ErrMiss = errors.New("cache miss")

// adListEntry is the cached shape of one ad listing page.
type adListEntry struct {
	Ads   []domain.Ad `json:"ads"`
	Total int64       `json:"total"`
}

// AdListCache caches ad listing pages in Redis. Invalidation bumps a version
// counter, which orphans all previously written pages until their TTL.
type AdListCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAdListCache creates a Redis-backed cache for ad listings.
func NewAdListCache(client *redis.Client, ttl time.Duration) *AdListCache {
	return &AdListCache{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a cached listing page. Returns ErrMiss when absent.
func (c *AdListCache) Get(ctx context.Context, key string) ([]domain.Ad, int64, error) {
	versioned, err := c.versionedKey(ctx, key)
	if err != nil {
		return nil, 0, err
	}

	data, err := c.client.Get(ctx, versioned).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, 0, ErrMiss
		}
		return nil, 0, fmt.Errorf("redis get ad listing: %w", err)
	}

	var entry adListEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, 0, fmt.Errorf("unmarshal ad listing: %w", err)
	}

	return entry.Ads, entry.Total, nil
}

// Set stores a listing page under the current version.
func (c *AdListCache) Set(ctx context.Context, key string, ads []domain.Ad, total int64) error {
	versioned, err := c.versionedKey(ctx, key)
	if err != nil {
		return err
	}

	data, err := json.Marshal(adListEntry{Ads: ads, Total: total})
	if err != nil {
		return fmt.Errorf("marshal ad listing: %w", err)
	}

	if err := c.client.Set(ctx, versioned, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set ad listing: %w", err)
	}

	return nil
}

// Invalidate drops all cached listing pages by bumping the version counter.
func (c *AdListCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, adListVersionKey).Err(); err != nil {
		return fmt.Errorf("redis bump ad listing version: %w", err)
	}
	return nil
}

func (c *AdListCache) versionedKey(ctx context.Context, key string) (string, error) {
	version, err := c.client.Get(ctx, adListVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("redis get ad listing version: %w", err)
	}
	return fmt.Sprintf("%s%d:%s", adListKeyPrefix, version, key), nil
}
