package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/cs2trade/tradeupbot/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// defaultSnapshotTTL roughly matches the scanner's own rescan cadence.
const defaultSnapshotTTL = 15 * time.Minute

// SnapshotCache stores raw catalog payloads as JSON strings with a TTL.
//
// Key schema:
//
//	catalog:snapshot:{origin}:items   - JSON array of items
//	catalog:snapshot:{origin}:sources - JSON object of sources by ID
//
// origin names the provider the payload came from ("api", "postgres"), so a
// deployment switching providers never reads the other's data.
type SnapshotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSnapshotCache creates a SnapshotCache backed by the given Client.
// Non-positive TTLs fall back to the default.
func NewSnapshotCache(c *Client, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	return &SnapshotCache{rdb: c.Underlying(), ttl: ttl}
}

func itemsKey(origin string) string   { return "catalog:snapshot:" + origin + ":items" }
func sourcesKey(origin string) string { return "catalog:snapshot:" + origin + ":sources" }

// GetItems returns the cached item payload for one origin. It returns
// domain.ErrNotFound when the key does not exist or has expired.
func (sc *SnapshotCache) GetItems(ctx context.Context, origin string) ([]domain.Item, error) {
	data, err := sc.rdb.Get(ctx, itemsKey(origin)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get items %s: %w", origin, err)
	}

	var items []domain.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("redis: unmarshal items %s: %w", origin, err)
	}
	return items, nil
}

// SetItems stores the item payload for one origin with the configured TTL.
func (sc *SnapshotCache) SetItems(ctx context.Context, origin string, items []domain.Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("redis: marshal items %s: %w", origin, err)
	}
	if err := sc.rdb.Set(ctx, itemsKey(origin), data, sc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set items %s: %w", origin, err)
	}
	return nil
}

// GetSources returns the cached source payload for one origin. It returns
// domain.ErrNotFound when the key does not exist or has expired.
func (sc *SnapshotCache) GetSources(ctx context.Context, origin string) (map[string]domain.Source, error) {
	data, err := sc.rdb.Get(ctx, sourcesKey(origin)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get sources %s: %w", origin, err)
	}

	var sources map[string]domain.Source
	if err := json.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("redis: unmarshal sources %s: %w", origin, err)
	}
	return sources, nil
}

// SetSources stores the source payload for one origin with the configured TTL.
func (sc *SnapshotCache) SetSources(ctx context.Context, origin string, sources map[string]domain.Source) error {
	data, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("redis: marshal sources %s: %w", origin, err)
	}
	if err := sc.rdb.Set(ctx, sourcesKey(origin), data, sc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set sources %s: %w", origin, err)
	}
	return nil
}
