package redis

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cs2trade/tradeupbot/internal/catalog"
	"github.com/cs2trade/tradeupbot/internal/domain"
)

// snapshotStore is the slice of SnapshotCache the provider needs, split out
// so tests can fake the cache without a server.
type snapshotStore interface {
	GetItems(ctx context.Context, origin string) ([]domain.Item, error)
	SetItems(ctx context.Context, origin string, items []domain.Item) error
	GetSources(ctx context.Context, origin string) (map[string]domain.Source, error)
	SetSources(ctx context.Context, origin string, sources map[string]domain.Source) error
}

// CachingProvider is a read-through catalog.Provider: serve from the cache
// when the payload is fresh, otherwise fall back to the wrapped provider and
// repopulate. Cache failures degrade to a direct fetch, never to a failed
// run.
type CachingProvider struct {
	next   catalog.Provider
	cache  snapshotStore
	origin string
	logger *slog.Logger
}

// NewCachingProvider wraps next with the snapshot cache. origin names the
// wrapped provider in the key schema.
func NewCachingProvider(next catalog.Provider, cache *SnapshotCache, origin string, logger *slog.Logger) *CachingProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachingProvider{
		next:   next,
		cache:  cache,
		origin: origin,
		logger: logger.With(slog.String("component", "catalog_cache")),
	}
}

// Items returns the cached item payload, falling back to the wrapped
// provider on a miss or a cache failure.
func (p *CachingProvider) Items(ctx context.Context) ([]domain.Item, error) {
	items, err := p.cache.GetItems(ctx, p.origin)
	if err == nil {
		p.logger.Debug("items served from cache", slog.Int("count", len(items)))
		return items, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		p.logger.Warn("items cache read failed, falling back", slog.String("error", err.Error()))
	}

	items, err = p.next.Items(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.cache.SetItems(ctx, p.origin, items); err != nil {
		p.logger.Warn("items cache write failed", slog.String("error", err.Error()))
	}
	return items, nil
}

// Sources returns the cached source payload, falling back to the wrapped
// provider on a miss or a cache failure.
func (p *CachingProvider) Sources(ctx context.Context) (map[string]domain.Source, error) {
	sources, err := p.cache.GetSources(ctx, p.origin)
	if err == nil {
		p.logger.Debug("sources served from cache", slog.Int("count", len(sources)))
		return sources, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		p.logger.Warn("sources cache read failed, falling back", slog.String("error", err.Error()))
	}

	sources, err = p.next.Sources(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.cache.SetSources(ctx, p.origin, sources); err != nil {
		p.logger.Warn("sources cache write failed", slog.String("error", err.Error()))
	}
	return sources, nil
}

// Compile-time interface check.
var _ catalog.Provider = (*CachingProvider)(nil)
