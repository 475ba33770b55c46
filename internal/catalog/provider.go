package catalog

import (
	"context"
	"fmt"

	"github.com/cs2trade/tradeupbot/internal/domain"
)

// Provider supplies the raw catalog a run is built on. Implementations are
// one-shot readers: the scanner REST API, a read-only database mirror, or a
// cache wrapping either.
type Provider interface {
	Items(ctx context.Context) ([]domain.Item, error)
	Sources(ctx context.Context) (map[string]domain.Source, error)
}

// Load fetches the full catalog from p and builds an immutable snapshot.
// Any provider failure surfaces here, before any search work starts.
func Load(ctx context.Context, p Provider, opts Options) (*Snapshot, error) {
	items, err := p.Items(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch items: %w", err)
	}
	sources, err := p.Sources(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch sources: %w", err)
	}
	return NewSnapshot(items, sources, opts), nil
}
