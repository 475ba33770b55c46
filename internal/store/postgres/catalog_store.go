package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cs2trade/tradeupbot/internal/domain"
)

// CatalogStore serves the catalog straight from the scanner's tables, for
// deployments colocated with its database. It implements catalog.Provider
// with two read paths and never writes.
type CatalogStore struct {
	pool *pgxpool.Pool
}

// NewCatalogStore creates a CatalogStore backed by the given connection pool.
func NewCatalogStore(pool *pgxpool.Pool) *CatalogStore {
	return &CatalogStore{pool: pool}
}

const itemCols = `id, name, COALESCE(price, 0), COALESCE(offers, 0),
	real_rarity, stattrak,
	COALESCE(min_float, 0), COALESCE(max_float, 1),
	COALESCE(real_min_float, 0), COALESCE(real_max_float, 0)`

// Items returns every catalog item with its container memberships attached.
// Rows with a tier the engine does not know are dropped, matching the REST
// provider.
func (s *CatalogStore) Items(ctx context.Context) ([]domain.Item, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+itemCols+` FROM scanner_item ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var it domain.Item
		var rarity string
		if err := rows.Scan(
			&it.ID, &it.Name, &it.Price, &it.Offers,
			&rarity, &it.StatTrak,
			&it.MinFloat, &it.MaxFloat,
			&it.RealMinFloat, &it.RealMaxFloat,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan item: %w", err)
		}
		r, err := domain.ParseRarity(rarity)
		if err != nil {
			continue
		}
		it.Rarity = r
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list items: %w", err)
	}

	members, err := s.memberships(ctx)
	if err != nil {
		return nil, err
	}
	bySource := make(map[string][]string)
	for _, m := range members {
		bySource[m.itemID] = append(bySource[m.itemID], m.sourceID)
	}
	for i := range items {
		items[i].SourceIDs = bySource[items[i].ID]
	}
	return items, nil
}

// Sources returns every container keyed by ID with its item memberships.
func (s *CatalogStore) Sources(ctx context.Context) (map[string]domain.Source, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, COALESCE(type, '') FROM scanner_source ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list sources: %w", err)
	}
	defer rows.Close()

	sources := make(map[string]domain.Source)
	for rows.Next() {
		var src domain.Source
		if err := rows.Scan(&src.ID, &src.Type); err != nil {
			return nil, fmt.Errorf("postgres: scan source: %w", err)
		}
		sources[src.ID] = src
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list sources: %w", err)
	}

	members, err := s.memberships(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		src, ok := sources[m.sourceID]
		if !ok {
			continue
		}
		src.ItemIDs = append(src.ItemIDs, m.itemID)
		sources[m.sourceID] = src
	}
	return sources, nil
}

type membership struct {
	sourceID string
	itemID   string
}

// memberships reads the source-item join table once, ordered so both
// directions of the stitch come out deterministic.
func (s *CatalogStore) memberships(ctx context.Context) ([]membership, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT source_id, item_id FROM scanner_source_items ORDER BY source_id, item_id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list source memberships: %w", err)
	}
	defer rows.Close()

	var out []membership
	for rows.Next() {
		var m membership
		if err := rows.Scan(&m.sourceID, &m.itemID); err != nil {
			return nil, fmt.Errorf("postgres: scan source membership: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list source memberships: %w", err)
	}
	return out, nil
}
