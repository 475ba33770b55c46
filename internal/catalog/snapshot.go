package catalog

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/cs2trade/tradeupbot/internal/domain"
)

// DefaultMinOffers is the liquidity threshold below which an item is
// considered untradable: prices back a contract only when strictly more
// offers than this exist.
const DefaultMinOffers = 50

// Options tune snapshot construction.
type Options struct {
	// MinOffers is the liquidity threshold. Zero disables the filter.
	MinOffers int
	// DedupeByName keeps only the most liquid variant per display name,
	// for providers that cannot merge duplicate listings themselves.
	DedupeByName bool
}

// DefaultOptions mirror the scanner's own ingestion defaults.
func DefaultOptions() Options {
	return Options{MinOffers: DefaultMinOffers, DedupeByName: true}
}

type tierKey struct {
	rarity   domain.Rarity
	stattrak bool
}

// Snapshot is the immutable catalog view a whole run works from. All
// accessors return internal state that callers must treat as read-only;
// nothing mutates a snapshot after NewSnapshot returns.
type Snapshot struct {
	opts     Options
	items    map[string]*domain.Item
	sources  map[string]domain.Source
	byTier   map[tierKey][]*domain.Item
	bySource map[string]map[tierKey][]*domain.Item
}

// NewSnapshot indexes the raw catalog. Items with an unset wear-clamped
// range get one derived from their display name.
func NewSnapshot(items []domain.Item, sources map[string]domain.Source, opts Options) *Snapshot {
	if opts.DedupeByName {
		items = dedupeByName(items)
	}

	s := &Snapshot{
		opts:     opts,
		items:    make(map[string]*domain.Item, len(items)),
		sources:  sources,
		byTier:   make(map[tierKey][]*domain.Item),
		bySource: make(map[string]map[tierKey][]*domain.Item, len(sources)),
	}

	for i := range items {
		it := items[i]
		if it.RealMinFloat == 0 && it.RealMaxFloat == 0 {
			wlo, whi := domain.WearRangeFromName(it.Name)
			it.RealMinFloat = math.Max(it.MinFloat, wlo)
			it.RealMaxFloat = math.Min(it.MaxFloat, whi)
		}
		s.items[it.ID] = &it
	}

	for id := range s.items {
		it := s.items[id]
		k := tierKey{rarity: it.Rarity, stattrak: it.StatTrak}
		s.byTier[k] = append(s.byTier[k], it)
	}
	for _, group := range s.byTier {
		sortByID(group)
	}

	for srcID, src := range sources {
		tiers := make(map[tierKey][]*domain.Item)
		for _, itemID := range src.ItemIDs {
			it, ok := s.items[itemID]
			if !ok {
				continue
			}
			k := tierKey{rarity: it.Rarity, stattrak: it.StatTrak}
			tiers[k] = append(tiers[k], it)
		}
		for _, group := range tiers {
			sortByID(group)
		}
		s.bySource[srcID] = tiers
	}

	return s
}

// Item looks up one item by ID.
func (s *Snapshot) Item(id string) (*domain.Item, bool) {
	it, ok := s.items[id]
	return it, ok
}

// Source looks up one source by ID.
func (s *Snapshot) Source(id string) (domain.Source, bool) {
	src, ok := s.sources[id]
	return src, ok
}

// SourceIDs returns every source ID in lexical order.
func (s *Snapshot) SourceIDs() []string {
	ids := lo.Keys(s.sources)
	sort.Strings(ids)
	return ids
}

// TierItems returns the items of one tier and StatTrak flag, ordered by ID.
func (s *Snapshot) TierItems(r domain.Rarity, stattrak bool) []*domain.Item {
	return s.byTier[tierKey{rarity: r, stattrak: stattrak}]
}

// SourceTierItems returns the items a source can drop at one tier and
// StatTrak flag, ordered by ID.
func (s *Snapshot) SourceTierItems(srcID string, r domain.Rarity, stattrak bool) []*domain.Item {
	return s.bySource[srcID][tierKey{rarity: r, stattrak: stattrak}]
}

// LiquidPrice returns the item's price, zeroed when its offer count does
// not clear the liquidity threshold.
func (s *Snapshot) LiquidPrice(it *domain.Item) float64 {
	if it.Offers > s.opts.MinOffers {
		return it.Price
	}
	return 0
}

// MinOffers reports the liquidity threshold the snapshot was built with.
func (s *Snapshot) MinOffers() int { return s.opts.MinOffers }

// Len returns the number of items after deduplication.
func (s *Snapshot) Len() int { return len(s.items) }

// SourceCount returns the number of known sources.
func (s *Snapshot) SourceCount() int { return len(s.sources) }

func sortByID(items []*domain.Item) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}

// dedupeByName collapses listings sharing a display name to the variant
// with the most offers, breaking ties by lowest ID.
func dedupeByName(items []domain.Item) []domain.Item {
	groups := lo.GroupBy(items, func(it domain.Item) string { return it.Name })
	names := lo.Keys(groups)
	sort.Strings(names)

	out := make([]domain.Item, 0, len(names))
	for _, name := range names {
		best := lo.MaxBy(groups[name], func(a, b domain.Item) bool {
			if a.Offers != b.Offers {
				return a.Offers > b.Offers
			}
			return a.ID < b.ID
		})
		out = append(out, best)
	}
	return out
}
