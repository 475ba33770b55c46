package catalog

import (
	"fmt"

	"github.com/cs2trade/tradeupbot/internal/domain"
)

// InputPool builds the candidate entries a search draws from: every item of
// the given tier and StatTrak flag that has a positive price, clears the
// liquidity threshold, and belongs to at least one source with next-tier
// outcomes for the same flag. Each eligible item contributes one entry per
// float variant. The pool is ordered by item ID, then variant, so equal
// snapshots yield equal pools.
func (s *Snapshot) InputPool(rarity domain.Rarity, stattrak bool) ([]domain.ContractEntry, error) {
	next, ok := rarity.Next()
	if !ok {
		return nil, fmt.Errorf("catalog: %s cannot be traded up: %w", rarity, domain.ErrNoEligibleItems)
	}

	var pool []domain.ContractEntry
	for _, it := range s.TierItems(rarity, stattrak) {
		if it.Price <= 0 || it.Offers <= s.opts.MinOffers {
			continue
		}
		if !s.hasOutcomes(it, next, stattrak) {
			continue
		}
		for _, f := range it.FloatVariants() {
			pool = append(pool, domain.ContractEntry{Item: it, Float: f, Price: it.Price})
		}
	}

	if len(pool) == 0 {
		return nil, fmt.Errorf("catalog: %s stattrak=%t: %w", rarity, stattrak, domain.ErrNoEligibleItems)
	}
	return pool, nil
}

func (s *Snapshot) hasOutcomes(it *domain.Item, next domain.Rarity, stattrak bool) bool {
	for _, srcID := range it.SourceIDs {
		if len(s.SourceTierItems(srcID, next, stattrak)) > 0 {
			return true
		}
	}
	return false
}
