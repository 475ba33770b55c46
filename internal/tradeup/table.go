// Package tradeup implements the trade-up outcome model: a precomputed
// lookup table of every (tier, StatTrak, source, float factor) outcome set,
// and the evaluator that prices contracts against it.
package tradeup

import (
	"github.com/cs2trade/tradeupbot/internal/catalog"
	"github.com/cs2trade/tradeupbot/internal/domain"
)

// FloatFactors is the number of discretized float-factor buckets per source.
// Bucket i covers an average normalized input float of i/100.
const FloatFactors = 100

// Outcome is one possible trade-up result at a given float factor. Price is
// the liquidity-filtered snapshot price: zero when the item's offer count
// does not clear the threshold, so illiquid listings cannot inflate ROI.
type Outcome struct {
	Item       *domain.Item
	FinalFloat float64
	Price      float64
}

// Bucket holds the qualifying outcomes of one (tier, StatTrak, source) at
// one float factor, plus their precomputed mean price.
type Bucket struct {
	MeanPrice float64
	Outcomes  []Outcome
}

type bucketKey struct {
	rarity   domain.Rarity
	stattrak bool
	sourceID string
}

// Table is the precomputed outcome lookup used by fitness evaluation. A
// fitness score may be computed hundreds of millions of times per run, so
// outcome sets are derived once per snapshot and read O(1) afterwards. The
// table is immutable after Precompute and safe for concurrent readers.
type Table struct {
	buckets map[bucketKey]*[FloatFactors]*Bucket
}

// Precompute builds the outcome table for a catalog snapshot. For every
// input tier below Gold, every StatTrak flag, and every source holding at
// least one input-tier item, it walks all 100 float factors and keeps each
// next-tier item whose resulting float lands inside its wear-clamped range:
//
//	finalFloat = factor/100*(MaxFloat-MinFloat) + MinFloat
//
// Factors with no qualifying outcome store nothing; Lookup reports them as
// missing. The result is a pure function of the snapshot: equal snapshots
// produce equal tables.
func Precompute(snap *catalog.Snapshot) *Table {
	t := &Table{buckets: make(map[bucketKey]*[FloatFactors]*Bucket)}

	sourceIDs := snap.SourceIDs()
	for _, rarity := range domain.InputRarities() {
		next, ok := rarity.Next()
		if !ok {
			continue
		}
		for _, stattrak := range []bool{false, true} {
			for _, srcID := range sourceIDs {
				if len(snap.SourceTierItems(srcID, rarity, stattrak)) == 0 {
					continue
				}
				outputs := snap.SourceTierItems(srcID, next, stattrak)
				if len(outputs) == 0 {
					continue
				}

				var factors *[FloatFactors]*Bucket
				for factor := 0; factor < FloatFactors; factor++ {
					bucket := buildBucket(snap, outputs, factor)
					if bucket == nil {
						continue
					}
					if factors == nil {
						factors = new([FloatFactors]*Bucket)
					}
					factors[factor] = bucket
				}
				if factors != nil {
					t.buckets[bucketKey{rarity: rarity, stattrak: stattrak, sourceID: srcID}] = factors
				}
			}
		}
	}

	return t
}

// buildBucket collects the outputs reachable at one float factor, or nil
// when none qualify.
func buildBucket(snap *catalog.Snapshot, outputs []*domain.Item, factor int) *Bucket {
	ff := float64(factor) / FloatFactors

	var outcomes []Outcome
	var priceSum float64
	for _, out := range outputs {
		finalFloat := ff*(out.MaxFloat-out.MinFloat) + out.MinFloat
		if finalFloat < out.RealMinFloat || finalFloat > out.RealMaxFloat {
			continue
		}
		price := snap.LiquidPrice(out)
		outcomes = append(outcomes, Outcome{Item: out, FinalFloat: finalFloat, Price: price})
		priceSum += price
	}
	if len(outcomes) == 0 {
		return nil
	}
	return &Bucket{MeanPrice: priceSum / float64(len(outcomes)), Outcomes: outcomes}
}

// Lookup returns the bucket for one source and float factor. The second
// result is false when the composition has no outcome there: either the
// source never yields the next tier for that flag, or no output float lands
// in range at that factor.
func (t *Table) Lookup(rarity domain.Rarity, stattrak bool, sourceID string, factor int) (*Bucket, bool) {
	factors, ok := t.buckets[bucketKey{rarity: rarity, stattrak: stattrak, sourceID: sourceID}]
	if !ok || factor < 0 || factor >= FloatFactors {
		return nil, false
	}
	b := factors[factor]
	if b == nil {
		return nil, false
	}
	return b, true
}

// Len returns the number of stored (tier, StatTrak, source, factor)
// buckets, the same statistic the precompute step reports.
func (t *Table) Len() int {
	n := 0
	for _, factors := range t.buckets {
		for _, b := range factors {
			if b != nil {
				n++
			}
		}
	}
	return n
}
