package tradeup

import (
	"math"

	"github.com/cs2trade/tradeupbot/internal/domain"
)

// Evaluator scores contracts against a precomputed outcome table. It holds
// only read-only state and is safe for concurrent use.
type Evaluator struct {
	table *Table
}

// NewEvaluator returns an Evaluator backed by the given table.
func NewEvaluator(table *Table) *Evaluator {
	return &Evaluator{table: table}
}

// contractProfile is the per-contract arithmetic shared by Score and Report.
type contractProfile struct {
	rarity        domain.Rarity
	stattrak      bool
	size          int
	avgNormalized float64
	factor        int
	totalCost     float64
	// sourceIDs lists the sources in first-seen entry order so lookups and
	// error reporting stay deterministic; counts holds the per-source entry
	// tallies.
	sourceIDs []string
	counts    map[string]int
}

// profile computes the normalized-float average, factor bucket, total cost,
// and per-source counts for a contract. An item belonging to several
// sources counts once per source: each source it appears in independently
// explains a potential drop, so the per-source shares are not renormalized
// to sum to one.
func profile(c domain.Contract) contractProfile {
	p := contractProfile{
		rarity:   c.Rarity(),
		stattrak: c.StatTrak(),
		size:     c.Size(),
		counts:   make(map[string]int),
	}

	var sumNormalized float64
	for _, e := range c.Entries {
		span := e.Item.MaxFloat - e.Item.MinFloat
		if span > 0 {
			sumNormalized += (e.Float - e.Item.MinFloat) / span
		}
		p.totalCost += e.Price
		for _, srcID := range e.Item.SourceIDs {
			if _, seen := p.counts[srcID]; !seen {
				p.sourceIDs = append(p.sourceIDs, srcID)
			}
			p.counts[srcID]++
		}
	}

	p.avgNormalized = sumNormalized / float64(p.size)
	// Ceiling, not rounding: an exact percentile k maps to bucket k, anything
	// strictly above it maps to k+1.
	p.factor = int(math.Ceil(p.avgNormalized * FloatFactors))
	if p.factor > FloatFactors-1 {
		p.factor = FloatFactors - 1
	}
	return p
}

// Score returns the contract's expected ROI percentage.
//
// Expected value sums, over every source of every entry, that source's
// entry share times the mean outcome price at the contract's float factor.
// A missing (tier, StatTrak, source, factor) bucket yields a
// *domain.MissingOutcomeError; a zero total cost yields domain.ErrZeroCost.
//
// Score assumes the contract was built from a homogeneous pool: tier and
// StatTrak agreement is established at construction and not re-checked.
func (e *Evaluator) Score(c domain.Contract) (float64, error) {
	p := profile(c)

	expected, err := e.expectedValue(p)
	if err != nil {
		return 0, err
	}
	if p.totalCost == 0 {
		return 0, domain.ErrZeroCost
	}
	return (expected - p.totalCost) / p.totalCost * 100, nil
}

func (e *Evaluator) expectedValue(p contractProfile) (float64, error) {
	var total float64
	for _, srcID := range p.sourceIDs {
		bucket, ok := e.table.Lookup(p.rarity, p.stattrak, srcID, p.factor)
		if !ok {
			return 0, &domain.MissingOutcomeError{
				SourceID: srcID,
				StatTrak: p.stattrak,
				Factor:   p.factor,
			}
		}
		total += float64(p.counts[srcID]) / float64(p.size) * bucket.MeanPrice
	}
	return total, nil
}
