package tradeup

import (
	"sort"

	"github.com/cs2trade/tradeupbot/internal/domain"
)

// OutcomeReport describes one possible output of a contract.
type OutcomeReport struct {
	Item        *domain.Item `json:"item"`
	FinalFloat  float64      `json:"final_float"`
	Wear        domain.Wear  `json:"wear"`
	Probability float64      `json:"probability"` // percent
	Price       float64      `json:"price"`
	// Contribution is Probability/100 * Price; contributions across all
	// outcomes sum to the contract's expected value.
	Contribution float64 `json:"contribution"`
}

// ContractReport is the human-facing breakdown of a scored contract.
type ContractReport struct {
	Contract      domain.Contract `json:"contract"`
	ROI           float64         `json:"roi"`
	TotalCost     float64         `json:"total_cost"`
	ExpectedValue float64         `json:"expected_value"`
	AvgNormalized float64         `json:"avg_normalized"`
	Factor        int             `json:"factor"`
	// ProfitChance is the percent probability that the single realized
	// outcome sells for more than the contract cost.
	ProfitChance float64         `json:"profit_chance"`
	Outcomes     []OutcomeReport `json:"outcomes"`
}

// Report expands a contract into its full outcome distribution. It fails
// with the same errors as Score when the contract is infeasible.
func (e *Evaluator) Report(c domain.Contract) (ContractReport, error) {
	p := profile(c)

	// Aggregate probability mass per output item. An output reachable from
	// several input sources lands on the same (item, final float, price)
	// tuple at a fixed factor, so merging by item ID loses nothing.
	byItem := make(map[string]*OutcomeReport)
	var order []string
	var expected float64
	for _, srcID := range p.sourceIDs {
		bucket, ok := e.table.Lookup(p.rarity, p.stattrak, srcID, p.factor)
		if !ok {
			return ContractReport{}, &domain.MissingOutcomeError{
				SourceID: srcID,
				StatTrak: p.stattrak,
				Factor:   p.factor,
			}
		}
		share := float64(p.counts[srcID]) / float64(p.size)
		probEach := share / float64(len(bucket.Outcomes)) * 100
		for _, out := range bucket.Outcomes {
			r, seen := byItem[out.Item.ID]
			if !seen {
				r = &OutcomeReport{
					Item:       out.Item,
					FinalFloat: out.FinalFloat,
					Wear:       domain.WearFromFloat(out.FinalFloat),
					Price:      out.Price,
				}
				byItem[out.Item.ID] = r
				order = append(order, out.Item.ID)
			}
			r.Probability += probEach
		}
		expected += share * bucket.MeanPrice
	}
	if p.totalCost == 0 {
		return ContractReport{}, domain.ErrZeroCost
	}

	report := ContractReport{
		Contract:      c,
		ROI:           (expected - p.totalCost) / p.totalCost * 100,
		TotalCost:     p.totalCost,
		ExpectedValue: expected,
		AvgNormalized: p.avgNormalized,
		Factor:        p.factor,
		Outcomes:      make([]OutcomeReport, 0, len(order)),
	}
	for _, id := range order {
		r := byItem[id]
		r.Contribution = r.Probability / 100 * r.Price
		if r.Price > p.totalCost {
			report.ProfitChance += r.Probability
		}
		report.Outcomes = append(report.Outcomes, *r)
	}
	sort.SliceStable(report.Outcomes, func(i, j int) bool {
		if report.Outcomes[i].Probability != report.Outcomes[j].Probability {
			return report.Outcomes[i].Probability > report.Outcomes[j].Probability
		}
		return report.Outcomes[i].Item.ID < report.Outcomes[j].Item.ID
	})
	return report, nil
}
