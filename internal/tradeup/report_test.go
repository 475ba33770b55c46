package tradeup_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cs2trade/tradeupbot/internal/domain"
	"github.com/cs2trade/tradeupbot/internal/tradeup"
)

func TestReportDistribution(t *testing.T) {
	rq := require.New(t)

	rich := fixtureItem("rich", "Rich", domain.RarityRestricted, 20.0, 100, "crate")
	rich.RealMinFloat = 0.2
	rich.RealMaxFloat = 0.8
	items := []domain.Item{
		fixtureItem("in", "Input", domain.RarityMilSpec, 1.0, 100, "crate"),
		fixtureItem("cheap", "Cheap", domain.RarityRestricted, 4.0, 100, "crate"),
		rich,
	}
	snap := fixtureSnapshot(items, map[string][]string{"crate": {"in", "cheap", "rich"}})
	ev := tradeup.NewEvaluator(tradeup.Precompute(snap))
	in, _ := snap.Item("in")

	rep, err := ev.Report(repeatEntries(in, 0.5, 1.0, 10))
	rq.NoError(err)

	rq.Equal(50, rep.Factor)
	rq.InDelta(0.5, rep.AvgNormalized, 1e-9)
	rq.InDelta(10.0, rep.TotalCost, 1e-9)
	rq.InDelta(12.0, rep.ExpectedValue, 1e-9)
	rq.InDelta(20.0, rep.ROI, 1e-9)

	// Equal probabilities fall back to ID order.
	rq.Len(rep.Outcomes, 2)
	rq.Equal("cheap", rep.Outcomes[0].Item.ID)
	rq.Equal("rich", rep.Outcomes[1].Item.ID)
	for _, o := range rep.Outcomes {
		rq.InDelta(50.0, o.Probability, 1e-9)
		rq.InDelta(0.5, o.FinalFloat, 1e-9)
		rq.Equal(domain.WearBattleScarred, o.Wear)
	}
	rq.InDelta(2.0, rep.Outcomes[0].Contribution, 1e-9)
	rq.InDelta(10.0, rep.Outcomes[1].Contribution, 1e-9)

	// Only the rich outcome beats the contract cost.
	rq.InDelta(50.0, rep.ProfitChance, 1e-9)
}

func TestReportAggregatesSharedOutcomes(t *testing.T) {
	rq := require.New(t)

	items := []domain.Item{
		fixtureItem("dual", "Dual", domain.RarityMilSpec, 1.0, 100, "s1", "s2"),
		fixtureItem("o1", "Out 1", domain.RarityRestricted, 12.0, 100, "s1"),
		fixtureItem("shared", "Shared", domain.RarityRestricted, 6.0, 100, "s1", "s2"),
	}
	snap := fixtureSnapshot(items, map[string][]string{
		"s1": {"dual", "o1", "shared"},
		"s2": {"dual", "shared"},
	})
	ev := tradeup.NewEvaluator(tradeup.Precompute(snap))
	dual, _ := snap.Item("dual")

	rep, err := ev.Report(repeatEntries(dual, 0.5, 1.0, 10))
	rq.NoError(err)

	// Probability mass is per source and deliberately not renormalized: the
	// shared outcome draws 50 from s1 and 100 from s2.
	rq.Len(rep.Outcomes, 2)
	rq.Equal("shared", rep.Outcomes[0].Item.ID)
	rq.InDelta(150.0, rep.Outcomes[0].Probability, 1e-9)
	rq.Equal("o1", rep.Outcomes[1].Item.ID)
	rq.InDelta(50.0, rep.Outcomes[1].Probability, 1e-9)

	// Contributions still reconstruct the expected value.
	rq.InDelta(15.0, rep.ExpectedValue, 1e-9)
	var sum float64
	for _, o := range rep.Outcomes {
		sum += o.Contribution
	}
	rq.InDelta(rep.ExpectedValue, sum, 1e-9)

	rq.InDelta(50.0, rep.ProfitChance, 1e-9)
}

func TestReportErrors(t *testing.T) {
	rq := require.New(t)

	items := []domain.Item{
		fixtureItem("in", "Input", domain.RarityMilSpec, 1.0, 100, "crate"),
		fixtureItem("out", "Output", domain.RarityRestricted, 15.0, 100, "crate"),
	}
	snap := fixtureSnapshot(items, map[string][]string{"crate": {"in", "out"}})
	ev := tradeup.NewEvaluator(tradeup.Precompute(snap))
	in, _ := snap.Item("in")

	_, err := ev.Report(repeatEntries(in, 0.5, 0.0, 10))
	rq.ErrorIs(err, domain.ErrZeroCost)

	bare := fixtureSnapshot(
		[]domain.Item{fixtureItem("in", "Input", domain.RarityMilSpec, 1.0, 100, "crate")},
		map[string][]string{"crate": {"in"}},
	)
	ev = tradeup.NewEvaluator(tradeup.Precompute(bare))
	in, _ = bare.Item("in")

	_, err = ev.Report(repeatEntries(in, 0.5, 1.0, 10))
	var miss *domain.MissingOutcomeError
	rq.ErrorAs(err, &miss)
	rq.Equal(50, miss.Factor)
}
