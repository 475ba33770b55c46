package tradeup_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cs2trade/tradeupbot/internal/domain"
	"github.com/cs2trade/tradeupbot/internal/tradeup"
)

// repeatEntries builds a contract of n identical slots.
func repeatEntries(it *domain.Item, f, price float64, n int) domain.Contract {
	entries := make([]domain.ContractEntry, n)
	for i := range entries {
		entries[i] = domain.ContractEntry{Item: it, Float: f, Price: price}
	}
	return domain.Contract{Entries: entries}
}

func TestScoreROI(t *testing.T) {
	rq := require.New(t)

	items := []domain.Item{
		fixtureItem("in", "Input", domain.RarityMilSpec, 1.0, 100, "crate"),
		fixtureItem("out", "Output", domain.RarityRestricted, 15.0, 100, "crate"),
	}
	snap := fixtureSnapshot(items, map[string][]string{"crate": {"in", "out"}})
	ev := tradeup.NewEvaluator(tradeup.Precompute(snap))
	in, _ := snap.Item("in")

	// Expected value 15 against a cost of 10: half the stake back on top.
	roi, err := ev.Score(repeatEntries(in, 0.5, 1.0, 10))
	rq.NoError(err)
	rq.InDelta(50.0, roi, 1e-9)

	// Same payout against a cost of 18.75 loses a fifth.
	roi, err = ev.Score(repeatEntries(in, 0.5, 1.875, 10))
	rq.NoError(err)
	rq.InDelta(-20.0, roi, 1e-9)
}

func TestScoreFactorCeiling(t *testing.T) {
	rq := require.New(t)

	// A source with inputs but no next-tier outputs produces an empty table,
	// so every Score fails with the factor it tried to look up.
	items := []domain.Item{
		fixtureItem("in", "Input", domain.RarityMilSpec, 1.0, 100, "crate"),
	}
	snap := fixtureSnapshot(items, map[string][]string{"crate": {"in"}})
	ev := tradeup.NewEvaluator(tradeup.Precompute(snap))
	in, _ := snap.Item("in")

	factorOf := func(c domain.Contract) int {
		_, err := ev.Score(c)
		var miss *domain.MissingOutcomeError
		rq.ErrorAs(err, &miss)
		rq.Equal("crate", miss.SourceID)
		return miss.Factor
	}

	// An exact percentile maps to its own bucket.
	rq.Equal(50, factorOf(repeatEntries(in, 0.5, 1.0, 10)))

	// Anything strictly above rounds up: nine at 0.5 plus one at 0.75
	// averages 0.525.
	mixed := repeatEntries(in, 0.5, 1.0, 10)
	mixed.Entries[9].Float = 0.75
	rq.Equal(53, factorOf(mixed))

	// The top of the scale clamps to the last bucket.
	rq.Equal(99, factorOf(repeatEntries(in, 1.0, 1.0, 10)))
	rq.Equal(0, factorOf(repeatEntries(in, 0.0, 1.0, 10)))
}

func TestScoreZeroSpanNormalizesToZero(t *testing.T) {
	rq := require.New(t)

	pinned := fixtureItem("pin", "Pinned", domain.RarityMilSpec, 1.0, 100, "crate")
	pinned.MinFloat = 0.5
	pinned.MaxFloat = 0.5
	pinned.RealMinFloat = 0.5
	pinned.RealMaxFloat = 0.5
	snap := fixtureSnapshot([]domain.Item{pinned}, map[string][]string{"crate": {"pin"}})
	ev := tradeup.NewEvaluator(tradeup.Precompute(snap))
	in, _ := snap.Item("pin")

	_, err := ev.Score(repeatEntries(in, 0.5, 1.0, 10))
	var miss *domain.MissingOutcomeError
	rq.ErrorAs(err, &miss)
	rq.Equal(0, miss.Factor)
}

func TestScoreZeroCost(t *testing.T) {
	rq := require.New(t)

	items := []domain.Item{
		fixtureItem("in", "Input", domain.RarityMilSpec, 1.0, 100, "crate"),
		fixtureItem("out", "Output", domain.RarityRestricted, 15.0, 100, "crate"),
	}
	snap := fixtureSnapshot(items, map[string][]string{"crate": {"in", "out"}})
	ev := tradeup.NewEvaluator(tradeup.Precompute(snap))
	in, _ := snap.Item("in")

	_, err := ev.Score(repeatEntries(in, 0.5, 0.0, 10))
	rq.ErrorIs(err, domain.ErrZeroCost)
}

func TestScoreMissingOutcomeBeatsZeroCost(t *testing.T) {
	rq := require.New(t)

	// No outputs anywhere: the outcome lookup fails before the cost check.
	items := []domain.Item{
		fixtureItem("in", "Input", domain.RarityMilSpec, 1.0, 100, "crate"),
	}
	snap := fixtureSnapshot(items, map[string][]string{"crate": {"in"}})
	ev := tradeup.NewEvaluator(tradeup.Precompute(snap))
	in, _ := snap.Item("in")

	_, err := ev.Score(repeatEntries(in, 0.5, 0.0, 10))
	var miss *domain.MissingOutcomeError
	rq.ErrorAs(err, &miss)
}

func TestScoreCountsEverySourceOfEveryEntry(t *testing.T) {
	rq := require.New(t)

	items := []domain.Item{
		fixtureItem("dual", "Dual", domain.RarityMilSpec, 1.0, 100, "s1", "s2"),
		fixtureItem("o1", "Out 1", domain.RarityRestricted, 10.0, 100, "s1"),
		fixtureItem("o2", "Out 2", domain.RarityRestricted, 30.0, 100, "s2"),
	}
	snap := fixtureSnapshot(items, map[string][]string{
		"s1": {"dual", "o1"},
		"s2": {"dual", "o2"},
	})
	ev := tradeup.NewEvaluator(tradeup.Precompute(snap))
	dual, _ := snap.Item("dual")

	// Each entry counts toward both of its sources, so the expected value is
	// the sum of both means: 10 + 30 against a cost of 10.
	roi, err := ev.Score(repeatEntries(dual, 0.5, 1.0, 10))
	rq.NoError(err)
	rq.InDelta(300.0, roi, 1e-9)
}

func TestScoreMixedCrateContract(t *testing.T) {
	rq := require.New(t)

	items := []domain.Item{
		fixtureItem("a", "A", domain.RarityMilSpec, 0.5, 100, "x"),
		fixtureItem("b", "B", domain.RarityMilSpec, 0.5, 100, "x"),
		fixtureItem("c", "C", domain.RarityMilSpec, 0.5, 100, "x"),
		fixtureItem("d", "D Full Range", domain.RarityRestricted, 10.0, 100, "x"),
		fixtureItem("e", "E Pristine (Factory New)", domain.RarityRestricted, 100.0, 100, "x"),
	}
	snap := fixtureSnapshot(items, map[string][]string{"x": {"a", "b", "c", "d", "e"}})
	ev := tradeup.NewEvaluator(tradeup.Precompute(snap))
	a, _ := snap.Item("a")
	b, _ := snap.Item("b")
	c, _ := snap.Item("c")

	// Floats average exactly 0.50, so the contract lands in bucket 50 where
	// only d is reachable: expected value 10 against a cost of 5.
	entries := []domain.ContractEntry{
		{Item: a, Float: 0.25, Price: 0.5},
		{Item: a, Float: 0.25, Price: 0.5},
		{Item: a, Float: 0.25, Price: 0.5},
		{Item: a, Float: 0.25, Price: 0.5},
		{Item: b, Float: 0.50, Price: 0.5},
		{Item: b, Float: 0.50, Price: 0.5},
		{Item: c, Float: 0.75, Price: 0.5},
		{Item: c, Float: 0.75, Price: 0.5},
		{Item: c, Float: 0.75, Price: 0.5},
		{Item: c, Float: 0.75, Price: 0.5},
	}
	roi, err := ev.Score(domain.Contract{Entries: entries})
	rq.NoError(err)
	rq.InDelta(100.0, roi, 1e-9)
}
