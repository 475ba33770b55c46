package genetic_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cs2trade/tradeupbot/internal/domain"
	"github.com/cs2trade/tradeupbot/internal/genetic"
)

func poolItem(id string, r domain.Rarity, price float64) *domain.Item {
	return &domain.Item{
		ID:           id,
		Name:         id,
		Price:        price,
		Offers:       100,
		Rarity:       r,
		MinFloat:     0,
		MaxFloat:     1,
		RealMinFloat: 0,
		RealMaxFloat: 1,
		SourceIDs:    []string{"src"},
	}
}

// testPool expands n items into the 3-variant entry shape the catalog
// produces.
func testPool(n int, r domain.Rarity) []domain.ContractEntry {
	pool := make([]domain.ContractEntry, 0, n*3)
	for i := 0; i < n; i++ {
		it := poolItem(fmt.Sprintf("item-%02d", i), r, float64(i+1))
		for _, f := range it.FloatVariants() {
			pool = append(pool, domain.ContractEntry{Item: it, Float: f, Price: it.Price})
		}
	}
	return pool
}

func contractOf(ids ...string) domain.Contract {
	entries := make([]domain.ContractEntry, len(ids))
	for i, id := range ids {
		entries[i] = domain.ContractEntry{Item: poolItem(id, domain.RarityMilSpec, 1), Float: 0.5, Price: 1}
	}
	return domain.Contract{Entries: entries}
}

func TestSampleContractWithoutReplacement(t *testing.T) {
	rq := require.New(t)
	rng := rand.New(rand.NewSource(1))
	pool := testPool(10, domain.RarityMilSpec)

	for i := 0; i < 50; i++ {
		c := genetic.SampleContract(rng, pool, 10)
		rq.Equal(10, c.Size())

		seen := make(map[string]struct{}, 10)
		for _, e := range c.Entries {
			key := fmt.Sprintf("%s@%v", e.Item.ID, e.Float)
			_, dup := seen[key]
			rq.False(dup, "entry %s drawn twice", key)
			seen[key] = struct{}{}
		}
	}
}

func TestSignaturePermutationInvariant(t *testing.T) {
	rq := require.New(t)
	rng := rand.New(rand.NewSource(2))
	pool := testPool(10, domain.RarityMilSpec)

	c := genetic.SampleContract(rng, pool, 10)
	shuffled := domain.Contract{Entries: append([]domain.ContractEntry(nil), c.Entries...)}
	rng.Shuffle(len(shuffled.Entries), func(i, j int) {
		shuffled.Entries[i], shuffled.Entries[j] = shuffled.Entries[j], shuffled.Entries[i]
	})
	rq.Equal(genetic.Signature(c), genetic.Signature(shuffled))

	// A float change is a different identity.
	changed := domain.Contract{Entries: append([]domain.ContractEntry(nil), c.Entries...)}
	changed.Entries[0].Float += 0.001
	rq.NotEqual(genetic.Signature(c), genetic.Signature(changed))
}

func TestInitPopulationUniqueWhenPoolAllows(t *testing.T) {
	rq := require.New(t)
	rng := rand.New(rand.NewSource(3))
	pool := testPool(20, domain.RarityMilSpec)

	population := genetic.InitPopulation(rng, pool, 50, 10)
	rq.Len(population, 50)

	sigs := make(map[string]struct{}, 50)
	for _, c := range population {
		sigs[genetic.Signature(c)] = struct{}{}
	}
	rq.Len(sigs, 50)
}

func TestInitPopulationPadsTinyPool(t *testing.T) {
	rq := require.New(t)
	rng := rand.New(rand.NewSource(4))

	// Ten entries admit exactly one 10-entry combination, so the retry
	// budget runs dry and the shortfall is padded with duplicates.
	pool := testPool(10, domain.RarityMilSpec)[:10]
	population := genetic.InitPopulation(rng, pool, 5, 10)
	rq.Len(population, 5)
	for _, c := range population {
		rq.Equal(genetic.Signature(population[0]), genetic.Signature(c))
	}
}

func TestCrossoverSplitBounds(t *testing.T) {
	rq := require.New(t)
	rng := rand.New(rand.NewSource(5))

	a := contractOf("a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7", "a8", "a9")
	b := contractOf("b0", "b1", "b2", "b3", "b4", "b5", "b6", "b7", "b8", "b9")

	for i := 0; i < 200; i++ {
		child := genetic.Crossover(rng, a, b)
		rq.Equal(10, child.Size())

		fromA := 0
		for _, e := range child.Entries {
			if e.Item.ID[0] == 'a' {
				fromA++
			}
		}
		rq.GreaterOrEqual(fromA, 1)
		rq.LessOrEqual(fromA, 4)
	}
}

func TestCrossoverCovertSplit(t *testing.T) {
	rq := require.New(t)
	rng := rand.New(rand.NewSource(6))

	a := domain.Contract{Entries: testPool(5, domain.RarityCovert)[:5]}
	b := domain.Contract{Entries: testPool(5, domain.RarityCovert)[5:10]}

	// K=5 leaves a single legal split: one entry from the first parent.
	for i := 0; i < 50; i++ {
		child := genetic.Crossover(rng, a, b)
		rq.Equal(5, child.Size())

		fromA := 0
		for _, e := range child.Entries {
			for _, pe := range a.Entries {
				if e.Item.ID == pe.Item.ID && e.Float == pe.Float {
					fromA++
				}
			}
		}
		rq.Equal(1, fromA)
	}
}

func TestMutateStaysOnVariantGrid(t *testing.T) {
	rq := require.New(t)
	rng := rand.New(rand.NewSource(7))
	pool := testPool(10, domain.RarityMilSpec)

	c := genetic.SampleContract(rng, pool, 10)
	before := genetic.Signature(c)

	variantsOK := func(e domain.ContractEntry) bool {
		for _, v := range e.Item.FloatVariants() {
			if e.Float == v {
				return true
			}
		}
		return false
	}

	for i := 0; i < 200; i++ {
		m := genetic.Mutate(rng, c, pool)
		rq.Equal(10, m.Size())
		for _, e := range m.Entries {
			rq.True(variantsOK(e), "float %v not on %s's variant grid", e.Float, e.Item.ID)
			// Prices ride along from the snapshot, never recomputed.
			rq.Equal(e.Item.Price, e.Price)
		}
	}

	// The input contract is never modified in place.
	rq.Equal(before, genetic.Signature(c))
}

func TestDedupe(t *testing.T) {
	rq := require.New(t)
	rng := rand.New(rand.NewSource(8))
	pool := testPool(10, domain.RarityMilSpec)

	a := genetic.SampleContract(rng, pool, 10)
	b := genetic.SampleContract(rng, pool, 10)
	aShuffled := domain.Contract{Entries: append([]domain.ContractEntry(nil), a.Entries...)}
	rng.Shuffle(len(aShuffled.Entries), func(i, j int) {
		aShuffled.Entries[i], aShuffled.Entries[j] = aShuffled.Entries[j], aShuffled.Entries[i]
	})

	population := []domain.Contract{a, b, aShuffled, b}
	unique := genetic.Dedupe(population)
	rq.Len(unique, 2)
	rq.Equal(genetic.Signature(a), genetic.Signature(unique[0]))
	rq.Equal(genetic.Signature(b), genetic.Signature(unique[1]))

	rq.Equal(unique, genetic.Dedupe(unique))
}

func TestDiversity(t *testing.T) {
	rq := require.New(t)
	rng := rand.New(rand.NewSource(9))
	pool := testPool(20, domain.RarityMilSpec)

	population := genetic.InitPopulation(rng, pool, 4, 10)
	c1, c2, c3, c4 := population[0], population[1], population[2], population[3]

	rq.Equal(0.0, genetic.Diversity([]domain.Contract{c1, c2}, []domain.Contract{c1, c2}))
	rq.Equal(100.0, genetic.Diversity([]domain.Contract{c1, c2}, []domain.Contract{c3, c4}))
	rq.Equal(50.0, genetic.Diversity([]domain.Contract{c1, c2}, []domain.Contract{c1, c3}))
}
