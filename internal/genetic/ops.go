// Package genetic implements the trade-up search: population operators,
// batch fitness evaluation, and the generational and island-model engines
// built on top of them.
package genetic

import (
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/cs2trade/tradeupbot/internal/domain"
)

// sampleIndices draws k distinct indices from [0, n) using Floyd's
// algorithm: k map operations regardless of n, no shuffle of the pool.
func sampleIndices(rng *rand.Rand, n, k int) []int {
	picked := make(map[int]struct{}, k)
	out := make([]int, 0, k)
	for i := n - k; i < n; i++ {
		j := rng.Intn(i + 1)
		if _, taken := picked[j]; taken {
			j = i
		}
		picked[j] = struct{}{}
		out = append(out, j)
	}
	return out
}

// SampleContract draws k pool entries without replacement. The pool is
// pre-expanded into float variants, so two entries of the same item at
// different floats can land in one contract.
func SampleContract(rng *rand.Rand, pool []domain.ContractEntry, k int) domain.Contract {
	entries := make([]domain.ContractEntry, 0, k)
	for _, i := range sampleIndices(rng, len(pool), k) {
		entries = append(entries, pool[i])
	}
	return domain.Contract{Entries: entries}
}

// Signature returns an order-independent identity for a contract: the
// sorted (item ID, float) pairs. Floats print in shortest round-trip form,
// so distinct floats never collide.
func Signature(c domain.Contract) string {
	parts := lo.Map(c.Entries, func(e domain.ContractEntry, _ int) string {
		return e.Item.ID + "@" + strconv.FormatFloat(e.Float, 'g', -1, 64)
	})
	sort.Strings(parts)
	return strings.Join(parts, "|")
}

// InitPopulation samples size contracts, rejecting duplicate signatures
// within a 10x attempt budget. Small pools cannot fill a large population
// uniquely, so any shortfall is padded with possibly-duplicate samples
// rather than failing.
func InitPopulation(rng *rand.Rand, pool []domain.ContractEntry, size, k int) []domain.Contract {
	population := make([]domain.Contract, 0, size)
	seen := make(map[string]struct{}, size)

	for attempts := 0; len(population) < size && attempts < size*10; attempts++ {
		c := SampleContract(rng, pool, k)
		sig := Signature(c)
		if _, dup := seen[sig]; dup {
			continue
		}
		seen[sig] = struct{}{}
		population = append(population, c)
	}
	for len(population) < size {
		population = append(population, SampleContract(rng, pool, k))
	}
	return population
}

// Crossover mixes two parents: between 1 and k/2-1 entries sampled without
// replacement from a, the remainder from b. The child may repeat entries
// present in both parents.
func Crossover(rng *rand.Rand, a, b domain.Contract) domain.Contract {
	k := a.Size()
	fromA := 1 + rng.Intn(k/2-1)

	entries := make([]domain.ContractEntry, 0, k)
	for _, i := range sampleIndices(rng, a.Size(), fromA) {
		entries = append(entries, a.Entries[i])
	}
	for _, i := range sampleIndices(rng, b.Size(), k-fromA) {
		entries = append(entries, b.Entries[i])
	}
	return domain.Contract{Entries: entries}
}

// Mutate returns a copy of c with up to two independent perturbations, each
// applied with 50% probability: a handful of slots replaced (half the time
// from the pool, half from elsewhere in the contract), and one slot's float
// re-rolled across its item's variant grid. The re-rolled entry keeps the
// snapshot price it was created with.
func Mutate(rng *rand.Rand, c domain.Contract, pool []domain.ContractEntry) domain.Contract {
	k := c.Size()
	mutated := domain.Contract{Entries: append([]domain.ContractEntry(nil), c.Entries...)}

	if rng.Float64() < 0.5 {
		n := 1 + rng.Intn(k/3)
		for i := 0; i < n; i++ {
			pos := rng.Intn(k)
			if rng.Float64() < 0.5 {
				mutated.Entries[pos] = pool[rng.Intn(len(pool))]
			} else {
				mutated.Entries[pos] = mutated.Entries[rng.Intn(k)]
			}
		}
	}

	if rng.Float64() < 0.5 {
		pos := rng.Intn(k)
		e := mutated.Entries[pos]
		variants := e.Item.FloatVariants()
		e.Float = variants[rng.Intn(len(variants))]
		mutated.Entries[pos] = e
	}
	return mutated
}

// Dedupe filters a population by signature, keeping the first occurrence
// and preserving order. Idempotent.
func Dedupe(population []domain.Contract) []domain.Contract {
	return lo.UniqBy(population, Signature)
}

// Diversity reports the percentage of current contracts whose signature is
// absent from the previous set. A diagnostic only: 0 means the elite froze,
// 100 means full turnover.
func Diversity(current, previous []domain.Contract) float64 {
	if len(current) == 0 {
		return 0
	}
	prevSigs := lo.Map(previous, func(c domain.Contract, _ int) string { return Signature(c) })
	currSigs := lo.Map(current, func(c domain.Contract, _ int) string { return Signature(c) })
	fresh := lo.Without(currSigs, prevSigs...)
	return float64(len(fresh)) / float64(len(current)) * 100
}
