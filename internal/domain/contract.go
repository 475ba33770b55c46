package domain

import "fmt"

// ContractEntry is one input slot of a trade-up: an item, the wear float
// assigned to it, and the price snapshotted when the entry was created.
type ContractEntry struct {
	Item  *Item
	Float float64
	Price float64
}

// Contract is a full set of trade-up inputs: exactly ContractSize entries
// sharing one rarity tier and one StatTrak flag. Entry order is not
// significant to the outcome model.
type Contract struct {
	Entries []ContractEntry
}

// NewContract validates entries into a Contract. The genetic operators
// build contracts directly from pre-validated pools and skip this path.
func NewContract(entries []ContractEntry) (Contract, error) {
	if len(entries) == 0 {
		return Contract{}, fmt.Errorf("%w: no entries", ErrInvalidContract)
	}
	first := entries[0].Item
	if first == nil {
		return Contract{}, fmt.Errorf("%w: entry 0 has no item", ErrInvalidContract)
	}
	if want := first.Rarity.ContractSize(); len(entries) != want {
		return Contract{}, fmt.Errorf("%w: %s needs %d entries, got %d",
			ErrInvalidContract, first.Rarity, want, len(entries))
	}
	for i, e := range entries {
		if e.Item == nil {
			return Contract{}, fmt.Errorf("%w: entry %d has no item", ErrInvalidContract, i)
		}
		if e.Item.Rarity != first.Rarity || e.Item.StatTrak != first.StatTrak {
			return Contract{}, fmt.Errorf("%w: entry %d (%s) mixes tiers or StatTrak flags",
				ErrInvalidContract, i, e.Item.Name)
		}
		if e.Float < e.Item.RealMinFloat || e.Float > e.Item.RealMaxFloat {
			return Contract{}, fmt.Errorf("%w: entry %d float %.3f outside [%.3f, %.3f]",
				ErrInvalidContract, i, e.Float, e.Item.RealMinFloat, e.Item.RealMaxFloat)
		}
	}
	return Contract{Entries: entries}, nil
}

// Size returns the number of entries.
func (c Contract) Size() int { return len(c.Entries) }

// Rarity returns the shared input tier. Only meaningful on valid contracts.
func (c Contract) Rarity() Rarity { return c.Entries[0].Item.Rarity }

// StatTrak reports the shared StatTrak flag.
func (c Contract) StatTrak() bool { return c.Entries[0].Item.StatTrak }

// TotalCost sums the snapshotted entry prices.
func (c Contract) TotalCost() float64 {
	var sum float64
	for _, e := range c.Entries {
		sum += e.Price
	}
	return sum
}
