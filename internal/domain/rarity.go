package domain

import "fmt"

// Rarity is an item quality tier, ordered from lowest to highest.
type Rarity int

const (
	RarityConsumer Rarity = iota
	RarityIndustrial
	RarityMilSpec
	RarityRestricted
	RarityClassified
	RarityCovert
	RarityGold
)

var rarityNames = [...]string{
	"Consumer Grade",
	"Industrial Grade",
	"Mil-Spec Grade",
	"Restricted",
	"Classified",
	"Covert",
	"Gold",
}

// String returns the display name the scanner uses for the tier.
func (r Rarity) String() string {
	if r < RarityConsumer || r > RarityGold {
		return fmt.Sprintf("Rarity(%d)", int(r))
	}
	return rarityNames[r]
}

// ParseRarity maps a scanner display name to its tier.
func ParseRarity(s string) (Rarity, error) {
	for i, name := range rarityNames {
		if name == s {
			return Rarity(i), nil
		}
	}
	return 0, fmt.Errorf("unknown rarity %q", s)
}

// Next returns the tier directly above r. Gold has no successor and is
// never a valid trade-up input.
func (r Rarity) Next() (Rarity, bool) {
	if r < RarityConsumer || r >= RarityGold {
		return 0, false
	}
	return r + 1, true
}

// ContractSize is the number of items a trade-up at this tier consumes:
// 5 for Covert inputs, 10 everywhere else.
func (r Rarity) ContractSize() int {
	if r == RarityCovert {
		return 5
	}
	return 10
}

// InputRarities lists every tier that can be traded up, lowest first.
func InputRarities() []Rarity {
	return []Rarity{
		RarityConsumer,
		RarityIndustrial,
		RarityMilSpec,
		RarityRestricted,
		RarityClassified,
		RarityCovert,
	}
}
