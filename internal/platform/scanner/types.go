package scanner

import (
	"github.com/samber/lo"

	"github.com/cs2trade/tradeupbot/internal/domain"
)

// apiItem mirrors one catalog row as the scanner API serializes it.
// Numeric fields the scanner has no data for arrive as JSON null.
type apiItem struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Price        *float64 `json:"price"`
	Offers       *int     `json:"offers"`
	RealRarity   string   `json:"real_rarity"`
	StatTrak     bool     `json:"stattrak"`
	MinFloat     *float64 `json:"min_float"`
	MaxFloat     *float64 `json:"max_float"`
	RealMinFloat *float64 `json:"real_min_float"`
	RealMaxFloat *float64 `json:"real_max_float"`
	Sources      []string `json:"sources"`
}

// toDomain converts the wire item. Absent nominal bounds widen to the full
// [0,1] interval; an absent wear-clamped range stays zero so snapshot
// construction derives it from the display name. The rarity error
// propagates so callers can drop rows the engine has no tier for.
func (a *apiItem) toDomain() (domain.Item, error) {
	rarity, err := domain.ParseRarity(a.RealRarity)
	if err != nil {
		return domain.Item{}, err
	}
	return domain.Item{
		ID:           a.ID,
		Name:         a.Name,
		Price:        lo.FromPtrOr(a.Price, 0),
		Offers:       lo.FromPtrOr(a.Offers, 0),
		Rarity:       rarity,
		StatTrak:     a.StatTrak,
		MinFloat:     lo.FromPtrOr(a.MinFloat, 0),
		MaxFloat:     lo.FromPtrOr(a.MaxFloat, 1),
		RealMinFloat: lo.FromPtrOr(a.RealMinFloat, 0),
		RealMaxFloat: lo.FromPtrOr(a.RealMaxFloat, 0),
		SourceIDs:    a.Sources,
	}, nil
}

// apiSource mirrors one container as the scanner API serializes it, keyed
// by source ID in the enclosing map.
type apiSource struct {
	Type  string   `json:"type"`
	Items []string `json:"items"`
}

type itemsResponse struct {
	Items []apiItem `json:"items"`
}

type sourcesResponse struct {
	Sources map[string]apiSource `json:"sources"`
}
