package domain

import "strconv"

// Item is one tradable skin variant from the catalog snapshot. MinFloat and
// MaxFloat bound the nominal drop range; RealMinFloat and RealMaxFloat are
// that range clamped to the wear condition named in the display name.
type Item struct {
	ID           string
	Name         string
	Price        float64
	Offers       int
	Rarity       Rarity
	StatTrak     bool
	MinFloat     float64
	MaxFloat     float64
	RealMinFloat float64
	RealMaxFloat float64
	SourceIDs    []string
}

// RealRange returns the wear-clamped float interval the item can occupy.
func (it *Item) RealRange() (lo, hi float64) {
	return it.RealMinFloat, it.RealMaxFloat
}

// floatQuantiles are the points of the real range an item may enter a
// contract at. Coarse on purpose: three variants per item keep the search
// space enumerable while still spanning cheap-high-float and pricey-low-float
// positions.
var floatQuantiles = [...]float64{0.25, 0.50, 0.80}

// FloatVariants returns the candidate wear floats for the item, rounded to
// three decimals.
func (it *Item) FloatVariants() [3]float64 {
	span := it.RealMaxFloat - it.RealMinFloat
	var out [3]float64
	for i, q := range floatQuantiles {
		out[i] = round3(it.RealMinFloat + span*q)
	}
	return out
}

// round3 rounds on the exact binary value. Scaling by 1000 first can turn a
// just-below-half value into an exact half and flip the milli digit.
func round3(x float64) float64 {
	v, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 3, 64), 64)
	return v
}
