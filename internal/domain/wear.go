package domain

import "strings"

// Wear is a named exterior condition bucket on the 0..1 float scale.
type Wear int

const (
	WearFactoryNew Wear = iota
	WearMinimalWear
	WearFieldTested
	WearWellWorn
	WearBattleScarred
)

var wearNames = [...]string{
	"Factory New",
	"Minimal Wear",
	"Field-Tested",
	"Well-Worn",
	"Battle-Scarred",
}

// Half-open [lo, hi) ranges; Battle-Scarred closes at 1.0.
var wearRanges = [...][2]float64{
	{0.00, 0.07},
	{0.07, 0.15},
	{0.15, 0.38},
	{0.38, 0.45},
	{0.45, 1.00},
}

func (w Wear) String() string {
	if w < WearFactoryNew || w > WearBattleScarred {
		return "Unknown"
	}
	return wearNames[w]
}

// Range returns the float interval covered by the condition.
func (w Wear) Range() (lo, hi float64) {
	r := wearRanges[w]
	return r[0], r[1]
}

// WearFromFloat buckets a wear float into its named condition. Values
// outside [0,1] clamp to the nearest bucket.
func WearFromFloat(f float64) Wear {
	for w := WearFactoryNew; w < WearBattleScarred; w++ {
		if f < wearRanges[w][1] {
			return w
		}
	}
	return WearBattleScarred
}

// WearRangeFromName extracts the condition sub-range from a display name
// such as "AK-47 | Redline (Field-Tested)". Names without a recognized
// condition cover the whole scale.
func WearRangeFromName(name string) (lo, hi float64) {
	for w, wn := range wearNames {
		if strings.Contains(name, "("+wn+")") {
			return wearRanges[w][0], wearRanges[w][1]
		}
	}
	return 0, 1
}
