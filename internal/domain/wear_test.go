package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cs2trade/tradeupbot/internal/domain"
)

func TestWearFromFloat(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name string
		f    float64
		want domain.Wear
	}{
		{name: "zero", f: 0.0, want: domain.WearFactoryNew},
		{name: "below first boundary", f: 0.069, want: domain.WearFactoryNew},
		{name: "boundary is exclusive", f: 0.07, want: domain.WearMinimalWear},
		{name: "field tested", f: 0.2537, want: domain.WearFieldTested},
		{name: "well worn lower edge", f: 0.38, want: domain.WearWellWorn},
		{name: "battle scarred", f: 0.45, want: domain.WearBattleScarred},
		{name: "scale maximum", f: 1.0, want: domain.WearBattleScarred},
		{name: "clamps above scale", f: 1.3, want: domain.WearBattleScarred},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			rq.Equal(tc.want, domain.WearFromFloat(tc.f))
		})
	}
}

func TestWearRangeFromName(t *testing.T) {
	rq := require.New(t)

	lo, hi := domain.WearRangeFromName("AK-47 | Redline (Field-Tested)")
	rq.Equal(0.15, lo)
	rq.Equal(0.38, hi)

	lo, hi = domain.WearRangeFromName("StatTrak™ Glock-18 | Fade (Factory New)")
	rq.Equal(0.00, lo)
	rq.Equal(0.07, hi)

	// No recognized condition covers the whole scale.
	lo, hi = domain.WearRangeFromName("Sticker | Crown (Foil)")
	rq.Equal(0.0, lo)
	rq.Equal(1.0, hi)
}

func TestWearRangeRoundTrip(t *testing.T) {
	rq := require.New(t)

	for w := domain.WearFactoryNew; w <= domain.WearBattleScarred; w++ {
		lo, hi := w.Range()
		rq.Equal(w, domain.WearFromFloat(lo), "lower edge of %s", w)
		rq.Less(lo, hi)
	}
}
