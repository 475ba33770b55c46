package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cs2trade/tradeupbot/internal/domain"
)

func TestFloatVariants(t *testing.T) {
	rq := require.New(t)

	it := &domain.Item{
		ID:           "a",
		Name:         "A (Field-Tested)",
		MinFloat:     0.0,
		MaxFloat:     1.0,
		RealMinFloat: 0.15,
		RealMaxFloat: 0.38,
	}

	// 0.15 + 0.23*0.25 sits a hair below 0.2075; correct rounding keeps it
	// at 0.207 instead of bumping the half up.
	rq.Equal([3]float64{0.207, 0.265, 0.334}, it.FloatVariants())
}

func TestFloatVariantsDegenerateRange(t *testing.T) {
	rq := require.New(t)

	it := &domain.Item{RealMinFloat: 0.25, RealMaxFloat: 0.25}
	rq.Equal([3]float64{0.25, 0.25, 0.25}, it.FloatVariants())
}
