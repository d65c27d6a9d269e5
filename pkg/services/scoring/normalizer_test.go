package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_DeficitGoesToLargestRemainder(t *testing.T) {
	// Floors sum to 99; the single missing point belongs to 20.4.
	got := Normalize([]float64{20.4, 19.6, 20.0, 20.0, 20.0})
	assert.Equal(t, []int{20, 20, 20, 20, 20}, got)
}

func TestNormalize_NearThirds(t *testing.T) {
	got := Normalize([]float64{33.34, 33.33, 33.33, 0, 0})
	assert.Equal(t, []int{34, 33, 33, 0, 0}, got)
}

func TestNormalize_AllZero(t *testing.T) {
	got := Normalize([]float64{0, 0, 0, 0, 0})
	assert.Equal(t, []int{20, 20, 20, 20, 20}, got)
}

func TestNormalize_AllEqual(t *testing.T) {
	got := Normalize([]float64{7.3, 7.3, 7.3, 7.3, 7.3})
	assert.Equal(t, []int{20, 20, 20, 20, 20}, got)
}

func TestNormalize_OneDominant(t *testing.T) {
	got := Normalize([]float64{100, 0, 0, 0, 0})
	assert.Equal(t, []int{100, 0, 0, 0, 0}, got)
}

func TestNormalize_UnscaledInput(t *testing.T) {
	// Raw weights nowhere near a 100 scale still come out exact.
	got := Normalize([]float64{1, 2, 3, 4, 5})
	sum := 0
	for _, v := range got {
		sum += v
	}
	assert.Equal(t, 100, sum)
	assert.True(t, got[0] < got[4], "ranking must be preserved")
}

func TestNormalize_SumInvariantHolds(t *testing.T) {
	// Deterministic pseudo-random sweep over awkward distributions.
	seed := uint64(42)
	next := func() float64 {
		seed = seed*6364136223846793005 + 1442695040888963407
		return float64(seed%100000) / 317.0
	}

	for i := 0; i < 500; i++ {
		weights := []float64{next(), next(), next(), next(), next()}
		got := Normalize(weights)
		require.Len(t, got, 5)

		sum := 0
		for _, v := range got {
			require.GreaterOrEqual(t, v, 0, "weights %v", weights)
			sum += v
		}
		require.Equal(t, 100, sum, "weights %v", weights)
	}
}

func TestApportion_NegativeDeficit(t *testing.T) {
	// Floors overshoot 100; the surplus is taken from the smallest
	// remainders without driving any category negative.
	got := apportion([]float64{21, 21, 21, 21, 21})
	sum := 0
	for _, v := range got {
		assert.GreaterOrEqual(t, v, 0)
		sum += v
	}
	assert.Equal(t, 100, sum)
}

func TestApportion_NegativeDeficitSkipsZeros(t *testing.T) {
	got := apportion([]float64{0, 0, 34, 34, 34})
	assert.Equal(t, []int{0, 0, 33, 33, 34}, got)

	sum := 0
	for _, v := range got {
		sum += v
	}
	assert.Equal(t, 100, sum)
}

func TestNormalize_GarbageInputIsTotal(t *testing.T) {
	got := Normalize([]float64{-5, 0, 12, 0, 3})
	sum := 0
	for _, v := range got {
		assert.GreaterOrEqual(t, v, 0)
		sum += v
	}
	assert.Equal(t, 100, sum)
}
