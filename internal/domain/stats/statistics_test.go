package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute_Empty(t *testing.T) {
	t.Parallel()

	got := Compute(nil)
	assert.Equal(t, Degenerate(), got)
	assert.Equal(t, 0.0, got.Min)
	assert.Equal(t, 1.0, got.Max)
	assert.Equal(t, 0.5, got.Median)
	assert.Zero(t, got.SampleSize)
}

func TestCompute_ExcludesNonPositive(t *testing.T) {
	t.Parallel()

	// Zeros, negatives and NaN never contribute: only 10 and 20 survive.
	got := Compute([]float64{0, -5, math.NaN(), 10, 20})

	assert.Equal(t, 10.0, got.Min)
	assert.Equal(t, 20.0, got.Max)
	assert.Equal(t, 15.0, got.Median)
	assert.Equal(t, 2, got.SampleSize)
}

func TestCompute_AllExcluded(t *testing.T) {
	t.Parallel()

	got := Compute([]float64{0, 0, -1})
	assert.Equal(t, Degenerate(), got)
}

func TestCompute_SingleValue(t *testing.T) {
	t.Parallel()

	got := Compute([]float64{42})
	assert.Equal(t, 42.0, got.Min)
	assert.Equal(t, 42.0, got.Max)
	assert.Equal(t, 42.0, got.Median)
	assert.Equal(t, [5]float64{42, 42, 42, 42, 42}, got.Quartiles)
}

func TestCompute_QuartileBoundaries(t *testing.T) {
	t.Parallel()

	cases := [][]float64{
		{1},
		{3, 1},
		{5, 1, 3},
		{10, 20, 30, 40, 100},
		{0.5, 1.2, 1.2, 7, 7, 7, 300},
	}
	for _, values := range cases {
		got := Compute(values)

		assert.Equal(t, got.Min, got.Quartiles[0])
		assert.Equal(t, got.Max, got.Quartiles[4])
		assert.Equal(t, got.Median, got.Quartiles[2])
		for i := 1; i < 5; i++ {
			assert.GreaterOrEqual(t, got.Quartiles[i], got.Quartiles[i-1])
		}
		for _, q := range got.Quartiles {
			assert.False(t, math.IsNaN(q))
		}
	}
}

func TestCompute_KnownQuartiles(t *testing.T) {
	t.Parallel()

	// n=5: p = 4*q, so Q1 sits exactly on index 1, Q3 on index 3.
	got := Compute([]float64{10, 20, 30, 40, 100})
	assert.Equal(t, [5]float64{10, 20, 30, 40, 100}, got.Quartiles)

	// n=4: p = 3*q interpolates. Q1 = 1 + 0.75*(2-1) = 1.75.
	got = Compute([]float64{1, 2, 3, 4})
	assert.InDelta(t, 1.75, got.Quartiles[1], 1e-9)
	assert.InDelta(t, 2.5, got.Median, 1e-9)
	assert.InDelta(t, 3.25, got.Quartiles[3], 1e-9)
}

func TestQuantile_Clamped(t *testing.T) {
	t.Parallel()

	sorted := []float64{1, 2, 3}
	assert.Equal(t, 1.0, Quantile(sorted, -0.5))
	assert.Equal(t, 1.0, Quantile(sorted, 0))
	assert.Equal(t, 3.0, Quantile(sorted, 1))
	assert.Equal(t, 3.0, Quantile(sorted, 2))
	assert.Equal(t, 0.0, Quantile(nil, 0.5))
}
