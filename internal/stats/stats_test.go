package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	vals := []float64{5, 1, 4, 2, 3}
	tests := []struct {
		q    float64
		want float64
	}{
		{0, 1},
		{25, 2},
		{50, 3},
		{60, 3.4},
		{100, 5},
		{-10, 1},
		{150, 5},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Percentile(vals, tt.q), 1e-9, "q=%v", tt.q)
	}
	assert.Equal(t, []float64{5, 1, 4, 2, 3}, vals, "input must not be reordered")
	assert.Zero(t, Percentile(nil, 50))
}

func TestPercentileTiedValues(t *testing.T) {
	for n := 2; n <= 20; n++ {
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = 0.1
		}
		for q := 1.0; q < 100; q++ {
			assert.Equal(t, 0.1, Percentile(vals, q), "n=%d q=%v", n, q)
		}
	}
	// Interpolating between equal neighbours stays on them.
	assert.Equal(t, 0.7, Percentile([]float64{0.1, 0.7, 0.7, 0.9}, 50))
}

func TestMeanStdDev(t *testing.T) {
	assert.Zero(t, Mean(nil))
	assert.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 1e-12)

	assert.Zero(t, StdDev([]float64{7}))
	// Sample std-dev of 2,4,4,4,5,5,7,9 is sqrt(32/7).
	assert.InDelta(t, math.Sqrt(32.0/7.0), StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-12)
}

func TestMinMax(t *testing.T) {
	lo, hi := MinMax([]float64{3, -2, 8, 0})
	assert.Equal(t, -2.0, lo)
	assert.Equal(t, 8.0, hi)

	lo, hi = MinMax(nil)
	assert.Zero(t, lo)
	assert.Zero(t, hi)
}

func TestSafeDivide(t *testing.T) {
	assert.Equal(t, 2.0, SafeDivide(4, 2, -1))
	assert.Equal(t, -1.0, SafeDivide(4, 0, -1))
}
