package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantile_LinearInterpolation(t *testing.T) {
	xs := []float64{4000, 1000, 100000, 3000, 2000}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1000},
		{0.25, 2000},
		{0.5, 3000},
		{0.75, 4000},
		{1, 100000},
		{0.1, 1400}, // h=0.4 between 1000 and 2000
	}
	for _, tc := range tests {
		got, err := Quantile(xs, tc.p)
		require.NoError(t, err)
		assert.InDelta(t, tc.want, got, 1e-9, "p=%v", tc.p)
	}
	assert.Equal(t, []float64{4000, 1000, 100000, 3000, 2000}, xs, "input must not be reordered")
}

func TestMedian_EvenCount(t *testing.T) {
	m, err := Median([]float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 2.5, m)

	_, err = Median(nil)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestIQRBounds(t *testing.T) {
	f, err := IQRBounds([]float64{1000, 2000, 3000, 4000, 100000}, 0)
	require.NoError(t, err)
	assert.Equal(t, Fence{N: 5, Q1: 2000, Q3: 4000, IQR: 2000, K: 1.5, Lower: -1000, Upper: 7000}, f)

	_, err = IQRBounds([]float64{1, 2, 3}, 1.5)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestMeanStdDev(t *testing.T) {
	m, err := Mean([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.NoError(t, err)
	assert.Equal(t, 5.0, m)

	sd, err := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.NoError(t, err)
	assert.InDelta(t, 2.138, sd, 1e-3)

	one, err := StdDev([]float64{1})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(one))
}
