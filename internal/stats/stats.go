// Package stats provides the small set of descriptive statistics the cleaning
// stages need: mean, median, quantiles with linear interpolation between order
// statistics, and IQR outlier bounds.
package stats

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// MinBoundsSample is the smallest sample for which IQR bounds are computed.
const MinBoundsSample = 4

// DefaultIQRMultiplier is the conventional Tukey fence multiplier.
const DefaultIQRMultiplier = 1.5

var (
	// ErrEmpty is returned when a statistic is requested over no values.
	ErrEmpty = errors.New("stats: no values")
	// ErrInsufficientData is returned by IQRBounds below MinBoundsSample.
	ErrInsufficientData = errors.New("stats: insufficient data for quartiles")
)

// Mean returns the arithmetic mean of xs.
func Mean(xs []float64) (float64, error) {
	if len(xs) == 0 {
		return 0, ErrEmpty
	}
	return stat.Mean(xs, nil), nil
}

// StdDev returns the sample standard deviation (n-1 denominator). It is NaN
// for a single value, matching the usual dataframe convention.
func StdDev(xs []float64) (float64, error) {
	switch len(xs) {
	case 0:
		return 0, ErrEmpty
	case 1:
		return math.NaN(), nil
	}
	return stat.StdDev(xs, nil), nil
}

// Median returns the 50th percentile of xs.
func Median(xs []float64) (float64, error) { return Quantile(xs, 0.5) }

// Quantile returns the p-quantile of xs (0 <= p <= 1) using linear
// interpolation between the closest order statistics: with the values sorted
// ascending and h = (n-1)p, the result is x[⌊h⌋] + (h-⌊h⌋)(x[⌊h⌋+1]-x[⌊h⌋]).
// xs is not modified.
func Quantile(xs []float64, p float64) (float64, error) {
	if len(xs) == 0 {
		return 0, ErrEmpty
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	return quantileSorted(sorted, p), nil
}

func quantileSorted(sorted []float64, p float64) float64 {
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[i]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// Quartiles returns Q1, the median and Q3 of xs with a single sort.
func Quartiles(xs []float64) (q1, q2, q3 float64, err error) {
	if len(xs) == 0 {
		return 0, 0, 0, ErrEmpty
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	return quantileSorted(sorted, 0.25), quantileSorted(sorted, 0.5), quantileSorted(sorted, 0.75), nil
}

// Fence is the closed interval [Lower, Upper] derived from the quartiles.
type Fence struct {
	N      int
	Q1, Q3 float64
	IQR    float64
	K      float64
	Lower  float64
	Upper  float64
}

// IQRBounds computes [Q1 - k·IQR, Q3 + k·IQR]. k <= 0 selects
// DefaultIQRMultiplier. Fewer than MinBoundsSample values yield
// ErrInsufficientData.
func IQRBounds(xs []float64, k float64) (Fence, error) {
	if len(xs) < MinBoundsSample {
		return Fence{N: len(xs)}, ErrInsufficientData
	}
	if k <= 0 {
		k = DefaultIQRMultiplier
	}
	q1, _, q3, _ := Quartiles(xs)
	iqr := q3 - q1
	return Fence{
		N:     len(xs),
		Q1:    q1,
		Q3:    q3,
		IQR:   iqr,
		K:     k,
		Lower: q1 - k*iqr,
		Upper: q3 + k*iqr,
	}, nil
}

// MinMax returns the extremes of xs.
func MinMax(xs []float64) (lo, hi float64, err error) {
	if len(xs) == 0 {
		return 0, 0, ErrEmpty
	}
	lo, hi = xs[0], xs[0]
	for _, x := range xs[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return lo, hi, nil
}
