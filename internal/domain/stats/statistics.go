// Package stats computes the order statistics that drive the dashboard's
// color scales: min/max/median and a five-point quartile breakdown over the
// country-level values of one (year, sector) selection.
package stats

import (
	"math"
	"sort"
)

// ValueStatistics summarizes a filtered value set. Quartiles is the ordered
// 5-tuple [min, Q1, Q2, Q3, max].
type ValueStatistics struct {
	Min       float64    `json:"min"`
	Max       float64    `json:"max"`
	Median    float64    `json:"median"`
	Quartiles [5]float64 `json:"quartiles"`

	// SampleSize is the number of values the statistics were computed from;
	// zero marks the degenerate default.
	SampleSize int `json:"sampleSize"`
}

// Degenerate is the default returned for an empty value set. Downstream
// color scales can always assume a non-empty, non-zero-width domain.
func Degenerate() ValueStatistics {
	return ValueStatistics{
		Min:       0,
		Max:       1,
		Median:    0.5,
		Quartiles: [5]float64{0, 0.33, 0.5, 0.66, 1},
	}
}

// Compute derives ValueStatistics from values. Non-positive and non-finite
// entries are excluded: supranational totals and averages are the caller's
// concern (it must pass country-level values only), zero means "no measured
// activity" and would flatten the lower quartiles.
func Compute(values []float64) ValueStatistics {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return Degenerate()
	}
	sort.Float64s(clean)

	return ValueStatistics{
		Min:    clean[0],
		Max:    clean[len(clean)-1],
		Median: Quantile(clean, 0.5),
		Quartiles: [5]float64{
			clean[0],
			Quantile(clean, 0.25),
			Quantile(clean, 0.5),
			Quantile(clean, 0.75),
			clean[len(clean)-1],
		},
		SampleSize: len(clean),
	}
}

// Quantile returns the q-quantile of the ascending-sorted slice using linear
// interpolation between closest ranks: position p = (n-1)*q, result =
// a[floor(p)] + frac(p) * (a[floor(p)+1] - a[floor(p)]), clamped at the
// array boundary.
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}

	p := float64(n-1) * q
	lo := int(math.Floor(p))
	frac := p - float64(lo)
	if lo+1 >= n {
		return sorted[n-1]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
