// Package stats provides the statistical primitives used for feature
// engineering: plain and outlier-resistant means, least-squares trend,
// population volatility, cyclic seasonality, and extreme-value ratio.
//
// All functions are pure and total: empty or too-short inputs return 0
// rather than an error, because a missing signal is modeled downstream as
// a neutral feature value, not a failure.
package stats

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean of xs, or 0 for empty input.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// RobustMean returns the mean of xs after discarding IQR outliers.
//
// Quartiles are taken at the floor(n*0.25) and floor(n*0.75) indices of the
// ascending-sorted values (index-based, not interpolated). Values outside
// [Q1-1.5*IQR, Q3+1.5*IQR] are excluded. If filtering removes every value,
// the unfiltered mean is returned instead.
func RobustMean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}

	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	q1 := sorted[int(float64(len(sorted))*0.25)]
	q3 := sorted[int(float64(len(sorted))*0.75)]
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	var sum float64
	var kept int
	for _, x := range xs {
		if x >= lower && x <= upper {
			sum += x
			kept++
		}
	}
	if kept == 0 {
		return Mean(xs)
	}
	return sum / float64(kept)
}

// Trend returns the ordinary least-squares slope of xs against its index
// 0..n-1, or 0 for fewer than two values. The index variance is nonzero for
// n >= 2, so the denominator never degenerates.
func Trend(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}

	var sumI, sumX, sumIX, sumII float64
	for i, x := range xs {
		fi := float64(i)
		sumI += fi
		sumX += x
		sumIX += fi * x
		sumII += fi * fi
	}

	fn := float64(n)
	return (fn*sumIX - sumI*sumX) / (fn*sumII - sumI*sumI)
}

// Volatility returns the population standard deviation of xs, or 0 for
// fewer than two values.
func Volatility(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}

	mean := Mean(xs)
	var sumSq float64
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n))
}

// Seasonality buckets xs by index modulo 12, averages each bucket, and
// returns the spread (max minus min) across bucket averages. Inputs shorter
// than one full cycle return 0.
func Seasonality(xs []float64) float64 {
	if len(xs) < 12 {
		return 0
	}

	var sums [12]float64
	var counts [12]int
	for i, x := range xs {
		b := i % 12
		sums[b] += x
		counts[b]++
	}

	minAvg := math.Inf(1)
	maxAvg := math.Inf(-1)
	for b := 0; b < 12; b++ {
		if counts[b] == 0 {
			continue
		}
		avg := sums[b] / float64(counts[b])
		minAvg = math.Min(minAvg, avg)
		maxAvg = math.Max(maxAvg, avg)
	}
	return maxAvg - minAvg
}

// ExtremeRatio returns the fraction of values exceeding mean + 2 standard
// deviations, or 0 for empty input.
func ExtremeRatio(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}

	threshold := Mean(xs) + 2*Volatility(xs)
	var exceeding int
	for _, x := range xs {
		if x > threshold {
			exceeding++
		}
	}
	return float64(exceeding) / float64(len(xs))
}

// Clamp01 bounds v to [0,1]. NaN collapses to 0 so that a degenerate
// upstream computation can never leak an unbounded value into a quality or
// probability field.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
