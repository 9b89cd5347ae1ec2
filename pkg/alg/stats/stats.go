// Package stats provides the descriptive statistics behind the score report.
// Standard deviation is the sample form (÷(n−1)); functions that have no
// defined result for short inputs report it through an ok flag instead of a
// magic number.
package stats

import (
	"cmp"
	"math"
	"slices"
)

// Mean returns the arithmetic mean of values.
// Returns 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64

	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// PercentileMedian is the percentile rank of the median.
const PercentileMedian = 0.5

// Percentile returns the p-th percentile of values using linear interpolation.
// p must be in [0, 1]. The input slice is not modified.
// Returns 0 for an empty slice.
func Percentile(values []float64, p float64) float64 {
	count := len(values)
	if count == 0 {
		return 0
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	idx := p * float64(count-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))

	if lower == upper || upper >= count {
		return sorted[lower]
	}

	frac := idx - float64(lower)

	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// Median returns the middle value of values, or the average of the two
// middle values for an even count. Returns 0 for an empty slice.
func Median(values []float64) float64 {
	return Percentile(values, PercentileMedian)
}

// Mode returns the most frequent value. When several values share the highest
// frequency the smallest of them wins. ok is false for an empty slice.
func Mode(values []float64) (mode float64, ok bool) {
	if len(values) == 0 {
		return 0, false
	}

	counts := make(map[float64]int, len(values))

	for _, v := range values {
		counts[v]++
	}

	best := 0

	for v, n := range counts {
		if n > best || (n == best && v < mode) {
			mode, best = v, n
		}
	}

	return mode, true
}

// SampleStdDev returns the sample standard deviation (n−1 denominator).
// ok is false when fewer than two values are given.
func SampleStdDev(values []float64) (stddev float64, ok bool) {
	count := len(values)
	if count < 2 {
		return 0, false
	}

	mean := Mean(values)

	var sumSq float64

	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}

	return math.Sqrt(sumSq / float64(count-1)), true
}

// Histogram splits values into bins equal-width buckets spanning [min, max]
// and returns the bucket edges (bins+1 of them) and per-bucket counts. The
// last bucket is closed on the right. A constant input is widened to
// [v−0.5, v+0.5]. Returns nil slices for empty input or bins < 1.
func Histogram(values []float64, bins int) (edges []float64, counts []int) {
	if len(values) == 0 || bins < 1 {
		return nil, nil
	}

	lo, hi := Min(values), Max(values)
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	width := (hi - lo) / float64(bins)

	edges = make([]float64, bins+1)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}

	edges[bins] = hi

	counts = make([]int, bins)

	for _, v := range values {
		idx := Clamp(int((v-lo)/width), 0, bins-1)
		counts[idx]++
	}

	return edges, counts
}

// Clamp restricts val to the range [lo, hi].
func Clamp[T cmp.Ordered](val, lo, hi T) T {
	return max(lo, min(val, hi))
}

// Min returns the smallest element in values.
// Returns the zero value of T for an empty slice.
func Min[T cmp.Ordered](values []T) T {
	if len(values) == 0 {
		var zero T

		return zero
	}

	return slices.Min(values)
}

// Max returns the largest element in values.
// Returns the zero value of T for an empty slice.
func Max[T cmp.Ordered](values []T) T {
	if len(values) == 0 {
		var zero T

		return zero
	}

	return slices.Max(values)
}

// Sum returns the sum of all elements in values.
func Sum[T cmp.Ordered](values []T) T {
	var result T

	for _, v := range values {
		result += v
	}

	return result
}
