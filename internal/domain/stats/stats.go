// Package stats provides the small set of descriptive statistics the
// aggregator needs. Quantiles use linear interpolation between order
// statistics and the standard deviation is the population form, matching the
// published methodology for the exported metrics.
package stats

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean, or 0 for an empty slice.
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

// Quantile returns the q-th quantile (0 <= q <= 1) using linear
// interpolation between closest ranks. Returns 0 for an empty slice.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if q < 0 {
		q = 0
	}
	if q > 1 {
		q = 1
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// Median returns the 0.5 quantile.
func Median(values []float64) float64 {
	return Quantile(values, 0.5)
}

// StdDev returns the population standard deviation, or 0 for an empty slice.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// Min returns the smallest value, or 0 for an empty slice.
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	minVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
	}
	return minVal
}

// midpointScore is the score assigned when every input is identical and a
// relative position cannot be computed.
const midpointScore = 50

// RescaleInverted linearly rescales values to 0-100 and inverts the scale,
// so the smallest input maps to 100 and the largest to 0. When all inputs
// are equal (including a single input) every value maps to the midpoint 50.
// Results are rounded to the nearest integer.
func RescaleInverted(values []float64) []int {
	out := make([]int, len(values))
	if len(values) == 0 {
		return out
	}

	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	for i, v := range values {
		if maxVal == minVal {
			out[i] = midpointScore
			continue
		}
		normalized := (v - minVal) / (maxVal - minVal)
		out[i] = int(math.Round((1 - normalized) * 100))
	}
	return out
}

// Round3 rounds to 3 decimal places (pit seconds at the export boundary).
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Round5 rounds to 5 decimal places (pass rates at the export boundary).
func Round5(v float64) float64 {
	return math.Round(v*100000) / 100000
}
