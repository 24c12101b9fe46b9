// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analysis derives plot-ready quantities from raw instrument
// signals: topograph corrections, spectroscopy curves, and display bounds.
package analysis

import "math"

// DisplayBounds returns mean ± 3 standard deviations over values, ignoring
// NaN entries. This is the fixed outlier-robust contrast policy for map
// color scales. When no finite values exist, both bounds are zero.
func DisplayBounds(values []float64) (lo, hi float64) {
	var sum float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0, 0
	}
	mean := sum / float64(n)

	var sq float64
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		d := v - mean
		sq += d * d
	}
	sigma := math.Sqrt(sq / float64(n))

	return mean - 3*sigma, mean + 3*sigma
}

// Flatten2D concatenates the rows of a map into one slice, for feeding
// 2-D data into DisplayBounds.
func Flatten2D(grid [][]float64) []float64 {
	var n int
	for _, row := range grid {
		n += len(row)
	}
	out := make([]float64, 0, n)
	for _, row := range grid {
		out = append(out, row...)
	}
	return out
}
