// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import "math"

// FlattenLinear subtracts a least-squares line from every scanline of a
// height map, the standard correction for sample tilt along the fast scan
// axis. NaN pixels are excluded from each fit and preserved in the output.
func FlattenLinear(z [][]float64) [][]float64 {
	out := make([][]float64, len(z))
	for y, row := range z {
		out[y] = subtractLine(row)
	}
	return out
}

func subtractLine(row []float64) []float64 {
	var sx, sy, sxx, sxy float64
	var n int
	for x, v := range row {
		if math.IsNaN(v) {
			continue
		}
		fx := float64(x)
		sx += fx
		sy += v
		sxx += fx * fx
		sxy += fx * v
		n++
	}

	out := make([]float64, len(row))
	if n < 2 {
		copy(out, row)
		return out
	}

	denom := float64(n)*sxx - sx*sx
	var slope, intercept float64
	if denom != 0 {
		slope = (float64(n)*sxy - sx*sy) / denom
		intercept = (sy - slope*sx) / float64(n)
	} else {
		intercept = sy / float64(n)
	}

	for x, v := range row {
		if math.IsNaN(v) {
			out[x] = v
			continue
		}
		out[x] = v - (slope*float64(x) + intercept)
	}
	return out
}

// DerivativeX differentiates a height map along the fast scan axis using
// central differences (one-sided at the edges). dx is the physical pixel
// spacing in meters.
func DerivativeX(z [][]float64, dx float64) [][]float64 {
	if dx == 0 {
		dx = 1
	}
	out := make([][]float64, len(z))
	for y, row := range z {
		d := make([]float64, len(row))
		for x := range row {
			switch {
			case len(row) < 2:
				d[x] = 0
			case x == 0:
				d[x] = (row[1] - row[0]) / dx
			case x == len(row)-1:
				d[x] = (row[x] - row[x-1]) / dx
			default:
				d[x] = (row[x+1] - row[x-1]) / (2 * dx)
			}
		}
		out[y] = d
	}
	return out
}
