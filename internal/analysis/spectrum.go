// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"fmt"
	"math"

	"github.com/pdiddy/spm-report/pkg/types"
)

// Signal column names written by the Nanonis controller.
const (
	ColZRel     = "Z rel (m)"
	ColCurrent  = "Current (A)"
	ColBiasCalc = "Bias calc (V)"
	ColBias     = "Bias (V)"
	ColLockinX  = "LI Demod 1 X (A)"
)

// IZ returns the current-versus-height sweep of a Z spectroscopy file.
func IZ(s *types.SpectrumFile) (z, current []float64, err error) {
	z, err = s.Signal(ColZRel)
	if err != nil {
		return nil, nil, err
	}
	current, err = s.Signal(ColCurrent)
	if err != nil {
		return nil, nil, err
	}
	return z, current, nil
}

// IVRaw returns the raw current-versus-bias sweep.
func IVRaw(s *types.SpectrumFile) (bias, current []float64, err error) {
	bias, err = biasColumn(s)
	if err != nil {
		return nil, nil, err
	}
	current, err = s.Signal(ColCurrent)
	if err != nil {
		return nil, nil, err
	}
	return bias, current, nil
}

// DIDVScaled returns the differential conductance in physical units. When a
// lock-in demodulation channel was recorded, its arbitrary-unit signal is
// scaled so its mean magnitude matches the numerical dI/dV; otherwise the
// numerical gradient itself is returned.
func DIDVScaled(s *types.SpectrumFile) (bias, didv []float64, err error) {
	bias, current, err := IVRaw(s)
	if err != nil {
		return nil, nil, err
	}
	if len(bias) != len(current) {
		return nil, nil, fmt.Errorf("bias and current lengths differ: %d vs %d", len(bias), len(current))
	}

	grad := Gradient(bias, current)

	lockin, lockinErr := s.Signal(ColLockinX)
	if lockinErr != nil || len(lockin) != len(bias) {
		return bias, grad, nil
	}

	scale := meanAbs(grad) / meanAbs(lockin)
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale == 0 {
		return bias, grad, nil
	}
	didv = make([]float64, len(lockin))
	for i, v := range lockin {
		didv[i] = v * scale
	}
	return bias, didv, nil
}

// DIDVNormalized returns (dI/dV)/(I/V), the dimensionless normalized
// conductance. The total conductance in the denominator is broadened with a
// small constant so the ratio stays finite through the band gap and at zero
// bias.
func DIDVNormalized(s *types.SpectrumFile) (bias, norm []float64, err error) {
	bias, didv, err := DIDVScaled(s)
	if err != nil {
		return nil, nil, err
	}
	_, current, err := IVRaw(s)
	if err != nil {
		return nil, nil, err
	}

	total := make([]float64, len(bias))
	var maxTotal float64
	for i := range bias {
		if bias[i] != 0 {
			total[i] = current[i] / bias[i]
		} else {
			total[i] = math.NaN()
		}
		if a := math.Abs(total[i]); !math.IsNaN(a) && a > maxTotal {
			maxTotal = a
		}
	}
	broadening := 1e-2 * maxTotal

	norm = make([]float64, len(bias))
	for i := range bias {
		t := total[i]
		if math.IsNaN(t) {
			t = 0
		}
		denom := math.Sqrt(t*t + broadening*broadening)
		if denom == 0 {
			norm[i] = math.NaN()
			continue
		}
		norm[i] = didv[i] / denom
	}
	return bias, norm, nil
}

// Gradient computes dy/dx by central differences over a possibly
// non-uniform x grid, one-sided at the endpoints.
func Gradient(x, y []float64) []float64 {
	n := len(y)
	out := make([]float64, n)
	if n < 2 || len(x) != n {
		return out
	}
	for i := 0; i < n; i++ {
		var dx, dy float64
		switch {
		case i == 0:
			dx, dy = x[1]-x[0], y[1]-y[0]
		case i == n-1:
			dx, dy = x[i]-x[i-1], y[i]-y[i-1]
		default:
			dx, dy = x[i+1]-x[i-1], y[i+1]-y[i-1]
		}
		if dx == 0 {
			out[i] = 0
			continue
		}
		out[i] = dy / dx
	}
	return out
}

// GridSliceMean averages each grid point's sweep of the named channel and
// reshapes the result into a DimY x DimX map. Points never acquired (an
// interrupted grid) come back as NaN.
func GridSliceMean(g *types.GridFile, channel string) ([][]float64, error) {
	sweeps, ok := g.Data[channel]
	if !ok {
		return nil, fmt.Errorf("channel %q not present", channel)
	}
	out := make([][]float64, g.DimY)
	for y := 0; y < g.DimY; y++ {
		row := make([]float64, g.DimX)
		for x := 0; x < g.DimX; x++ {
			p := y*g.DimX + x
			if p >= len(sweeps) || len(sweeps[p]) == 0 {
				row[x] = math.NaN()
				continue
			}
			var sum float64
			for _, v := range sweeps[p] {
				sum += v
			}
			row[x] = sum / float64(len(sweeps[p]))
		}
		out[y] = row
	}
	return out, nil
}

// biasColumn returns the bias sweep, preferring the calibrated column.
func biasColumn(s *types.SpectrumFile) ([]float64, error) {
	if bias, err := s.Signal(ColBiasCalc); err == nil {
		return bias, nil
	}
	return s.Signal(ColBias)
}

func meanAbs(v []float64) float64 {
	var sum float64
	var n int
	for _, x := range v {
		if math.IsNaN(x) {
			continue
		}
		sum += math.Abs(x)
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
