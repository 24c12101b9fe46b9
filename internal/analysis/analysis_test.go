// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"math"
	"testing"

	"github.com/pdiddy/spm-report/pkg/types"
)

func TestDisplayBounds(t *testing.T) {
	// mean 2, population sigma sqrt(2) over {0,1,2,3,4}.
	values := []float64{0, 1, 2, 3, 4}
	lo, hi := DisplayBounds(values)

	sigma := math.Sqrt(2)
	if math.Abs(lo-(2-3*sigma)) > 1e-12 {
		t.Errorf("lo = %f, want %f", lo, 2-3*sigma)
	}
	if math.Abs(hi-(2+3*sigma)) > 1e-12 {
		t.Errorf("hi = %f, want %f", hi, 2+3*sigma)
	}
}

func TestDisplayBoundsIgnoresNaN(t *testing.T) {
	clean := []float64{0, 1, 2, 3, 4}
	dirty := []float64{0, math.NaN(), 1, 2, math.NaN(), 3, 4}

	lo1, hi1 := DisplayBounds(clean)
	lo2, hi2 := DisplayBounds(dirty)
	if lo1 != lo2 || hi1 != hi2 {
		t.Errorf("bounds with NaNs = (%f, %f), want (%f, %f)", lo2, hi2, lo1, hi1)
	}
}

func TestDisplayBoundsAllNaN(t *testing.T) {
	lo, hi := DisplayBounds([]float64{math.NaN(), math.NaN()})
	if lo != 0 || hi != 0 {
		t.Errorf("bounds = (%f, %f), want (0, 0)", lo, hi)
	}
}

func TestFlattenLinearRemovesTilt(t *testing.T) {
	// Each scanline is a pure ramp; flattening should zero it out.
	z := [][]float64{
		{0, 1, 2, 3},
		{10, 12, 14, 16},
	}
	flat := FlattenLinear(z)
	for y, row := range flat {
		for x, v := range row {
			if math.Abs(v) > 1e-9 {
				t.Errorf("flat[%d][%d] = %f, want 0", y, x, v)
			}
		}
	}
}

func TestFlattenLinearPreservesNaN(t *testing.T) {
	z := [][]float64{{0, math.NaN(), 2, 3}}
	flat := FlattenLinear(z)
	if !math.IsNaN(flat[0][1]) {
		t.Errorf("flat[0][1] = %f, want NaN", flat[0][1])
	}
}

func TestDerivativeX(t *testing.T) {
	// Slope 2 per pixel, dx = 0.5 -> derivative 4 everywhere.
	z := [][]float64{{0, 2, 4, 6}}
	d := DerivativeX(z, 0.5)
	for x, v := range d[0] {
		if math.Abs(v-4) > 1e-9 {
			t.Errorf("d[0][%d] = %f, want 4", x, v)
		}
	}
}

func TestGradientQuadratic(t *testing.T) {
	// y = x^2 -> dy/dx = 2x exactly under central differences.
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{0, 1, 4, 9, 16}
	g := Gradient(x, y)
	want := []float64{1, 2, 4, 6, 7}
	for i := range g {
		if math.Abs(g[i]-want[i]) > 1e-9 {
			t.Errorf("g[%d] = %f, want %f", i, g[i], want[i])
		}
	}
}

func spectrumFixture(withLockin bool) *types.SpectrumFile {
	bias := []float64{-1, -0.5, 0, 0.5, 1}
	current := make([]float64, len(bias))
	for i, v := range bias {
		current[i] = 2e-10 * v // ohmic: dI/dV = 2e-10 everywhere
	}

	s := &types.SpectrumFile{
		Header:  types.Header{},
		Columns: []string{ColBiasCalc, ColCurrent},
		Signals: map[string][]float64{
			ColBiasCalc: bias,
			ColCurrent:  current,
		},
	}
	if withLockin {
		lockin := make([]float64, len(bias))
		for i := range lockin {
			lockin[i] = 3.0 // arbitrary units, flat
		}
		s.Columns = append(s.Columns, ColLockinX)
		s.Signals[ColLockinX] = lockin
	}
	return s
}

func TestDIDVScaledFromGradient(t *testing.T) {
	s := spectrumFixture(false)
	_, didv, err := DIDVScaled(s)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range didv {
		if math.Abs(v-2e-10) > 1e-16 {
			t.Errorf("didv[%d] = %g, want 2e-10", i, v)
		}
	}
}

func TestDIDVScaledMatchesLockinToGradient(t *testing.T) {
	s := spectrumFixture(true)
	_, didv, err := DIDVScaled(s)
	if err != nil {
		t.Fatal(err)
	}
	// The flat lock-in signal should be rescaled onto the numerical
	// dI/dV magnitude.
	for i, v := range didv {
		if math.Abs(v-2e-10) > 1e-16 {
			t.Errorf("didv[%d] = %g, want 2e-10", i, v)
		}
	}
}

func TestDIDVNormalizedOhmic(t *testing.T) {
	s := spectrumFixture(false)
	_, norm, err := DIDVNormalized(s)
	if err != nil {
		t.Fatal(err)
	}
	// For an ohmic curve dI/dV == I/V, so the ratio sits near 1 away
	// from zero bias.
	if math.Abs(norm[0]-1) > 0.01 {
		t.Errorf("norm[0] = %f, want ~1", norm[0])
	}
	if math.Abs(norm[len(norm)-1]-1) > 0.01 {
		t.Errorf("norm[last] = %f, want ~1", norm[len(norm)-1])
	}
}

func TestGridSliceMean(t *testing.T) {
	g := &types.GridFile{
		DimX:     2,
		DimY:     2,
		Points:   2,
		Channels: []string{ColCurrent},
		Data: map[string][][]float64{
			ColCurrent: {
				{1, 3}, {2, 4}, {10, 20}, // point 3 never acquired
			},
		},
	}
	slice, err := GridSliceMean(g, ColCurrent)
	if err != nil {
		t.Fatal(err)
	}
	if slice[0][0] != 2 || slice[0][1] != 3 || slice[1][0] != 15 {
		t.Errorf("slice = %v", slice)
	}
	if !math.IsNaN(slice[1][1]) {
		t.Errorf("missing point = %f, want NaN", slice[1][1])
	}
}
