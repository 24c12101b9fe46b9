// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package params

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/pdiddy/spm-report/internal/analysis"
	"github.com/pdiddy/spm-report/pkg/types"
)

func TestReformatDate(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{"day month year", "05.03.2024", "2024.03.05", true},
		{"missing dots", "05-03-2024", "05-03-2024", false},
		{"one dot", "05.2024", "05.2024", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ReformatDate(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ReformatDate(%q) = (%q, %v), want (%q, %v)",
					tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestReformatDateTime(t *testing.T) {
	got, ok := ReformatDateTime("05.03.2024 14:30:00")
	if !ok || got != "2024.03.05_14:30:00" {
		t.Errorf("ReformatDateTime() = (%q, %v)", got, ok)
	}

	// No clock part: passed through verbatim.
	got, ok = ReformatDateTime("05.03.2024")
	if ok || got != "05.03.2024" {
		t.Errorf("ReformatDateTime() = (%q, %v), want verbatim fallback", got, ok)
	}
}

func TestAspectRatio(t *testing.T) {
	got := AspectRatio([2]int{512, 256}, [2]float64{100e-9, 50e-9})
	if math.Abs(got-1.0) > 1e-12 {
		t.Errorf("AspectRatio() = %f, want 1.0", got)
	}

	if got := AspectRatio([2]int{512, 0}, [2]float64{1, 1}); got != 1 {
		t.Errorf("AspectRatio() with zero pixels = %f, want fallback 1", got)
	}
}

func scanFixture() *types.ScanFile {
	return &types.ScanFile{
		Header: types.Header{
			"scan_angle":            "9.0E+0",
			"bias":                  "5.000E-1",
			"z-controller>setpoint": "1.000E-10 A",
			"rec_date":              "20.03.2024",
			"rec_time":              "15:42:10",
		},
		PixelsX:   512,
		PixelsY:   256,
		RangeX:    100e-9,
		RangeY:    50e-9,
		Direction: "down",
	}
}

func TestFromScan(t *testing.T) {
	p, err := FromScan(scanFixture(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Bias != 0.5 {
		t.Errorf("Bias = %f, want 0.5", p.Bias)
	}
	if p.Setpoint != 1e-10 {
		t.Errorf("Setpoint = %g, want 1e-10", p.Setpoint)
	}
	if p.ScanDate != "2024.03.20" {
		t.Errorf("ScanDate = %q, want 2024.03.20", p.ScanDate)
	}
	if math.Abs(p.AspectRatio-1.0) > 1e-12 {
		t.Errorf("AspectRatio = %f, want 1.0", p.AspectRatio)
	}
}

func TestFromScanMalformedDateWarns(t *testing.T) {
	scan := scanFixture()
	scan.Header["rec_date"] = "March 20, 2024"

	var warn bytes.Buffer
	p, err := FromScan(scan, &warn)
	if err != nil {
		t.Fatal(err)
	}
	if p.ScanDate != "March 20, 2024" {
		t.Errorf("ScanDate = %q, want verbatim input", p.ScanDate)
	}
	if !strings.Contains(warn.String(), "date") {
		t.Errorf("expected a data-quality warning, got %q", warn.String())
	}
}

func spectrumFixture(zSweep bool) *types.SpectrumFile {
	header := types.Header{
		"Bias>Bias (V)":         "500E-3",
		"Z-Controller>Setpoint": "2E-9",
		"Comment01":             "test sample",
		"Saved Date":            "05.03.2024 14:30:00",
	}
	s := &types.SpectrumFile{Header: header, Signals: map[string][]float64{}}
	if zSweep {
		header["Z Spectroscopy>Initial Z-offset (m)"] = "-1E-10"
		header["Z Spectroscopy>Sweep distance (m)"] = "5E-10"
		header["Z Spectroscopy>Number of sweeps"] = "2"
		s.Signals[analysis.ColZRel] = []float64{0, 1e-10}
		s.Signals[analysis.ColCurrent] = []float64{1e-10, 2e-10}
	} else {
		header["Bias Spectroscopy>Sweep Start (V)"] = "-1E+0"
		header["Bias Spectroscopy>Sweep End (V)"] = "1E+0"
		header["Bias Spectroscopy>Number of sweeps"] = "3"
		s.Signals[analysis.ColBiasCalc] = []float64{-1, 1}
		s.Signals[analysis.ColCurrent] = []float64{-1e-10, 1e-10}
	}
	return s
}

func TestFromSpectrumSelectsZSweepBranch(t *testing.T) {
	p, err := FromSpectrum(spectrumFixture(true), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !p.ZSweep {
		t.Fatal("ZSweep = false, want true for a record with a Z rel signal")
	}
	if p.SweepDistance != 5e-10 {
		t.Errorf("SweepDistance = %g, want 5e-10", p.SweepDistance)
	}
	if p.SavedDate != "2024.03.05_14:30:00" {
		t.Errorf("SavedDate = %q", p.SavedDate)
	}
}

func TestFromSpectrumSelectsBiasSweepBranch(t *testing.T) {
	p, err := FromSpectrum(spectrumFixture(false), nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.ZSweep {
		t.Fatal("ZSweep = true, want false without a Z rel signal")
	}
	if p.SweepStart != -1 || p.SweepEnd != 1 {
		t.Errorf("sweep bounds = (%f, %f), want (-1, 1)", p.SweepStart, p.SweepEnd)
	}
	if p.SweepCount != 3 {
		t.Errorf("SweepCount = %d, want 3", p.SweepCount)
	}
}

func TestFormatCurrent(t *testing.T) {
	tests := []struct {
		amps float64
		want string
	}{
		{2e-9, "2 nA"},
		{1e-9, "1 nA"},
		{-3e-9, "-3 nA"},
		{500e-12, "500 pA"},
		{-20e-12, "-20 pA"},
	}
	for _, tt := range tests {
		if got := FormatCurrent(tt.amps); got != tt.want {
			t.Errorf("FormatCurrent(%g) = %q, want %q", tt.amps, got, tt.want)
		}
	}
}

func TestScanCaption(t *testing.T) {
	p, err := FromScan(scanFixture(), nil)
	if err != nil {
		t.Fatal(err)
	}
	caption := p.Caption()
	for _, want := range []string{"0.5 V /", "100 pA", "100 x 50 nm²", "(down, 9.0˚)", "2024.03.20_15:42:10"} {
		if !strings.Contains(caption, want) {
			t.Errorf("caption %q missing %q", caption, want)
		}
	}
}

func TestSpectrumCaptionBiasSweep(t *testing.T) {
	p, err := FromSpectrum(spectrumFixture(false), nil)
	if err != nil {
		t.Fatal(err)
	}
	caption := p.Caption()
	for _, want := range []string{"0.5 V /", "2 nA", "-1 V to 1 V (sweeps: 3)", "2024.03.05_14:30:00"} {
		if !strings.Contains(caption, want) {
			t.Errorf("caption %q missing %q", caption, want)
		}
	}
}

func TestSpectrumCaptionZSweepOmitsSweepBounds(t *testing.T) {
	p, err := FromSpectrum(spectrumFixture(true), nil)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(p.Caption(), " to ") {
		t.Errorf("Z-sweep caption %q should not carry bias sweep bounds", p.Caption())
	}
}
