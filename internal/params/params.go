// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package params extracts the fixed per-format parameter sets from parsed
// instrument files and formats them into slide captions.
package params

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/spm-report/internal/analysis"
	"github.com/pdiddy/spm-report/pkg/types"
)

// ScanParams is the parameter set of a topography image.
type ScanParams struct {
	Pixels      [2]int
	Range       [2]float64 // meters
	Direction   string
	Angle       float64 // degrees
	Bias        float64 // volts
	Setpoint    float64 // amps
	ScanDate    string  // yyyy.mm.dd
	ScanTime    string
	AspectRatio float64
}

// SpectrumParams is the parameter set of a point-spectroscopy file. ZSweep
// selects between the Z-sweep fields (OffsetZ, SweepDistance) and the
// bias-sweep fields (SweepStart, SweepEnd).
type SpectrumParams struct {
	Bias     float64
	Setpoint float64
	ZSweep   bool

	SweepStart float64 // volts, bias sweep only
	SweepEnd   float64 // volts, bias sweep only

	OffsetZ       float64 // meters, Z sweep only
	SweepDistance float64 // meters, Z sweep only

	SweepCount int
	Comment    string
	SavedDate  string
}

// GridParams is the parameter set of a grid-spectroscopy volume.
type GridParams struct {
	Dim         [2]int
	Points      int
	SweepSignal string
	Channels    int
	StartTime   string
}

// FromScan extracts ScanParams from a parsed .sxm file. Malformed date
// strings are kept verbatim and reported on w as a data-quality warning.
func FromScan(s *types.ScanFile, w io.Writer) (ScanParams, error) {
	p := ScanParams{
		Pixels:    [2]int{s.PixelsX, s.PixelsY},
		Range:     [2]float64{s.RangeX, s.RangeY},
		Direction: s.Direction,
	}

	var err error
	if p.Angle, err = s.Header.Float("scan_angle"); err != nil {
		return p, err
	}
	if p.Bias, err = s.Header.Float("bias"); err != nil {
		return p, err
	}
	if p.Setpoint, err = s.Header.Float("z-controller>setpoint"); err != nil {
		return p, err
	}
	p.ScanTime = s.Header["rec_time"]

	var ok bool
	if p.ScanDate, ok = ReformatDate(s.Header["rec_date"]); !ok {
		warnDate(w, s.Header["rec_date"])
	}

	p.AspectRatio = AspectRatio(p.Pixels, p.Range)
	return p, nil
}

// FromSpectrum extracts SpectrumParams from a parsed .dat file. A recorded
// "Z rel (m)" signal selects the Z-sweep branch.
func FromSpectrum(s *types.SpectrumFile, w io.Writer) (SpectrumParams, error) {
	p := SpectrumParams{
		ZSweep:  s.HasSignal(analysis.ColZRel),
		Comment: s.Header["Comment01"],
	}

	var err error
	if p.Bias, err = s.Header.Float("Bias>Bias (V)"); err != nil {
		return p, err
	}
	if p.Setpoint, err = s.Header.Float("Z-Controller>Setpoint"); err != nil {
		return p, err
	}

	if p.ZSweep {
		if p.OffsetZ, err = s.Header.Float("Z Spectroscopy>Initial Z-offset (m)"); err != nil {
			return p, err
		}
		if p.SweepDistance, err = s.Header.Float("Z Spectroscopy>Sweep distance (m)"); err != nil {
			return p, err
		}
		if n, err := s.Header.Float("Z Spectroscopy>Number of sweeps"); err == nil {
			p.SweepCount = int(n)
		}
	} else {
		if p.SweepStart, err = s.Header.Float("Bias Spectroscopy>Sweep Start (V)"); err != nil {
			return p, err
		}
		if p.SweepEnd, err = s.Header.Float("Bias Spectroscopy>Sweep End (V)"); err != nil {
			return p, err
		}
		if n, err := s.Header.Float("Bias Spectroscopy>Number of sweeps"); err == nil {
			p.SweepCount = int(n)
		}
	}

	var ok bool
	if p.SavedDate, ok = ReformatDateTime(s.Header["Saved Date"]); !ok {
		warnDate(w, s.Header["Saved Date"])
	}
	return p, nil
}

// FromGrid extracts GridParams from a parsed .3ds file.
func FromGrid(g *types.GridFile) GridParams {
	return GridParams{
		Dim:         [2]int{g.DimX, g.DimY},
		Points:      g.Points,
		SweepSignal: g.SweepSignal,
		Channels:    len(g.Channels),
		StartTime:   g.Header["Start time"],
	}
}

// AspectRatio derives the display aspect ratio of a scan from its pixel
// counts and physical range: (px_x / px_y) * (range_y / range_x).
func AspectRatio(pixels [2]int, rng [2]float64) float64 {
	if pixels[1] == 0 || rng[0] == 0 {
		return 1
	}
	return (float64(pixels[0]) / float64(pixels[1])) * (rng[1] / rng[0])
}

// ReformatDate converts a day.month.year date to year.month.day. Strings
// that do not split into three dot-separated fields come back unchanged
// with ok=false; the caller decides whether to surface the problem.
func ReformatDate(date string) (out string, ok bool) {
	parts := strings.Split(date, ".")
	if len(parts) != 3 {
		return date, false
	}
	return parts[2] + "." + parts[1] + "." + parts[0], true
}

// ReformatDateTime converts "dd.mm.yyyy hh:mm:ss" to
// "yyyy.mm.dd_hh:mm:ss", falling back to the verbatim input with ok=false
// when the string does not carry both parts.
func ReformatDateTime(s string) (out string, ok bool) {
	date, clock, found := strings.Cut(s, " ")
	if !found {
		return s, false
	}
	d, ok := ReformatDate(date)
	if !ok {
		return s, false
	}
	return d + "_" + clock, true
}

func warnDate(w io.Writer, raw string) {
	if w == nil || raw == "" {
		return
	}
	fmt.Fprintf(w, "  warning: unrecognized date format %q, kept verbatim\n", raw)
}
