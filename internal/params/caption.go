// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package params

import (
	"fmt"
	"math"
	"strings"
)

// FormatCurrent renders a current in the unit a lab reader expects:
// nanoamps at or above 1 nA, picoamps below.
func FormatCurrent(amps float64) string {
	if math.Abs(amps) >= 1e-9 {
		return fmt.Sprintf("%.0f nA", amps*1e9)
	}
	return fmt.Sprintf("%.0f pA", amps*1e12)
}

// Caption renders the slide caption of a topography scan: bias/setpoint,
// physical extent, direction and angle, and the acquisition timestamp.
func (p ScanParams) Caption() string {
	parts := []string{
		fmt.Sprintf("%g V /", p.Bias),
		FormatCurrent(p.Setpoint),
		fmt.Sprintf("\n%.0f x %.0f nm²", p.Range[0]*1e9, p.Range[1]*1e9),
		fmt.Sprintf("(%s, %.1f˚)", p.Direction, p.Angle),
		fmt.Sprintf("\n(%s_%s)", p.ScanDate, p.ScanTime),
	}
	return strings.Join(parts, " ")
}

// Caption renders the slide caption of a point spectrum. Bias sweeps carry
// the sweep bounds; Z sweeps only the setpoint conditions and timestamp.
func (p SpectrumParams) Caption() string {
	parts := []string{
		fmt.Sprintf("%g V /", p.Bias),
		FormatCurrent(p.Setpoint),
	}
	if !p.ZSweep {
		parts = append(parts, fmt.Sprintf("\n%g V to %g V (sweeps: %d)", p.SweepStart, p.SweepEnd, p.SweepCount))
	}
	parts = append(parts, fmt.Sprintf("\n(%s)", p.SavedDate))
	return strings.Join(parts, " ")
}

// Caption renders the slide caption of a grid-spectroscopy volume.
func (p GridParams) Caption() string {
	parts := []string{
		fmt.Sprintf("%d x %d grid / %d pts per sweep (%s)", p.Dim[0], p.Dim[1], p.Points, p.SweepSignal),
	}
	if p.StartTime != "" {
		parts = append(parts, fmt.Sprintf("\n(%s)", p.StartTime))
	}
	return strings.Join(parts, " ")
}
