// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the shared data model: the tagged measurement record
// produced by loading an instrument file, and the configuration structs
// consumed by the CLI.
package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Format identifies one of the supported Nanonis file formats.
type Format string

const (
	// FormatScan is a topography image (.sxm).
	FormatScan Format = "sxm"
	// FormatSpectrum is a single-point spectroscopy curve file (.dat).
	FormatSpectrum Format = "dat"
	// FormatGrid is a grid-spectroscopy volume (.3ds).
	FormatGrid Format = "3ds"
)

// Measurement is the result of loading one instrument file. Exactly one of
// Scan, Spectrum, or Grid is non-nil; Kind names which. One variant per
// format replaces the loose attribute bag the file parsers would otherwise
// hand back.
type Measurement struct {
	// Name is the base file name, e.g. "Au111_0016.sxm".
	Name string `yaml:"name"`
	// Path is the resolved absolute or base-dir-relative path.
	Path string `yaml:"path"`
	Kind Format `yaml:"kind"`

	Scan     *ScanFile     `yaml:"scan,omitempty"`
	Spectrum *SpectrumFile `yaml:"spectrum,omitempty"`
	Grid     *GridFile     `yaml:"grid,omitempty"`
}

// Header is the raw key-value header of an instrument file. Values are kept
// as the strings found in the file; typed accessors coerce on demand.
type Header map[string]string

// Value returns the raw string for key.
func (h Header) Value(key string) (string, bool) {
	v, ok := h[key]
	return v, ok
}

// Float parses the header value for key as a float64. Trailing unit tokens
// ("1.000E-10 A") are ignored: only the first whitespace-separated field is
// parsed.
func (h Header) Float(key string) (float64, error) {
	raw, ok := h[key]
	if !ok {
		return 0, fmt.Errorf("header key %q not present", key)
	}
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return 0, fmt.Errorf("header key %q is empty", key)
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("header key %q: %w", key, err)
	}
	return v, nil
}

// Floats parses the header value for key as whitespace-separated float64s,
// the layout Nanonis uses for pairs like SCAN_RANGE.
func (h Header) Floats(key string) ([]float64, error) {
	raw, ok := h[key]
	if !ok {
		return nil, fmt.Errorf("header key %q not present", key)
	}
	fields := strings.Fields(raw)
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("header key %q: %w", key, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Ints parses the header value for key as whitespace-separated integers.
func (h Header) Ints(key string) ([]int, error) {
	raw, ok := h[key]
	if !ok {
		return nil, fmt.Errorf("header key %q not present", key)
	}
	fields := strings.Fields(raw)
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("header key %q: %w", key, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ScanChannel holds the recorded frames of one topography channel.
// Frames are row-major, Forward always present, Backward only when the
// channel was recorded in both directions.
type ScanChannel struct {
	Forward  [][]float64 `yaml:"-"`
	Backward [][]float64 `yaml:"-"`
}

// ScanFile is a parsed .sxm topography image.
type ScanFile struct {
	// Header keys are lowercased; table sections flatten to
	// "section>column" keys (e.g. "z-controller>setpoint").
	Header Header `yaml:"header"`

	PixelsX   int     `yaml:"pixels_x"`
	PixelsY   int     `yaml:"pixels_y"`
	RangeX    float64 `yaml:"range_x"` // meters
	RangeY    float64 `yaml:"range_y"` // meters
	Direction string  `yaml:"direction"`

	// Channels maps channel name ("Z", "Current", "LI_Demod_1_X") to its
	// recorded frames.
	Channels map[string]*ScanChannel `yaml:"-"`
}

// HasChannel reports whether a named channel was recorded.
func (s *ScanFile) HasChannel(name string) bool {
	_, ok := s.Channels[name]
	return ok
}

// SpectrumFile is a parsed .dat point-spectroscopy file.
type SpectrumFile struct {
	// Header keys keep the exact case found in the file
	// ("Bias>Bias (V)", "Saved Date", ...).
	Header Header `yaml:"header"`

	// Columns lists the signal column names in file order.
	Columns []string `yaml:"columns"`

	// Signals maps column name to its values.
	Signals map[string][]float64 `yaml:"-"`
}

// HasSignal reports whether a named signal column exists.
func (s *SpectrumFile) HasSignal(name string) bool {
	_, ok := s.Signals[name]
	return ok
}

// Signal returns the values of a named column.
func (s *SpectrumFile) Signal(name string) ([]float64, error) {
	v, ok := s.Signals[name]
	if !ok {
		return nil, fmt.Errorf("signal %q not present", name)
	}
	return v, nil
}

// GridFile is a parsed .3ds grid-spectroscopy volume.
type GridFile struct {
	Header Header `yaml:"header"`

	DimX int `yaml:"dim_x"`
	DimY int `yaml:"dim_y"`
	// Points is the number of samples per sweep at each grid point.
	Points int `yaml:"points"`
	// SweepSignal names the swept quantity, e.g. "Bias (V)".
	SweepSignal string `yaml:"sweep_signal"`

	// Params maps parameter name (fixed + experiment parameters) to one
	// value per grid point, row-major.
	Params map[string][]float64 `yaml:"-"`

	// Data maps channel name to per-point sweeps: Data[ch][point][sample].
	Data map[string][][]float64 `yaml:"-"`

	// Channels lists channel names in file order.
	Channels []string `yaml:"channels"`
}

// HasData reports whether the grid carries any sweep data.
func (g *GridFile) HasData() bool {
	for _, pts := range g.Data {
		if len(pts) > 0 {
			return true
		}
	}
	return false
}
