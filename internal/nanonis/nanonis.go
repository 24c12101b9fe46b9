// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package nanonis resolves and parses the three Nanonis controller file
// formats: .sxm topography images, .dat point-spectroscopy curves, and
// .3ds grid-spectroscopy volumes.
package nanonis

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pdiddy/spm-report/pkg/types"
)

// ErrNoFile is returned when no file on disk matches the requested index
// and keyword.
var ErrNoFile = errors.New("no matching file")

// ErrUnsupportedExt is returned for file extensions outside the three
// recognized formats.
var ErrUnsupportedExt = errors.New("unsupported file extension")

// Load parses the file at path, dispatching on its extension.
func Load(path string) (*types.Measurement, error) {
	m := &types.Measurement{
		Name: filepath.Base(path),
		Path: path,
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".sxm":
		scan, err := parseSXM(path)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", m.Name, err)
		}
		m.Kind = types.FormatScan
		m.Scan = scan
	case ".dat":
		spec, err := parseDAT(path)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", m.Name, err)
		}
		m.Kind = types.FormatSpectrum
		m.Spectrum = spec
	case ".3ds":
		grid, err := parse3DS(path)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", m.Name, err)
		}
		m.Kind = types.FormatGrid
		m.Grid = grid
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExt, filepath.Ext(path))
	}

	return m, nil
}

// LoadByNumber resolves the file carrying the given index (and keyword, if
// any) under baseDir and parses it. Multi-match warnings go to w.
func LoadByNumber(baseDir string, number int, keyword string, w io.Writer) (*types.Measurement, error) {
	path, err := Resolve(baseDir, number, keyword, w)
	if err != nil {
		return nil, err
	}
	return Load(path)
}
