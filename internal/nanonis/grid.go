// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nanonis

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/pdiddy/spm-report/pkg/types"
)

// 3ds layout: "key=value" text header lines terminated by :HEADER_END:,
// then per grid point big-endian float32 blocks: the fixed + experiment
// parameters followed by one sweep per channel. Grids interrupted
// mid-acquisition carry fewer point blocks than DimX*DimY; the tail is
// simply absent.

const gridHeaderEnd = ":HEADER_END:"

func parse3DS(path string) (*types.GridFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	marker := bytes.Index(raw, []byte(gridHeaderEnd))
	if marker < 0 {
		return nil, fmt.Errorf("header terminator %s not found", gridHeaderEnd)
	}
	headerText := string(raw[:marker])
	body := raw[marker+len(gridHeaderEnd):]
	// The terminator line ends with CRLF before the binary block.
	body = bytes.TrimPrefix(body, []byte("\r\n"))
	body = bytes.TrimPrefix(body, []byte("\n"))

	grid := &types.GridFile{
		Header: make(types.Header),
		Params: make(map[string][]float64),
		Data:   make(map[string][][]float64),
	}

	for _, line := range strings.Split(headerText, "\n") {
		line = strings.TrimRight(line, "\r")
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		grid.Header[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"`)
	}

	if err := parse3DSShape(grid); err != nil {
		return nil, err
	}

	paramNames := gridParamNames(grid.Header)
	if err := read3DSBody(grid, paramNames, body); err != nil {
		return nil, err
	}
	return grid, nil
}

func parse3DSShape(grid *types.GridFile) error {
	dim, ok := grid.Header.Value("Grid dim")
	if !ok {
		return fmt.Errorf("header key %q not present", "Grid dim")
	}
	if _, err := fmt.Sscanf(dim, "%d x %d", &grid.DimX, &grid.DimY); err != nil {
		return fmt.Errorf("malformed grid dim %q: %w", dim, err)
	}

	points, err := grid.Header.Float("Points")
	if err != nil {
		return err
	}
	grid.Points = int(points)
	if grid.Points <= 0 {
		return fmt.Errorf("malformed point count %d", grid.Points)
	}

	grid.SweepSignal = grid.Header["Sweep Signal"]

	channels, ok := grid.Header.Value("Channels")
	if !ok || channels == "" {
		return fmt.Errorf("header key %q not present", "Channels")
	}
	for _, ch := range strings.Split(channels, ";") {
		grid.Channels = append(grid.Channels, strings.TrimSpace(ch))
	}
	return nil
}

// gridParamNames returns the per-point parameter names: the fixed
// parameters followed by the experiment parameters.
func gridParamNames(header types.Header) []string {
	var names []string
	for _, key := range []string{"Fixed parameters", "Experiment parameters"} {
		raw, ok := header.Value(key)
		if !ok || raw == "" {
			continue
		}
		for _, n := range strings.Split(raw, ";") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
	}
	return names
}

func read3DSBody(grid *types.GridFile, paramNames []string, body []byte) error {
	for _, ch := range grid.Channels {
		grid.Data[ch] = nil
	}

	pointBytes := (len(paramNames) + len(grid.Channels)*grid.Points) * 4
	if pointBytes == 0 {
		return nil
	}
	total := grid.DimX * grid.DimY

	offset := 0
	for p := 0; p < total && offset+pointBytes <= len(body); p++ {
		for _, name := range paramNames {
			bits := binary.BigEndian.Uint32(body[offset:])
			grid.Params[name] = append(grid.Params[name], float64(math.Float32frombits(bits)))
			offset += 4
		}
		for _, ch := range grid.Channels {
			sweep := make([]float64, grid.Points)
			for i := range sweep {
				bits := binary.BigEndian.Uint32(body[offset:])
				sweep[i] = float64(math.Float32frombits(bits))
				offset += 4
			}
			grid.Data[ch] = append(grid.Data[ch], sweep)
		}
	}
	return nil
}
