// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package plot

import (
	"bytes"
	"context"
	"fmt"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/pdiddy/spm-report/internal/analysis"
	"github.com/pdiddy/spm-report/pkg/types"
)

// Channel names recorded by the controller in topography scans.
const (
	chanHeight = "Z"
	chanDemod  = "LI_Demod_1_X"
)

const defaultPlotSize = 500

// RenderMeasurement produces the fixed plot set for one measurement as
// in-memory PNGs: 2-3 maps for a scan, 2-3 curves for a spectrum, one map
// (or placeholder) for a grid.
func RenderMeasurement(ctx context.Context, r Renderer, m *types.Measurement, cfg types.RenderConfig) ([][]byte, error) {
	size := cfg.PlotSize
	if size <= 0 {
		size = defaultPlotSize
	}

	switch m.Kind {
	case types.FormatScan:
		return renderScan(ctx, r, m.Scan, size)
	case types.FormatSpectrum:
		return renderSpectrum(ctx, r, m.Spectrum, size)
	case types.FormatGrid:
		return renderGrid(ctx, r, m.Grid, size)
	default:
		return nil, fmt.Errorf("no plot set for format %q", m.Kind)
	}
}

// renderScan plots the flattened height map and its spatial derivative,
// plus the lock-in demodulation map when that channel was recorded.
func renderScan(ctx context.Context, r Renderer, scan *types.ScanFile, size int) ([][]byte, error) {
	height, ok := scan.Channels[chanHeight]
	if !ok || len(height.Forward) == 0 {
		return nil, fmt.Errorf("scan carries no %s channel", chanHeight)
	}

	aspect := 1.0
	if scan.PixelsY > 0 && scan.RangeX != 0 {
		aspect = (float64(scan.PixelsX) / float64(scan.PixelsY)) * (scan.RangeY / scan.RangeX)
	}
	flipY := scan.Direction == "down"

	dx := 1.0
	if scan.PixelsX > 0 {
		dx = scan.RangeX / float64(scan.PixelsX)
	}

	specs := []heatmapSpec{
		{
			title:   "Topography",
			data:    analysis.FlattenLinear(height.Forward),
			palette: paletteNanox,
			flipY:   flipY,
			aspect:  aspect,
			width:   size,
		},
		{
			title:   "d(Z)/dx",
			data:    analysis.DerivativeX(height.Forward, dx),
			palette: paletteNanox,
			flipY:   flipY,
			aspect:  aspect,
			width:   size,
		},
	}

	if demod, ok := scan.Channels[chanDemod]; ok && len(demod.Forward) > 0 {
		specs = append(specs, heatmapSpec{
			title:   "dI/dV map",
			data:    demod.Forward,
			palette: paletteBWR,
			flipY:   flipY,
			aspect:  aspect,
			width:   size,
		})
	}

	images := make([][]byte, 0, len(specs))
	for _, spec := range specs {
		hm, h := buildHeatmap(spec)
		png, err := renderChart(ctx, r, hm, size, h)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", spec.title, err)
		}
		images = append(images, png)
	}
	return images, nil
}

// renderSpectrum plots current-vs-height on linear and log axes for Z
// sweeps; scaled dI/dV, normalized dI/dV, and raw I(V) for bias sweeps.
func renderSpectrum(ctx context.Context, r Renderer, spec *types.SpectrumFile, size int) ([][]byte, error) {
	var specs []lineSpec

	if spec.HasSignal(analysis.ColZRel) {
		z, current, err := analysis.IZ(spec)
		if err != nil {
			return nil, err
		}
		zNano := scale(z, 1e9)
		iNano := scale(current, 1e9)
		specs = []lineSpec{
			{title: "I(z)", xLabel: "Z (nm)", yLabel: "Current (nA)", x: zNano, y: iNano, size: size},
			{title: "I(z), log", xLabel: "Z (nm)", yLabel: "|Current| (nA)", x: zNano, y: absAll(iNano), logY: true, size: size},
		}
	} else {
		bias, didv, err := analysis.DIDVScaled(spec)
		if err != nil {
			return nil, err
		}
		_, norm, err := analysis.DIDVNormalized(spec)
		if err != nil {
			return nil, err
		}
		_, current, err := analysis.IVRaw(spec)
		if err != nil {
			return nil, err
		}
		specs = []lineSpec{
			{title: "dI/dV", xLabel: "Bias (V)", yLabel: "dI/dV (nS)", x: bias, y: scale(didv, 1e9), size: size},
			{title: "Normalized dI/dV", xLabel: "Bias (V)", yLabel: "Norm. dI/dV", x: bias, y: norm, size: size},
			{title: "I(V)", xLabel: "Bias (V)", yLabel: "Current (pA)", x: bias, y: scale(current, 1e12), size: size},
		}
	}

	images := make([][]byte, 0, len(specs))
	for _, s := range specs {
		png, err := renderChart(ctx, r, buildLine(s), size, size)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", s.title, err)
		}
		images = append(images, png)
	}
	return images, nil
}

// renderGrid plots the bias-averaged current map of the grid, or a
// placeholder chart when the grid carries no sweep data.
func renderGrid(ctx context.Context, r Renderer, grid *types.GridFile, size int) ([][]byte, error) {
	if grid.HasData() {
		channel := analysis.ColCurrent
		if _, ok := grid.Data[channel]; !ok && len(grid.Channels) > 0 {
			channel = grid.Channels[0]
		}
		slice, err := analysis.GridSliceMean(grid, channel)
		if err == nil {
			hm, h := buildHeatmap(heatmapSpec{
				title:   fmt.Sprintf("Mean %s", channel),
				data:    slice,
				palette: paletteNanox,
				aspect:  1,
				width:   size,
			})
			png, err := renderChart(ctx, r, hm, size, h)
			if err != nil {
				return nil, fmt.Errorf("rendering grid map: %w", err)
			}
			return [][]byte{png}, nil
		}
	}

	png, err := renderChart(ctx, r, buildGridPlaceholder(grid, size), size, size)
	if err != nil {
		return nil, fmt.Errorf("rendering grid placeholder: %w", err)
	}
	return [][]byte{png}, nil
}

func buildGridPlaceholder(grid *types.GridFile, size int) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:           fmt.Sprintf("%dpx", size),
			Height:          fmt.Sprintf("%dpx", size),
			BackgroundColor: "#ffffff",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Grid spectroscopy",
			Subtitle: fmt.Sprintf("%d x %d grid, no sweep data", grid.DimX, grid.DimY),
			Left:     "center",
		}),
	)
	line.SetXAxis([]string{})
	line.AddSeries("", []opts.LineData{})
	return line
}

func renderChart(ctx context.Context, r Renderer, chart renderable, width, height int) ([]byte, error) {
	var buf bytes.Buffer
	if err := chart.Render(&buf); err != nil {
		return nil, fmt.Errorf("rendering chart html: %w", err)
	}
	// Small margin keeps the visual-map legend inside the viewport.
	return r.RenderPNG(ctx, buf.Bytes(), width+40, height+40)
}

func scale(v []float64, factor float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x * factor
	}
	return out
}

func absAll(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = math.Abs(x)
	}
	return out
}
