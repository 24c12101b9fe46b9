// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package plot

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/pdiddy/spm-report/internal/analysis"
)

// renderable is any go-echarts chart that can render itself to HTML.
type renderable interface {
	Render(w io.Writer) error
}

// heatmapSpec describes one color-mapped map plot.
type heatmapSpec struct {
	title   string
	data    [][]float64 // row-major, row 0 at the bottom unless flipY
	palette []string
	// flipY puts row 0 at the top (downward scans).
	flipY bool
	// aspect is the display aspect ratio; 1 renders square pixels.
	aspect float64
	width  int
}

// canvasHeight converts the data shape and aspect ratio into a pixel
// height, clamped to keep degenerate ratios renderable.
func (s heatmapSpec) canvasHeight() int {
	rows, cols := len(s.data), 0
	if rows > 0 {
		cols = len(s.data[0])
	}
	if rows == 0 || cols == 0 {
		return s.width
	}
	aspect := s.aspect
	if aspect <= 0 {
		aspect = 1
	}
	h := int(float64(s.width) * float64(rows) * aspect / float64(cols))
	if h < 160 {
		h = 160
	}
	if h > 4*s.width {
		h = 4 * s.width
	}
	return h
}

func buildHeatmap(s heatmapSpec) (*charts.HeatMap, int) {
	rows := len(s.data)
	cols := 0
	if rows > 0 {
		cols = len(s.data[0])
	}

	lo, hi := analysis.DisplayBounds(analysis.Flatten2D(s.data))
	if lo == hi {
		hi = lo + 1
	}

	height := s.canvasHeight()
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:           fmt.Sprintf("%dpx", s.width),
			Height:          fmt.Sprintf("%dpx", height),
			BackgroundColor: "#ffffff",
		}),
		charts.WithTitleOpts(opts.Title{Title: s.title, Left: "center"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Show: opts.Bool(false)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Show: opts.Bool(false)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			Orient:     "vertical",
			Left:       "right",
			InRange:    &opts.VisualMapInRange{Color: s.palette},
		}),
	)

	xLabels := make([]string, cols)
	for x := range xLabels {
		xLabels[x] = strconv.Itoa(x)
	}

	data := make([]opts.HeatMapData, 0, rows*cols)
	for y, row := range s.data {
		yIdx := y
		if s.flipY {
			yIdx = rows - 1 - y
		}
		for x, v := range row {
			if math.IsNaN(v) {
				continue
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{x, yIdx, v}})
		}
	}

	hm.SetXAxis(xLabels).AddSeries("map", data)
	return hm, height
}

// lineSpec describes one curve plot.
type lineSpec struct {
	title  string
	xLabel string
	yLabel string
	x, y   []float64
	logY   bool
	size   int
}

func buildLine(s lineSpec) *charts.Line {
	line := charts.NewLine()

	yAxis := opts.YAxis{Name: s.yLabel, NameLocation: "middle", NameGap: 45}
	if s.logY {
		yAxis.Type = "log"
	} else {
		yAxis.Scale = opts.Bool(true)
	}

	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:           fmt.Sprintf("%dpx", s.size),
			Height:          fmt.Sprintf("%dpx", s.size),
			BackgroundColor: "#ffffff",
		}),
		charts.WithTitleOpts(opts.Title{Title: s.title, Left: "center"}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:         s.xLabel,
			NameLocation: "middle",
			NameGap:      30,
			SplitLine:    &opts.SplitLine{Show: opts.Bool(s.logY), LineStyle: &opts.LineStyle{Color: colorGrid, Opacity: opts.Float(0.3)}},
		}),
		charts.WithYAxisOpts(yAxis),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)

	xLabels := make([]string, len(s.x))
	for i, v := range s.x {
		xLabels[i] = strconv.FormatFloat(v, 'g', 4, 64)
	}
	data := make([]opts.LineData, len(s.y))
	for i, v := range s.y {
		if math.IsNaN(v) || (s.logY && v <= 0) {
			data[i] = opts.LineData{Value: nil}
			continue
		}
		data[i] = opts.LineData{Value: v}
	}

	line.SetXAxis(xLabels)
	line.AddSeries(s.yLabel, data,
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorCurve, Width: 2}),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)
	return line
}
