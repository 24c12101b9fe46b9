// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package plot

// Color ramps for map plots, expressed as visual-map gradient stops.
// paletteNanox is the black-amber-white ramp conventional for STM height
// maps; paletteBWR is the diverging blue-white-red ramp used for lock-in
// demodulation maps.
var (
	paletteNanox = []string{
		"#000000", "#2b1200", "#5c2800", "#8f4400",
		"#c06a10", "#e39440", "#f5c07a", "#fde6bd", "#ffffff",
	}
	paletteBWR = []string{
		"#0000ff", "#8080ff", "#ffffff", "#ff8080", "#ff0000",
	}
)

const (
	colorCurve = "#111111"
	colorGrid  = "#9ca3af"
)
