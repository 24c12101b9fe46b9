// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ReportConfig holds settings for a batch report run.
type ReportConfig struct {
	// DataDir is the directory holding the instrument files.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// StartNum and EndNum bound the inclusive file-index range.
	StartNum int `json:"start_num" yaml:"start_num"`
	EndNum   int `json:"end_num" yaml:"end_num"`

	// Keyword optionally filters file names ("Au" matches Au111_0013.sxm).
	Keyword string `json:"keyword,omitempty" yaml:"keyword,omitempty"`

	// OutputName is the report file name written under DataDir/report/
	// (default "report.xlsx").
	OutputName string `json:"output_name" yaml:"output_name"`
}

// RenderConfig holds settings for the headless plot renderer.
type RenderConfig struct {
	// Timeout bounds a single chart screenshot (default 20s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// PlotSize is the rendered plot width in pixels (default 500).
	PlotSize int `json:"plot_size" yaml:"plot_size"`
}

// CatalogConfig holds settings for the measurement catalog.
type CatalogConfig struct {
	// DatabasePath is the SQLite file location (default
	// "<data dir>/catalog.db").
	DatabasePath string `json:"database_path" yaml:"database_path"`
}
