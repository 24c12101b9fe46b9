// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pdiddy/spm-report/internal/nanonis"
	"github.com/pdiddy/spm-report/internal/params"
	"github.com/pdiddy/spm-report/internal/plot"
	"github.com/pdiddy/spm-report/pkg/types"
)

const (
	reportSubdir      = "report"
	defaultOutputName = "report.xlsx"
)

// BatchResult holds the outcome of one report run.
type BatchResult struct {
	Added   int
	Skipped int
}

// Total returns the number of indices visited.
func (r BatchResult) Total() int {
	return r.Added + r.Skipped
}

// Builder runs the batch loop: resolve, parse, extract, plot, append.
type Builder struct {
	cfg      types.ReportConfig
	render   types.RenderConfig
	renderer plot.Renderer
}

// NewBuilder returns a report builder over the given renderer.
func NewBuilder(cfg types.ReportConfig, render types.RenderConfig, renderer plot.Renderer) *Builder {
	return &Builder{cfg: cfg, render: render, renderer: renderer}
}

// Run iterates the inclusive index range, appending one slide per
// successfully loaded file. Indices with no matching file (or an
// unsupported extension) are skipped with a log line; any other failure
// aborts the run and nothing is saved. The finished document is written to
// <data dir>/report/<output name>, and its path returned.
func (b *Builder) Run(ctx context.Context, w io.Writer) (BatchResult, string, error) {
	var res BatchResult

	fmt.Fprintf(w, "Generating report for files %d to %d...\n", b.cfg.StartNum, b.cfg.EndNum)

	deck := NewDeck()
	for i := b.cfg.StartNum; i <= b.cfg.EndNum; i++ {
		m, err := nanonis.LoadByNumber(b.cfg.DataDir, i, b.cfg.Keyword, w)
		if err != nil {
			if errors.Is(err, nanonis.ErrNoFile) || errors.Is(err, nanonis.ErrUnsupportedExt) {
				fmt.Fprintf(w, "skipping number %d: %v\n", i, err)
				res.Skipped++
				continue
			}
			return res, "", err
		}

		fmt.Fprintf(w, "processing file: %s\n", m.Name)
		if err := b.addSlide(ctx, deck, m, w); err != nil {
			return res, "", fmt.Errorf("adding slide for %s: %w", m.Name, err)
		}
		res.Added++
	}

	outputName := b.cfg.OutputName
	if outputName == "" {
		outputName = defaultOutputName
	}
	savePath := filepath.Join(b.cfg.DataDir, reportSubdir, outputName)
	if err := deck.Save(savePath); err != nil {
		return res, "", fmt.Errorf("saving report: %w", err)
	}

	fmt.Fprintf(w, "saved %d slide(s) to %s\n", res.Added, savePath)
	return res, savePath, nil
}

func (b *Builder) addSlide(ctx context.Context, deck *Deck, m *types.Measurement, w io.Writer) error {
	caption, err := captionFor(m, w)
	if err != nil {
		return err
	}

	images, err := plot.RenderMeasurement(ctx, b.renderer, m, b.render)
	if err != nil {
		return err
	}

	sheet, err := deck.AddSlide("File: " + m.Name)
	if err != nil {
		return err
	}
	if err := deck.AddPictures(sheet, images); err != nil {
		return err
	}
	return deck.AddCaption(sheet, caption)
}

func captionFor(m *types.Measurement, w io.Writer) (string, error) {
	switch m.Kind {
	case types.FormatScan:
		p, err := params.FromScan(m.Scan, w)
		if err != nil {
			return "", err
		}
		return p.Caption(), nil
	case types.FormatSpectrum:
		p, err := params.FromSpectrum(m.Spectrum, w)
		if err != nil {
			return "", err
		}
		return p.Caption(), nil
	case types.FormatGrid:
		return params.FromGrid(m.Grid).Caption(), nil
	default:
		return "", fmt.Errorf("no parameter set for format %q", m.Kind)
	}
}
