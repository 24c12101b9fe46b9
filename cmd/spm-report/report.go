// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/spm-report/internal/plot"
	"github.com/pdiddy/spm-report/internal/report"
	"github.com/pdiddy/spm-report/pkg/types"
)

const (
	defaultRenderTimeout = 20 * time.Second
	defaultOutputName    = "report.xlsx"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build a slide-deck report over a range of file indices",
	Long: `Report iterates an inclusive file-index range under the data directory,
loads each matching instrument file, renders its fixed plot set, and appends
one slide per file to the report document. Indices with no matching file are
skipped. The document is saved to <dir>/report/<output>.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().String("dir", "", "data directory holding the instrument files")
	reportCmd.Flags().Int("start", 0, "first file index (inclusive)")
	reportCmd.Flags().Int("end", 0, "last file index (inclusive)")
	reportCmd.Flags().String("keyword", "", "file name filter, e.g. 'Au' for Au111_0013.sxm")
	reportCmd.Flags().String("output", "", "report file name (default report.xlsx)")
	reportCmd.Flags().Duration("render-timeout", 0, "per-plot screenshot timeout (default 20s)")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = viper.GetString("data_dir")
	}
	if dir == "" {
		return fmt.Errorf("data directory required: pass --dir or set data_dir in the config file")
	}

	start, _ := cmd.Flags().GetInt("start")
	end, _ := cmd.Flags().GetInt("end")
	if end < start {
		return fmt.Errorf("invalid index range: start %d is after end %d", start, end)
	}

	keyword, _ := cmd.Flags().GetString("keyword")
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = viper.GetString("output_name")
	}
	if output == "" {
		output = defaultOutputName
	}

	timeout, _ := cmd.Flags().GetDuration("render-timeout")
	if timeout == 0 {
		timeout = defaultRenderTimeout
	}

	ctx := context.Background()
	renderer, err := plot.NewChromeRenderer(ctx, timeout)
	if err != nil {
		return fmt.Errorf("headless browser unavailable: %w", err)
	}

	cfg := types.ReportConfig{
		DataDir:    dir,
		StartNum:   start,
		EndNum:     end,
		Keyword:    keyword,
		OutputName: output,
	}
	builder := report.NewBuilder(cfg, types.RenderConfig{Timeout: timeout}, renderer)

	result, savePath, err := builder.Run(ctx, os.Stdout)
	if err != nil {
		return err
	}
	if result.Added == 0 {
		return fmt.Errorf("no files loaded in range %d-%d under %s", start, end, dir)
	}
	fmt.Printf("Report written: %s (%d slide(s), %d index(es) skipped)\n",
		savePath, result.Added, result.Skipped)
	return nil
}
