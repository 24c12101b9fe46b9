// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/spm-report/internal/nanonis"
	"github.com/pdiddy/spm-report/internal/params"
	"github.com/pdiddy/spm-report/pkg/types"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Load one instrument file and print its parameters",
	Long: `Inspect loads a single file, either by explicit path or by
(index, keyword) resolution under a data directory, and prints the
extracted acquisition parameters and the recorded signal inventory.`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().String("file", "", "explicit file path")
	inspectCmd.Flags().String("dir", "", "data directory for index resolution")
	inspectCmd.Flags().Int("number", -1, "file index, e.g. 16 for *_0016.sxm")
	inspectCmd.Flags().String("keyword", "", "file name filter")
	inspectCmd.Flags().Bool("yaml", false, "emit the record as YAML")

	rootCmd.AddCommand(inspectCmd)
}

// inspectRecord is the YAML shape of an inspected file.
type inspectRecord struct {
	Name    string   `yaml:"name"`
	Path    string   `yaml:"path"`
	Kind    string   `yaml:"kind"`
	Caption string   `yaml:"caption"`
	Signals []string `yaml:"signals"`
	Params  any      `yaml:"params"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	dir, _ := cmd.Flags().GetString("dir")
	number, _ := cmd.Flags().GetInt("number")
	keyword, _ := cmd.Flags().GetString("keyword")

	var m *types.Measurement
	var err error
	switch {
	case file != "":
		m, err = nanonis.Load(file)
	case dir != "" && number >= 0:
		m, err = nanonis.LoadByNumber(dir, number, keyword, os.Stderr)
	default:
		return fmt.Errorf("provide --file, or --dir with --number")
	}
	if err != nil {
		return err
	}

	rec, err := buildRecord(m)
	if err != nil {
		return err
	}

	if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
		data, err := yaml.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling record: %w", err)
		}
		fmt.Print(string(data))
		return nil
	}

	fmt.Printf("File:    %s\n", rec.Name)
	fmt.Printf("Format:  %s\n", rec.Kind)
	fmt.Printf("Caption: %s\n", rec.Caption)
	fmt.Println("Signals:")
	for _, s := range rec.Signals {
		fmt.Printf("  - %s\n", s)
	}
	return nil
}

func buildRecord(m *types.Measurement) (*inspectRecord, error) {
	rec := &inspectRecord{
		Name: m.Name,
		Path: m.Path,
		Kind: string(m.Kind),
	}

	switch m.Kind {
	case types.FormatScan:
		p, err := params.FromScan(m.Scan, os.Stderr)
		if err != nil {
			return nil, err
		}
		rec.Caption = p.Caption()
		rec.Params = p
		for name := range m.Scan.Channels {
			rec.Signals = append(rec.Signals, name)
		}
	case types.FormatSpectrum:
		p, err := params.FromSpectrum(m.Spectrum, os.Stderr)
		if err != nil {
			return nil, err
		}
		rec.Caption = p.Caption()
		rec.Params = p
		rec.Signals = append(rec.Signals, m.Spectrum.Columns...)
	case types.FormatGrid:
		p := params.FromGrid(m.Grid)
		rec.Caption = p.Caption()
		rec.Params = p
		rec.Signals = append(rec.Signals, m.Grid.Channels...)
	}

	sort.Strings(rec.Signals)
	return rec, nil
}
