// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/spm-report/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Maintain and query the measurement catalog",
	Long: `Catalog keeps a SQLite index of measurement metadata (file index,
format, bias, setpoint, acquisition timestamp) for a data directory.
Use "scan" to build or refresh it and "list" to query it.`,
}

var catalogScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Index every instrument file under the data directory",
	RunE:  runCatalogScan,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print catalog rows ordered by file index",
	RunE:  runCatalogList,
}

var catalogQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Print catalog rows matching format, index range, or name filters",
	RunE:  runCatalogQuery,
}

func init() {
	catalogCmd.PersistentFlags().String("dir", "", "data directory")
	catalogCmd.PersistentFlags().String("db", "", "catalog database path (default <dir>/catalog.db)")
	catalogListCmd.Flags().String("format", "", "restrict to one format: sxm, dat, or 3ds")
	catalogQueryCmd.Flags().String("format", "", "restrict to one format: sxm, dat, or 3ds")
	catalogQueryCmd.Flags().String("name", "", "file name substring, e.g. 'Au111'")
	catalogQueryCmd.Flags().Int("from", 0, "first file index (inclusive)")
	catalogQueryCmd.Flags().Int("to", 0, "last file index (inclusive)")

	catalogCmd.AddCommand(catalogScanCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogQueryCmd)
	rootCmd.AddCommand(catalogCmd)
}

func openCatalog(cmd *cobra.Command) (*catalog.Store, string, error) {
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = viper.GetString("data_dir")
	}
	if dir == "" {
		return nil, "", fmt.Errorf("data directory required: pass --dir or set data_dir in the config file")
	}

	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		dbPath = viper.GetString("catalog.database_path")
	}
	if dbPath == "" {
		dbPath = filepath.Join(dir, "catalog.db")
	}

	store, err := catalog.NewStore(dbPath)
	if err != nil {
		return nil, "", err
	}
	return store, dir, nil
}

func runCatalogScan(cmd *cobra.Command, args []string) error {
	store, dir, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	sum, err := store.Scan(context.Background(), dir, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Printf("Indexed %d file(s), %d failed\n", sum.Indexed, sum.Failed)
	if sum.Failed > 0 && sum.Indexed == 0 {
		return fmt.Errorf("every file under %s failed to parse", dir)
	}
	return nil
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	store, _, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	format, _ := cmd.Flags().GetString("format")
	entries, err := store.List(context.Background(), format)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("Catalog is empty.")
		return nil
	}
	printEntries(entries)
	return nil
}

func runCatalogQuery(cmd *cobra.Command, args []string) error {
	store, _, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	var filter catalog.Filter
	filter.Format, _ = cmd.Flags().GetString("format")
	filter.Name, _ = cmd.Flags().GetString("name")
	filter.FromIndex, _ = cmd.Flags().GetInt("from")
	filter.ToIndex, _ = cmd.Flags().GetInt("to")

	entries, err := store.Query(context.Background(), filter)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No matching rows.")
		return nil
	}
	printEntries(entries)
	return nil
}

func printEntries(entries []catalog.Entry) {
	fmt.Printf("%-5s  %-4s  %-32s  %-10s  %-12s  %s\n",
		"Index", "Fmt", "Name", "Bias (V)", "Setpoint (A)", "Recorded")
	fmt.Println(strings.Repeat("-", 90))
	for _, e := range entries {
		fmt.Printf("%-5d  %-4s  %-32s  %-10.3g  %-12.3g  %s\n",
			e.Index, e.Format, e.Name, e.Bias, e.Setpoint, e.Recorded)
	}
}
