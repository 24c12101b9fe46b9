// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the spm-report CLI, a lab tool that
// turns Nanonis SPM measurement files into slide-deck reports.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the spm-report CLI.
var rootCmd = &cobra.Command{
	Use:   "spm-report",
	Short: "Reports and plots from Nanonis SPM measurement files",
	Long: `spm-report parses Nanonis controller files (.sxm topography images,
.dat point-spectroscopy curves, .3ds grid-spectroscopy volumes), derives
physically meaningful plots from their signal arrays, and assembles the
plots plus acquisition parameters into a slide-deck report.

Use "report" for batch report generation, "inspect" to examine a single
file, and "catalog" to maintain a queryable index of a data directory.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./spm-report.yaml or ~/.config/spm-report/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("spm-report")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "spm-report"))
		}
	}

	viper.SetEnvPrefix("SPM_REPORT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
