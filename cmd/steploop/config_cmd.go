package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/steploop/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration steploop would run with, after the file search
and flag overrides, as YAML. Redirect it to a file to start a custom config.

Examples:
  steploop config
  steploop config --rate 120 > ~/.steploop/config.yaml`,
	Run: runConfig,
}

func runConfig(_ *cobra.Command, _ []string) {
	data, err := config.Marshal(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding config: %v\n", err)
		os.Exit(1)
	}
	os.Stdout.Write(data)
}
