package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/steploop/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered applications",
	Long:  `Shows a list of all applications registered with steploop.`,
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	apps := registry.List()

	if len(apps) == 0 {
		fmt.Println("No applications available.")
		return
	}

	fmt.Println("Available applications:")
	fmt.Println()

	maxIDLen := 2 // "ID" header
	for _, a := range apps {
		maxIDLen = max(maxIDLen, len(a.ID))
	}

	fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "Title")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "--", "-----")
	for _, a := range apps {
		fmt.Printf("  %-*s  %s\n", maxIDLen, a.ID, a.Title)
	}

	fmt.Println()
	fmt.Println("Run 'steploop run <id>' to start an application.")
}
