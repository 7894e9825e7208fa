package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/steploop/internal/platform/tui"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick an application interactively",
	Long: `Start steploop in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to run an application.
When the application closes, you return to the menu.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Run application
  Q/Esc        - Quit

Examples:
  steploop menu
  steploop menu --rate 30`,
	Run: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) {
	for {
		width, height := terminalSize()
		appID, err := tui.RunMenu(width, height)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if appID == "" {
			return
		}

		if err := runApp(appID); err != nil {
			fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		}
	}
}
