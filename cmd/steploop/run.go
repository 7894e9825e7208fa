package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/steploop/internal/platform"
	"github.com/vovakirdan/steploop/internal/platform/desktop"
	"github.com/vovakirdan/steploop/internal/platform/tui"
	"github.com/vovakirdan/steploop/internal/registry"
)

var (
	flagDesktop bool
	flagHold    time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run <app>",
	Short: "Run an application",
	Long: `Run the specified application until it asks to close.

In the terminal (the default) the first window size report activates the
driver and logs go to the configured log file. With --desktop the application
runs in a window with real key press and release events.

Controls:
  Ctrl+C   - Request close
  Ctrl+S   - Save a text screenshot (terminal only)

Examples:
  steploop run snake
  steploop run snake --rate 30 --max-ticks 5
  steploop run inspect --scroll-reset per_tick
  steploop run snake --desktop`,
	Args: cobra.ExactArgs(1),
	Run:  runRun,
}

func init() {
	runCmd.Flags().BoolVarP(&flagDesktop, "desktop", "d", false, "Run in a desktop window instead of the terminal")
	runCmd.Flags().DurationVar(&flagHold, "hold", tui.DefaultHoldTimeout, "How long a terminal key stays pressed without a repeat")
}

func runRun(_ *cobra.Command, args []string) {
	appID := args[0]

	if !registry.Exists(appID) {
		fmt.Fprintf(os.Stderr, "Error: unknown application %q\n", appID)
		fmt.Fprintln(os.Stderr, "Run 'steploop list' to see available applications.")
		os.Exit(1)
	}

	if flagDesktop && !desktop.Available {
		fmt.Fprintf(os.Stderr, "Error: %v\n", desktop.ErrUnavailable)
		os.Exit(1)
	}

	if err := runApp(appID); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}

// runApp hosts one application on the selected platform until it closes.
func runApp(appID string) error {
	logger, logCloser := newLogger("steploop", !flagDesktop)
	defer logCloser.Close()

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	opts := platform.Options{
		AppID:  appID,
		Config: cfg,
		Store:  store,
		Logger: logger,
		Seed:   flagSeed,
	}

	if flagDesktop {
		opts.Platform = platform.NameDesktop
		return desktop.Run(opts)
	}

	opts.Platform = platform.NameTUI
	return tui.Run(opts,
		tui.WithHoldTimeout(flagHold),
		tui.WithScreenshotDir(screenshotDir()),
	)
}
