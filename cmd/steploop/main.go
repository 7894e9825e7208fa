// steploop runs fixed-timestep applications in a terminal, over SSH or in a
// desktop window.
//
// Usage:
//
//	steploop list              - List registered applications
//	steploop run <app>         - Run an application in the terminal
//	steploop run <app> -d      - Run an application in a desktop window
//	steploop menu              - Pick an application interactively
//	steploop serve             - Start SSH server for remote sessions
//	steploop stats [app]       - Show recorded runs and their UPS/FPS
//	steploop config            - Print the effective configuration
//
// Global flags:
//
//	--config <path>        - Configuration file (default search order otherwise)
//	--rate <n>             - Update ticks per second
//	--max-ticks <n>        - Cap on catch-up ticks per wake (0 = unbounded)
//	--scroll-reset <p>     - Wheel delta policy: persist or per_tick
//	--db <path>            - Stats database path
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import applications to register them
	_ "github.com/vovakirdan/steploop/internal/apps/inspect"
	_ "github.com/vovakirdan/steploop/internal/apps/snake"
	"github.com/vovakirdan/steploop/internal/config"
)

var (
	// Global flags
	flagConfig      string
	flagRate        int
	flagMaxTicks    int
	flagScrollReset string
	flagTitle       string
	flagSeed        uint64
	flagDBPath      string
	flagNoStore     bool
	flagLogLevel    string

	// cfg is the loaded configuration with flag overrides applied.
	cfg config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "steploop",
	Short: "steploop - fixed-timestep applications in your terminal",
	Long: `steploop drives applications on a fixed update cadence, decoupled from
rendering, with a one-second reporting cadence on the same clock.

Available commands:
  list     - Show all registered applications
  run      - Run a specific application
  menu     - Interactive application picker
  serve    - Start SSH server for remote sessions
  stats    - View recorded runs
  config   - Print the effective configuration

Examples:
  steploop list
  steploop run snake
  steploop run inspect --scroll-reset per_tick
  steploop run snake --desktop --rate 120
  steploop serve --ssh :2222
  steploop stats snake`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to configuration YAML")
	rootCmd.PersistentFlags().IntVar(&flagRate, "rate", 0, "Update ticks per second (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagMaxTicks, "max-ticks", -1, "Catch-up cap per wake, 0 = unbounded (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagScrollReset, "scroll-reset", "", "Wheel delta policy: persist or per_tick (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagTitle, "title", "", "Window title (overrides config)")
	rootCmd.PersistentFlags().Uint64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to stats database (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagNoStore, "no-store", false, "Do not record runs")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig loads the configuration and applies flag overrides.
func loadConfig(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("rate") {
		loaded.Loop.UpdateRate = flagRate
	}
	if flags.Changed("max-ticks") {
		loaded.Loop.MaxTicksPerWake = flagMaxTicks
	}
	if flags.Changed("scroll-reset") {
		loaded.Input.ScrollReset = flagScrollReset
	}
	if flags.Changed("title") {
		loaded.Window.Title = flagTitle
	}
	if flags.Changed("db") {
		loaded.Storage.DBPath = flagDBPath
	}
	if flagNoStore {
		loaded.Storage.Enabled = false
	}
	if flags.Changed("log-level") {
		loaded.Log.Level = flagLogLevel
	}

	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded
	return nil
}
