package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/steploop/internal/platform/tui"
	"github.com/vovakirdan/steploop/internal/registry"
	"github.com/vovakirdan/steploop/internal/storage"
)

var (
	flagStatsLimit  int
	flagStatsRun    int64
	flagStatsBrowse bool
	flagStatsClear  bool
)

var statsCmd = &cobra.Command{
	Use:   "stats [app]",
	Short: "Show recorded runs",
	Long: `Display recent runs with their average updates and renders per second.

Without an application, runs of every application are listed.

Examples:
  steploop stats
  steploop stats snake --limit 5
  steploop stats --run 12      # Per-second samples of run #12
  steploop stats --browse      # Interactive browser
  steploop stats snake --clear # Delete snake's runs`,
	Args: cobra.MaximumNArgs(1),
	Run:  runStats,
}

func init() {
	statsCmd.Flags().IntVar(&flagStatsLimit, "limit", 10, "Number of runs to show")
	statsCmd.Flags().Int64Var(&flagStatsRun, "run", 0, "Show the per-second samples of one run")
	statsCmd.Flags().BoolVar(&flagStatsBrowse, "browse", false, "Open the interactive run browser")
	statsCmd.Flags().BoolVar(&flagStatsClear, "clear", false, "Delete the recorded runs of the application")
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func runStats(_ *cobra.Command, args []string) {
	appID := ""
	if len(args) == 1 {
		appID = args[0]
		if !registry.Exists(appID) {
			fmt.Fprintf(os.Stderr, "Error: unknown application %q\n", appID)
			fmt.Fprintln(os.Stderr, "Run 'steploop list' to see available applications.")
			os.Exit(1)
		}
	}

	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening stats database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case flagStatsBrowse:
		width, height := terminalSize()
		err = tui.RunStats(store, width, height)
	case flagStatsClear:
		err = clearRuns(store, appID)
	case flagStatsRun != 0:
		err = printSamples(store, flagStatsRun)
	default:
		err = printRuns(store, appID)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func printRuns(store *storage.Store, appID string) error {
	runs, err := store.RecentRuns(appID, flagStatsLimit)
	if err != nil {
		return err
	}

	title := "Recent runs"
	if appID != "" {
		title = fmt.Sprintf("Recent runs - %s", registry.Title(appID))
	}
	fmt.Println(title)
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Run 'steploop run <app>' to record one.")
		return nil
	}

	t := newTable("Run", "App", "Platform", "Started", "Length", "UPS", "FPS", "End")
	for i, row := range tui.RunRows(runs) {
		// RunRows has no app column; insert it after the run number.
		t.Row(row[0], runs[i].AppID, row[1], row[2], row[3], row[4], row[5], row[6])
	}
	fmt.Println(t)
	return nil
}

func printSamples(store *storage.Store, runID int64) error {
	samples, err := store.Samples(runID)
	if err != nil {
		return err
	}

	fmt.Printf("Samples - run #%d\n\n", runID)
	if len(samples) == 0 {
		fmt.Println("No samples recorded for this run.")
		return nil
	}

	t := newTable("Second", "UPS", "FPS", "Recorded")
	for _, s := range samples {
		t.Row(
			fmt.Sprintf("%d", s.Seq),
			fmt.Sprintf("%d", s.UPS),
			fmt.Sprintf("%d", s.FPS),
			s.RecordedAt.Local().Format("15:04:05"),
		)
	}
	fmt.Println(t)
	return nil
}

func clearRuns(store *storage.Store, appID string) error {
	if appID == "" {
		return fmt.Errorf("--clear needs an application")
	}
	if err := store.ClearRuns(appID); err != nil {
		return err
	}
	fmt.Printf("Cleared runs of %s.\n", registry.Title(appID))
	return nil
}
