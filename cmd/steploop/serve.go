package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/steploop/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagServeApp    string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the steploop SSH server",
	Long: `Start an SSH server where every connection runs its own driver.

Each SSH session starts with the application picker, unless --app fixes the
application. Runs from all sessions are recorded in the same stats database.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.steploop/host_key

Examples:
  steploop serve                           # Listen on :23234 with auto-generated key
  steploop serve --ssh :2222               # Listen on port 2222
  steploop serve --app snake               # Skip the picker
  steploop serve --host-key ./my_host_key  # Use specific host key

Users can connect with:
  ssh localhost -p 23234`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().StringVar(&flagServeApp, "app", "", "Application every session runs (picker if empty)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) {
	logger, _ := newLogger("steploop-ssh", false)

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	serverCfg := tui.SSHServerConfig{
		Address:     flagSSHAddr,
		HostKeyPath: flagHostKey,
		AppID:       flagServeApp,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
		Config:      cfg,
	}

	server, err := tui.NewSSHServer(serverCfg, store, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting steploop SSH server on %s\n", serverCfg.Address)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
