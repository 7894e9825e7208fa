package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/vovakirdan/steploop/internal/config"
	"github.com/vovakirdan/steploop/internal/storage"
)

// newLogger builds the process logger. When the terminal UI owns the screen,
// logs go to the configured file instead of stderr; the returned closer
// releases that file.
func newLogger(prefix string, toFile bool) (*log.Logger, io.Closer) {
	var out io.Writer = os.Stderr
	var closer io.Closer = io.NopCloser(nil)

	if toFile {
		out = io.Discard
		if path := config.ExpandHome(cfg.Log.File); path != "" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
				if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
					out, closer = f, f
				}
			}
		}
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           cfg.LogLevel(),
	})
	return logger, closer
}

// openStore opens the stats database, or returns nil when storage is
// disabled or unavailable. The application still runs without it.
func openStore() *storage.Store {
	if !cfg.Storage.Enabled {
		return nil
	}
	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open stats database: %v\n", err)
		return nil
	}
	return store
}

// terminalSize returns the current terminal size, falling back to 80x24.
func terminalSize() (width, height int) {
	width, height = 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	return width, height
}

// screenshotDir is where ctrl+s snapshots land.
func screenshotDir() string {
	return config.ExpandHome("~/.steploop/screenshots")
}
