// Package config provides YAML-based configuration loading for the driver,
// its platform adapters and the stats store.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/steploop/internal/core"
	"github.com/vovakirdan/steploop/internal/driver"
)

// Config is the complete runtime configuration.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Loop    LoopConfig    `yaml:"loop"`
	Input   InputConfig   `yaml:"input"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
}

// WindowConfig defines the surface the platform creates on activation.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`  // Pixels on desktop; 0 in a terminal means terminal size
	Height int    `yaml:"height"` // Pixels on desktop; 0 in a terminal means terminal size
}

// LoopConfig defines the scheduling cadence.
type LoopConfig struct {
	UpdateRate      int           `yaml:"update_rate"`        // Logic ticks per second
	MaxTicksPerWake int           `yaml:"max_ticks_per_wake"` // 0 = unbounded catch-up
	WakeHint        time.Duration `yaml:"wake_hint"`          // Advisory delay before the next wake
}

// InputConfig defines input tracking policies.
type InputConfig struct {
	ScrollReset string `yaml:"scroll_reset"` // "persist" or "per_tick"
}

// LogConfig defines logging output.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // Used when stderr is taken by the terminal UI
}

// StorageConfig defines the stats database.
type StorageConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

// Validate checks the configuration for values the driver cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Loop.UpdateRate <= 0 {
		errs = append(errs, fmt.Errorf("loop.update_rate must be positive, got %d", c.Loop.UpdateRate))
	}
	if c.Loop.MaxTicksPerWake < 0 {
		errs = append(errs, fmt.Errorf("loop.max_ticks_per_wake must not be negative, got %d", c.Loop.MaxTicksPerWake))
	}
	if c.Loop.WakeHint < 0 {
		errs = append(errs, fmt.Errorf("loop.wake_hint must not be negative, got %v", c.Loop.WakeHint))
	}
	if c.Window.Width < 0 || c.Window.Height < 0 {
		errs = append(errs, fmt.Errorf("window size must not be negative, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if _, err := core.ParseScrollReset(c.Input.ScrollReset); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Level != "" {
		if _, err := log.ParseLevel(c.Log.Level); err != nil {
			errs = append(errs, fmt.Errorf("log.level: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

// UpdateInterval returns the simulated time covered by one tick.
func (c Config) UpdateInterval() time.Duration {
	return driver.IntervalForRate(c.Loop.UpdateRate)
}

// ScrollPolicy returns the parsed scroll reset policy, ScrollPersist if invalid.
func (c Config) ScrollPolicy() core.ScrollReset {
	p, _ := core.ParseScrollReset(c.Input.ScrollReset)
	return p
}

// LogLevel returns the parsed log level, InfoLevel if unset or invalid.
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// DriverConfig returns the cadence part of a driver.Config.
// Callers fill in the clock, waker and logger.
func (c Config) DriverConfig() driver.Config {
	return driver.Config{
		UpdateInterval:  c.UpdateInterval(),
		MaxTicksPerWake: c.Loop.MaxTicksPerWake,
	}
}
