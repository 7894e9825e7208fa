// Package driver implements the fixed-timestep scheduling driver.
//
// The driver turns irregular platform wake-ups into a deterministic sequence
// of fixed-interval update ticks, at most one render per wake-up, and a
// separate one-second maintenance cadence, all derived from a single clock.
// It is single-threaded: the platform adapter must call OnActivate, OnInput
// and OnWake sequentially from one goroutine.
package driver

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/steploop/internal/core"
)

// OneSecondInterval is the fixed cadence of Application.OneSecondUpdate.
const OneSecondInterval = time.Second

// DefaultUpdateRate is the logic rate used when none is configured.
const DefaultUpdateRate = 60

var (
	// ErrAlreadyActive is returned by OnActivate when called more than once.
	ErrAlreadyActive = errors.New("driver: already activated")
	// ErrNoSurface is returned when the provider yields a nil surface.
	ErrNoSurface = errors.New("driver: surface provider returned no surface")
)

// State is the lifecycle state of a Driver.
type State int

const (
	StateUninitialized State = iota
	StateActive
	StateTerminated
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Config holds the cadence settings and collaborators of a Driver.
type Config struct {
	// UpdateInterval is the simulated time covered by one Update tick.
	UpdateInterval time.Duration

	// MaxTicksPerWake caps catch-up updates per OnWake. When the cap is hit
	// the backlog is dropped and the update deadline is re-derived from now.
	// Zero means unbounded: every missed tick is replayed.
	MaxTicksPerWake int

	// Clock is the shared time source. Defaults to core.SystemClock.
	Clock core.Clock

	// Waker receives the wake request issued at the end of every OnWake.
	Waker Waker

	// Logger receives lifecycle and catch-up messages. Defaults to a discarding logger.
	Logger *log.Logger
}

// IntervalForRate converts a logic rate in ticks per second to an update interval.
func IntervalForRate(rate int) time.Duration {
	if rate <= 0 {
		rate = DefaultUpdateRate
	}
	return time.Second / time.Duration(rate)
}

// DefaultConfig returns a Config ticking at DefaultUpdateRate with no catch-up cap.
func DefaultConfig() Config {
	return Config{
		UpdateInterval: IntervalForRate(DefaultUpdateRate),
	}
}

// WakeResult reports the work performed by one OnWake call.
type WakeResult struct {
	Updates    int  // Update ticks run
	Skipped    int  // Ticks dropped by the MaxTicksPerWake clamp
	Rendered   bool // Whether Render ran
	Reports    int  // OneSecondUpdate calls run
	Terminated bool // Whether this call observed ShouldClose
}

// Driver owns the Application and the scheduling state.
type Driver struct {
	cfg      Config
	provider SurfaceProvider
	factory  Factory
	logger   *log.Logger

	state   State
	app     Application
	surface *core.Screen

	nextUpdate time.Time
	nextReport time.Time
}

// New creates a driver in the Uninitialized state.
// The Application is not constructed until OnActivate.
func New(cfg Config, provider SurfaceProvider, factory Factory) (*Driver, error) {
	if cfg.UpdateInterval <= 0 {
		return nil, fmt.Errorf("driver: update interval must be positive, got %v", cfg.UpdateInterval)
	}
	if cfg.MaxTicksPerWake < 0 {
		return nil, fmt.Errorf("driver: max ticks per wake must not be negative, got %d", cfg.MaxTicksPerWake)
	}
	if provider == nil {
		return nil, errors.New("driver: nil surface provider")
	}
	if factory == nil {
		return nil, errors.New("driver: nil application factory")
	}
	if cfg.Clock == nil {
		cfg.Clock = core.SystemClock
	}
	if cfg.Waker == nil {
		cfg.Waker = noopWaker{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Driver{
		cfg:      cfg,
		provider: provider,
		factory:  factory,
		logger:   logger,
	}, nil
}

// OnActivate acquires the surface, constructs the Application and arms both
// deadlines one interval after now. It must be called exactly once, before
// OnWake. On error the driver stays Uninitialized and the caller should abort.
func (d *Driver) OnActivate() error {
	if d.state != StateUninitialized {
		return ErrAlreadyActive
	}

	surface, err := d.provider.AcquireSurface()
	if err != nil {
		return fmt.Errorf("driver: cannot acquire surface: %w", err)
	}
	if surface == nil {
		return ErrNoSurface
	}

	app, err := d.factory(surface)
	if err != nil {
		return fmt.Errorf("driver: cannot create application: %w", err)
	}

	now := d.cfg.Clock.Now()
	d.app = app
	d.surface = surface
	d.nextUpdate = now.Add(d.cfg.UpdateInterval)
	d.nextReport = now.Add(OneSecondInterval)
	d.state = StateActive

	d.logger.Info("activated",
		"interval", d.cfg.UpdateInterval,
		"surface", fmt.Sprintf("%dx%d", surface.Width(), surface.Height()),
	)
	return nil
}

// OnInput forwards ev to the Application in arrival order, without buffering.
// Events arriving before activation have nowhere to go and are dropped.
func (d *Driver) OnInput(ev core.Event) {
	if d.app == nil {
		d.logger.Debug("dropping event before activation", "kind", ev.Kind())
		return
	}
	d.app.ProcessInput(ev)
}

// OnWake runs the scheduling step for the instant now:
// terminate if the Application asks to close; otherwise run every due update
// tick, render once, run every due one-second report and request another wake.
func (d *Driver) OnWake(now time.Time) WakeResult {
	var res WakeResult
	if d.state != StateActive {
		return res
	}

	if d.app.ShouldClose() {
		d.state = StateTerminated
		res.Terminated = true
		d.logger.Info("application requested close")
		return res
	}

	for !now.Before(d.nextUpdate) {
		if d.cfg.MaxTicksPerWake > 0 && res.Updates >= d.cfg.MaxTicksPerWake {
			res.Skipped = int(now.Sub(d.nextUpdate)/d.cfg.UpdateInterval) + 1
			d.nextUpdate = now.Add(d.cfg.UpdateInterval)
			d.logger.Warn("catch-up clamped",
				"ran", res.Updates,
				"skipped", res.Skipped,
			)
			break
		}
		d.app.Update()
		res.Updates++
		d.nextUpdate = d.nextUpdate.Add(d.cfg.UpdateInterval)
	}

	d.app.Render()
	res.Rendered = true

	for !now.Before(d.nextReport) {
		d.app.OneSecondUpdate()
		res.Reports++
		d.nextReport = d.nextReport.Add(OneSecondInterval)
	}

	d.cfg.Waker.RequestWake()
	return res
}

// Tick is OnWake at the driver clock's current instant.
func (d *Driver) Tick() WakeResult {
	return d.OnWake(d.cfg.Clock.Now())
}

// State returns the lifecycle state.
func (d *Driver) State() State {
	return d.state
}

// Application returns the driven application, nil before activation.
func (d *Driver) Application() Application {
	return d.app
}

// Surface returns the surface acquired on activation, nil before.
func (d *Driver) Surface() *core.Screen {
	return d.surface
}

// Config returns the driver's effective configuration.
func (d *Driver) Config() Config {
	return d.cfg
}

// NextUpdateDeadline returns the instant the next update tick is due.
// ok is false before activation.
func (d *Driver) NextUpdateDeadline() (deadline time.Time, ok bool) {
	if d.state == StateUninitialized {
		return time.Time{}, false
	}
	return d.nextUpdate, true
}

// NextReportDeadline returns the instant the next one-second report is due.
// ok is false before activation.
func (d *Driver) NextReportDeadline() (deadline time.Time, ok bool) {
	if d.state == StateUninitialized {
		return time.Time{}, false
	}
	return d.nextReport, true
}

// Close releases the Application at process shutdown if it holds resources.
func (d *Driver) Close() error {
	if c, ok := d.app.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("driver: cannot close application: %w", err)
		}
	}
	return nil
}
