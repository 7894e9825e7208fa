// Package platform bridges native event loops to the scheduling driver.
// Host holds the parts every adapter shares: surface, driver, stats run and
// the pending wake request. Adapters live in the tui and desktop subpackages.
package platform

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/steploop/internal/config"
	"github.com/vovakirdan/steploop/internal/core"
	"github.com/vovakirdan/steploop/internal/driver"
	"github.com/vovakirdan/steploop/internal/registry"
	"github.com/vovakirdan/steploop/internal/storage"
)

// Platform names recorded with each run.
const (
	NameTUI     = "tui"
	NameSSH     = "ssh"
	NameDesktop = "desktop"
)

// Options configures a Host.
type Options struct {
	AppID    string
	Config   config.Config
	Platform string         // One of the Name* constants
	Store    *storage.Store // Optional; runs are not recorded when nil
	Logger   *log.Logger    // Optional
	Seed     uint64         // 0 picks a time-based seed
	Clock    core.Clock     // Optional; defaults to core.SystemClock
}

// Host owns one driver and the surface it renders into.
// Like the driver, it must be used from the adapter's event loop goroutine.
type Host struct {
	opts   Options
	logger *log.Logger
	screen *core.Screen
	driver *driver.Driver

	runID    int64
	recorder *storage.Recorder
	wake     bool
	finished bool
}

// NewHost creates an inactive host for the registered application opts.AppID.
func NewHost(opts Options) (*Host, error) {
	if !registry.Exists(opts.AppID) {
		return nil, fmt.Errorf("platform: unknown application %q", opts.AppID)
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if opts.Seed == 0 {
		opts.Seed = uint64(time.Now().UnixNano())
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	h := &Host{
		opts:   opts,
		logger: logger,
		screen: core.NewScreen(opts.Config.Window.Width, opts.Config.Window.Height),
	}

	dcfg := opts.Config.DriverConfig()
	dcfg.Clock = opts.Clock
	dcfg.Waker = h
	dcfg.Logger = logger.WithPrefix("driver")

	d, err := driver.New(dcfg, driver.FixedSurface(h.screen), h.construct)
	if err != nil {
		return nil, err
	}
	h.driver = d
	return h, nil
}

// construct is the driver factory: it builds the application once the run
// is recorded, so the app can report into it.
func (h *Host) construct(surface *core.Screen) (driver.Application, error) {
	appOpts := registry.Options{
		Title:       h.opts.Config.Window.Title,
		ScrollReset: h.opts.Config.ScrollPolicy(),
		UpdateRate:  h.opts.Config.Loop.UpdateRate,
		Seed:        h.opts.Seed,
		Logger:      h.logger.WithPrefix(h.opts.AppID),
	}
	if h.recorder != nil {
		appOpts.Stats = h.recorder
	}

	factory, err := registry.Factory(h.opts.AppID, appOpts)
	if err != nil {
		return nil, err
	}
	return factory(surface)
}

// Activate sizes the surface and activates the driver.
// Called when the platform signals the surface is ready.
func (h *Host) Activate(width, height int) error {
	h.screen.Resize(width, height)

	if h.opts.Store != nil {
		runID, err := h.opts.Store.StartRun(h.opts.AppID, h.opts.Platform, h.opts.Config.Loop.UpdateRate)
		if err != nil {
			h.logger.Warn("could not record run", "error", err)
		} else {
			h.runID = runID
			h.recorder = h.opts.Store.Recorder(runID)
		}
	}

	if err := h.driver.OnActivate(); err != nil {
		h.Finish(storage.EndError)
		return err
	}
	h.logger.Info("run started", "app", h.opts.AppID, "platform", h.opts.Platform, "run", h.runID)
	return nil
}

// Resize changes the surface size and forwards the change to the application.
func (h *Host) Resize(width, height int) {
	if width == h.screen.Width() && height == h.screen.Height() {
		return
	}
	h.screen.Resize(width, height)
	h.driver.OnInput(core.Resized{Width: width, Height: height})
}

// RequestWake implements driver.Waker by remembering the request until the
// adapter collects it with TakeWake.
func (h *Host) RequestWake() {
	h.wake = true
}

// TakeWake reports and clears a pending wake request.
func (h *Host) TakeWake() bool {
	w := h.wake
	h.wake = false
	return w
}

// Finish records the end of the run and releases the application. Safe to call twice.
func (h *Host) Finish(reason string) error {
	if h.finished {
		return nil
	}
	h.finished = true

	if h.opts.Store != nil && h.runID != 0 {
		if err := h.opts.Store.EndRun(h.runID, reason); err != nil {
			h.logger.Warn("could not close run", "error", err)
		}
	}
	h.logger.Info("run finished", "app", h.opts.AppID, "reason", reason)
	return h.driver.Close()
}

// Driver returns the hosted driver.
func (h *Host) Driver() *driver.Driver {
	return h.driver
}

// Screen returns the surface the application renders into.
func (h *Host) Screen() *core.Screen {
	return h.screen
}

// WakeHint returns the advisory delay before the next wake.
func (h *Host) WakeHint() time.Duration {
	return h.opts.Config.Loop.WakeHint
}

// RunID returns the recorded run, 0 when runs are not stored.
func (h *Host) RunID() int64 {
	return h.runID
}
