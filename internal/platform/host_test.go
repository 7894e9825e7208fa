package platform

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/steploop/internal/config"
	"github.com/vovakirdan/steploop/internal/core"
	"github.com/vovakirdan/steploop/internal/driver"
	"github.com/vovakirdan/steploop/internal/registry"
	"github.com/vovakirdan/steploop/internal/storage"
)

const testAppID = "platform_test_app"

// probeApp counts calls and reports its stats like a real application.
type probeApp struct {
	surface *core.Screen
	opts    registry.Options
	events  []core.Event
	updates int
	renders int
	closing bool
}

func (a *probeApp) ProcessInput(ev core.Event) {
	a.events = append(a.events, ev)
	if _, ok := ev.(core.CloseRequested); ok {
		a.closing = true
	}
}

func (a *probeApp) Update() { a.updates++ }
func (a *probeApp) Render() { a.renders++ }

func (a *probeApp) OneSecondUpdate() {
	if a.opts.Stats != nil {
		//nolint:errcheck // Reported through the store in tests
		a.opts.Stats.RecordStats(a.updates, a.renders)
	}
	a.updates, a.renders = 0, 0
}

func (a *probeApp) ShouldClose() bool { return a.closing }

func init() {
	registry.Register(testAppID, "Probe", func(s *core.Screen, opts registry.Options) (driver.Application, error) {
		return &probeApp{surface: s, opts: opts}, nil
	})
}

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestHost(t *testing.T, store *storage.Store) (*Host, *core.ManualClock) {
	t.Helper()
	clock := core.NewManualClock(t0)
	h, err := NewHost(Options{
		AppID:    testAppID,
		Config:   config.Default(),
		Platform: NameTUI,
		Store:    store,
		Seed:     42,
		Clock:    clock,
	})
	if err != nil {
		t.Fatalf("NewHost() failed: %v", err)
	}
	return h, clock
}

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "stats.db"))
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewHostRejectsUnknownApp(t *testing.T) {
	_, err := NewHost(Options{AppID: "nope", Config: config.Default()})
	if err == nil {
		t.Fatal("NewHost() should fail for an unregistered application")
	}
}

func TestNewHostRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Loop.UpdateRate = -1
	if _, err := NewHost(Options{AppID: testAppID, Config: cfg}); err == nil {
		t.Fatal("NewHost() should fail for an invalid config")
	}
}

func TestActivateSizesSurfaceAndPassesOptions(t *testing.T) {
	h, _ := newTestHost(t, nil)

	if err := h.Activate(40, 12); err != nil {
		t.Fatalf("Activate() failed: %v", err)
	}
	if h.Driver().State() != driver.StateActive {
		t.Fatalf("State() = %v, expected active", h.Driver().State())
	}
	if h.Screen().Width() != 40 || h.Screen().Height() != 12 {
		t.Errorf("surface = %dx%d, expected 40x12", h.Screen().Width(), h.Screen().Height())
	}

	app := h.Driver().Application().(*probeApp)
	if app.surface != h.Screen() {
		t.Error("application should render into the host's surface")
	}
	if app.opts.Seed != 42 || app.opts.UpdateRate != 60 {
		t.Errorf("application options = %+v, expected seed 42 and rate 60", app.opts)
	}
	if app.opts.Stats != nil {
		t.Error("Stats should be nil without a store")
	}
	if h.RunID() != 0 {
		t.Errorf("RunID() = %d, expected 0 without a store", h.RunID())
	}
}

func TestWakeRequestIsCollected(t *testing.T) {
	h, clock := newTestHost(t, nil)
	if h.TakeWake() {
		t.Fatal("no wake should be pending before activation")
	}
	if err := h.Activate(20, 10); err != nil {
		t.Fatalf("Activate() failed: %v", err)
	}

	h.Driver().OnWake(clock.Advance(20 * time.Millisecond))
	if !h.TakeWake() {
		t.Fatal("a wake should be pending after OnWake")
	}
	if h.TakeWake() {
		t.Error("TakeWake() should clear the pending request")
	}
}

func TestResizeForwardsOnlyChanges(t *testing.T) {
	h, _ := newTestHost(t, nil)
	if err := h.Activate(20, 10); err != nil {
		t.Fatalf("Activate() failed: %v", err)
	}
	app := h.Driver().Application().(*probeApp)

	h.Resize(20, 10)
	if len(app.events) != 0 {
		t.Fatalf("same-size resize forwarded %v", app.events)
	}

	h.Resize(30, 15)
	if len(app.events) != 1 {
		t.Fatalf("expected one event, got %v", app.events)
	}
	if ev, ok := app.events[0].(core.Resized); !ok || ev.Width != 30 || ev.Height != 15 {
		t.Errorf("event = %#v, expected Resized{30, 15}", app.events[0])
	}
	if h.Screen().Width() != 30 || h.Screen().Height() != 15 {
		t.Errorf("surface = %dx%d, expected 30x15", h.Screen().Width(), h.Screen().Height())
	}
}

func TestRunIsRecorded(t *testing.T) {
	store := openTestStore(t)
	h, clock := newTestHost(t, store)

	if err := h.Activate(20, 10); err != nil {
		t.Fatalf("Activate() failed: %v", err)
	}
	if h.RunID() == 0 {
		t.Fatal("RunID() should be set when a store is configured")
	}

	// Three seconds of wakes at roughly 30 per second.
	for range 90 {
		h.Driver().OnWake(clock.Advance(time.Second / 30))
	}

	h.Driver().OnInput(core.CloseRequested{})
	if res := h.Driver().OnWake(clock.Advance(time.Millisecond)); !res.Terminated {
		t.Fatal("driver should terminate after CloseRequested")
	}
	if err := h.Finish(storage.EndClosed); err != nil {
		t.Fatalf("Finish() failed: %v", err)
	}
	if err := h.Finish(storage.EndAbort); err != nil {
		t.Fatalf("second Finish() failed: %v", err)
	}

	runs, err := store.RecentRuns(testAppID, 10)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	run := runs[0]
	if run.Platform != NameTUI || run.EndReason != storage.EndClosed {
		t.Errorf("run = %+v, expected platform tui ended closed", run)
	}
	if run.Reports != 2 {
		t.Errorf("Reports = %d, expected 2", run.Reports)
	}

	samples, err := store.Samples(run.ID)
	if err != nil {
		t.Fatalf("Samples() failed: %v", err)
	}
	// The first report lands on the wake just past one second, so it carries
	// a couple of extra ticks; the second covers exactly 30 wakes.
	if len(samples) != 2 || samples[1].UPS != 60 || samples[1].FPS != 30 {
		t.Errorf("samples = %+v, expected a second report of 60 UPS / 30 FPS", samples)
	}
}
