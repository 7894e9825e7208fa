package driver

import (
	"errors"
	"testing"
	"time"

	"github.com/vovakirdan/steploop/internal/core"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// recordingApp counts every capability call and logs their order.
type recordingApp struct {
	events  []core.Event
	calls   []string
	updates int
	renders int
	reports int
	closing bool
	closed  bool
}

func (a *recordingApp) ProcessInput(ev core.Event) {
	a.events = append(a.events, ev)
	if ev.Kind() == core.EventCloseRequested {
		a.closing = true
	}
}

func (a *recordingApp) Update() {
	a.updates++
	a.calls = append(a.calls, "update")
}

func (a *recordingApp) OneSecondUpdate() {
	a.reports++
	a.calls = append(a.calls, "report")
}

func (a *recordingApp) Render() {
	a.renders++
	a.calls = append(a.calls, "render")
}

func (a *recordingApp) ShouldClose() bool {
	return a.closing
}

func (a *recordingApp) Close() error {
	a.closed = true
	return nil
}

type countingWaker struct {
	requests int
}

func (w *countingWaker) RequestWake() {
	w.requests++
}

// newTestDriver builds an activated driver at t0 ticking at 60 Hz.
func newTestDriver(t *testing.T, maxTicks int) (*Driver, *recordingApp, *countingWaker) {
	t.Helper()

	app := &recordingApp{}
	waker := &countingWaker{}
	d, err := New(Config{
		UpdateInterval:  IntervalForRate(60),
		MaxTicksPerWake: maxTicks,
		Clock:           core.NewManualClock(t0),
		Waker:           waker,
	}, FixedSurface(core.NewScreen(80, 24)), func(*core.Screen) (Application, error) {
		return app, nil
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := d.OnActivate(); err != nil {
		t.Fatalf("OnActivate() failed: %v", err)
	}
	return d, app, waker
}

func TestNewValidation(t *testing.T) {
	provider := FixedSurface(core.NewScreen(1, 1))
	factory := func(*core.Screen) (Application, error) { return &recordingApp{}, nil }

	tests := []struct {
		name     string
		cfg      Config
		provider SurfaceProvider
		factory  Factory
	}{
		{name: "zero interval", cfg: Config{}, provider: provider, factory: factory},
		{name: "negative interval", cfg: Config{UpdateInterval: -time.Second}, provider: provider, factory: factory},
		{name: "negative cap", cfg: Config{UpdateInterval: time.Second, MaxTicksPerWake: -1}, provider: provider, factory: factory},
		{name: "nil provider", cfg: DefaultConfig(), provider: nil, factory: factory},
		{name: "nil factory", cfg: DefaultConfig(), provider: provider, factory: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.cfg, tc.provider, tc.factory); err == nil {
				t.Error("New() should fail")
			}
		})
	}
}

func TestActivationArmsDeadlines(t *testing.T) {
	app := &recordingApp{}
	clock := core.NewManualClock(t0)
	d, err := New(Config{UpdateInterval: 10 * time.Millisecond, Clock: clock},
		FixedSurface(core.NewScreen(10, 10)),
		func(*core.Screen) (Application, error) { return app, nil })
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if d.State() != StateUninitialized {
		t.Errorf("State() = %v, expected uninitialized", d.State())
	}
	if _, ok := d.NextUpdateDeadline(); ok {
		t.Error("Update deadline should be unset before activation")
	}
	if _, ok := d.NextReportDeadline(); ok {
		t.Error("Report deadline should be unset before activation")
	}
	if d.Application() != nil {
		t.Error("Application should not exist before activation")
	}

	if err := d.OnActivate(); err != nil {
		t.Fatalf("OnActivate() failed: %v", err)
	}

	if d.State() != StateActive {
		t.Errorf("State() = %v, expected active", d.State())
	}
	if next, _ := d.NextUpdateDeadline(); !next.Equal(t0.Add(10 * time.Millisecond)) {
		t.Errorf("NextUpdateDeadline() = %v, expected t0+10ms", next)
	}
	if next, _ := d.NextReportDeadline(); !next.Equal(t0.Add(time.Second)) {
		t.Errorf("NextReportDeadline() = %v, expected t0+1s", next)
	}
	if d.Surface() == nil || d.Surface().Width() != 10 {
		t.Error("Surface should be retained after activation")
	}

	if err := d.OnActivate(); !errors.Is(err, ErrAlreadyActive) {
		t.Errorf("Second OnActivate() = %v, expected ErrAlreadyActive", err)
	}
}

func TestActivationFailures(t *testing.T) {
	surfaceErr := errors.New("no display")
	factoryErr := errors.New("shader compile failed")

	tests := []struct {
		name     string
		provider SurfaceProvider
		factory  Factory
		wantErr  error
	}{
		{
			name:     "surface error",
			provider: SurfaceProviderFunc(func() (*core.Screen, error) { return nil, surfaceErr }),
			factory:  func(*core.Screen) (Application, error) { return &recordingApp{}, nil },
			wantErr:  surfaceErr,
		},
		{
			name:     "nil surface",
			provider: SurfaceProviderFunc(func() (*core.Screen, error) { return nil, nil }),
			factory:  func(*core.Screen) (Application, error) { return &recordingApp{}, nil },
			wantErr:  ErrNoSurface,
		},
		{
			name:     "factory error",
			provider: FixedSurface(core.NewScreen(1, 1)),
			factory:  func(*core.Screen) (Application, error) { return nil, factoryErr },
			wantErr:  factoryErr,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, err := New(DefaultConfig(), tc.provider, tc.factory)
			if err != nil {
				t.Fatalf("New() failed: %v", err)
			}

			err = d.OnActivate()
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("OnActivate() = %v, expected %v", err, tc.wantErr)
			}
			if d.State() != StateUninitialized {
				t.Errorf("State() = %v after failed activation, expected uninitialized", d.State())
			}

			// Wakes on a failed driver do nothing
			if res := d.OnWake(t0.Add(time.Hour)); res.Rendered || res.Updates != 0 {
				t.Errorf("OnWake() on uninitialized driver did work: %+v", res)
			}
		})
	}
}

func TestWakeScenario50ms(t *testing.T) {
	d, app, waker := newTestDriver(t, 0)

	res := d.OnWake(t0.Add(50 * time.Millisecond))

	if res.Updates != 3 || app.updates != 3 {
		t.Errorf("Updates = %d (app %d), expected 3", res.Updates, app.updates)
	}
	if !res.Rendered || app.renders != 1 {
		t.Errorf("Renders = %d, expected exactly 1", app.renders)
	}
	if res.Reports != 0 {
		t.Errorf("Reports = %d, expected 0 before one second", res.Reports)
	}
	if waker.requests != 1 {
		t.Errorf("Wake requests = %d, expected 1", waker.requests)
	}

	want := []string{"update", "update", "update", "render"}
	if len(app.calls) != len(want) {
		t.Fatalf("calls = %v, expected %v", app.calls, want)
	}
	for i := range want {
		if app.calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, expected %q", i, app.calls[i], want[i])
		}
	}
}

func TestWakeBeforeFirstDeadline(t *testing.T) {
	d, app, _ := newTestDriver(t, 0)

	res := d.OnWake(t0.Add(time.Millisecond))

	if res.Updates != 0 || app.updates != 0 {
		t.Errorf("Updates = %d, expected 0 before the first deadline", res.Updates)
	}
	if app.renders != 1 {
		t.Errorf("Render should run even when no tick is due, got %d", app.renders)
	}
}

func TestWakeOneSecondNoDrift(t *testing.T) {
	d, app, _ := newTestDriver(t, 0)

	res := d.OnWake(t0.Add(1500 * time.Millisecond))

	if res.Reports != 1 || app.reports != 1 {
		t.Errorf("Reports = %d, expected 1", res.Reports)
	}
	next, _ := d.NextReportDeadline()
	if !next.Equal(t0.Add(2 * time.Second)) {
		t.Errorf("NextReportDeadline() = %v, expected t0+2s (not t0+1.5s)", next.Sub(t0))
	}

	// Report runs after render within one wake
	if app.calls[len(app.calls)-1] != "report" || app.calls[len(app.calls)-2] != "render" {
		t.Errorf("Expected render then report at end of wake, got %v", app.calls[len(app.calls)-2:])
	}

	// A stall covering several seconds replays every missed report
	res = d.OnWake(t0.Add(4200 * time.Millisecond))
	if res.Reports != 3 {
		t.Errorf("Reports after stall = %d, expected 3", res.Reports)
	}
	next, _ = d.NextReportDeadline()
	if !next.Equal(t0.Add(5 * time.Second)) {
		t.Errorf("NextReportDeadline() = %v, expected t0+5s", next.Sub(t0))
	}
}

func TestUpdateDeadlinesLandOnMultiples(t *testing.T) {
	d, app, _ := newTestDriver(t, 0)
	interval := IntervalForRate(60)
	initial := t0.Add(interval)

	offsets := []time.Duration{
		3 * time.Millisecond,
		17 * time.Millisecond,
		40 * time.Millisecond,
		41 * time.Millisecond,
		250 * time.Millisecond,
		251 * time.Millisecond,
		999 * time.Millisecond,
		3 * time.Second,
	}

	for _, off := range offsets {
		now := t0.Add(off)
		before, _ := d.NextUpdateDeadline()
		res := d.OnWake(now)
		after, _ := d.NextUpdateDeadline()

		// Deadline advanced by exactly k intervals for the k ticks that ran
		if !after.Equal(before.Add(time.Duration(res.Updates) * interval)) {
			t.Errorf("at %v: deadline %v -> %v after %d updates", off, before.Sub(t0), after.Sub(t0), res.Updates)
		}
		// Deadline always sits on the grid anchored at the initial deadline
		if after.Sub(initial)%interval != 0 {
			t.Errorf("at %v: deadline %v drifted off the interval grid", off, after.Sub(t0))
		}
		// Deadline is the first grid point strictly after now
		if !after.After(now) || after.Add(-interval).After(now) {
			t.Errorf("at %v: deadline %v is not the first point after now", off, after.Sub(t0))
		}
	}

	// Total ticks equal the grid points passed
	expected := int((3*time.Second-interval)/interval) + 1
	if app.updates != expected {
		t.Errorf("Total updates = %d, expected %d", app.updates, expected)
	}
}

func TestWakeShouldClose(t *testing.T) {
	d, app, waker := newTestDriver(t, 0)

	d.OnInput(core.CloseRequested{})
	res := d.OnWake(t0.Add(5 * time.Second))

	if !res.Terminated {
		t.Error("OnWake should report termination")
	}
	if app.updates != 0 || app.renders != 0 || app.reports != 0 {
		t.Errorf("No work expected after close: updates=%d renders=%d reports=%d",
			app.updates, app.renders, app.reports)
	}
	if waker.requests != 0 {
		t.Errorf("Terminated driver should not request a wake, got %d", waker.requests)
	}
	if d.State() != StateTerminated {
		t.Errorf("State() = %v, expected terminated", d.State())
	}

	// Terminated is final
	res = d.OnWake(t0.Add(10 * time.Second))
	if res.Rendered || res.Updates != 0 || res.Terminated {
		t.Errorf("Terminated driver did work: %+v", res)
	}
	if err := d.OnActivate(); !errors.Is(err, ErrAlreadyActive) {
		t.Errorf("OnActivate() after termination = %v, expected ErrAlreadyActive", err)
	}
}

func TestOnInputPreservesOrder(t *testing.T) {
	d, app, _ := newTestDriver(t, 0)

	events := []core.Event{
		core.Press(core.KeyUp),
		core.Press(core.KeyUp),
		core.CursorMoved{Position: core.Vec2{X: 1, Y: 2}},
		core.Release(core.KeyUp),
		core.MouseWheel{Delta: -1},
		core.Resized{Width: 100, Height: 40},
	}
	for _, ev := range events {
		d.OnInput(ev)
	}

	if len(app.events) != len(events) {
		t.Fatalf("Forwarded %d events, expected %d", len(app.events), len(events))
	}
	for i := range events {
		if app.events[i] != events[i] {
			t.Errorf("events[%d] = %#v, expected %#v", i, app.events[i], events[i])
		}
	}
}

func TestOnInputBeforeActivation(t *testing.T) {
	app := &recordingApp{}
	d, err := New(DefaultConfig(), FixedSurface(core.NewScreen(1, 1)),
		func(*core.Screen) (Application, error) { return app, nil })
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	d.OnInput(core.Press("a")) // Should not panic
	if err := d.OnActivate(); err != nil {
		t.Fatalf("OnActivate() failed: %v", err)
	}
	if len(app.events) != 0 {
		t.Errorf("Events before activation should be dropped, got %d", len(app.events))
	}
}

func TestMaxTicksPerWakeClamp(t *testing.T) {
	d, app, _ := newTestDriver(t, 5)
	interval := IntervalForRate(60)

	// One second stall: 60 ticks due, only 5 run
	now := t0.Add(time.Second)
	res := d.OnWake(now)

	if res.Updates != 5 || app.updates != 5 {
		t.Errorf("Updates = %d, expected clamp at 5", res.Updates)
	}
	if res.Skipped != 55 {
		t.Errorf("Skipped = %d, expected 55", res.Skipped)
	}
	next, _ := d.NextUpdateDeadline()
	if !next.Equal(now.Add(interval)) {
		t.Errorf("NextUpdateDeadline() = %v, expected re-derived now+interval", next.Sub(t0))
	}
	if !res.Rendered {
		t.Error("Render should still run after a clamp")
	}
	if res.Reports != 1 {
		t.Errorf("Reports = %d, the one-second cadence is never clamped", res.Reports)
	}

	// Normal cadence resumes from the new deadline
	res = d.OnWake(now.Add(2 * interval))
	if res.Updates != 2 || res.Skipped != 0 {
		t.Errorf("After clamp: updates=%d skipped=%d, expected 2 and 0", res.Updates, res.Skipped)
	}
}

func TestClampNotHitWithinBudget(t *testing.T) {
	d, _, _ := newTestDriver(t, 5)

	res := d.OnWake(t0.Add(50 * time.Millisecond))
	if res.Updates != 3 || res.Skipped != 0 {
		t.Errorf("Updates=%d Skipped=%d, expected 3 and 0", res.Updates, res.Skipped)
	}
}

func TestTickUsesDriverClock(t *testing.T) {
	app := &recordingApp{}
	clock := core.NewManualClock(t0)
	d, err := New(Config{UpdateInterval: 100 * time.Millisecond, Clock: clock},
		FixedSurface(core.NewScreen(1, 1)),
		func(*core.Screen) (Application, error) { return app, nil })
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := d.OnActivate(); err != nil {
		t.Fatalf("OnActivate() failed: %v", err)
	}

	clock.Advance(250 * time.Millisecond)
	res := d.Tick()
	if res.Updates != 2 {
		t.Errorf("Tick() updates = %d, expected 2", res.Updates)
	}

	// A clock that goes backwards simply finds nothing due
	clock.Set(t0)
	res = d.Tick()
	if res.Updates != 0 || !res.Rendered {
		t.Errorf("Tick() with earlier clock = %+v, expected render only", res)
	}
}

func TestClose(t *testing.T) {
	d, app, _ := newTestDriver(t, 0)

	if err := d.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if !app.closed {
		t.Error("Close() should release a closable application")
	}

	idle, err := New(DefaultConfig(), FixedSurface(core.NewScreen(1, 1)),
		func(*core.Screen) (Application, error) { return &recordingApp{}, nil })
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := idle.Close(); err != nil {
		t.Errorf("Close() before activation = %v, expected nil", err)
	}
}

func TestIntervalForRate(t *testing.T) {
	if got := IntervalForRate(60); got != time.Second/60 {
		t.Errorf("IntervalForRate(60) = %v", got)
	}
	if got := IntervalForRate(0); got != time.Second/DefaultUpdateRate {
		t.Errorf("IntervalForRate(0) = %v, expected default rate", got)
	}
	if got := IntervalForRate(1); got != time.Second {
		t.Errorf("IntervalForRate(1) = %v, expected 1s", got)
	}
}
