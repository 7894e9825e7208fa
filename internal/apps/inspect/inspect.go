// Package inspect draws the live input snapshot, one of the prototype
// bodies used to check what the tracker reports between ticks.
package inspect

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/steploop/internal/core"
	"github.com/vovakirdan/steploop/internal/driver"
	"github.com/vovakirdan/steploop/internal/registry"
)

// ID is the registry identifier of this application.
const ID = "inspect"

// historySize is the number of recent events kept for display.
const historySize = 8

// App implements driver.Application.
type App struct {
	screen *core.Screen
	input  *core.InputTracker
	logger *log.Logger
	stats  registry.StatsSink

	history []string // Most recent last
	scroll  float64  // Sum of wheel delta seen by every tick
	ticks   uint64

	updates, renders int
	lastUPS, lastFPS int

	shouldClose bool
}

func init() {
	registry.Register(ID, "Input Inspector", func(surface *core.Screen, opts registry.Options) (driver.Application, error) {
		return New(surface, opts), nil
	})
}

// New creates the inspector for surface.
func New(surface *core.Screen, opts registry.Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &App{
		screen: surface,
		input:  core.NewInputTracker(opts.ScrollReset),
		logger: logger,
		stats:  opts.Stats,
	}
}

func (a *App) ProcessInput(ev core.Event) {
	if ev.Kind() == core.EventCloseRequested {
		a.shouldClose = true
	}
	a.input.Ingest(ev)

	a.history = append(a.history, describe(ev))
	if len(a.history) > historySize {
		a.history = a.history[len(a.history)-historySize:]
	}
}

// Update integrates the wheel delta so the scroll policy is visible:
// under persist the offset keeps moving, under per_tick it moves once per event.
func (a *App) Update() {
	a.updates++
	a.ticks++
	a.scroll += a.input.WheelDelta()
	a.input.EndTick()

	if a.input.KeyPressed(core.KeyEscape) {
		a.shouldClose = true
	}
}

func (a *App) OneSecondUpdate() {
	a.lastUPS, a.lastFPS = a.updates, a.renders
	a.updates, a.renders = 0, 0
	a.logger.Debug("inspect report", "ups", a.lastUPS, "fps", a.lastFPS, "ticks", a.ticks)
	if a.stats != nil {
		if err := a.stats.RecordStats(a.lastUPS, a.lastFPS); err != nil {
			a.logger.Warn("could not record stats", "error", err)
		}
	}
}

func (a *App) Render() {
	a.renders++

	s := a.screen
	s.Clear()
	s.DrawTextColor(0, 0, fmt.Sprintf(" Input Inspector  tick %d  UPS %d  FPS %d", a.ticks, a.lastUPS, a.lastFPS), core.ColorWhite)
	s.DrawHLine(0, 1, s.Width(), '─', core.ColorGray)

	keys := make([]string, 0)
	for _, k := range a.input.PressedKeys() {
		keys = append(keys, string(k))
	}
	buttons := make([]string, 0)
	for _, b := range a.input.PressedButtons() {
		buttons = append(buttons, b.String())
	}
	cur := a.input.Cursor()

	rows := []struct {
		label string
		value string
	}{
		{"keys", strings.Join(keys, " ")},
		{"buttons", strings.Join(buttons, " ")},
		{"cursor", fmt.Sprintf("%.1f, %.1f", cur.X, cur.Y)},
		{"wheel", fmt.Sprintf("%+.2f (%s)", a.input.WheelDelta(), a.input.Policy())},
		{"scroll", fmt.Sprintf("%+.2f", a.scroll)},
	}
	for i, r := range rows {
		s.DrawTextColor(1, 2+i, fmt.Sprintf("%-8s", r.label), core.ColorCyan)
		s.DrawText(10, 2+i, r.value)
	}

	y := 3 + len(rows)
	s.DrawTextColor(1, y, "recent events", core.ColorYellow)
	for i, h := range a.history {
		s.DrawText(3, y+1+i, h)
	}

	// Cursor marker, pinned to the surface when the pointer is outside it.
	if cur != (core.Vec2{}) && s.Width() > 0 && s.Height() > 0 {
		cx := core.Clamp(int(cur.X), 0, s.Width()-1)
		cy := core.Clamp(int(cur.Y), 0, s.Height()-1)
		s.SetColor(cx, cy, '+', core.ColorMagenta)
	}
}

func (a *App) ShouldClose() bool {
	return a.shouldClose
}

// Scroll returns the wheel delta integrated over all ticks.
func (a *App) Scroll() float64 {
	return a.scroll
}

// History returns the descriptions of the most recent events, oldest first.
func (a *App) History() []string {
	return append([]string(nil), a.history...)
}

func describe(ev core.Event) string {
	switch e := ev.(type) {
	case core.KeyInput:
		return fmt.Sprintf("key %s %s", e.Key, e.State)
	case core.MouseInput:
		return fmt.Sprintf("mouse %s %s", e.Button, e.State)
	case core.CursorMoved:
		return fmt.Sprintf("cursor %.1f, %.1f", e.Position.X, e.Position.Y)
	case core.MouseWheel:
		return fmt.Sprintf("wheel %+.2f", e.Delta)
	case core.Resized:
		return fmt.Sprintf("resized %dx%d", e.Width, e.Height)
	case core.Focused:
		return fmt.Sprintf("focused %t", e.Focused)
	default:
		return ev.Kind().String()
	}
}
