//go:build cgo

package desktop

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/vovakirdan/steploop/internal/core"
	"github.com/vovakirdan/steploop/internal/driver"
	"github.com/vovakirdan/steploop/internal/platform"
	"github.com/vovakirdan/steploop/internal/storage"
)

// Available reports whether this build can open a window.
const Available = true

// Run opens a window and hosts the application until it closes.
// It blocks until the window is gone.
func Run(opts platform.Options) error {
	host, err := platform.NewHost(opts)
	if err != nil {
		return err
	}
	clock := opts.Clock
	if clock == nil {
		clock = core.SystemClock
	}

	g := &hostGame{host: host, clock: clock}

	win := opts.Config.Window
	ebiten.SetWindowTitle(win.Title)
	ebiten.SetWindowSize(win.Width, win.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	// Every frame is a wake; the driver decides how many ticks it covers.
	ebiten.SetTPS(ebiten.SyncWithFPS)

	err = ebiten.RunGame(g)
	if err == nil {
		err = g.err
	}

	reason := storage.EndAbort
	switch {
	case err != nil:
		reason = storage.EndError
	case host.Driver().State() == driver.StateTerminated:
		reason = storage.EndClosed
	}
	if finishErr := host.Finish(reason); finishErr != nil && err == nil {
		err = finishErr
	}
	return err
}

// hostGame adapts the host to ebiten.Game.
type hostGame struct {
	host  *platform.Host
	clock core.Clock
	err   error

	width, height int // Outside size in pixels, from Layout
	cursor        core.Vec2
	hasCursor     bool
	focused       bool
	closeSent     bool

	layer *ebiten.Image
}

func (g *hostGame) Update() error {
	d := g.host.Driver()

	if d.State() == driver.StateUninitialized {
		if g.width == 0 || g.height == 0 {
			return nil // Layout has not run yet
		}
		cols, rows := GridSize(g.width, g.height)
		if err := g.host.Activate(cols, rows); err != nil {
			g.err = err
			return ebiten.Termination
		}
		g.focused = ebiten.IsFocused()
	} else {
		g.host.Resize(GridSize(g.width, g.height))
	}

	for _, ev := range g.poll() {
		d.OnInput(ev)
	}

	result := d.OnWake(g.clock.Now())
	if result.Terminated {
		return ebiten.Termination
	}
	g.host.TakeWake()
	return nil
}

// poll collects the input that changed since the previous frame.
func (g *hostGame) poll() []core.Event {
	var events []core.Event

	if ebiten.IsWindowBeingClosed() && !g.closeSent {
		g.closeSent = true
		events = append(events, core.CloseRequested{})
	}

	if focused := ebiten.IsFocused(); focused != g.focused {
		g.focused = focused
		events = append(events, core.Focused{Focused: focused})
	}

	for _, k := range inpututil.AppendJustPressedKeys(nil) {
		if key, ok := keyFor(k); ok {
			events = append(events, core.Press(key))
		}
	}
	for _, k := range inpututil.AppendJustReleasedKeys(nil) {
		if key, ok := keyFor(k); ok {
			events = append(events, core.Release(key))
		}
	}

	x, y := ebiten.CursorPosition()
	if pos := CellPosition(x, y); !g.hasCursor || pos != g.cursor {
		g.cursor = pos
		g.hasCursor = true
		events = append(events, core.CursorMoved{Position: pos})
	}

	for eb, button := range mouseButtons {
		if inpututil.IsMouseButtonJustPressed(eb) {
			events = append(events, core.MouseInput{Button: button, State: core.Pressed})
		}
		if inpututil.IsMouseButtonJustReleased(eb) {
			events = append(events, core.MouseInput{Button: button, State: core.Released})
		}
	}

	if _, dy := ebiten.Wheel(); dy != 0 {
		events = append(events, core.MouseWheel{Delta: dy})
	}

	return events
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	s := g.host.Screen()
	if g.host.Driver().State() != driver.StateActive {
		return
	}

	w, h := s.Width()*CellWidth, s.Height()*CellHeight
	if w == 0 || h == 0 {
		return
	}
	if g.layer == nil || g.layer.Bounds().Dx() != w || g.layer.Bounds().Dy() != h {
		if g.layer != nil {
			g.layer.Deallocate()
		}
		g.layer = ebiten.NewImage(w, h)
	}

	screen.Fill(color.Black)
	for c := core.ColorDefault; c <= core.ColorGray; c++ {
		text, ok := layerText(s, c)
		if !ok {
			continue
		}
		g.layer.Clear()
		ebitenutil.DebugPrintAt(g.layer, text, 0, 0)

		op := &ebiten.DrawImageOptions{}
		op.ColorScale.ScaleWithColor(RGBA(c))
		screen.DrawImage(g.layer, op)
	}
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
