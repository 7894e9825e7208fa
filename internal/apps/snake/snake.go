// Package snake is the original prototype body driven by the scheduler:
// it counts updates and renders, reports UPS/FPS once per second, and steers
// a snake across the surface from the polled input snapshot.
package snake

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/steploop/internal/core"
	"github.com/vovakirdan/steploop/internal/driver"
	"github.com/vovakirdan/steploop/internal/registry"
)

// ID is the registry identifier of this application.
const ID = "snake"

// Direction represents the snake's movement direction.
type Direction int

const (
	DirRight Direction = iota
	DirDown
	DirLeft
	DirUp
)

// delta returns the cell offset of one move in direction d.
func (d Direction) delta() core.Point {
	switch d {
	case DirDown:
		return core.Point{Y: 1}
	case DirLeft:
		return core.Point{X: -1}
	case DirUp:
		return core.Point{Y: -1}
	default:
		return core.Point{X: 1}
	}
}

// opposite reports whether d and o point in opposite directions.
func (d Direction) opposite(o Direction) bool {
	return (d+2)%4 == o
}

// Moves per second of simulated time, independent of the update rate.
const movesPerSecond = 8

// hudHeight is the number of rows above the playfield border.
const hudHeight = 1

// App implements driver.Application.
type App struct {
	screen *core.Screen
	input  *core.InputTracker
	rng    *rand.Rand
	stats  registry.StatsSink
	logger *log.Logger
	title  string

	// Cadence counters, reset by every one-second report
	updateCount int
	renderCount int
	lastUPS     int
	lastFPS     int
	reports     int

	// Snake state
	snake          []core.Point // Head at index 0, playfield coordinates
	direction      Direction
	nextDir        Direction
	growing        int
	food           core.Point
	score          int
	moveEveryTicks int
	moveTicker     int
	ticks          uint64

	shouldClose bool
}

func init() {
	registry.Register(ID, "Snake", func(surface *core.Screen, opts registry.Options) (driver.Application, error) {
		return New(surface, opts), nil
	})
}

// New creates the application for surface.
func New(surface *core.Screen, opts registry.Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	rate := opts.UpdateRate
	if rate <= 0 {
		rate = driver.DefaultUpdateRate
	}
	title := opts.Title
	if title == "" {
		title = "Snake"
	}

	a := &App{
		screen:         surface,
		input:          core.NewInputTracker(opts.ScrollReset),
		rng:            rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x5eed)),
		stats:          opts.Stats,
		logger:         logger,
		title:          title,
		moveEveryTicks: max(1, rate/movesPerSecond),
	}
	a.resetSnake()
	return a
}

// ProcessInput feeds the tracker; only window close is handled directly.
func (a *App) ProcessInput(ev core.Event) {
	switch ev.Kind() {
	case core.EventCloseRequested:
		a.shouldClose = true
	case core.EventResized:
		// The adapter already resized the surface; keep food reachable
		w, h := a.fieldSize()
		if !core.NewRect(0, 0, w, h).Contains(a.food.X, a.food.Y) {
			a.spawnFood()
		}
	}
	a.input.Ingest(ev)
}

// Update advances one tick: poll input, then move every moveEveryTicks ticks.
func (a *App) Update() {
	a.updateCount++
	a.ticks++
	defer a.input.EndTick()

	if a.input.KeyPressed(core.KeyEscape) || a.input.KeyPressed("q") {
		a.shouldClose = true
		return
	}

	a.steer()

	a.moveTicker++
	if a.moveTicker < a.moveEveryTicks {
		return
	}
	a.moveTicker = 0
	a.move()
}

// steer buffers the requested direction, ignoring reversals.
func (a *App) steer() {
	want := a.nextDir
	switch {
	case a.input.KeyPressed(core.KeyUp) || a.input.KeyPressed("w"):
		want = DirUp
	case a.input.KeyPressed(core.KeyDown) || a.input.KeyPressed("s"):
		want = DirDown
	case a.input.KeyPressed(core.KeyLeft) || a.input.KeyPressed("a"):
		want = DirLeft
	case a.input.KeyPressed(core.KeyRight) || a.input.KeyPressed("d"):
		want = DirRight
	}
	if !want.opposite(a.direction) {
		a.nextDir = want
	}
}

func (a *App) move() {
	w, h := a.fieldSize()
	if w <= 0 || h <= 0 {
		return
	}

	a.direction = a.nextDir
	head := a.snake[0].Add(a.direction.delta()).Wrap(w, h)

	// Running into yourself starts over
	if a.isSnakeAt(head) {
		a.logger.Debug("snake collided", "score", a.score)
		a.resetSnake()
		return
	}

	a.snake = append([]core.Point{head}, a.snake...)
	if a.growing > 0 {
		a.growing--
	} else {
		a.snake = a.snake[:len(a.snake)-1]
	}

	if head == a.food {
		a.score++
		a.growing += 2
		a.spawnFood()
	}
}

// OneSecondUpdate publishes and resets the cadence counters.
func (a *App) OneSecondUpdate() {
	a.lastUPS = a.updateCount
	a.lastFPS = a.renderCount
	a.updateCount = 0
	a.renderCount = 0
	a.reports++

	a.logger.Info("one second update", "ups", a.lastUPS, "fps", a.lastFPS, "score", a.score)
	if a.stats != nil {
		if err := a.stats.RecordStats(a.lastUPS, a.lastFPS); err != nil {
			a.logger.Warn("could not record stats", "error", err)
		}
	}
}

// Render draws the HUD, the border, the food and the snake.
func (a *App) Render() {
	a.renderCount++

	s := a.screen
	s.Clear()
	hud := fmt.Sprintf(" %s  UPS: %d  FPS: %d  Score: %d", a.title, a.lastUPS, a.lastFPS, a.score)
	s.DrawTextColor(0, 0, hud, core.ColorWhite)

	if s.Height() <= hudHeight+2 || s.Width() < 3 {
		return
	}
	s.DrawBox(core.NewRect(0, hudHeight, s.Width(), s.Height()-hudHeight), core.ColorGray)

	ox, oy := 1, hudHeight+1
	if a.food.X >= 0 {
		s.SetColor(ox+a.food.X, oy+a.food.Y, '●', core.ColorRed)
	}
	for i, seg := range a.snake {
		r := 'o'
		if i == 0 {
			r = '@'
		}
		s.SetColor(ox+seg.X, oy+seg.Y, r, core.ColorGreen)
	}
}

// ShouldClose reports whether the window was closed or quit was held.
func (a *App) ShouldClose() bool {
	return a.shouldClose
}

// Stats returns the most recent one-second report.
func (a *App) Stats() (ups, fps int) {
	return a.lastUPS, a.lastFPS
}

// Score returns the number of food items eaten.
func (a *App) Score() int {
	return a.score
}

// Head returns the snake head position in playfield coordinates.
func (a *App) Head() core.Point {
	return a.snake[0]
}

// Len returns the number of snake segments.
func (a *App) Len() int {
	return len(a.snake)
}

// fieldSize returns the playfield inside the border.
func (a *App) fieldSize() (int, int) {
	return a.screen.Width() - 2, a.screen.Height() - hudHeight - 2
}

// resetSnake places a three-segment snake heading right near the field's center.
func (a *App) resetSnake() {
	w, h := a.fieldSize()
	x, y := max(w/4, 2), max(h/2, 0)

	a.snake = []core.Point{
		{X: x, Y: y}, // Head
		{X: x - 1, Y: y},
		{X: x - 2, Y: y},
	}
	a.direction = DirRight
	a.nextDir = DirRight
	a.growing = 0
	a.score = 0
	a.moveTicker = 0
	a.spawnFood()
}

// spawnFood places food at a random empty cell.
func (a *App) spawnFood() {
	w, h := a.fieldSize()

	var empty []core.Point
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := core.Point{X: x, Y: y}
			if !a.isSnakeAt(p) {
				empty = append(empty, p)
			}
		}
	}

	if len(empty) == 0 {
		a.food = core.Point{X: -1, Y: -1}
		return
	}
	a.food = empty[a.rng.IntN(len(empty))]
}

// isSnakeAt checks if the snake occupies the given point.
func (a *App) isSnakeAt(p core.Point) bool {
	for _, seg := range a.snake {
		if seg == p {
			return true
		}
	}
	return false
}
