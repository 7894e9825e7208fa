package tui

import (
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/steploop/internal/core"
)

// DefaultHoldTimeout is how long a key stays pressed after its last
// terminal report. Terminals never report releases, only autorepeat, so
// the timeout must outlast the usual initial repeat delay.
const DefaultHoldTimeout = 300 * time.Millisecond

// closeBinding requests a close regardless of what the application does with keys.
var closeBinding = key.NewBinding(
	key.WithKeys("ctrl+c"),
	key.WithHelp("ctrl+c", "quit"),
)

// EventMapper translates Bubble Tea messages into core events.
// It tracks held keys so it can synthesize the releases terminals omit.
type EventMapper struct {
	holdTimeout time.Duration
	held        map[core.Key]time.Time
	cursor      core.Vec2
	hasCursor   bool
}

// NewEventMapper creates a mapper. A non-positive timeout uses DefaultHoldTimeout.
func NewEventMapper(holdTimeout time.Duration) *EventMapper {
	if holdTimeout <= 0 {
		holdTimeout = DefaultHoldTimeout
	}
	return &EventMapper{
		holdTimeout: holdTimeout,
		held:        make(map[core.Key]time.Time),
	}
}

// MapKey translates a key message observed at now.
// A key that is already held only refreshes its timer.
func (m *EventMapper) MapKey(msg tea.KeyMsg, now time.Time) []core.Event {
	if key.Matches(msg, closeBinding) {
		return []core.Event{core.CloseRequested{}}
	}

	k, ok := keyFor(msg)
	if !ok {
		return nil
	}
	_, wasHeld := m.held[k]
	m.held[k] = now
	if wasHeld {
		return nil
	}
	return []core.Event{core.Press(k)}
}

// Expire releases every key whose last report is older than the hold timeout.
func (m *EventMapper) Expire(now time.Time) []core.Event {
	var expired []core.Key
	for k, seen := range m.held {
		if now.Sub(seen) >= m.holdTimeout {
			expired = append(expired, k)
		}
	}
	slices.Sort(expired)

	events := make([]core.Event, 0, len(expired))
	for _, k := range expired {
		delete(m.held, k)
		events = append(events, core.Release(k))
	}
	return events
}

// Held reports whether k is currently considered pressed.
func (m *EventMapper) Held(k core.Key) bool {
	_, ok := m.held[k]
	return ok
}

// MapMouse translates a mouse message. Every message carries a position,
// so a CursorMoved precedes the button or wheel event whenever the cell changes.
func (m *EventMapper) MapMouse(msg tea.MouseMsg) []core.Event {
	var events []core.Event

	pos := core.Vec2{X: float64(msg.X), Y: float64(msg.Y)}
	if !m.hasCursor || pos != m.cursor {
		m.cursor = pos
		m.hasCursor = true
		events = append(events, core.CursorMoved{Position: pos})
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return append(events, core.MouseWheel{Delta: 1})
	case tea.MouseButtonWheelDown:
		return append(events, core.MouseWheel{Delta: -1})
	}

	button, ok := mouseButtons[msg.Button]
	if !ok {
		return events
	}
	switch msg.Action {
	case tea.MouseActionPress:
		events = append(events, core.MouseInput{Button: button, State: core.Pressed})
	case tea.MouseActionRelease:
		events = append(events, core.MouseInput{Button: button, State: core.Released})
	}
	return events
}

// MapMessage translates any supported Bubble Tea message.
func (m *EventMapper) MapMessage(msg tea.Msg, now time.Time) []core.Event {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.MapKey(msg, now)
	case tea.MouseMsg:
		return m.MapMouse(msg)
	case tea.WindowSizeMsg:
		return []core.Event{core.Resized{Width: msg.Width, Height: msg.Height}}
	case tea.FocusMsg:
		return []core.Event{core.Focused{Focused: true}}
	case tea.BlurMsg:
		return []core.Event{core.Focused{Focused: false}}
	}
	return nil
}

var mouseButtons = map[tea.MouseButton]core.MouseButton{
	tea.MouseButtonLeft:     core.MouseLeft,
	tea.MouseButtonRight:    core.MouseRight,
	tea.MouseButtonMiddle:   core.MouseMiddle,
	tea.MouseButtonBackward: core.MouseBack,
	tea.MouseButtonForward:  core.MouseForward,
}

var namedKeys = map[tea.KeyType]core.Key{
	tea.KeyUp:        core.KeyUp,
	tea.KeyDown:      core.KeyDown,
	tea.KeyLeft:      core.KeyLeft,
	tea.KeyRight:     core.KeyRight,
	tea.KeySpace:     core.KeySpace,
	tea.KeyEnter:     core.KeyEnter,
	tea.KeyEscape:    core.KeyEscape,
	tea.KeyTab:       core.KeyTab,
	tea.KeyBackspace: core.KeyBackspace,
}

// keyFor names the physical key behind msg. Letters are folded to lower case
// since a terminal cannot report shift as a separate key.
func keyFor(msg tea.KeyMsg) (core.Key, bool) {
	if k, ok := namedKeys[msg.Type]; ok {
		return k, true
	}
	if msg.Type != tea.KeyRunes || msg.Alt || msg.Paste || len(msg.Runes) != 1 {
		return "", false
	}
	s := string(msg.Runes)
	if s == " " {
		return core.KeySpace, true
	}
	return core.Key(strings.ToLower(s)), true
}
