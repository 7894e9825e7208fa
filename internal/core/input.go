package core

import (
	"fmt"
	"sort"
)

// ScrollReset decides how long a wheel delta stays visible to update code.
type ScrollReset int

const (
	// ScrollPersist keeps the last delta until the next wheel event.
	ScrollPersist ScrollReset = iota
	// ScrollResetPerTick zeroes the delta once an update tick has consumed it.
	ScrollResetPerTick
)

// String returns the config spelling of the policy.
func (p ScrollReset) String() string {
	switch p {
	case ScrollPersist:
		return "persist"
	case ScrollResetPerTick:
		return "per_tick"
	default:
		return "unknown"
	}
}

// ParseScrollReset parses the config spelling of a policy.
func ParseScrollReset(s string) (ScrollReset, error) {
	switch s {
	case "", "persist":
		return ScrollPersist, nil
	case "per_tick":
		return ScrollResetPerTick, nil
	default:
		return ScrollPersist, fmt.Errorf("core: unknown scroll reset policy %q", s)
	}
}

// InputTracker is a flat last-value cache of input state.
// Simulation code polls it once per update tick instead of consuming an
// event backlog, so intra-tick ordering is lost but "is this key held" is
// always answerable.
type InputTracker struct {
	keys    map[Key]ButtonState
	buttons map[MouseButton]ButtonState
	cursor  Vec2
	wheel   float64
	policy  ScrollReset
}

// NewInputTracker creates an empty tracker with the given scroll policy.
func NewInputTracker(policy ScrollReset) *InputTracker {
	return &InputTracker{
		keys:    make(map[Key]ButtonState),
		buttons: make(map[MouseButton]ButtonState),
		policy:  policy,
	}
}

// Ingest folds one event into the snapshot. Unrecognized kinds are ignored.
func (t *InputTracker) Ingest(ev Event) {
	switch e := ev.(type) {
	case KeyInput:
		if t.keys == nil {
			t.keys = make(map[Key]ButtonState)
		}
		t.keys[e.Key] = e.State
	case MouseInput:
		if t.buttons == nil {
			t.buttons = make(map[MouseButton]ButtonState)
		}
		t.buttons[e.Button] = e.State
	case CursorMoved:
		t.cursor = e.Position
	case MouseWheel:
		t.wheel = e.Delta
	}
}

// EndTick marks the current update tick as consumed.
// Under ScrollResetPerTick it clears the wheel delta; otherwise it does nothing.
func (t *InputTracker) EndTick() {
	if t.policy == ScrollResetPerTick {
		t.wheel = 0
	}
}

// Key returns the last observed state of k, or Released if never seen.
func (t *InputTracker) Key(k Key) ButtonState {
	return t.keys[k]
}

// KeyPressed reports whether k is currently held.
func (t *InputTracker) KeyPressed(k Key) bool {
	return t.keys[k] == Pressed
}

// MouseButton returns the last observed state of b, or Released if never seen.
func (t *InputTracker) MouseButton(b MouseButton) ButtonState {
	return t.buttons[b]
}

// ButtonPressed reports whether b is currently held.
func (t *InputTracker) ButtonPressed(b MouseButton) bool {
	return t.buttons[b] == Pressed
}

// Cursor returns the last pointer position, (0, 0) before any movement.
func (t *InputTracker) Cursor() Vec2 {
	return t.cursor
}

// WheelDelta returns the last scroll delta.
func (t *InputTracker) WheelDelta() float64 {
	return t.wheel
}

// Policy returns the tracker's scroll reset policy.
func (t *InputTracker) Policy() ScrollReset {
	return t.policy
}

// PressedKeys returns the currently held keys in sorted order.
func (t *InputTracker) PressedKeys() []Key {
	var keys []Key
	for k, s := range t.keys {
		if s == Pressed {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// PressedButtons returns the currently held mouse buttons in ascending order.
func (t *InputTracker) PressedButtons() []MouseButton {
	var buttons []MouseButton
	for b, s := range t.buttons {
		if s == Pressed {
			buttons = append(buttons, b)
		}
	}
	sort.Slice(buttons, func(i, j int) bool { return buttons[i] < buttons[j] })
	return buttons
}
