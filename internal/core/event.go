package core

import "fmt"

// EventKind identifies the interpreted event variants.
// Platform adapters translate their native events into these; anything the
// core does not understand is forwarded as EventOther.
type EventKind int

const (
	EventOther EventKind = iota
	EventCloseRequested
	EventRedrawRequested
	EventKey
	EventMouseButton
	EventCursorMoved
	EventMouseWheel
	EventResized
	EventFocused
)

// String returns a human-readable name for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventOther:
		return "Other"
	case EventCloseRequested:
		return "CloseRequested"
	case EventRedrawRequested:
		return "RedrawRequested"
	case EventKey:
		return "Key"
	case EventMouseButton:
		return "MouseButton"
	case EventCursorMoved:
		return "CursorMoved"
	case EventMouseWheel:
		return "MouseWheel"
	case EventResized:
		return "Resized"
	case EventFocused:
		return "Focused"
	default:
		return "Unknown"
	}
}

// Event is a platform event delivered to the driver.
// Adapters may define their own types; the core only interprets the kinds above.
type Event interface {
	Kind() EventKind
}

// ButtonState is the binary state of a key or mouse button.
// The zero value is Released, which is what unobserved sources report.
type ButtonState uint8

const (
	Released ButtonState = iota
	Pressed
)

// String returns "Pressed" or "Released".
func (s ButtonState) String() string {
	if s == Pressed {
		return "Pressed"
	}
	return "Released"
}

// Key is a platform-independent key code.
// Printable keys use their lowercase character ("a", "7", "/").
type Key string

// Named keys. Adapters normalize their native codes to these.
const (
	KeyUp        Key = "up"
	KeyDown      Key = "down"
	KeyLeft      Key = "left"
	KeyRight     Key = "right"
	KeySpace     Key = "space"
	KeyEnter     Key = "enter"
	KeyEscape    Key = "esc"
	KeyTab       Key = "tab"
	KeyBackspace Key = "backspace"
)

// MouseButton is a platform-independent mouse button identifier.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
	MouseBack
	MouseForward
)

// String returns a human-readable name for the button.
func (b MouseButton) String() string {
	switch b {
	case MouseLeft:
		return "Left"
	case MouseRight:
		return "Right"
	case MouseMiddle:
		return "Middle"
	case MouseBack:
		return "Back"
	case MouseForward:
		return "Forward"
	default:
		return fmt.Sprintf("Button%d", int(b))
	}
}

// CloseRequested is sent when the user asks the window to close.
type CloseRequested struct{}

// RedrawRequested is sent when the platform wants a fresh frame.
type RedrawRequested struct{}

// KeyInput is a key press or release.
type KeyInput struct {
	Key   Key
	State ButtonState
}

// MouseInput is a mouse button press or release.
type MouseInput struct {
	Button MouseButton
	State  ButtonState
}

// CursorMoved carries the new pointer position.
type CursorMoved struct {
	Position Vec2
}

// MouseWheel carries a signed vertical scroll delta in lines.
type MouseWheel struct {
	Delta float64
}

// Resized is sent when the surface changes size.
type Resized struct {
	Width, Height int
}

// Focused is sent when the window gains or loses focus.
type Focused struct {
	Focused bool
}

func (CloseRequested) Kind() EventKind  { return EventCloseRequested }
func (RedrawRequested) Kind() EventKind { return EventRedrawRequested }
func (KeyInput) Kind() EventKind        { return EventKey }
func (MouseInput) Kind() EventKind      { return EventMouseButton }
func (CursorMoved) Kind() EventKind     { return EventCursorMoved }
func (MouseWheel) Kind() EventKind      { return EventMouseWheel }
func (Resized) Kind() EventKind         { return EventResized }
func (Focused) Kind() EventKind         { return EventFocused }

// Press is shorthand for a key press event.
func Press(k Key) KeyInput {
	return KeyInput{Key: k, State: Pressed}
}

// Release is shorthand for a key release event.
func Release(k Key) KeyInput {
	return KeyInput{Key: k, State: Released}
}
