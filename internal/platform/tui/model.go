package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/steploop/internal/core"
	"github.com/vovakirdan/steploop/internal/driver"
	"github.com/vovakirdan/steploop/internal/platform"
	"github.com/vovakirdan/steploop/internal/storage"
)

// Model is the Bubble Tea model hosting one driven application.
// The first WindowSizeMsg activates the driver; every WakeMsg services it.
type Model struct {
	host       *platform.Host
	mapper     *EventMapper
	clock      core.Clock
	shotDir    string
	initWidth  int
	initHeight int
	err        error
	quitting   bool
}

// ModelOption customizes a Model.
type ModelOption func(*Model)

// WithInitialSize activates the driver from Init instead of waiting for
// the terminal to report its size. Used when the size is already known.
func WithInitialSize(width, height int) ModelOption {
	return func(m *Model) {
		m.initWidth = width
		m.initHeight = height
	}
}

// WithClock sets the clock used for wake and hold timing.
// It should be the same clock the host's driver uses.
func WithClock(c core.Clock) ModelOption {
	return func(m *Model) {
		m.clock = c
	}
}

// WithHoldTimeout overrides DefaultHoldTimeout.
func WithHoldTimeout(d time.Duration) ModelOption {
	return func(m *Model) {
		m.mapper = NewEventMapper(d)
	}
}

// WithScreenshotDir sets where ctrl+s snapshots are written. Empty disables them.
func WithScreenshotDir(dir string) ModelOption {
	return func(m *Model) {
		m.shotDir = dir
	}
}

// NewModel creates a model for an inactive host.
func NewModel(host *platform.Host, opts ...ModelOption) Model {
	m := Model{
		host:   host,
		mapper: NewEventMapper(0),
		clock:  core.SystemClock,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init starts activation when the size is known up front.
func (m Model) Init() tea.Cmd {
	if m.initWidth > 0 && m.initHeight > 0 {
		size := tea.WindowSizeMsg{Width: m.initWidth, Height: m.initHeight}
		return func() tea.Msg { return size }
	}
	return nil
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+s" {
			m.saveScreenshot()
			return m, nil
		}

	case WakeMsg:
		return m.handleWake()
	}

	for _, ev := range m.mapper.MapMessage(msg, m.clock.Now()) {
		m.host.Driver().OnInput(ev)
	}
	return m, nil
}

// handleResize activates the driver on the first size report and forwards later ones.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	if m.host.Driver().State() != driver.StateUninitialized {
		m.host.Resize(msg.Width, msg.Height)
		return m, nil
	}

	if err := m.host.Activate(msg.Width, msg.Height); err != nil {
		m.err = err
		m.quitting = true
		return m, tea.Quit
	}
	return m, wakeCmd(0)
}

// handleWake releases expired keys and runs one driver wake.
func (m Model) handleWake() (tea.Model, tea.Cmd) {
	now := m.clock.Now()
	for _, ev := range m.mapper.Expire(now) {
		m.host.Driver().OnInput(ev)
	}

	result := m.host.Driver().OnWake(now)
	if result.Terminated {
		m.quitting = true
		return m, tea.Quit
	}
	if m.host.TakeWake() {
		return m, wakeCmd(m.host.WakeHint())
	}
	return m, nil
}

// saveScreenshot writes the current surface as plain text.
func (m Model) saveScreenshot() {
	if m.shotDir == "" || m.host.Driver().State() != driver.StateActive {
		return
	}
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(m.shotDir, 0o755)

	timestamp := m.clock.Now().Format("20060102_150405")
	path := filepath.Join(m.shotDir, fmt.Sprintf("screen_%s.txt", timestamp))
	//nolint:errcheck // Best-effort save, the run continues regardless
	os.WriteFile(path, []byte(m.host.Screen().String()), 0o600)
}

// View renders the surface as the application last drew it.
func (m Model) View() string {
	if m.quitting || m.host.Driver().State() != driver.StateActive {
		return ""
	}
	return RenderScreen(m.host.Screen())
}

// Err returns the activation error, if any.
func (m Model) Err() error {
	return m.err
}

// Host returns the hosted driver bundle.
func (m Model) Host() *platform.Host {
	return m.host
}

// endReason classifies how a hosted run stopped.
func endReason(host *platform.Host, err error) string {
	switch {
	case err != nil:
		return storage.EndError
	case host.Driver().State() == driver.StateTerminated:
		return storage.EndClosed
	default:
		return storage.EndAbort
	}
}

// Run hosts the application in the local terminal until it closes.
func Run(opts platform.Options, modelOpts ...ModelOption) error {
	host, err := platform.NewHost(opts)
	if err != nil {
		return err
	}
	if opts.Clock != nil {
		modelOpts = append(modelOpts, WithClock(opts.Clock))
	}
	model := NewModel(host, modelOpts...)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	)

	final, err := p.Run()
	if err == nil {
		if fm, ok := final.(Model); ok {
			err = fm.Err()
		}
	}

	if finishErr := host.Finish(endReason(host, err)); finishErr != nil && err == nil {
		err = finishErr
	}
	return err
}
