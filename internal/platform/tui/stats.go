package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/steploop/internal/registry"
	"github.com/vovakirdan/steploop/internal/storage"
)

const maxRuns = 100 // Runs loaded per application

// StatsKeyMap defines the key bindings for the stats browser.
type StatsKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextApp key.Binding
	PrevApp key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k StatsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextApp, k.PrevApp, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k StatsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.NextApp, k.PrevApp, k.Quit},
	}
}

// DefaultStatsKeyMap returns default key bindings.
func DefaultStatsKeyMap() StatsKeyMap {
	return StatsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextApp: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next app"),
		),
		PrevApp: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev app"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// StatsModel browses recorded runs per application.
type StatsModel struct {
	apps      []registry.AppInfo
	appCursor int
	store     *storage.Store
	runs      []storage.Run
	loadErr   error
	table     table.Model
	help      help.Model
	keys      StatsKeyMap
	width     int
	height    int
	quitting  bool
}

// NewStatsModel creates a browser over store.
func NewStatsModel(store *storage.Store, width, height int) StatsModel {
	m := StatsModel{
		apps:   registry.List(),
		store:  store,
		keys:   DefaultStatsKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.table = m.createTable()
	if len(m.apps) > 0 {
		m.loadRuns(m.apps[0].ID)
	}
	return m
}

// createTable creates a new table sized to the window.
func (m *StatsModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Run", Width: 6},
		{Title: "Platform", Width: 9},
		{Title: "Started", Width: 14},
		{Title: "Length", Width: 9},
		{Title: "UPS", Width: 7},
		{Title: "FPS", Width: 7},
		{Title: "End", Width: 7},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadRuns loads recent runs for the given application.
func (m *StatsModel) loadRuns(appID string) {
	m.runs, m.loadErr = nil, nil
	if m.store != nil {
		m.runs, m.loadErr = m.store.RecentRuns(appID, maxRuns)
	}
	m.table.SetRows(RunRows(m.runs))
	m.table.GotoTop()
}

// RunRows formats runs for display, one row per run.
func RunRows(runs []storage.Run) []table.Row {
	rows := make([]table.Row, len(runs))
	for i, r := range runs {
		length := "running"
		end := "-"
		if !r.EndedAt.IsZero() {
			length = r.EndedAt.Sub(r.StartedAt).Round(time.Second).String()
			end = r.EndReason
		}
		rows[i] = table.Row{
			fmt.Sprintf("#%d", r.ID),
			r.Platform,
			r.StartedAt.Local().Format("Jan 02 15:04"),
			length,
			fmt.Sprintf("%.1f", r.AvgUPS),
			fmt.Sprintf("%.1f", r.AvgFPS),
			end,
		}
	}
	return rows
}

// Init initializes the stats model.
func (m StatsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the stats browser.
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextApp):
			if len(m.apps) > 0 {
				m.appCursor = (m.appCursor + 1) % len(m.apps)
				m.loadRuns(m.apps[m.appCursor].ID)
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevApp):
			if len(m.apps) > 0 {
				m.appCursor = (m.appCursor - 1 + len(m.apps)) % len(m.apps)
				m.loadRuns(m.apps[m.appCursor].ID)
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.table.SetRows(RunRows(m.runs))
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the stats browser.
func (m StatsModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))

	title := "RUNS"
	if len(m.apps) > 0 {
		title = fmt.Sprintf("RUNS - %s", m.apps[m.appCursor].Title)
	}
	b.WriteString(centerText(titleStyle.Render(title), m.width))
	b.WriteString("\n\n")

	b.WriteString(centerText(m.renderTabs(), m.width))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(tableStyle.Render(m.renderTableContent()))

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderTabs renders one tab per application.
func (m StatsModel) renderTabs() string {
	tabStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	activeTabStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)

	tabs := make([]string, len(m.apps))
	for i, a := range m.apps {
		if i == m.appCursor {
			tabs[i] = activeTabStyle.Render(a.Title)
		} else {
			tabs[i] = tabStyle.Render(" " + a.Title + " ")
		}
	}
	line := strings.Join(tabs, " ")
	if lipgloss.Width(line) > m.width-4 && len(m.apps) > 0 {
		line = fmt.Sprintf("< %s >", m.apps[m.appCursor].Title)
	}
	return line
}

// renderTableContent renders the table or an explanation of why it is empty.
func (m StatsModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	switch {
	case m.loadErr != nil:
		return emptyStyle.Render("Could not load runs:\n" + m.loadErr.Error())
	case len(m.runs) == 0:
		return emptyStyle.Render("No runs recorded yet.\nStart an application to record one.")
	}
	return m.table.View()
}

// Runs returns the runs of the selected application.
func (m StatsModel) Runs() []storage.Run {
	return m.runs
}

// RunStats runs the stats browser in the local terminal.
func RunStats(store *storage.Store, width, height int) error {
	p := tea.NewProgram(NewStatsModel(store, width, height), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
