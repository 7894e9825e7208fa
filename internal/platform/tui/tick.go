// Package tui runs the scheduling driver inside a Bubble Tea program.
// Terminal messages become core events, and each driver wake request is
// answered with a WakeMsg delivered after the configured hint.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// WakeMsg asks the model to service the driver.
type WakeMsg time.Time

// wakeCmd schedules the next WakeMsg. A zero hint wakes on the next loop turn.
func wakeCmd(hint time.Duration) tea.Cmd {
	if hint <= 0 {
		return func() tea.Msg {
			return WakeMsg(time.Now())
		}
	}
	return tea.Tick(hint, func(t time.Time) tea.Msg {
		return WakeMsg(t)
	})
}
