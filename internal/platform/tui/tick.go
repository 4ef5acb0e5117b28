// Package tui provides the Bubble Tea integration for the feature scenes.
// It handles the terminal UI loop, input mapping, the menu and the
// leaderboard and achievement screens.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/arcade-features/internal/core"
)

// TickMsg drives one scene step.
type TickMsg time.Time

// tickCmd schedules the next step one frame from now.
func tickCmd(cfg core.RuntimeConfig) tea.Cmd {
	return tea.Tick(cfg.Frame(), func(t time.Time) tea.Msg { return TickMsg(t) })
}
