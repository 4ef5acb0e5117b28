package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/arcade-features/internal/achievements"
)

// AchievementRow is one line of the achievements screen.
type AchievementRow struct {
	Name        string
	Description string
	Progress    float64
	Target      float64
	State       achievements.State
}

// AchievementRows joins the catalog with a tracker's progress, in catalog order.
// Target is the largest requirement threshold.
func AchievementRows(t *achievements.Tracker) []AchievementRow {
	rows := make([]AchievementRow, 0, t.Catalog().Len())
	for _, def := range t.Catalog().List() {
		p, _ := t.Progress(def.ID)
		var target float64
		for _, v := range def.Requirements {
			target = max(target, v)
		}
		rows = append(rows, AchievementRow{
			Name:        def.Name,
			Description: def.Description,
			Progress:    p.Progress,
			Target:      target,
			State:       t.State(def.ID),
		})
	}
	return rows
}

// FormatAchievements renders rows as plain text, one achievement per line.
func FormatAchievements(rows []AchievementRow) string {
	var sb strings.Builder
	for _, r := range rows {
		mark := " "
		if r.State == achievements.Completed {
			mark = "x"
		}
		fmt.Fprintf(&sb, "[%s] %-16s %5s  %s\n", mark, r.Name, progressText(r), r.Description)
	}
	return sb.String()
}

func progressText(r AchievementRow) string {
	return fmt.Sprintf("%g/%g", min(r.Progress, r.Target), r.Target)
}

// AchievementsModel is the Bubble Tea model for the achievements screen.
type AchievementsModel struct {
	rows      []AchievementRow
	player    string
	table     table.Model
	help      help.Model
	keys      backKeyMap
	width     int
	height    int
	quitting  bool
	goingBack bool
}

// NewAchievementsModel creates the screen for one player's progress.
func NewAchievementsModel(t *achievements.Tracker, player string, width, height int) AchievementsModel {
	m := AchievementsModel{
		rows:   AchievementRows(t),
		player: player,
		help:   help.New(),
		keys:   defaultBackKeyMap(),
		width:  width,
		height: height,
	}
	m.table = m.createTable()
	return m
}

// createTable creates the table sized to the window.
func (m *AchievementsModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Achievement", Width: 18},
		{Title: "Progress", Width: 10},
		{Title: "State", Width: 12},
		{Title: "Description", Width: 24},
	}
	if extra := m.width - 4 - 18 - 10 - 12 - 24 - 8; extra > 0 {
		columns[3].Width += min(extra, 20)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(3, m.height-8)), // Leave room for header, help, and margins
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

	rows := make([]table.Row, len(m.rows))
	for i, r := range m.rows {
		rows[i] = table.Row{r.Name, progressText(r), r.State.String(), r.Description}
	}
	t.SetRows(rows)
	return t
}

// Init initializes the achievements model.
func (m AchievementsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the achievements screen.
func (m AchievementsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.help.Width = msg.Width
		return m, nil
	}

	// Pass other messages to table for scrolling
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the achievements screen.
func (m AchievementsModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder
	done := 0
	for _, r := range m.rows {
		if r.State == achievements.Completed {
			done++
		}
	}
	title := fmt.Sprintf("ACHIEVEMENTS - %s (%d/%d)", m.player, done, len(m.rows))
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render(title), m.width))
	b.WriteString("\n\n")

	for _, line := range strings.Split(boxStyle.Render(m.table.View()), "\n") {
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// IsGoingBack returns true if user wants to go back to menu.
func (m AchievementsModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m AchievementsModel) IsQuitting() bool {
	return m.quitting
}
