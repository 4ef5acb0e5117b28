package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/arcade-features/internal/core"
	"github.com/vovakirdan/arcade-features/internal/registry"
)

// ItemKind tells the session what a menu entry opens.
type ItemKind int

const (
	ItemScene ItemKind = iota
	ItemLeaderboard
	ItemAchievements
)

// MenuItem is one selectable entry. Hint is shown under the list while
// the item has focus.
type MenuItem struct {
	ID    string
	Title string
	Kind  ItemKind
	Hint  string
}

// MenuModel lists scenes first, then the record screens.
type MenuModel struct {
	items    []MenuItem
	cursor   int
	width    int
	height   int
	config   core.RuntimeConfig
	quitting bool
	selected *MenuItem
}

// NewMenuModel lists every registered scene followed by the leaderboard
// and achievement screens.
func NewMenuModel(cfg core.RuntimeConfig) MenuModel {
	scenes := registry.List()
	items := make([]MenuItem, 0, len(scenes)+2)
	for _, s := range scenes {
		items = append(items, MenuItem{ID: s.ID, Title: s.Title, Kind: ItemScene, Hint: "arcade play " + s.ID})
	}
	items = append(items,
		MenuItem{ID: "leaderboard", Title: "Leaderboard", Kind: ItemLeaderboard, Hint: "Fastest wave clears"},
		MenuItem{ID: "achievements", Title: "Achievements", Kind: ItemAchievements, Hint: "Progress for " + cfg.Player},
	)

	return MenuModel{
		items:  items,
		width:  cfg.ScreenW,
		height: cfg.ScreenH,
		config: cfg,
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles key presses and keeps the runtime config in step with the
// window size.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.config.ScreenW, m.config.ScreenH = msg.Width, msg.Height
	}
	return m, nil
}

// handleKey moves the cursor (wrapping at both ends) or selects.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.items)
	switch MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit
	case MenuActionUp:
		if n > 0 {
			m.cursor = (m.cursor - 1 + n) % n
		}
	case MenuActionDown:
		if n > 0 {
			m.cursor = (m.cursor + 1) % n
		}
	case MenuActionSelect:
		if n > 0 {
			item := m.items[m.cursor]
			m.selected = &item
		}
	}
	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	line := func(s string) {
		b.WriteString(centerText(s, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	line(titleStyle.Render("  F E A T U R E S  "))
	line(mutedStyle.Render("playing as " + m.config.Player))
	b.WriteString("\n")

	section := ItemKind(-1)
	for i, item := range m.items {
		if kind := min(item.Kind, ItemLeaderboard); kind != section {
			if section >= 0 {
				b.WriteString("\n")
			}
			section = kind
			heading := "Scenes"
			if kind != ItemScene {
				heading = "Records"
			}
			line(helpStyle.Render(heading))
		}
		entry := fmt.Sprintf("  %-20s", item.Title)
		if i == m.cursor {
			entry = titleStyle.Render(fmt.Sprintf("> %-20s", item.Title))
		}
		line(entry)
	}

	b.WriteString("\n")
	if len(m.items) > 0 {
		line(mutedStyle.Render(m.items[m.cursor].Hint))
	}
	line(helpStyle.Render("Up/Down: Navigate  |  Enter: Select  |  Q: Quit"))
	return b.String()
}

// Selected returns the chosen item, or nil while the menu is open.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting reports whether the user asked to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// Config returns the runtime config, updated by any resize.
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}
