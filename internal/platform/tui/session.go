package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/arcade-features/internal/achievements"
	"github.com/vovakirdan/arcade-features/internal/config"
	"github.com/vovakirdan/arcade-features/internal/core"
	"github.com/vovakirdan/arcade-features/internal/leaderboard"
	"github.com/vovakirdan/arcade-features/internal/registry"
)

// SessionDeps are shared by every screen of a session.
type SessionDeps struct {
	Features config.Features
	Store    registry.Store // nil disables persistence
	Fetcher  leaderboard.Fetcher
	Logger   *log.Logger
}

// LoadTracker builds a tracker for the configured catalog and restores the
// player's saved progress.
func LoadTracker(features config.Features, store registry.Store, player string, logger *log.Logger) (*achievements.Tracker, error) {
	catalog, err := features.Catalog()
	if err != nil {
		return nil, err
	}
	t := achievements.NewTracker(catalog, logger)
	if store == nil {
		return t, nil
	}
	saved, err := store.LoadProgress(player)
	if err != nil {
		return t, err
	}
	t.Restore(saved)
	return t, nil
}

type screen int

const (
	screenMenu screen = iota
	screenScene
	screenLeaderboard
	screenAchievements
)

// SessionModel manages the full session flow: menu -> screen -> menu.
// It is the top-level model for local menus and SSH sessions.
type SessionModel struct {
	deps         SessionDeps
	config       core.RuntimeConfig
	current      screen
	menu         MenuModel
	scene        Model
	leaderboard  LeaderboardModel
	achievements AchievementsModel
	quitting     bool
	open         *openScene
}

// openScene holds the scene a session started and has not closed yet. It is
// shared by every copy of the session model so the host can close the scene
// after the program is gone.
type openScene struct {
	mu   sync.Mutex
	game registry.Game
}

func (o *openScene) set(g registry.Game) {
	if o == nil {
		return
	}
	o.mu.Lock()
	o.game = g
	o.mu.Unlock()
}

func (o *openScene) close() error {
	if o == nil {
		return nil
	}
	o.mu.Lock()
	g := o.game
	o.game = nil
	o.mu.Unlock()
	if g == nil {
		return nil
	}
	return registry.Close(g)
}

// NewSessionModel creates a new session model.
func NewSessionModel(deps SessionDeps, cfg core.RuntimeConfig) SessionModel {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	return SessionModel{
		deps:   deps,
		config: cfg,
		menu:   NewMenuModel(cfg),
		open:   &openScene{},
	}
}

// Close closes a scene the player never left, for example when the
// terminal or SSH connection went away mid-scene. It is safe to call more
// than once.
func (m SessionModel) Close() error {
	return m.open.close()
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle window resize globally
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch m.current {
	case screenScene:
		return m.updateScene(msg)
	case screenLeaderboard:
		return m.updateLeaderboard(msg)
	case screenAchievements:
		return m.updateAchievements(msg)
	}
	return m.updateMenu(msg)
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	selected := m.menu.Selected()
	if selected == nil {
		return m, cmd
	}
	m.config = m.menu.Config()

	switch selected.Kind {
	case ItemLeaderboard:
		if m.deps.Fetcher == nil {
			return m.backToMenu()
		}
		m.leaderboard = NewLeaderboardModel(m.deps.Fetcher, m.deps.Features.Leaderboard.Timeout, m.config.ScreenW, m.config.ScreenH)
		m.current = screenLeaderboard
		return m, m.leaderboard.Init()

	case ItemAchievements:
		tracker, err := LoadTracker(m.deps.Features, m.deps.Store, m.config.Player, m.deps.Logger)
		if err != nil {
			m.deps.Logger.Error("cannot load achievements", "player", m.config.Player, "error", err)
		}
		if tracker == nil {
			return m.backToMenu()
		}
		m.achievements = NewAchievementsModel(tracker, m.config.Player, m.config.ScreenW, m.config.ScreenH)
		m.current = screenAchievements
		return m, m.achievements.Init()
	}

	game, err := registry.Create(selected.ID, registry.Deps{
		Features: m.deps.Features,
		Store:    m.deps.Store,
		Logger:   m.deps.Logger,
	})
	if err != nil {
		m.deps.Logger.Error("cannot start scene", "scene", selected.ID, "error", err)
		return m.backToMenu()
	}

	cfg := m.config
	cfg.Seed = time.Now().UnixNano()
	m.scene = NewModel(game, cfg, m.deps.Logger)
	m.open.set(game)
	m.current = screenScene
	return m, m.scene.Init()
}

func (m SessionModel) backToMenu() (tea.Model, tea.Cmd) {
	m.current = screenMenu
	m.menu = NewMenuModel(m.config)
	return m, m.menu.Init()
}

// updateScene handles updates when a scene is running.
func (m SessionModel) updateScene(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.scene.Update(msg)
	if sceneModel, ok := newModel.(Model); ok {
		m.scene = sceneModel
	}

	// The scene model closes its game on both exits.
	if m.scene.IsQuitting() {
		m.open.set(nil)
		m.quitting = true
		return m, tea.Quit
	}
	if m.scene.BackToMenu() {
		m.open.set(nil)
		return m.backToMenu()
	}
	return m, cmd
}

func (m SessionModel) updateLeaderboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.leaderboard.Update(msg)
	if lb, ok := newModel.(LeaderboardModel); ok {
		m.leaderboard = lb
	}

	if m.leaderboard.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.leaderboard.IsGoingBack() {
		return m.backToMenu()
	}
	return m, cmd
}

func (m SessionModel) updateAchievements(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.achievements.Update(msg)
	if am, ok := newModel.(AchievementsModel); ok {
		m.achievements = am
	}

	if m.achievements.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.achievements.IsGoingBack() {
		return m.backToMenu()
	}
	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.current {
	case screenScene:
		return m.scene.View()
	case screenLeaderboard:
		return m.leaderboard.View()
	case screenAchievements:
		return m.achievements.View()
	}
	return m.menu.View()
}

// RunSession runs the menu-driven session in the local terminal.
func RunSession(deps SessionDeps, cfg core.RuntimeConfig) error {
	p := tea.NewProgram(
		NewSessionModel(deps, cfg),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	final, err := p.Run()
	if s, ok := final.(SessionModel); ok {
		if cerr := s.Close(); cerr != nil {
			s.deps.Logger.Error("error closing scene", "error", cerr)
		}
	}
	return err
}
