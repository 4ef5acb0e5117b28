package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/arcade-features/internal/leaderboard"
)

// LeaderboardMsg carries the outcome of the leaderboard fetch.
type LeaderboardMsg struct {
	Entries []leaderboard.Entry
	Err     error
}

// fetchCmd performs the single leaderboard request off the update loop.
func fetchCmd(f leaderboard.Fetcher, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		entries, err := f.Fetch(ctx)
		return LeaderboardMsg{Entries: entries, Err: err}
	}
}

// backKeyMap is shared by the read-only screens.
type backKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Back key.Binding
	Quit key.Binding
}

func defaultBackKeyMap() backKeyMap {
	return backKeyMap{
		Up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll up")),
		Down: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll down")),
		Back: key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc/b", "back")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k backKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k backKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Back, k.Quit}}
}

// LeaderboardModel shows the ranked completion times. The list is fetched
// once when the screen opens; the loading text stays up until it arrives.
type LeaderboardModel struct {
	board      *leaderboard.Board
	fetcher    leaderboard.Fetcher
	timeout    time.Duration
	spinner    spinner.Model
	keys       backKeyMap
	help       help.Model
	width      int
	height     int
	quitting   bool
	goingBack  bool
	standalone bool
}

// NewLeaderboardModel creates the screen. timeout bounds the fetch.
func NewLeaderboardModel(f leaderboard.Fetcher, timeout time.Duration, width, height int) LeaderboardModel {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	keys := defaultBackKeyMap()
	keys.Up.SetEnabled(false)
	keys.Down.SetEnabled(false)

	return LeaderboardModel{
		board:   leaderboard.NewBoard(),
		fetcher: f,
		timeout: timeout,
		spinner: sp,
		keys:    keys,
		help:    help.New(),
		width:   width,
		height:  height,
	}
}

// Init starts the fetch and the spinner.
func (m LeaderboardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, fetchCmd(m.fetcher, m.timeout))
}

// Update handles messages for the leaderboard screen.
func (m LeaderboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LeaderboardMsg:
		m.board.Apply(msg.Entries, msg.Err)
		return m, nil

	case spinner.TickMsg:
		if m.board.Status() != leaderboard.StatusLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			if m.standalone {
				return m, tea.Quit
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	}
	return m, nil
}

// View renders the leaderboard.
func (m LeaderboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("LEADERBOARD"), m.width))
	b.WriteString("\n\n")

	var body string
	switch m.board.Status() {
	case leaderboard.StatusLoading:
		body = m.spinner.View() + " " + m.board.Text()
	case leaderboard.StatusFailed:
		body = errorStyle.Render(m.board.Text())
	default:
		if len(m.board.Entries()) == 0 {
			body = mutedStyle.Render(m.board.Text())
		} else {
			body = strings.TrimSuffix(m.board.Text(), "\n")
		}
	}
	for _, line := range strings.Split(boxStyle.Render(body), "\n") {
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// Board exposes the board state.
func (m LeaderboardModel) Board() *leaderboard.Board {
	return m.board
}

// IsGoingBack returns true if user wants to go back to menu.
func (m LeaderboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m LeaderboardModel) IsQuitting() bool {
	return m.quitting
}

// RunLeaderboard runs the leaderboard screen on its own.
func RunLeaderboard(f leaderboard.Fetcher, timeout time.Duration, width, height int) error {
	model := NewLeaderboardModel(f, timeout, width, height)
	model.standalone = true

	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
