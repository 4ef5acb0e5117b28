package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/arcade-features/internal/leaderboard"
)

type fetchFunc func(ctx context.Context) ([]leaderboard.Entry, error)

func (f fetchFunc) Fetch(ctx context.Context) ([]leaderboard.Entry, error) { return f(ctx) }

func TestLeaderboardModelLoading(t *testing.T) {
	m := NewLeaderboardModel(fetchFunc(func(context.Context) ([]leaderboard.Entry, error) {
		return nil, nil
	}), time.Second, 80, 24)

	if !strings.Contains(m.View(), leaderboard.LoadingText) {
		t.Errorf("View() before response = %q, expected %q", m.View(), leaderboard.LoadingText)
	}
}

func TestLeaderboardModelResults(t *testing.T) {
	entries := []leaderboard.Entry{
		{Username: "Player1", Time: "00:01:23"},
		{Username: "Player2", Time: "00:01:45"},
	}
	m := NewLeaderboardModel(nil, time.Second, 80, 24)

	next, _ := m.Update(LeaderboardMsg{Entries: entries})
	m = next.(LeaderboardModel)

	view := m.View()
	for _, want := range []string{"1. Player1 - 00:01:23", "2. Player2 - 00:01:45"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
	if strings.Contains(view, leaderboard.LoadingText) {
		t.Error("View() still shows the loading text")
	}
}

func TestLeaderboardModelError(t *testing.T) {
	m := NewLeaderboardModel(nil, time.Second, 80, 24)

	next, _ := m.Update(LeaderboardMsg{Err: errors.New("connection refused")})
	m = next.(LeaderboardModel)

	if !strings.Contains(m.View(), leaderboard.ErrorText) {
		t.Errorf("View() after failure = %q, expected %q", m.View(), leaderboard.ErrorText)
	}
	if len(m.Board().Entries()) != 0 {
		t.Errorf("Entries() = %v, expected none", m.Board().Entries())
	}
}

func TestFetchCmd(t *testing.T) {
	var hasDeadline bool
	cmd := fetchCmd(fetchFunc(func(ctx context.Context) ([]leaderboard.Entry, error) {
		_, hasDeadline = ctx.Deadline()
		return []leaderboard.Entry{{Username: "ana", Time: "00:00:09.000"}}, nil
	}), time.Second)

	msg, ok := cmd().(LeaderboardMsg)
	if !ok {
		t.Fatal("fetchCmd() did not produce a LeaderboardMsg")
	}
	if msg.Err != nil || len(msg.Entries) != 1 {
		t.Errorf("fetchCmd() = %+v, expected one entry", msg)
	}
	if !hasDeadline {
		t.Error("fetch context has no deadline")
	}
}

func TestLeaderboardModelBack(t *testing.T) {
	m := NewLeaderboardModel(nil, time.Second, 80, 24)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(LeaderboardModel)
	if !m.IsGoingBack() {
		t.Error("IsGoingBack() = false after esc")
	}
	if cmd != nil {
		t.Error("back inside a session should not quit the program")
	}
}
