package leaderboard

import (
	"context"
	"fmt"
	"strings"
)

// Display texts.
const (
	LoadingText = "Loading leaderboards..."
	ErrorText   = "Error loading leaderboards"
	EmptyText   = "No times recorded yet."
)

// Status is where the board is in its single fetch.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusFailed
)

// Fetcher is anything that can produce the ranked list.
type Fetcher interface {
	Fetch(ctx context.Context) ([]Entry, error)
}

// Board is the view state of the leaderboard screen.
type Board struct {
	status  Status
	entries []Entry
	err     error
}

// NewBoard returns a board showing the loading placeholder.
func NewBoard() *Board {
	return &Board{status: StatusLoading}
}

// Status returns the current fetch status.
func (b *Board) Status() Status { return b.status }

// Err returns the fetch error, if the fetch failed.
func (b *Board) Err() error { return b.err }

// Entries returns the fetched rows in server order.
func (b *Board) Entries() []Entry {
	return append([]Entry(nil), b.entries...)
}

// Apply records the outcome of a fetch. A failure discards any rows so the
// board never shows a partial list.
func (b *Board) Apply(entries []Entry, err error) {
	if err != nil {
		b.status = StatusFailed
		b.entries = nil
		b.err = err
		return
	}
	b.status = StatusReady
	b.entries = append([]Entry(nil), entries...)
	b.err = nil
}

// Refresh performs one fetch and applies its outcome.
func (b *Board) Refresh(ctx context.Context, f Fetcher) error {
	entries, err := f.Fetch(ctx)
	b.Apply(entries, err)
	return err
}

// Text renders the board: the placeholder, the error message, or one
// "rank. username - time" line per entry.
func (b *Board) Text() string {
	switch b.status {
	case StatusLoading:
		return LoadingText
	case StatusFailed:
		return ErrorText
	}
	if len(b.entries) == 0 {
		return EmptyText
	}
	return FormatEntries(b.entries)
}

// FormatEntries renders entries in the order given.
func FormatEntries(entries []Entry) string {
	var sb strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&sb, "%d. %s - %s\n", i+1, e.Username, e.Time)
	}
	return sb.String()
}
