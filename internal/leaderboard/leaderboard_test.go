package leaderboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestFetchAndRender(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"username":"Player1","time":"00:01:23"},{"username":"Player2","time":"00:01:45"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", WithLogger(log.New(&bytes.Buffer{})))
	board := NewBoard()
	if board.Text() != LoadingText {
		t.Errorf("initial Text() = %q, expected placeholder", board.Text())
	}

	if err := board.Refresh(context.Background(), client); err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}
	if gotPath != DefaultPath {
		t.Errorf("requested %q, expected %q", gotPath, DefaultPath)
	}

	expected := "1. Player1 - 00:01:23\n2. Player2 - 00:01:45\n"
	if board.Text() != expected {
		t.Errorf("Text() = %q, expected %q", board.Text(), expected)
	}
	if board.Status() != StatusReady {
		t.Errorf("Status() = %v, expected StatusReady", board.Status())
	}
}

func TestFetchKeepsServerOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"username":"slow","time":"00:09:00"},{"username":"fast","time":"00:00:10"}]`))
	}))
	defer srv.Close()

	entries, err := NewClient(srv.URL).Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].Username != "slow" || entries[1].Username != "fast" {
		t.Errorf("entries re-sorted: %+v", entries)
	}
}

func TestFetchFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"username":"Player1","time":"00:01:23"},{"user`))
		}},
		{"not an array", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"username":"Player1"}`))
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			var logs bytes.Buffer
			board := NewBoard()
			err := board.Refresh(context.Background(), NewClient(srv.URL, WithLogger(log.New(&logs))))
			if err == nil {
				t.Fatal("Refresh() should fail")
			}
			if board.Text() != ErrorText {
				t.Errorf("Text() = %q, expected %q", board.Text(), ErrorText)
			}
			if len(board.Entries()) != 0 {
				t.Error("failed board should not keep entries")
			}
			if logs.Len() == 0 {
				t.Error("failure not logged")
			}
		})
	}
}

func TestFetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	board := NewBoard()
	board.Refresh(context.Background(), NewClient(url, WithTimeout(time.Second), WithLogger(log.New(&bytes.Buffer{}))))
	if board.Text() != ErrorText {
		t.Errorf("Text() = %q, expected %q", board.Text(), ErrorText)
	}
}

func TestBoardFailureReplacesEarlierList(t *testing.T) {
	board := NewBoard()
	board.Apply([]Entry{{Username: "a", Time: "1"}}, nil)
	board.Apply(nil, errors.New("offline"))

	if board.Text() != ErrorText || board.Err() == nil {
		t.Errorf("Text() = %q, expected the error message", board.Text())
	}
}

func TestBoardEmpty(t *testing.T) {
	board := NewBoard()
	board.Apply([]Entry{}, nil)
	if board.Text() != EmptyText {
		t.Errorf("Text() = %q, expected %q", board.Text(), EmptyText)
	}
}

func TestClientURL(t *testing.T) {
	c := NewClient("http://example.test/", WithPath("scores/top"))
	if c.URL() != "http://example.test/scores/top" {
		t.Errorf("URL() = %q", c.URL())
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{83 * time.Second, "00:01:23.000"},
		{time.Hour + 2*time.Minute + 3*time.Second + 45*time.Millisecond, "01:02:03.045"},
		{-time.Second, "00:00:00.000"},
	}
	for _, tc := range tests {
		if got := FormatTime(tc.d); got != tc.expected {
			t.Errorf("FormatTime(%v) = %q, expected %q", tc.d, got, tc.expected)
		}
	}
}

func TestHandler(t *testing.T) {
	source := SourceFunc(func(_ context.Context, limit int) ([]Record, error) {
		if limit != 2 {
			t.Errorf("limit = %d, expected 2", limit)
		}
		return []Record{
			{Username: "ana", Time: 61500 * time.Millisecond},
			{Username: "bo", Time: 90 * time.Second},
		}, nil
	})
	srv := httptest.NewServer(NewMux(NewHandler(source, 2, log.New(&bytes.Buffer{}))))
	defer srv.Close()

	entries, err := NewClient(srv.URL).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() against handler failed: %v", err)
	}
	want := []Entry{{"ana", "00:01:01.500"}, {"bo", "00:01:30.000"}}
	if len(entries) != len(want) {
		t.Fatalf("entries = %+v", entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entries[%d] = %+v, expected %+v", i, entries[i], want[i])
		}
	}
}

func TestHandlerErrors(t *testing.T) {
	failing := SourceFunc(func(context.Context, int) ([]Record, error) {
		return nil, errors.New("db locked")
	})
	h := NewHandler(failing, 0, log.New(&bytes.Buffer{}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, DefaultPath, nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("GET with failing source = %d, expected 500", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, DefaultPath, nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST = %d, expected 405", rec.Code)
	}
}

func TestHandlerEmptyIsArray(t *testing.T) {
	empty := SourceFunc(func(context.Context, int) ([]Record, error) { return nil, nil })
	rec := httptest.NewRecorder()
	NewHandler(empty, 5, log.New(&bytes.Buffer{})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, DefaultPath, nil))

	var got []Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil || got == nil {
		t.Errorf("body = %q, expected an empty JSON array", rec.Body.String())
	}
}

func TestSourceFetcher(t *testing.T) {
	source := SourceFunc(func(_ context.Context, limit int) ([]Record, error) {
		if limit != 3 {
			t.Errorf("limit = %d, expected 3", limit)
		}
		return []Record{{Username: "cy", Time: 2 * time.Second}}, nil
	})

	b := NewBoard()
	if err := b.Refresh(context.Background(), SourceFetcher{Source: source, Limit: 3}); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if got, expected := b.Text(), "1. cy - 00:00:02.000\n"; got != expected {
		t.Errorf("Text() = %q, expected %q", got, expected)
	}

	failing := SourceFetcher{Source: SourceFunc(func(context.Context, int) ([]Record, error) {
		return nil, errors.New("closed")
	})}
	if err := b.Refresh(context.Background(), failing); err == nil {
		t.Error("Refresh() with failing source should return an error")
	}
	if b.Text() != ErrorText {
		t.Errorf("Text() = %q, expected %q", b.Text(), ErrorText)
	}
}
