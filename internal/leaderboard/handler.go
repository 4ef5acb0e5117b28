package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Record is a completion time as stored server-side.
type Record struct {
	Username string
	Time     time.Duration
}

// Source supplies the fastest records, best first.
type Source interface {
	Fastest(ctx context.Context, limit int) ([]Record, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, limit int) ([]Record, error)

// Fastest calls f.
func (f SourceFunc) Fastest(ctx context.Context, limit int) ([]Record, error) {
	return f(ctx, limit)
}

// FormatTime renders a duration as HH:MM:SS.mmm.
func FormatTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	return fmt.Sprintf("%02d:%02d:%02d.%03d", ms/3_600_000, ms/60_000%60, ms/1000%60, ms%1000)
}

// Handler serves the ranked list as a JSON array of entries.
type Handler struct {
	source Source
	limit  int
	logger *log.Logger
}

// NewHandler creates an endpoint handler returning at most limit rows.
func NewHandler(source Source, limit int, logger *log.Logger) *Handler {
	if limit <= 0 {
		limit = 10
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{source: source, limit: limit, logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, err := h.source.Fastest(r.Context(), h.limit)
	if err != nil {
		h.logger.Error("cannot load leaderboard", "error", err)
		http.Error(w, "leaderboard unavailable", http.StatusInternalServerError)
		return
	}

	entries := ToEntries(records)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		h.logger.Warn("cannot write leaderboard response", "error", err)
	}
}

// ToEntries formats records as wire entries, keeping their order.
func ToEntries(records []Record) []Entry {
	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, Entry{Username: rec.Username, Time: FormatTime(rec.Time)})
	}
	return entries
}

// SourceFetcher reads a Source directly, skipping HTTP.
type SourceFetcher struct {
	Source Source
	Limit  int
}

// Fetch implements Fetcher.
func (f SourceFetcher) Fetch(ctx context.Context) ([]Entry, error) {
	records, err := f.Source.Fastest(ctx, f.Limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return ToEntries(records), nil
}

// NewMux mounts the handler at DefaultPath.
func NewMux(h http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(DefaultPath, h)
	return mux
}
