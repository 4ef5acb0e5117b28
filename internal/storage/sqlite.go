// Package storage provides SQLite-based persistence for level data,
// leaderboard times and achievement progress.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/arcade-features/internal/achievements"
	"github.com/vovakirdan/arcade-features/internal/leaderboard"
	"github.com/vovakirdan/arcade-features/internal/levelgrid"
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// TimeEntry is a recorded level completion time.
type TimeEntry struct {
	ID        int64
	Username  string
	Level     string
	Duration  time.Duration
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS leaderboard_times (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL,
			level TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_times_fastest ON leaderboard_times(level, duration_ms ASC);

		CREATE TABLE IF NOT EXISTS achievement_progress (
			player TEXT NOT NULL,
			achievement_id TEXT NOT NULL,
			progress REAL NOT NULL DEFAULT 0,
			completed INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (player, achievement_id)
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns the value stored under key, or levelgrid.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, levelgrid.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot read key %q: %w", key, err)
	}
	return value, nil
}

// Put stores value under key, replacing any previous value.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot write key %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("storage: cannot delete key %q: %w", key, err)
	}
	return nil
}

var _ levelgrid.Store = (*Store)(nil)

// SaveTime records a completion time for the given level.
// Returns the ID of the inserted record.
func (s *Store) SaveTime(username, level string, d time.Duration) (int64, error) {
	if d < 0 {
		return 0, fmt.Errorf("storage: negative duration %v", d)
	}
	result, err := s.db.Exec(
		"INSERT INTO leaderboard_times (username, level, duration_ms) VALUES (?, ?, ?)",
		username, level, d.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save time: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// FastestTimes retrieves the N fastest times for the given level.
// Ties keep insertion order.
func (s *Store) FastestTimes(ctx context.Context, level string, limit int) ([]TimeEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, level, duration_ms, created_at
		 FROM leaderboard_times
		 WHERE level = ?
		 ORDER BY duration_ms ASC, id ASC
		 LIMIT ?`,
		level, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query times: %w", err)
	}
	defer rows.Close()

	var entries []TimeEntry
	for rows.Next() {
		var e TimeEntry
		var ms int64
		var createdAt any
		if err := rows.Scan(&e.ID, &e.Username, &e.Level, &ms, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.Duration = time.Duration(ms) * time.Millisecond
		e.CreatedAt = parseTimestamp(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// ClearTimes deletes all times for the given level.
func (s *Store) ClearTimes(level string) error {
	if _, err := s.db.Exec("DELETE FROM leaderboard_times WHERE level = ?", level); err != nil {
		return fmt.Errorf("storage: cannot clear times: %w", err)
	}
	return nil
}

// LeaderboardSource adapts the times of one level for the leaderboard endpoint.
func (s *Store) LeaderboardSource(level string) leaderboard.Source {
	return leaderboard.SourceFunc(func(ctx context.Context, limit int) ([]leaderboard.Record, error) {
		entries, err := s.FastestTimes(ctx, level, limit)
		if err != nil {
			return nil, err
		}
		records := make([]leaderboard.Record, 0, len(entries))
		for _, e := range entries {
			records = append(records, leaderboard.Record{Username: e.Username, Time: e.Duration})
		}
		return records, nil
	})
}

// SaveProgress upserts the player's achievement progress in one transaction.
// Stored rows never move backwards: progress keeps the larger value and a
// completed achievement stays completed, so concurrent sessions of one
// player cannot lower each other's progress.
func (s *Store) SaveProgress(player string, progress []achievements.Progress) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.Prepare(
		`INSERT INTO achievement_progress (player, achievement_id, progress, completed)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(player, achievement_id) DO UPDATE SET
			progress = MAX(progress, excluded.progress),
			completed = MAX(completed, excluded.completed),
			updated_at = CURRENT_TIMESTAMP`,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot prepare progress upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range progress {
		if _, err := stmt.Exec(player, p.AchievementID, p.Progress, p.Completed); err != nil {
			return fmt.Errorf("storage: cannot save progress for %s: %w", p.AchievementID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit progress: %w", err)
	}
	return nil
}

// LoadProgress returns the saved progress for a player, ordered by achievement ID.
// Returns an empty slice if nothing was saved.
func (s *Store) LoadProgress(player string) ([]achievements.Progress, error) {
	rows, err := s.db.Query(
		`SELECT achievement_id, progress, completed
		 FROM achievement_progress
		 WHERE player = ?
		 ORDER BY achievement_id`,
		player,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query progress: %w", err)
	}
	defer rows.Close()

	out := []achievements.Progress{}
	for rows.Next() {
		var p achievements.Progress
		if err := rows.Scan(&p.AchievementID, &p.Progress, &p.Completed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return out, nil
}

// parseTimestamp handles both time.Time and string datetimes.
func parseTimestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
