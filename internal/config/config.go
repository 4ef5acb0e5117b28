// Package config provides YAML-based configuration for the feature
// playground: the achievement catalog, collectible waves, power-up
// tuning, the level editor viewport and the leaderboard endpoint.
package config

import "time"

// Features is the root configuration document.
type Features struct {
	Player       PlayerConfig        `yaml:"player"`
	Achievements []AchievementConfig `yaml:"achievements"`
	Collectibles CollectiblesConfig  `yaml:"collectibles"`
	Powerups     PowerupsConfig      `yaml:"powerups"`
	Editor       EditorConfig        `yaml:"editor"`
	Leaderboard  LeaderboardConfig   `yaml:"leaderboard"`
}

// PlayerConfig defines the playground avatar.
type PlayerConfig struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Speed  float64 `yaml:"speed"` // cells per second
}

// AchievementConfig is one catalog entry. Requirements map a metric name to
// the threshold that completes the achievement.
type AchievementConfig struct {
	ID           string             `yaml:"id"`
	Name         string             `yaml:"name"`
	Description  string             `yaml:"description"`
	Requirements map[string]float64 `yaml:"requirements"`
}

// CollectiblesConfig defines the wave of pickups placed in the playground.
type CollectiblesConfig struct {
	Wave []SpawnConfig `yaml:"wave"`
}

// SpawnConfig places one collectible.
type SpawnConfig struct {
	Kind    string `yaml:"kind"`
	Texture string `yaml:"texture"`
	X       int    `yaml:"x"`
	Y       int    `yaml:"y"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
}

// PowerupsConfig tunes power-up effects and the periodic spawner.
type PowerupsConfig struct {
	SpeedMultiplier    float64                  `yaml:"speed_multiplier"`
	InvincibilityColor string                   `yaml:"invincibility_color"`
	Durations          map[string]time.Duration `yaml:"durations"`
	Spawner            SpawnerConfig            `yaml:"spawner"`
}

// SpawnerConfig drops a random power-up every Interval with a duration
// drawn from [MinDuration, MaxDuration].
type SpawnerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Interval    time.Duration `yaml:"interval"`
	MinDuration time.Duration `yaml:"min_duration"`
	MaxDuration time.Duration `yaml:"max_duration"`
	Width       int           `yaml:"width"`
	Height      int           `yaml:"height"`
}

// EditorConfig defines the level editor viewport in pixels.
type EditorConfig struct {
	ViewportWidth  int    `yaml:"viewport_width"`
	ViewportHeight int    `yaml:"viewport_height"`
	TileSize       int    `yaml:"tile_size"`
	Key            string `yaml:"key"`
}

// LeaderboardConfig points the client at the leaderboard endpoint and
// tells the server which level it ranks.
type LeaderboardConfig struct {
	BaseURL string        `yaml:"base_url"`
	Path    string        `yaml:"path"`
	Timeout time.Duration `yaml:"timeout"`
	Level   string        `yaml:"level"`
	Limit   int           `yaml:"limit"`
}
