package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/features.yaml
var defaultFeaturesYAML []byte

// DefaultFeatures returns the built-in configuration, used when no YAML
// document can be read.
func DefaultFeatures() Features {
	return Features{
		Player: PlayerConfig{
			Width:  2,
			Height: 1,
			Speed:  12,
		},
		Achievements: []AchievementConfig{
			{
				ID:           "first-win",
				Name:         "First Win",
				Description:  "Win your first game",
				Requirements: map[string]float64{"wins": 1},
			},
			{
				ID:           "winning-streak",
				Name:         "Winning Streak",
				Description:  "Win 5 games in a row",
				Requirements: map[string]float64{"winStreak": 5},
			},
			{
				ID:           "collector",
				Name:         "Collector",
				Description:  "Pick up 10 coins",
				Requirements: map[string]float64{"coins": 10},
			},
			{
				ID:           "speedster",
				Name:         "Speedster",
				Description:  "Use 3 power-ups",
				Requirements: map[string]float64{"powerups": 3},
			},
		},
		Collectibles: CollectiblesConfig{
			Wave: []SpawnConfig{
				{Kind: "coin", Texture: "o", X: 10, Y: 4, Width: 1, Height: 1},
				{Kind: "coin", Texture: "o", X: 30, Y: 8, Width: 1, Height: 1},
				{Kind: "coin", Texture: "o", X: 50, Y: 12, Width: 1, Height: 1},
				{Kind: "coin", Texture: "o", X: 20, Y: 16, Width: 1, Height: 1},
				{Kind: "coin", Texture: "o", X: 60, Y: 6, Width: 1, Height: 1},
				{Kind: "powerup:speed", Texture: ">", X: 40, Y: 18, Width: 1, Height: 1},
				{Kind: "powerup:invincibility", Texture: "*", X: 70, Y: 15, Width: 1, Height: 1},
			},
		},
		Powerups: PowerupsConfig{
			SpeedMultiplier:    2,
			InvincibilityColor: "green",
			Durations: map[string]time.Duration{
				"speed":         5 * time.Second,
				"invincibility": 8 * time.Second,
			},
			Spawner: SpawnerConfig{
				Enabled:     true,
				Interval:    10 * time.Second,
				MinDuration: 5 * time.Second,
				MaxDuration: 10 * time.Second,
				Width:       1,
				Height:      1,
			},
		},
		Editor: EditorConfig{
			ViewportWidth:  800,
			ViewportHeight: 600,
			TileSize:       32,
			Key:            "levelData",
		},
		Leaderboard: LeaderboardConfig{
			BaseURL: "http://localhost:8080",
			Path:    "/api/leaderboards",
			Timeout: 10 * time.Second,
			Level:   "playground",
			Limit:   10,
		},
	}
}
