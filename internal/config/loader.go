package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/arcade-features/internal/achievements"
	"github.com/vovakirdan/arcade-features/internal/core"
	"github.com/vovakirdan/arcade-features/internal/powerups"
)

// FeaturesFile is the file name looked up in the config directories.
const FeaturesFile = "features.yaml"

// PowerupKindPrefix marks collectible kinds that grant a power-up,
// e.g. "powerup:speed".
const PowerupKindPrefix = "powerup:"

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// LoadFeatures loads the feature configuration.
// Search order: customPath -> ~/.arcade/configs/features.yaml -> ./configs/features.yaml -> embedded default
func LoadFeatures(customPath string) (Features, error) {
	var cfg Features

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		cfg.Leaderboard = cfg.Leaderboard.withDefaults()
		return cfg, cfg.Validate()
	}

	// Try user config directory
	if userCfgPath := userConfigPath(FeaturesFile); userCfgPath != "" {
		if c, ok := readFeatures(userCfgPath); ok {
			return c, nil
		}
	}

	// Try local configs directory
	if c, ok := readFeatures(filepath.Join("configs", FeaturesFile)); ok {
		return c, nil
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultFeaturesYAML, &cfg); err != nil {
		return DefaultFeatures(), nil // Fallback to hardcoded if embed fails
	}
	cfg.Leaderboard = cfg.Leaderboard.withDefaults()
	return cfg, nil
}

// readFeatures parses an optional config file. Unreadable or invalid files
// are skipped so the next location in the search order is tried.
func readFeatures(path string) (Features, bool) {
	var cfg Features
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, false
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, false
	}
	cfg.Leaderboard = cfg.Leaderboard.withDefaults()
	if cfg.Validate() != nil {
		return cfg, false
	}
	return cfg, true
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".arcade", "configs", filename)
}

// Validate checks the values the feature modules cannot work without.
func (f Features) Validate() error {
	if len(f.Achievements) == 0 {
		return fmt.Errorf("%w: achievement catalog is empty", ErrInvalidConfig)
	}
	if _, err := f.Catalog(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if f.Player.Width <= 0 || f.Player.Height <= 0 {
		return fmt.Errorf("%w: player size must be positive", ErrInvalidConfig)
	}
	if f.Editor.TileSize <= 0 {
		return fmt.Errorf("%w: editor tile size must be positive", ErrInvalidConfig)
	}
	if f.Editor.ViewportWidth < f.Editor.TileSize || f.Editor.ViewportHeight < f.Editor.TileSize {
		return fmt.Errorf("%w: editor viewport smaller than one tile", ErrInvalidConfig)
	}
	if !powerups.ExactMultiplier(f.Powerups.SpeedMultiplier) {
		return fmt.Errorf("%w: speed multiplier %v is not a positive power of two", ErrInvalidConfig, f.Powerups.SpeedMultiplier)
	}
	if _, ok := core.ParseColor(f.Powerups.InvincibilityColor); !ok {
		return fmt.Errorf("%w: unknown color %q", ErrInvalidConfig, f.Powerups.InvincibilityColor)
	}
	for typ, d := range f.Powerups.Durations {
		if d <= 0 {
			return fmt.Errorf("%w: duration for %s must be positive", ErrInvalidConfig, typ)
		}
	}
	if sp := f.Powerups.Spawner; sp.Enabled {
		if sp.Interval <= 0 || sp.MinDuration <= 0 || sp.MaxDuration < sp.MinDuration {
			return fmt.Errorf("%w: spawner durations must be positive and ordered", ErrInvalidConfig)
		}
	}
	for i, s := range f.Collectibles.Wave {
		if s.Width <= 0 || s.Height <= 0 {
			return fmt.Errorf("%w: wave[%d] has an empty size", ErrInvalidConfig, i)
		}
	}
	if lb := f.Leaderboard; lb.BaseURL == "" || lb.Timeout <= 0 || lb.Limit <= 0 {
		return fmt.Errorf("%w: leaderboard needs a base url, a positive timeout and limit", ErrInvalidConfig)
	}
	return nil
}

// withDefaults fills the fields a config file left out.
func (l LeaderboardConfig) withDefaults() LeaderboardConfig {
	def := DefaultFeatures().Leaderboard
	if l.BaseURL == "" {
		l.BaseURL = def.BaseURL
	}
	if l.Path == "" {
		l.Path = def.Path
	}
	if l.Timeout == 0 {
		l.Timeout = def.Timeout
	}
	if l.Level == "" {
		l.Level = def.Level
	}
	if l.Limit == 0 {
		l.Limit = def.Limit
	}
	return l
}

// Catalog builds the immutable achievement catalog.
func (f Features) Catalog() (*achievements.Catalog, error) {
	defs := make([]achievements.Definition, 0, len(f.Achievements))
	for _, a := range f.Achievements {
		defs = append(defs, achievements.Definition{
			ID:           a.ID,
			Name:         a.Name,
			Description:  a.Description,
			Requirements: a.Requirements,
		})
	}
	return achievements.NewCatalog(defs)
}

// EffectConfig converts the power-up section for the effect constructors.
// An unknown color falls back to the default tint.
func (p PowerupsConfig) EffectConfig() powerups.EffectConfig {
	cfg := powerups.DefaultEffectConfig()
	if powerups.ExactMultiplier(p.SpeedMultiplier) {
		cfg.SpeedMultiplier = p.SpeedMultiplier
	}
	if c, ok := core.ParseColor(p.InvincibilityColor); ok {
		cfg.InvincibilityColor = c
	}
	return cfg
}

// Duration returns the configured duration for a power-up type, or fallback.
func (p PowerupsConfig) Duration(typ powerups.Type, fallback time.Duration) time.Duration {
	if d, ok := p.Durations[string(typ)]; ok && d > 0 {
		return d
	}
	return fallback
}

// Types returns the power-up types with a configured duration, sorted.
func (p PowerupsConfig) Types() []powerups.Type {
	types := make([]powerups.Type, 0, len(p.Durations))
	for name := range p.Durations {
		types = append(types, powerups.Type(name))
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// PowerupType extracts the power-up type from a collectible kind.
func PowerupType(kind string) (powerups.Type, bool) {
	name, ok := strings.CutPrefix(kind, PowerupKindPrefix)
	if !ok || name == "" {
		return "", false
	}
	return powerups.Type(name), true
}

// GridSize returns the editor grid dimensions in tiles.
func (e EditorConfig) GridSize() (w, h int) {
	if e.TileSize <= 0 {
		return 0, 0
	}
	return e.ViewportWidth / e.TileSize, e.ViewportHeight / e.TileSize
}
