package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/arcade-features/internal/core"
	"github.com/vovakirdan/arcade-features/internal/powerups"
)

func TestEmbeddedDefaultsMatchBuiltin(t *testing.T) {
	var embedded Features
	if err := yaml.Unmarshal(defaultFeaturesYAML, &embedded); err != nil {
		t.Fatalf("embedded defaults do not parse: %v", err)
	}
	if !reflect.DeepEqual(embedded, DefaultFeatures()) {
		t.Errorf("embedded defaults differ from DefaultFeatures():\n%+v\n%+v", embedded, DefaultFeatures())
	}
	if err := embedded.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v", err)
	}
}

func TestLoadFeaturesCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.yaml")
	doc := `
player: {width: 1, height: 1, speed: 5}
achievements:
  - id: hoarder
    name: Hoarder
    requirements: {coins: 50}
powerups:
  speed_multiplier: 4
  invincibility_color: cyan
  durations: {speed: 1500ms}
editor: {viewport_width: 320, viewport_height: 160, tile_size: 16}
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFeatures(path)
	if err != nil {
		t.Fatalf("LoadFeatures() failed: %v", err)
	}

	cat, _ := cfg.Catalog()
	if cat.Len() != 1 {
		t.Errorf("catalog has %d entries, expected 1", cat.Len())
	}
	if d := cfg.Powerups.Duration(powerups.TypeSpeed, time.Second); d != 1500*time.Millisecond {
		t.Errorf("Duration(speed) = %v, expected 1.5s", d)
	}
	if d := cfg.Powerups.Duration(powerups.TypeInvincibility, 7*time.Second); d != 7*time.Second {
		t.Errorf("Duration(invincibility) = %v, expected fallback", d)
	}
	eff := cfg.Powerups.EffectConfig()
	if eff.SpeedMultiplier != 4 || eff.InvincibilityColor != core.ColorCyan {
		t.Errorf("EffectConfig() = %+v", eff)
	}
	if w, h := cfg.Editor.GridSize(); w != 20 || h != 10 {
		t.Errorf("GridSize() = %dx%d, expected 20x10", w, h)
	}
	if cfg.Leaderboard != DefaultFeatures().Leaderboard {
		t.Errorf("Leaderboard = %+v, expected defaults for a missing section", cfg.Leaderboard)
	}
}

func TestLoadFeaturesPartialLeaderboard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.yaml")
	doc := `
player: {width: 1, height: 1}
achievements:
  - id: hoarder
    name: Hoarder
    requirements: {coins: 50}
powerups: {speed_multiplier: 2, invincibility_color: green}
editor: {viewport_width: 320, viewport_height: 160, tile_size: 16}
leaderboard: {base_url: "http://scores.local:9000"}
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFeatures(path)
	if err != nil {
		t.Fatalf("LoadFeatures() failed: %v", err)
	}
	expected := DefaultFeatures().Leaderboard
	expected.BaseURL = "http://scores.local:9000"
	if cfg.Leaderboard != expected {
		t.Errorf("Leaderboard = %+v, expected %+v", cfg.Leaderboard, expected)
	}
}

func TestLoadFeaturesCustomPathErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFeatures(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadFeatures() with missing file should fail")
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("achievements: [unclosed"), 0o644)
	if _, err := LoadFeatures(bad); err == nil {
		t.Error("LoadFeatures() with malformed YAML should fail")
	}

	empty := filepath.Join(dir, "empty.yaml")
	os.WriteFile(empty, []byte("player: {width: 1, height: 1}\n"), 0o644)
	if _, err := LoadFeatures(empty); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("LoadFeatures() with no achievements = %v, expected ErrInvalidConfig", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Features)
	}{
		{"empty catalog", func(f *Features) { f.Achievements = nil }},
		{"duplicate achievement", func(f *Features) { f.Achievements = append(f.Achievements, f.Achievements[0]) }},
		{"zero threshold", func(f *Features) { f.Achievements[0].Requirements = map[string]float64{"wins": 0} }},
		{"zero tile size", func(f *Features) { f.Editor.TileSize = 0 }},
		{"tiny viewport", func(f *Features) { f.Editor.ViewportWidth = 10 }},
		{"zero speed multiplier", func(f *Features) { f.Powerups.SpeedMultiplier = 0 }},
		{"inexact speed multiplier", func(f *Features) { f.Powerups.SpeedMultiplier = 1.1 }},
		{"zero leaderboard timeout", func(f *Features) { f.Leaderboard.Timeout = 0 }},
		{"no leaderboard url", func(f *Features) { f.Leaderboard.BaseURL = "" }},
		{"unknown color", func(f *Features) { f.Powerups.InvincibilityColor = "plaid" }},
		{"negative duration", func(f *Features) { f.Powerups.Durations["speed"] = -time.Second }},
		{"spawner range reversed", func(f *Features) { f.Powerups.Spawner.MaxDuration = time.Second }},
		{"empty spawn", func(f *Features) { f.Collectibles.Wave[0].Width = 0 }},
		{"no player", func(f *Features) { f.Player.Height = 0 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := DefaultFeatures()
			tc.modify(&f)
			if err := f.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, expected ErrInvalidConfig", err)
			}
		})
	}
}

func TestPowerupType(t *testing.T) {
	tests := []struct {
		kind     string
		expected powerups.Type
		ok       bool
	}{
		{"powerup:speed", powerups.TypeSpeed, true},
		{"powerup:invincibility", powerups.TypeInvincibility, true},
		{"powerup:", "", false},
		{"coin", "", false},
	}
	for _, tc := range tests {
		got, ok := PowerupType(tc.kind)
		if got != tc.expected || ok != tc.ok {
			t.Errorf("PowerupType(%q) = %q, %v, expected %q, %v", tc.kind, got, ok, tc.expected, tc.ok)
		}
	}
}

func TestPowerupTypesSorted(t *testing.T) {
	types := DefaultFeatures().Powerups.Types()
	expected := []powerups.Type{powerups.TypeInvincibility, powerups.TypeSpeed}
	if !reflect.DeepEqual(types, expected) {
		t.Errorf("Types() = %v, expected %v", types, expected)
	}
}
