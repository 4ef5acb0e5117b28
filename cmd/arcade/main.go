// arcade is a terminal playground for game features: achievements,
// collectibles, power-ups, a tile level editor and a leaderboard.
//
// Usage:
//
//	arcade list                 - List available scenes
//	arcade play <scene>         - Run a scene directly
//	arcade menu                 - Start the interactive menu
//	arcade leaderboard          - Show the fastest wave clears
//	arcade achievements         - Show achievement progress
//	arcade serve                - Start SSH and leaderboard HTTP servers
//
// Global flags:
//
//	--fps <rate>        - Set tick rate (default: 60)
//	--seed <value>      - Set RNG seed for reproducible spawns
//	--db <path>         - Set database path (default: ~/.arcade/features.db)
//	--config <path>     - Use a custom features.yaml
//	--player <name>     - Player name for progress and times
//	--log-level <lvl>   - debug, info, warn, error
//	--log-file <path>   - Write logs to a file
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/arcade-features/internal/config"
	"github.com/vovakirdan/arcade-features/internal/core"
	"github.com/vovakirdan/arcade-features/internal/leaderboard"
	"github.com/vovakirdan/arcade-features/internal/registry"
	"github.com/vovakirdan/arcade-features/internal/storage"

	// Import scenes to register them
	_ "github.com/vovakirdan/arcade-features/internal/scenes/editor"
	_ "github.com/vovakirdan/arcade-features/internal/scenes/playground"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagConfig   string
	flagPlayer   string
	flagLogLevel string
	flagLogFile  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arcade",
	Short: "Arcade features - achievements, power-ups and more in your terminal",
	Long: `Arcade features is a terminal playground for common game features:
achievements with persistent progress, collectible waves, timed power-ups,
a tile level editor and a fastest-times leaderboard.

Available commands:
  list          - Show all available scenes
  play          - Run a specific scene directly
  menu          - Interactive menu
  leaderboard   - Fastest wave clears
  achievements  - Achievement progress for a player
  serve         - SSH server and leaderboard endpoint

Examples:
  arcade list
  arcade play playground
  arcade menu --player alice
  arcade leaderboard --plain
  arcade serve --ssh :2222 --http :8080`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.arcade/features.db", "Path to the features database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a custom features.yaml")
	rootCmd.PersistentFlags().StringVar(&flagPlayer, "player", defaultPlayer(), "Player name")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(achievementsCmd)
	rootCmd.AddCommand(serveCmd)
}

func defaultPlayer() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "player"
}

// newLogger builds the process logger. Full-screen commands pass
// console=false so nothing is written over the alt screen unless
// --log-file is set.
func newLogger(console bool) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --log-level: %w", err)
	}

	var w io.Writer = io.Discard
	closeFn := func() {}
	switch {
	case flagLogFile != "":
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	case console:
		w = os.Stderr
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "arcade",
		Level:           level,
	})
	return logger, closeFn, nil
}

// loadFeatures reads the feature catalog honoring --config.
func loadFeatures() (config.Features, error) {
	features, err := config.LoadFeatures(flagConfig)
	if err != nil {
		return config.Features{}, fmt.Errorf("cannot load features: %w", err)
	}
	return features, nil
}

// openStore opens the database. A failure is logged and the caller
// continues without persistence.
func openStore(logger *log.Logger) *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open database, running without persistence", "path", flagDBPath, "error", err)
		return nil
	}
	return store
}

// storeDep converts a possibly nil store to the registry interface without
// producing a non-nil interface holding a nil pointer.
func storeDep(store *storage.Store) registry.Store {
	if store == nil {
		return nil
	}
	return store
}

// runtimeConfig sizes the scene to the local terminal.
func runtimeConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW = w
		cfg.ScreenH = h
	}
	cfg.TickRate = flagFPS
	cfg.Seed = flagSeed
	cfg.Player = flagPlayer
	return cfg
}

// newClient builds the leaderboard client from the configured endpoint.
// A non-empty baseURL overrides the configured one.
func newClient(lb config.LeaderboardConfig, baseURL string, logger *log.Logger) *leaderboard.Client {
	if baseURL == "" {
		baseURL = lb.BaseURL
	}
	return leaderboard.NewClient(baseURL,
		leaderboard.WithPath(lb.Path),
		leaderboard.WithTimeout(lb.Timeout),
		leaderboard.WithLogger(logger),
	)
}

func exitErr(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
