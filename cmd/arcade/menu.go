package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-features/internal/platform/tui"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start the arcade with an interactive menu",
	Long: `Start the arcade in interactive menu mode.

The menu lists every scene plus the leaderboard and achievements screens.
After a scene ends, you return to the menu.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select
  B/Esc        - Back to menu
  Q            - Quit

Examples:
  arcade menu
  arcade menu --fps 30 --player alice
  arcade menu --db ./features.db`,
	Run: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) {
	logger, closeLog, err := newLogger(false)
	if err != nil {
		exitErr("%v", err)
	}
	defer closeLog()

	features, err := loadFeatures()
	if err != nil {
		exitErr("%v", err)
	}

	store := openStore(logger)

	deps := tui.SessionDeps{
		Features: features,
		Store:    storeDep(store),
		Fetcher:  newClient(features.Leaderboard, "", logger),
		Logger:   logger,
	}

	runErr := tui.RunSession(deps, runtimeConfig())

	if store != nil {
		store.Close()
	}

	if runErr != nil {
		logger.Error("session ended with error", "error", runErr)
		exitErr("%v", runErr)
	}
}
