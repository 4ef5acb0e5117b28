package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-features/internal/platform/tui"
)

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "Show achievement progress for a player",
	Long: `Display every configured achievement with the saved progress of
the player given by --player.

Examples:
  arcade achievements
  arcade achievements --player alice
  arcade achievements --config ./my-features.yaml`,
	Run: runAchievements,
}

func runAchievements(_ *cobra.Command, _ []string) {
	logger, closeLog, err := newLogger(true)
	if err != nil {
		exitErr("%v", err)
	}
	defer closeLog()

	features, err := loadFeatures()
	if err != nil {
		exitErr("%v", err)
	}

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	tracker, err := tui.LoadTracker(features, storeDep(store), flagPlayer, logger)
	if err != nil {
		// The tracker is still usable with empty progress
		if tracker == nil {
			exitErr("%v", err)
		}
		logger.Warn("could not load saved progress", "player", flagPlayer, "error", err)
	}

	fmt.Printf("Achievements - %s\n", flagPlayer)
	fmt.Println()
	fmt.Print(tui.FormatAchievements(tui.AchievementRows(tracker)))
}
