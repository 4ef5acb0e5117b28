package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-features/internal/platform/tui"
	"github.com/vovakirdan/arcade-features/internal/registry"
)

var playCmd = &cobra.Command{
	Use:   "play <scene>",
	Short: "Run a scene",
	Long: `Start the specified scene without the menu.

Controls:
  Arrows/WASD  - Move (playground) or move the cursor (editor)
  Space/Enter  - Toggle the tile under the cursor
  Mouse click  - Toggle the clicked tile
  S / L        - Save / load the level
  P            - Pause
  R            - Restart
  Q/Ctrl+C     - Quit

Examples:
  arcade play playground
  arcade play editor --db ./levels.db
  arcade play playground --config ./my-features.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runPlay,
}

func runPlay(_ *cobra.Command, args []string) {
	sceneID := args[0]

	if !registry.Exists(sceneID) {
		fmt.Fprintf(os.Stderr, "Error: unknown scene %q\n", sceneID)
		fmt.Fprintln(os.Stderr, "Run 'arcade list' to see available scenes.")
		os.Exit(1)
	}

	logger, closeLog, err := newLogger(false)
	if err != nil {
		exitErr("%v", err)
	}
	defer closeLog()

	features, err := loadFeatures()
	if err != nil {
		exitErr("%v", err)
	}

	// Continue without storage if the database is unavailable
	store := openStore(logger)

	game, err := registry.Create(sceneID, registry.Deps{
		Features: features,
		Store:    storeDep(store),
		Logger:   logger,
	})
	if err != nil {
		if store != nil {
			store.Close()
		}
		exitErr("creating scene: %v", err)
	}

	runErr := tui.Run(game, runtimeConfig(), logger)

	// Close store before potential exit
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		exitErr("running scene: %v", runErr)
	}
}
