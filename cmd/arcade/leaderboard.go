package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-features/internal/leaderboard"
	"github.com/vovakirdan/arcade-features/internal/platform/tui"
)

var (
	flagPlain bool
	flagURL   string
	flagLocal bool
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the fastest wave clears",
	Long: `Fetch the leaderboard from the configured endpoint and display it.

While the request is in flight "Loading..." is shown; a failed request
shows an error message instead of entries.

Examples:
  arcade leaderboard
  arcade leaderboard --plain
  arcade leaderboard --url http://arcade.example.com:8080
  arcade leaderboard --local --plain`,
	Run: runLeaderboard,
}

func init() {
	leaderboardCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print the list once instead of opening the TUI")
	leaderboardCmd.Flags().StringVar(&flagURL, "url", "", "Override the configured leaderboard base URL")
	leaderboardCmd.Flags().BoolVar(&flagLocal, "local", false, "Read times from the local database instead of HTTP")
}

func runLeaderboard(_ *cobra.Command, _ []string) {
	logger, closeLog, err := newLogger(flagPlain)
	if err != nil {
		exitErr("%v", err)
	}
	defer closeLog()

	features, err := loadFeatures()
	if err != nil {
		exitErr("%v", err)
	}
	lb := features.Leaderboard

	var fetcher leaderboard.Fetcher = newClient(lb, flagURL, logger)
	if flagLocal {
		store := openStore(logger)
		if store == nil {
			exitErr("--local needs a readable database at %s", flagDBPath)
		}
		defer store.Close()
		fetcher = leaderboard.SourceFetcher{Source: store.LeaderboardSource(lb.Level), Limit: lb.Limit}
	}

	if !flagPlain {
		cfg := runtimeConfig()
		if err := tui.RunLeaderboard(fetcher, lb.Timeout, cfg.ScreenW, cfg.ScreenH); err != nil {
			exitErr("%v", err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), lb.Timeout)
	defer cancel()

	board := leaderboard.NewBoard()
	_ = board.Refresh(ctx, fetcher) // failure is rendered as the error text

	fmt.Printf("Fastest times - %s\n", lb.Level)
	fmt.Println()
	fmt.Print(board.Text())
	if board.Status() == leaderboard.StatusFailed {
		fmt.Println()
		os.Exit(1)
	}
}
