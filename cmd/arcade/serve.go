package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-features/internal/leaderboard"
	"github.com/vovakirdan/arcade-features/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHTTPAddr    string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the arcade SSH server and leaderboard endpoint",
	Long: `Start an SSH server that gives each connection its own menu session,
and an HTTP server answering GET /api/leaderboards with the fastest times.

Progress and times are stored per-server. The SSH user name is the
player name.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.arcade/host_key

Either server can be disabled by passing an empty address.

Examples:
  arcade serve                           # SSH on :23234, HTTP on :8080
  arcade serve --ssh :2222               # SSH on port 2222
  arcade serve --http ""                 # SSH only
  arcade serve --host-key ./my_host_key  # Use specific host key

Users can connect with:
  ssh localhost -p 23234`,
	Run: runServe,
}

func init() {
	defaults := tui.DefaultSSHServerConfig()
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", defaults.Address, "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHTTPAddr, "http", ":8080", "Leaderboard HTTP address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", int(defaults.IdleTimeout/time.Minute), "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) {
	logger, closeLog, err := newLogger(true)
	if err != nil {
		exitErr("%v", err)
	}
	defer closeLog()

	if flagSSHAddr == "" && flagHTTPAddr == "" {
		exitErr("nothing to serve: both --ssh and --http are empty")
	}

	features, err := loadFeatures()
	if err != nil {
		exitErr("%v", err)
	}

	store := openStore(logger)
	if store == nil {
		exitErr("serve needs a writable database at %s", flagDBPath)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	running := 0

	if flagHTTPAddr != "" {
		lb := features.Leaderboard
		handler := leaderboard.NewHandler(store.LeaderboardSource(lb.Level), lb.Limit, logger.WithPrefix("arcade-http"))
		httpServer := &http.Server{
			Addr:              flagHTTPAddr,
			Handler:           leaderboard.NewMux(handler),
			ReadHeaderTimeout: 5 * time.Second,
		}
		running++
		go func() {
			logger.Info("starting leaderboard endpoint", "address", flagHTTPAddr, "path", leaderboard.DefaultPath)
			err := httpServer.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				err = nil
			}
			errCh <- err
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = httpServer.Shutdown(shutdownCtx)
		}()
	}

	if flagSSHAddr != "" {
		cfg := tui.DefaultSSHServerConfig()
		cfg.Address = flagSSHAddr
		cfg.HostKeyPath = flagHostKey
		cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
		cfg.TickRate = flagFPS

		server, err := tui.NewSSHServer(cfg, tui.SessionDeps{
			Features: features,
			Store:    store,
			Fetcher:  newClient(features.Leaderboard, "", logger),
			Logger:   logger.WithPrefix("arcade-ssh"),
		})
		if err != nil {
			stop()
			exitErr("creating server: %v", err)
		}

		fmt.Printf("Starting arcade SSH server on %s\n", cfg.Address)
		fmt.Println("Connect with: ssh localhost -p " + portOf(cfg.Address))
		running++
		go func() {
			errCh <- server.Serve(ctx)
		}()
	}

	fmt.Println("Press Ctrl+C to stop")

	var firstErr error
	for i := 0; i < running; i++ {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
			stop()
		}
	}
	if firstErr != nil {
		logger.Error("server stopped", "error", firstErr)
		store.Close()
		exitErr("%v", firstErr)
	}
	logger.Info("servers stopped")
}

func portOf(addr string) string {
	if _, port, err := net.SplitHostPort(addr); err == nil {
		return port
	}
	return addr
}
