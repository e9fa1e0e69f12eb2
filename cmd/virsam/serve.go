package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/seqops/virsam/internal/api"
	"github.com/seqops/virsam/internal/config"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the submission journal over HTTP",
	Long: `Start a read-only HTTP API over the submission journal.

The API lists what was submitted, where, and under which accessions,
for team review. It never submits anything; submissions happen only
through the CLI.`,
	Example: `  virsam serve
  virsam serve --port 3000 --host 0.0.0.0`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	servePort int
	serveHost string
	serveCORS bool
)

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8048, "Port to listen on")
	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "Host to bind to")
	serveCmd.Flags().BoolVar(&serveCORS, "enable-cors", true, "Enable CORS for web access")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.GetConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	server, err := api.NewServer(&api.Config{
		Host:        serveHost,
		Port:        servePort,
		JournalPath: cfg.Journal.Path,
		EnableCORS:  serveCORS,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	// Graceful shutdown on interrupt
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		printInfo("Journal: %s", cfg.Journal.Path)
		printSuccess("Review API ready at http://%s:%d", serveHost, servePort)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-sigChan:
		printInfo("\nShutting down...")
	case err := <-serverErr:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	printSuccess("Server stopped")
	return nil
}
