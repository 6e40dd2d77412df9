package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nbarna/cardsmith/internal/app"
	"github.com/nbarna/cardsmith/internal/config"
	"github.com/nbarna/cardsmith/internal/generator"
	"github.com/nbarna/cardsmith/internal/ingest"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a directory and generate cards from new documents",
	Long: `Run the watch daemon: every document created or rewritten in the
watched directory is turned into flashcards once. Documents whose
content was already processed successfully are skipped.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForWatch(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer a.Close()

	slog.Info("starting watch daemon",
		"dir", cfg.WatchDir,
		"provider", cfg.Provider,
		"destination", cfg.Destination,
	)

	// Run the watcher in background
	errCh := make(chan error, 1)
	go func() {
		errCh <- ingest.Watch(ctx, cfg.WatchDir, func(ctx context.Context, path string) {
			handleDocument(ctx, a, path)
		})
	}()

	// Wait for shutdown signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil && err != context.Canceled {
			return fmt.Errorf("watcher error: %w", err)
		}
	}

	slog.Info("shutting down...")
	cancel()
	return nil
}

// handleDocument runs one watched document through the pipeline.
// Failures are logged and the daemon keeps watching.
func handleDocument(ctx context.Context, a *app.App, path string) {
	text, err := ingest.ReadDocument(path)
	if err != nil {
		slog.Error("failed to read document", "path", path, "error", err)
		return
	}

	prior, err := a.Generator.Processed(ctx, text)
	if err != nil {
		slog.Warn("failed to check run history", "path", path, "error", err)
	}
	if prior != nil {
		slog.Info("document content already processed, skipping",
			"path", path, "run_id", prior.ID)
		return
	}

	sum, err := a.Generator.Generate(ctx, generator.Request{
		SourceName:  filepath.Base(path),
		Text:        text,
		Types:       a.Config.CardTypes,
		MaxCards:    a.Config.MaxCards,
		Destination: a.Config.Destination,
	})
	if err != nil {
		slog.Error("generation failed", "path", path, "error", err)
		return
	}

	slog.Info("document processed",
		"path", path,
		"created", sum.CardsCreated,
		"skipped", sum.CardsSkipped,
	)
}
