package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nbarna/cardsmith/internal/config"
	"github.com/nbarna/cardsmith/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded generation runs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st, err := store.New(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	totals, err := st.GetTotals(ctx)
	if err != nil {
		return fmt.Errorf("aggregate runs: %w", err)
	}

	runs, err := st.ListRuns(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	fmt.Printf("Database: %s\n", cfg.DatabasePath)
	fmt.Printf("Total runs: %d (%d cards parsed, %d created, %d skipped)\n\n",
		totals.Runs, totals.CardsParsed, totals.CardsCreated, totals.CardsSkipped)

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	for _, r := range runs {
		fmt.Printf("%s  %-9s  %s\n", r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Status, r.SourceName)
		fmt.Printf("    provider=%s model=%s types=%s\n", r.Provider, r.Model, r.CardTypes)
		fmt.Printf("    parsed=%d created=%d skipped=%d", r.CardsParsed, r.CardsCreated, r.CardsSkipped)
		if r.FinishedAt.Valid {
			fmt.Printf(" duration=%s", r.FinishedAt.Time.Sub(r.StartedAt).Round(10*time.Millisecond))
		}
		fmt.Println()
		if r.ErrorMessage.Valid && r.ErrorMessage.String != "" {
			fmt.Printf("    error: %s\n", r.ErrorMessage.String)
		}
	}
	return nil
}
