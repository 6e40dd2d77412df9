package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nbarna/cardsmith/internal/app"
	"github.com/nbarna/cardsmith/internal/card"
	"github.com/nbarna/cardsmith/internal/config"
	"github.com/nbarna/cardsmith/internal/generator"
	"github.com/nbarna/cardsmith/internal/ingest"
)

var (
	generateFile   string
	generateStdin  bool
	generateTypes  string
	generateMax    int
	generateDest   string
	generateDryRun bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate flashcards from a document",
	Long: `Generate flashcards from a text, Markdown or PDF document and
file them into the note host.

Examples:
  cardsmith generate --file notes.md
  cardsmith generate --file chapter.pdf --types basic,cloze --max 15
  cardsmith generate --stdin --dry-run < notes.txt`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateFile, "file", "f", "", "Document to read (.txt, .md, .pdf)")
	generateCmd.Flags().BoolVar(&generateStdin, "stdin", false, "Read the document from standard input")
	generateCmd.Flags().StringVarP(&generateTypes, "types", "t", "", "Comma-separated card types (default: configured CARD_TYPES)")
	generateCmd.Flags().IntVarP(&generateMax, "max", "m", 0, "Card budget for this batch (default: configured MAX_CARDS)")
	generateCmd.Flags().StringVarP(&generateDest, "dest", "d", "", "Destination container node (default: configured DESTINATION)")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "Parse and print cards without touching the host")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForGeneration(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if !generateDryRun {
		if err := cfg.ValidateForHost(); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
	}

	if generateFile == "" && !generateStdin {
		return fmt.Errorf("specify --file or --stdin")
	}

	var text, sourceName string
	if generateStdin {
		text, err = ingest.ReadAll(os.Stdin)
		sourceName = "stdin"
	} else {
		text, err = ingest.ReadDocument(generateFile)
		sourceName = filepath.Base(generateFile)
	}
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	types := cfg.CardTypes
	if generateTypes != "" {
		types, err = card.ParseTypes(generateTypes)
		if err != nil {
			return err
		}
	}
	maxCards := cfg.MaxCards
	if generateMax > 0 {
		maxCards = generateMax
	}
	destination := cfg.Destination
	if generateDest != "" {
		destination = generateDest
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer a.Close()

	sum, err := a.Generator.Generate(ctx, generator.Request{
		SourceName:  sourceName,
		Text:        text,
		Types:       types,
		MaxCards:    maxCards,
		Destination: destination,
		DryRun:      generateDryRun,
	})
	if err != nil {
		return err
	}

	if generateDryRun {
		fmt.Println("=== DRY RUN: nothing was written to the host ===")
		fmt.Println()
		for i, c := range sum.Cards {
			fmt.Printf("%2d. [%s] %s\n", i+1, c.Type, describeCard(c))
		}
		fmt.Printf("\nParsed %d cards.\n", sum.CardsParsed)
		return nil
	}

	fmt.Printf("Created %d of %d cards under %q (%d nodes).\n",
		sum.CardsCreated, sum.CardsParsed, destination, sum.NodesCreated)
	if sum.CardsSkipped > 0 {
		fmt.Printf("Skipped %d cards; see the log for details.\n", sum.CardsSkipped)
	}
	return nil
}

// describeCard gives a one-line preview of a card for dry-run output.
func describeCard(c card.Card) string {
	switch c.Type {
	case card.TypeCloze:
		return c.ClozeText
	case card.TypeList:
		return fmt.Sprintf("%s (%d items)", c.Front, len(c.BackItems))
	default:
		return fmt.Sprintf("%s -> %s", c.Front, c.Back)
	}
}
