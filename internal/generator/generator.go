// Package generator runs the full pipeline for one batch: normalize
// the source, compile the prompt, call the provider, normalize the
// reply, render cards into the host, record the run.
package generator

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/nbarna/cardsmith/internal/card"
	"github.com/nbarna/cardsmith/internal/host"
	"github.com/nbarna/cardsmith/internal/ingest"
	"github.com/nbarna/cardsmith/internal/llm"
	"github.com/nbarna/cardsmith/internal/normalize"
	"github.com/nbarna/cardsmith/internal/prompt"
	"github.com/nbarna/cardsmith/internal/render"
	"github.com/nbarna/cardsmith/internal/store"
)

// ErrNoCards reports that the provider answered but nothing in the
// reply survived normalization. Distinct from a transport failure so
// callers can present it as an outcome, not a malfunction.
var ErrNoCards = errors.New("no valid cards extracted")

// Request describes one generation batch.
type Request struct {
	SourceName  string
	Text        string
	Types       []card.Type
	MaxCards    int
	Destination string // container node name; empty files cards at the root
	DryRun      bool   // parse only, touch nothing in the host
}

// Summary is the caller-facing outcome of a batch.
type Summary struct {
	RunID        string
	Cards        []card.Card // the parsed batch, for dry-run inspection
	CardsParsed  int
	CardsCreated int
	CardsSkipped int
	NodesCreated int
	Destination  string
}

// Config holds the generator's collaborators.
type Config struct {
	LLM             llm.Client
	Host            host.NodeCreator
	Store           *store.Store // nil disables run history
	EnforceMaxCards bool
}

// Generator orchestrates one source text into rendered cards.
type Generator struct {
	llm             llm.Client
	host            host.NodeCreator
	renderer        *render.Renderer
	store           *store.Store
	enforceMaxCards bool
}

// New creates a new Generator.
func New(cfg Config) *Generator {
	return &Generator{
		llm:             cfg.LLM,
		host:            cfg.Host,
		renderer:        render.New(cfg.Host),
		store:           cfg.Store,
		enforceMaxCards: cfg.EnforceMaxCards,
	}
}

// SourceHash fingerprints normalized source text, so watch mode can
// recognize content it already processed regardless of file name.
func SourceHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Processed returns the run that already covered this source text, or
// nil when the content still needs a generation run. Only the latest
// run for the content counts, and only when it succeeded: failed and
// empty outcomes leave the content eligible for a retry. Without run
// history nothing is ever considered processed.
func (g *Generator) Processed(ctx context.Context, text string) (*store.Run, error) {
	if g.store == nil {
		return nil, nil
	}

	prior, err := g.store.GetRunBySourceHash(ctx, SourceHash(ingest.Normalize(text)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("look up prior runs: %w", err)
	}
	if prior.Status != store.StatusSucceeded {
		return nil, nil
	}
	return &prior, nil
}

// Generate runs one batch. Input rejection and provider failures are
// hard errors; individual bad cards are logged and skipped inside the
// batch and only show up in the summary counts.
func (g *Generator) Generate(ctx context.Context, req Request) (*Summary, error) {
	text := ingest.Normalize(req.Text)
	if err := ingest.Validate(text); err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	record := g.store != nil && !req.DryRun

	slog.Info("starting generation",
		"run_id", runID,
		"source", req.SourceName,
		"provider", g.llm.Name(),
		"model", g.llm.Model(),
		"types", typeList(req.Types),
		"max_cards", req.MaxCards,
	)

	if record {
		run := store.Run{
			ID:         runID,
			SourceName: req.SourceName,
			SourceHash: SourceHash(text),
			Provider:   g.llm.Name(),
			Model:      g.llm.Model(),
			CardTypes:  typeList(req.Types),
			MaxCards:   req.MaxCards,
		}
		if err := g.store.CreateRun(ctx, run); err != nil {
			slog.Warn("failed to record run", "run_id", runID, "error", err)
			record = false
		}
	}

	instruction := prompt.Build(text, req.Types, req.MaxCards)

	reply, err := g.llm.Complete(ctx, instruction)
	if err != nil {
		g.finish(ctx, record, runID, store.StatusFailed, err.Error(), 0, 0, 0)
		return nil, fmt.Errorf("complete: %w", err)
	}

	cards := normalize.Parse(reply)
	if len(cards) == 0 {
		g.finish(ctx, record, runID, store.StatusEmpty, "", 0, 0, 0)
		return nil, ErrNoCards
	}

	if g.enforceMaxCards && req.MaxCards > 0 && len(cards) > req.MaxCards {
		slog.Warn("truncating reply to the requested card count",
			"parsed", len(cards), "max_cards", req.MaxCards)
		cards = cards[:req.MaxCards]
	}

	if req.DryRun {
		return &Summary{
			RunID:       runID,
			Cards:       cards,
			CardsParsed: len(cards),
			Destination: req.Destination,
		}, nil
	}

	dest, err := g.resolveDestination(ctx, req.Destination)
	if err != nil {
		g.finish(ctx, record, runID, store.StatusFailed, err.Error(), len(cards), 0, 0)
		return nil, fmt.Errorf("resolve destination: %w", err)
	}

	res := g.renderer.RenderBatch(ctx, cards, dest)

	g.finish(ctx, record, runID, store.StatusSucceeded, "", len(cards), res.Created, res.Skipped)

	slog.Info("generation complete",
		"run_id", runID,
		"parsed", len(cards),
		"created", res.Created,
		"skipped", res.Skipped,
	)

	return &Summary{
		RunID:        runID,
		Cards:        cards,
		CardsParsed:  len(cards),
		CardsCreated: res.Created,
		CardsSkipped: res.Skipped,
		NodesCreated: res.Nodes,
		Destination:  req.Destination,
	}, nil
}

// resolveDestination finds or creates the container node the batch is
// filed under. An empty name means the host root.
func (g *Generator) resolveDestination(ctx context.Context, name string) (*host.NodeRef, error) {
	if name == "" {
		return nil, nil
	}

	ref, err := g.host.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("find destination: %w", err)
	}
	if ref != nil {
		return ref, nil
	}

	slog.Info("creating destination node", "name", name)
	ref, err = g.host.CreateNode(ctx, name, nil)
	if err != nil {
		return nil, fmt.Errorf("create destination: %w", err)
	}
	if ref == nil {
		return nil, fmt.Errorf("create destination: host returned no node ref")
	}
	if err := g.host.SetAsContainer(ctx, *ref); err != nil {
		return nil, fmt.Errorf("mark destination as container: %w", err)
	}
	return ref, nil
}

// finish records the run outcome; history is best-effort and never
// fails the batch.
func (g *Generator) finish(ctx context.Context, record bool, runID, status, errMsg string, parsed, created, skipped int) {
	if !record {
		return
	}
	if err := g.store.FinishRun(ctx, runID, status, errMsg, parsed, created, skipped); err != nil {
		slog.Warn("failed to record run outcome", "run_id", runID, "error", err)
	}
}

func typeList(types []card.Type) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ",")
}
