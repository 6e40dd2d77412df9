package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/nbarna/cardsmith/internal/card"
	"github.com/nbarna/cardsmith/internal/generator"
	"github.com/nbarna/cardsmith/internal/ingest"
	"github.com/nbarna/cardsmith/internal/store"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 100
)

// GenerateService is the slice of the generator the API depends on.
type GenerateService interface {
	Generate(ctx context.Context, req generator.Request) (*generator.Summary, error)
}

// RunLister is the slice of the store the API depends on.
type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]store.Run, error)
}

// Defaults are the configured fallbacks for request fields the caller
// leaves empty.
type Defaults struct {
	Types       []card.Type
	MaxCards    int
	Destination string
}

// Handler holds API route handlers.
type Handler struct {
	gen      GenerateService
	runs     RunLister
	defaults Defaults
}

// NewHandler creates a new Handler.
func NewHandler(gen GenerateService, runs RunLister, defaults Defaults) *Handler {
	return &Handler{gen: gen, runs: runs, defaults: defaults}
}

// Generate handles POST /api/generate: one source text in, one rendered
// batch out. Input problems map to 400, a reply with no usable cards to
// 422, provider and host failures to 502.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	types := h.defaults.Types
	if len(req.Types) > 0 {
		parsed, err := card.ParseTypes(strings.Join(req.Types, ","))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		types = parsed
	}

	maxCards := req.MaxCards
	if maxCards <= 0 {
		maxCards = h.defaults.MaxCards
	}
	destination := req.Destination
	if destination == "" {
		destination = h.defaults.Destination
	}
	sourceName := req.SourceName
	if sourceName == "" {
		sourceName = "api"
	}

	sum, err := h.gen.Generate(r.Context(), generator.Request{
		SourceName:  sourceName,
		Text:        req.Text,
		Types:       types,
		MaxCards:    maxCards,
		Destination: destination,
		DryRun:      req.DryRun,
	})
	if err != nil {
		switch {
		case errors.Is(err, ingest.ErrTooShort), errors.Is(err, ingest.ErrTooLong):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		case errors.Is(err, generator.ErrNoCards):
			writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
		default:
			slog.Error("generation failed", "source", sourceName, "error", err)
			writeJSON(w, http.StatusBadGateway, errorBody(err.Error()))
		}
		return
	}

	resp := GenerateResponse{
		RunID:        sum.RunID,
		CardsParsed:  sum.CardsParsed,
		CardsCreated: sum.CardsCreated,
		CardsSkipped: sum.CardsSkipped,
		NodesCreated: sum.NodesCreated,
		Destination:  sum.Destination,
	}
	if req.DryRun {
		resp.Cards = sum.Cards
	}
	writeJSON(w, http.StatusOK, resp)
}

// Types handles GET /api/types.
func (h *Handler) Types(w http.ResponseWriter, _ *http.Request) {
	descriptors := card.Descriptors()
	infos := make([]TypeInfo, len(descriptors))
	for i, d := range descriptors {
		infos[i] = TypeInfo{
			ID:      string(d.Type),
			Label:   d.Label,
			Shape:   d.Shape,
			Example: d.Example,
		}
	}
	writeJSON(w, http.StatusOK, TypeListResponse{Types: infos})
}

// Runs handles GET /api/runs.
func (h *Handler) Runs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = defaultRunLimit
	}
	if limit > maxRunLimit {
		limit = maxRunLimit
	}

	runs, err := h.runs.ListRuns(r.Context(), limit)
	if err != nil {
		slog.Error("list runs failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	infos := make([]RunInfo, len(runs))
	for i, run := range runs {
		infos[i] = runInfo(run)
	}
	writeJSON(w, http.StatusOK, RunListResponse{Runs: infos})
}
