package api

import (
	"time"

	"github.com/nbarna/cardsmith/internal/card"
	"github.com/nbarna/cardsmith/internal/store"
)

// GenerateRequest is the request body for POST /api/generate.
type GenerateRequest struct {
	Text        string   `json:"text"`
	SourceName  string   `json:"source_name,omitempty"`
	Types       []string `json:"types,omitempty"`
	MaxCards    int      `json:"max_cards,omitempty"`
	Destination string   `json:"destination,omitempty"`
	DryRun      bool     `json:"dry_run,omitempty"`
}

// GenerateResponse reports the outcome of one generation batch.
type GenerateResponse struct {
	RunID        string      `json:"run_id"`
	CardsParsed  int         `json:"cards_parsed"`
	CardsCreated int         `json:"cards_created"`
	CardsSkipped int         `json:"cards_skipped"`
	NodesCreated int         `json:"nodes_created"`
	Destination  string      `json:"destination,omitempty"`
	Cards        []card.Card `json:"cards,omitempty"` // dry runs only
}

// TypeInfo describes one supported card type.
type TypeInfo struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Shape   string `json:"shape"`
	Example string `json:"example"`
}

// TypeListResponse wraps GET /api/types.
type TypeListResponse struct {
	Types []TypeInfo `json:"types"`
}

// RunInfo is one run in GET /api/runs.
type RunInfo struct {
	ID           string     `json:"id"`
	SourceName   string     `json:"source_name"`
	Provider     string     `json:"provider"`
	Model        string     `json:"model"`
	CardTypes    string     `json:"card_types"`
	MaxCards     int        `json:"max_cards"`
	CardsParsed  int        `json:"cards_parsed"`
	CardsCreated int        `json:"cards_created"`
	CardsSkipped int        `json:"cards_skipped"`
	Status       string     `json:"status"`
	Error        string     `json:"error,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// RunListResponse wraps GET /api/runs.
type RunListResponse struct {
	Runs []RunInfo `json:"runs"`
}

func runInfo(r store.Run) RunInfo {
	info := RunInfo{
		ID:           r.ID,
		SourceName:   r.SourceName,
		Provider:     r.Provider,
		Model:        r.Model,
		CardTypes:    r.CardTypes,
		MaxCards:     r.MaxCards,
		CardsParsed:  r.CardsParsed,
		CardsCreated: r.CardsCreated,
		CardsSkipped: r.CardsSkipped,
		Status:       r.Status,
		StartedAt:    r.StartedAt,
	}
	if r.ErrorMessage.Valid {
		info.Error = r.ErrorMessage.String
	}
	if r.FinishedAt.Valid {
		t := r.FinishedAt.Time
		info.FinishedAt = &t
	}
	return info
}
