package app

import (
	"context"

	"github.com/nbarna/cardsmith/internal/config"
	"github.com/nbarna/cardsmith/internal/generator"
	"github.com/nbarna/cardsmith/internal/host"
	"github.com/nbarna/cardsmith/internal/llm"
	"github.com/nbarna/cardsmith/internal/store"
)

// App is the main application container holding all dependencies.
type App struct {
	Config    *config.Config
	Store     *store.Store
	LLM       llm.Client
	Host      host.NodeCreator
	Generator *generator.Generator
}

// New creates a new application instance with all dependencies wired up.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	st, err := store.New(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}

	client, err := llm.New(cfg.LLMConfig())
	if err != nil {
		st.Close()
		return nil, err
	}

	hostClient := host.NewClient(host.ClientConfig{
		BaseURL: cfg.HostURL,
		Token:   cfg.HostToken,
	})

	gen := generator.New(generator.Config{
		LLM:             client,
		Host:            hostClient,
		Store:           st,
		EnforceMaxCards: cfg.EnforceMaxCards,
	})

	return &App{
		Config:    cfg,
		Store:     st,
		LLM:       client,
		Host:      hostClient,
		Generator: gen,
	}, nil
}

// Close closes all resources.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
