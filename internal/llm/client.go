// Package llm abstracts the text-generation providers behind a single
// completion interface. Provider-specific request and response
// envelopes never leave this package.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Generation settings shared by every provider client.
const (
	defaultTimeout      = 120 * time.Second
	maxCompletionTokens = 4096
	temperature         = 0.2
)

// Provider identifies a text-generation backend.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// Providers returns every supported provider.
func Providers() []Provider {
	return []Provider{ProviderOpenAI, ProviderAnthropic, ProviderGemini}
}

// Valid reports whether p names a supported provider.
func (p Provider) Valid() bool {
	switch p {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
		return true
	}
	return false
}

// Client sends one instruction prompt to a provider and returns the raw
// reply text, untouched. Normalization happens downstream.
type Client interface {
	// Name returns the provider identifier for logging and run history.
	Name() string

	// Model returns the resolved model identifier.
	Model() string

	// Complete sends the instruction text as a single user message and
	// returns the reply text.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config selects and configures a provider client.
type Config struct {
	Provider Provider
	APIKey   string
	Model    string // provider default when empty
	BaseURL  string // provider default when empty
}

// logCompletion records one finished round trip.
func logCompletion(c Client, elapsed time.Duration) {
	slog.Debug("completion finished", "provider", c.Name(), "model", c.Model(), "elapsed", elapsed)
}

// New returns the client implementation for cfg.Provider. Adding a
// provider means adding a case here and nothing elsewhere.
func New(cfg Config) (Client, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(cfg), nil
	case ProviderAnthropic:
		return NewAnthropicClient(cfg), nil
	case ProviderGemini:
		return NewGeminiClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %q", cfg.Provider)
	}
}
