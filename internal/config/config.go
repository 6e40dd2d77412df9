package config

import (
	"fmt"
	"os"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"

	"github.com/nbarna/cardsmith/internal/card"
	"github.com/nbarna/cardsmith/internal/llm"
)

// Config holds all application configuration.
type Config struct {
	// Provider
	Provider        llm.Provider
	OpenAIAPIKey    string
	AnthropicAPIKey string
	GeminiAPIKey    string
	Model           string // provider default when empty
	LLMBaseURL      string // override for self-hosted gateways and tests

	// Note host
	HostURL   string
	HostToken string

	// Generation
	Destination     string // container node cards are filed under
	CardTypes       []card.Type
	MaxCards        int
	EnforceMaxCards bool // truncate replies that overshoot MaxCards

	// Database
	DatabasePath string

	// Watch mode
	WatchDir string

	// HTTP API
	APIAddr  string
	APIToken string

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables. A .env file in
// the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Provider:        llm.Provider(getEnv("PROVIDER", string(llm.ProviderOpenAI))),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		Model:           getEnv("MODEL", ""),
		LLMBaseURL:      getEnv("LLM_BASE_URL", ""),
		HostURL:         getEnv("HOST_URL", ""),
		HostToken:       getEnv("HOST_TOKEN", ""),
		Destination:     getEnv("DESTINATION", "Generated Flashcards"),
		DatabasePath:    getEnv("DATABASE_PATH", "data/cardsmith.db"),
		WatchDir:        getEnv("WATCH_DIR", ""),
		APIAddr:         getEnv("API_ADDR", ":8180"),
		APIToken:        getEnv("API_TOKEN", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	maxCards, err := strconv.Atoi(getEnv("MAX_CARDS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_CARDS: %w", err)
	}
	cfg.MaxCards = maxCards

	enforce, err := strconv.ParseBool(getEnv("ENFORCE_MAX_CARDS", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid ENFORCE_MAX_CARDS: %w", err)
	}
	cfg.EnforceMaxCards = enforce

	if raw := getEnv("CARD_TYPES", ""); raw != "" {
		types, err := card.ParseTypes(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid CARD_TYPES: %w", err)
		}
		cfg.CardTypes = types
	} else {
		cfg.CardTypes = card.Types()
	}

	return cfg, nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DatabasePath,
			validation.Required.Error("DATABASE_PATH is required")),
		validation.Field(&c.Provider,
			validation.Required.Error("PROVIDER is required"),
			validation.In(providerValues()...).Error("PROVIDER must be one of: openai, anthropic, gemini")),
		validation.Field(&c.MaxCards,
			validation.Required.Error("MAX_CARDS must be at least 1"),
			validation.Min(1).Error("MAX_CARDS must be at least 1")),
		validation.Field(&c.CardTypes,
			validation.Required.Error("CARD_TYPES must name at least one card type"),
			validation.Each(validation.By(validCardType))),
	)
}

// ValidateForGeneration checks the settings needed to call a provider.
func (c *Config) ValidateForGeneration() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ProviderAPIKey() == "" {
		return fmt.Errorf("%s is required for provider %q", apiKeyVar(c.Provider), c.Provider)
	}
	return nil
}

// ValidateForHost checks the settings needed to write into the host.
func (c *Config) ValidateForHost() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.HostURL,
			validation.Required.Error("HOST_URL is required"),
			is.URL.Error("HOST_URL must be a valid URL")),
	)
}

// ValidateForWatch checks the settings for the watch daemon.
func (c *Config) ValidateForWatch() error {
	if err := c.ValidateForGeneration(); err != nil {
		return err
	}
	if err := c.ValidateForHost(); err != nil {
		return err
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.WatchDir,
			validation.Required.Error("WATCH_DIR is required")),
	)
}

// ValidateForServe checks the settings for the HTTP API server.
func (c *Config) ValidateForServe() error {
	if err := c.ValidateForGeneration(); err != nil {
		return err
	}
	if err := c.ValidateForHost(); err != nil {
		return err
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.APIAddr,
			validation.Required.Error("API_ADDR is required")),
	)
}

// ProviderAPIKey returns the API key belonging to the configured
// provider.
func (c *Config) ProviderAPIKey() string {
	switch c.Provider {
	case llm.ProviderOpenAI:
		return c.OpenAIAPIKey
	case llm.ProviderAnthropic:
		return c.AnthropicAPIKey
	case llm.ProviderGemini:
		return c.GeminiAPIKey
	}
	return ""
}

// LLMConfig assembles the provider client configuration.
func (c *Config) LLMConfig() llm.Config {
	return llm.Config{
		Provider: c.Provider,
		APIKey:   c.ProviderAPIKey(),
		Model:    c.Model,
		BaseURL:  c.LLMBaseURL,
	}
}

func apiKeyVar(p llm.Provider) string {
	switch p {
	case llm.ProviderOpenAI:
		return "OPENAI_API_KEY"
	case llm.ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case llm.ProviderGemini:
		return "GEMINI_API_KEY"
	}
	return "API key"
}

func providerValues() []any {
	providers := llm.Providers()
	values := make([]any, len(providers))
	for i, p := range providers {
		values[i] = p
	}
	return values
}

func validCardType(value any) error {
	t, _ := value.(card.Type)
	if !t.Valid() {
		return fmt.Errorf("unknown card type %q", t)
	}
	return nil
}

// getEnv returns the environment variable value or a fallback.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
