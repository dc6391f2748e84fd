// Package config loads settings from .env files and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/csheth/whatif/internal/api"
	"github.com/csheth/whatif/internal/llm"
	"github.com/csheth/whatif/internal/logging"
	"github.com/csheth/whatif/internal/response"
)

// Config holds every setting shared by the terminal client and the server.
// Command-line flags are applied on top by the caller.
type Config struct {
	Endpoint   string        `env:"WHATIF_ENDPOINT" envDefault:"http://localhost:5000"`
	MinLoading time.Duration `env:"WHATIF_MIN_LOADING" envDefault:"0s"`
	Layout     string        `env:"WHATIF_LAYOUT" envDefault:"raw"` // omit-empty|all|raw

	LogFile  string `env:"WHATIF_LOG_FILE"`
	LogLevel string `env:"WHATIF_LOG_LEVEL" envDefault:"info"`

	Addr          string `env:"WHATIF_ADDR" envDefault:":5000"`
	DB            string `env:"WHATIF_DB" envDefault:"data/whatif.sqlite"`
	RatePerMinute int    `env:"WHATIF_RATE_PER_MINUTE" envDefault:"30"`

	CacheDir string        `env:"WHATIF_CACHE_DIR"`
	CacheTTL time.Duration `env:"WHATIF_CACHE_TTL" envDefault:"0s"`

	LLM LLM
}

// LLM selects and authenticates the narrative generator.
type LLM struct {
	Provider     string `env:"LLM_PROVIDER" envDefault:"groq"`
	Model        string `env:"LLM_MODEL"`
	BaseURL      string `env:"LLM_BASE_URL"`
	GroqAPIKey   string `env:"GROQ_API_KEY"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OllamaHost   string `env:"OLLAMA_HOST"`
}

// Load reads the given .env files (default ".env") into the process
// environment without overriding variables that are already set, then parses
// the environment. Missing .env files are not an error.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = api.DefaultEndpoint
	}
	if _, ok := response.ParsePolicy(cfg.Layout); !ok {
		return Config{}, fmt.Errorf("unknown layout %q", cfg.Layout)
	}
	return cfg, nil
}

// LayoutPolicy returns the configured fallback policy, defaulting to raw
// fallback for unknown names.
func (c Config) LayoutPolicy() response.Policy {
	policy, ok := response.ParsePolicy(c.Layout)
	if !ok {
		return response.PolicyRawFallback
	}
	return policy
}

// Logging returns the logger settings.
func (c Config) Logging() logging.Config {
	return logging.Config{Level: c.LogLevel, File: c.LogFile}
}

// LLMConfig returns the generator settings, picking the API key and endpoint
// that belong to the selected provider.
func (c Config) LLMConfig() llm.Config {
	provider := strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	cfg := llm.Config{
		Provider: provider,
		Model:    c.LLM.Model,
		Endpoint: c.LLM.BaseURL,
	}
	switch provider {
	case llm.ProviderOpenAI:
		cfg.APIKey = c.LLM.OpenAIAPIKey
	case llm.ProviderOllama:
		if cfg.Endpoint == "" {
			cfg.Endpoint = c.LLM.OllamaHost
		}
	case llm.ProviderMock:
	default:
		cfg.APIKey = c.LLM.GroqAPIKey
	}
	return cfg
}
