package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderMock   = "mock"
)

const (
	defaultGroqBaseURL   = "https://api.groq.com/openai/v1/"
	defaultGroqModel     = "llama3-8b-8192"
	defaultOpenAIBaseURL = "https://api.openai.com/v1/"
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultOllamaHost    = "http://localhost:11434"
	defaultOllamaModel   = "llama3:8b"
	// Keep questions well inside every supported model's context window.
	maxQuestionChars = 2_000
)

const defaultLLMHTTPTimeout = 3 * time.Minute

// Config describes how to build a generator.
type Config struct {
	Provider   string
	Model      string
	Endpoint   string
	APIKey     string
	HTTPClient *http.Client
}

// Generator turns a hypothetical question into labeled narrative text.
type Generator interface {
	Generate(ctx context.Context, question string) (string, error)
	Name() string
}

// New builds the generator selected by cfg.Provider, filling provider
// defaults for the model and endpoint.
func New(cfg Config) (Generator, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderGroq
	}
	switch provider {
	case ProviderGroq, ProviderOpenAI:
		base, model := defaultGroqBaseURL, defaultGroqModel
		if provider == ProviderOpenAI {
			base, model = defaultOpenAIBaseURL, defaultOpenAIModel
		}
		if cfg.Endpoint != "" {
			base = cfg.Endpoint
		}
		if cfg.Model != "" {
			model = cfg.Model
		}
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("%s api key missing", provider)
		}
		return newOpenAIClient(provider, base, model, cfg.APIKey, pickHTTPClient(cfg.HTTPClient)), nil
	case ProviderOllama:
		host := strings.TrimRight(cfg.Endpoint, "/")
		if host == "" {
			host = defaultOllamaHost
		}
		model := cfg.Model
		if model == "" {
			model = defaultOllamaModel
		}
		return &ollamaClient{
			host:   host,
			model:  model,
			client: pickHTTPClient(cfg.HTTPClient),
		}, nil
	case ProviderMock:
		return Mock{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.Provider)
	}
}

func pickHTTPClient(custom *http.Client) *http.Client {
	if custom != nil {
		return custom
	}
	// Hosted models usually answer in seconds but local Ollama can take minutes; the caller's context still applies.
	return &http.Client{Timeout: defaultLLMHTTPTimeout}
}
