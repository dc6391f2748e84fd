package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	ollamaTemperature = 0.8
	ollamaMaxTokens   = 600
	maxErrorBody      = 512
)

// ollamaClient talks to a local Ollama server through /api/generate with
// streaming disabled.
type ollamaClient struct {
	host   string
	model  string
	client *http.Client
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	System  string        `json:"system"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

func (c *ollamaClient) Name() string {
	return fmt.Sprintf("ollama (%s)", c.model)
}

func (c *ollamaClient) Generate(ctx context.Context, question string) (string, error) {
	prompt, err := buildPrompt(question)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(ollamaRequest{
		Model:   c.model,
		System:  prompt.System,
		Prompt:  prompt.User,
		Options: ollamaOptions{Temperature: ollamaTemperature, NumPredict: ollamaMaxTokens},
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", ollamaStatusError(resp)
	}
	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama: %s", out.Error)
	}
	text := strings.TrimSpace(out.Response)
	if text == "" {
		return "", errors.New("ollama returned an empty response")
	}
	return text, nil
}

// ollamaStatusError prefers the JSON error field Ollama sends and falls back
// to the start of the raw body.
func ollamaStatusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var out ollamaResponse
	if json.Unmarshal(raw, &out) == nil && out.Error != "" {
		return fmt.Errorf("ollama %s: %s", resp.Status, out.Error)
	}
	return fmt.Errorf("ollama %s: %s", resp.Status, strings.TrimSpace(string(raw)))
}
