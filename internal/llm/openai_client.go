package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// openAIClient speaks the OpenAI chat completions protocol, which Groq also
// serves.
type openAIClient struct {
	provider string
	model    string
	client   openai.Client
}

func newOpenAIClient(provider, base, model, apiKey string, httpClient *http.Client) *openAIClient {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &openAIClient{
		provider: provider,
		model:    model,
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(base),
			option.WithHTTPClient(httpClient),
		),
	}
}

func (c *openAIClient) Name() string {
	return fmt.Sprintf("%s (%s)", c.provider, c.model)
}

func (c *openAIClient) Generate(ctx context.Context, question string) (string, error) {
	prompt, err := buildPrompt(question)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return "", fmt.Errorf("%s chat completion: %w", c.provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(c.provider + ": empty choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New(c.provider + ": empty response")
	}
	return content, nil
}
