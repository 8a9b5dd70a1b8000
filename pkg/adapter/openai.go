package adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIAdapter implements the Adapter interface for OpenAI chat models.
// It also serves OpenAI-compatible providers through a base URL override.
type OpenAIAdapter struct {
	client openai.Client
	name   string
	models []string
}

// NewOpenAIAdapter creates a new OpenAI adapter.
func NewOpenAIAdapter(apiKey string) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	return &OpenAIAdapter{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		name:   "openai",
		models: []string{
			"gpt-5.2-instant",
			"gpt-5.2-thinking",
		},
	}, nil
}

// Name returns the adapter identifier.
func (a *OpenAIAdapter) Name() string {
	return a.name
}

// Models returns the list of supported models.
func (a *OpenAIAdapter) Models() []string {
	return append([]string(nil), a.models...)
}

// Generate sends a prompt as a single user message and returns the first choice.
func (a *OpenAIAdapter) Generate(ctx context.Context, model string, prompt string) (*Response, error) {
	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxCompletionTokens: openai.Int(maxNarrativeTokens),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, wrapError(a.name, model, apiErr.StatusCode, err)
		}
		return nil, wrapError(a.name, model, 0, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s returned no choices", a.name)
	}

	return &Response{
		Text:    resp.Choices[0].Message.Content,
		Adapter: a.name,
		Model:   model,
		Usage: &Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}
