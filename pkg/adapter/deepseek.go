package adapter

import (
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const deepseekBaseURL = "https://api.deepseek.com/v1"

// NewDeepSeekAdapter creates an adapter for DeepSeek models.
// DeepSeek speaks the OpenAI chat completions protocol, so the OpenAI client
// is reused against the DeepSeek endpoint.
func NewDeepSeekAdapter(apiKey string) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("deepseek API key is required")
	}

	return &OpenAIAdapter{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(deepseekBaseURL),
		),
		name: "deepseek",
		models: []string{
			"deepseek-chat",
			"deepseek-reasoner",
		},
	}, nil
}
