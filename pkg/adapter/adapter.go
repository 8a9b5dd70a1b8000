// Package adapter wraps the LLM providers used to draft claim narratives.
package adapter

import (
	"context"
	"fmt"
	"sort"

	"github.com/zen-systems/claimroute/pkg/config"
)

// Adapter defines the interface for LLM provider adapters.
type Adapter interface {
	// Generate sends a prompt to the model and returns its text.
	Generate(ctx context.Context, model string, prompt string) (*Response, error)

	// Name returns the adapter's identifier.
	Name() string

	// Models returns the list of supported models.
	Models() []string
}

// Usage captures normalized token usage.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the text a provider returned for one prompt.
type Response struct {
	Text    string
	Adapter string
	Model   string
	Usage   *Usage
}

// maxNarrativeTokens bounds provider output; narratives are a few paragraphs.
const maxNarrativeTokens = 1024

// Registry maps adapter names to ready-to-use adapters.
type Registry map[string]Adapter

// NewRegistry creates an adapter for every provider with credentials.
// The mock adapter is always present.
func NewRegistry(cfg *config.Config) (Registry, error) {
	reg := Registry{}
	reg.Register(NewMockAdapter())

	if cfg.HasAdapter("anthropic") {
		a, err := NewAnthropicAdapter(cfg.AnthropicAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create anthropic adapter: %w", err)
		}
		reg.Register(a)
	}
	if cfg.HasAdapter("openai") {
		a, err := NewOpenAIAdapter(cfg.OpenAIAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai adapter: %w", err)
		}
		reg.Register(a)
	}
	if cfg.HasAdapter("google") {
		a, err := NewGoogleAdapter(cfg.GoogleAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create google adapter: %w", err)
		}
		reg.Register(a)
	}
	if cfg.HasAdapter("deepseek") {
		a, err := NewDeepSeekAdapter(cfg.DeepSeekAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create deepseek adapter: %w", err)
		}
		reg.Register(a)
	}
	return reg, nil
}

// Register adds or replaces an adapter under its own name.
func (r Registry) Register(a Adapter) {
	r[a.Name()] = a
}

// Get returns the named adapter.
func (r Registry) Get(name string) (Adapter, error) {
	a, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("adapter %s not configured", name)
	}
	return a, nil
}

// Names returns the registered adapter names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
