package adapter

import (
	"context"
	"fmt"
	"sync"
)

// MockAdapter returns deterministic responses for local runs and tests.
type MockAdapter struct {
	responses       map[string]string
	defaultResponse string
	Usage           *Usage

	// Errs is consumed one entry per call before any response is returned.
	Errs []error

	mu    sync.Mutex
	calls int
}

// NewMockAdapter creates a mock adapter with a default response.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{
		responses:       make(map[string]string),
		defaultResponse: "mock narrative:",
	}
}

// NewMockAdapterWithResponses creates a mock adapter with predefined responses.
func NewMockAdapterWithResponses(responses map[string]string, defaultResponse string) *MockAdapter {
	if defaultResponse == "" {
		defaultResponse = "mock narrative:"
	}
	return &MockAdapter{responses: responses, defaultResponse: defaultResponse}
}

// Name returns the adapter identifier.
func (a *MockAdapter) Name() string {
	return "mock"
}

// Models returns the list of supported mock models.
func (a *MockAdapter) Models() []string {
	return []string{"mock-1"}
}

// Calls returns how many times Generate was invoked.
func (a *MockAdapter) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// Generate returns a deterministic response for the prompt.
func (a *MockAdapter) Generate(ctx context.Context, model string, prompt string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.calls++
	var err error
	if len(a.Errs) > 0 {
		err, a.Errs = a.Errs[0], a.Errs[1:]
	}
	a.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if model == "" {
		model = "mock-1"
	}
	text, ok := a.responses[prompt]
	if !ok {
		text = fmt.Sprintf("%s\n%s", a.defaultResponse, prompt)
	}
	return &Response{Text: text, Adapter: a.Name(), Model: model, Usage: a.Usage}, nil
}
