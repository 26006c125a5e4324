package llmgateway

import "context"

// CompletionRequest is the provider-agnostic shape every Provider accepts.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float32
}

// CompletionResponse is a provider's raw text reply plus basic usage info
// for telemetry.
type CompletionResponse struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Provider is a single LLM backend the gateway can call. Implementations
// construct their underlying SDK client lazily, on first Complete call, so
// that a missing API key only breaks the call path that needs it rather
// than startup (§4.5's "ConfigError at first use, not construction").
type Provider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}
