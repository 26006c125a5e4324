package llmgateway

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/oncopulse/newsletter/pkg/config"
	"github.com/oncopulse/newsletter/pkg/state"
)

// AnthropicProvider calls Claude directly via the first-party SDK. It is
// the gateway's primary provider.
type AnthropicProvider struct {
	cfg config.LLMProviderConfig

	once   sync.Once
	client anthropic.Client
	initErr error
}

// NewAnthropicProvider returns a provider that defers client construction
// until the first Complete call.
func NewAnthropicProvider(cfg config.LLMProviderConfig) *AnthropicProvider {
	return &AnthropicProvider{cfg: cfg}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) ensureReady() error {
	p.once.Do(func() {
		key := os.Getenv(p.cfg.APIKeyEnv)
		if key == "" {
			p.initErr = fmt.Errorf("%w: environment variable %s is not set", state.ErrConfig, p.cfg.APIKeyEnv)
			return
		}
		p.client = anthropic.NewClient(option.WithAPIKey(key))
	})
	return p.initErr
}

func (p *AnthropicProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if err := p.ensureReady(); err != nil {
		return CompletionResponse{}, err
	}

	maxTokens := int64(req.MaxTokens)
	if maxTokens == 0 {
		maxTokens = int64(p.cfg.MaxTokens)
	}

	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.cfg.Model),
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: req.SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
	})
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("anthropic completion: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return CompletionResponse{
		Text:         text,
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
	}, nil
}
