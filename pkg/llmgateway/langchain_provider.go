package llmgateway

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/oncopulse/newsletter/pkg/config"
	"github.com/oncopulse/newsletter/pkg/state"
)

// LangChainProvider is the gateway's generic fallback: an OpenAI-compatible
// model routed through langchaingo's llms.Model interface. Using the
// generic interface (rather than coding against a specific vendor) lets an
// operator repoint this provider at any OpenAI-compatible gateway via
// BaseURL without a code change.
type LangChainProvider struct {
	cfg config.LLMProviderConfig

	once    sync.Once
	model   llms.Model
	initErr error
}

// NewLangChainProvider returns a provider that defers client construction
// until the first Complete call.
func NewLangChainProvider(cfg config.LLMProviderConfig) *LangChainProvider {
	return &LangChainProvider{cfg: cfg}
}

func (p *LangChainProvider) Name() string { return "langchain" }

func (p *LangChainProvider) ensureReady() error {
	p.once.Do(func() {
		key := os.Getenv(p.cfg.APIKeyEnv)
		if key == "" {
			p.initErr = fmt.Errorf("%w: environment variable %s is not set", state.ErrConfig, p.cfg.APIKeyEnv)
			return
		}
		opts := []openai.Option{
			openai.WithToken(key),
			openai.WithModel(p.cfg.Model),
		}
		if p.cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(p.cfg.BaseURL))
		}
		model, err := openai.New(opts...)
		if err != nil {
			p.initErr = fmt.Errorf("%w: %v", state.ErrConfig, err)
			return
		}
		p.model = model
	})
	return p.initErr
}

func (p *LangChainProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if err := p.ensureReady(); err != nil {
		return CompletionResponse{}, err
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, req.SystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, req.UserPrompt),
	}

	resp, err := p.model.GenerateContent(ctx, messages,
		llms.WithMaxTokens(req.MaxTokens),
		llms.WithTemperature(float64(req.Temperature)),
	)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("langchain completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return CompletionResponse{}, fmt.Errorf("%w: langchain returned no choices", state.ErrParse)
	}

	return CompletionResponse{Text: resp.Choices[0].Content}, nil
}
