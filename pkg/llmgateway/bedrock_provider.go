package llmgateway

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/oncopulse/newsletter/pkg/config"
	"github.com/oncopulse/newsletter/pkg/state"
)

// BedrockProvider is the gateway's last-resort fallback: Anthropic models
// served through AWS Bedrock, used when both the direct Anthropic API and
// the langchain-routed fallback are unreachable (e.g. outbound network
// policy permits only AWS endpoints).
type BedrockProvider struct {
	cfg config.LLMProviderConfig

	once    sync.Once
	client  *bedrockruntime.Client
	initErr error
}

// NewBedrockProvider returns a provider that defers client construction
// until the first Complete call.
func NewBedrockProvider(cfg config.LLMProviderConfig) *BedrockProvider {
	return &BedrockProvider{cfg: cfg}
}

func (p *BedrockProvider) Name() string { return "bedrock" }

type bedrockAnthropicRequest struct {
	AnthropicVersion string                 `json:"anthropic_version"`
	MaxTokens        int                    `json:"max_tokens"`
	System           string                 `json:"system,omitempty"`
	Messages         []bedrockMessage       `json:"messages"`
}

type bedrockMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type bedrockAnthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (p *BedrockProvider) ensureReady(ctx context.Context) error {
	p.once.Do(func() {
		region := os.Getenv(p.cfg.RegionEnv)
		if region == "" {
			p.initErr = fmt.Errorf("%w: environment variable %s is not set", state.ErrConfig, p.cfg.RegionEnv)
			return
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
		if err != nil {
			p.initErr = fmt.Errorf("%w: %v", state.ErrConfig, err)
			return
		}
		p.client = bedrockruntime.NewFromConfig(awsCfg)
	})
	return p.initErr
}

func (p *BedrockProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if err := p.ensureReady(ctx); err != nil {
		return CompletionResponse{}, err
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.cfg.MaxTokens
	}

	body, err := json.Marshal(bedrockAnthropicRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        maxTokens,
		System:           req.SystemPrompt,
		Messages: []bedrockMessage{
			{Role: "user", Content: req.UserPrompt},
		},
	})
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("bedrock request encode: %w", err)
	}

	out, err := p.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &p.cfg.Model,
		ContentType: strPtr("application/json"),
		Body:        body,
	})
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("bedrock completion: %w", err)
	}

	var parsed bedrockAnthropicResponse
	if err := json.Unmarshal(out.Body, &parsed); err != nil {
		return CompletionResponse{}, fmt.Errorf("%w: bedrock response decode: %v", state.ErrParse, err)
	}

	var text string
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return CompletionResponse{
		Text:         text,
		InputTokens:  parsed.Usage.InputTokens,
		OutputTokens: parsed.Usage.OutputTokens,
	}, nil
}

func strPtr(s string) *string { return &s }
