// Package llmgateway provides a single entry point for every LLM call the
// pipeline makes, fanning a logical completion request across a prioritized
// chain of providers (direct Anthropic SDK, a langchain-routed generic
// fallback, AWS Bedrock), each independently circuit-broken, behind a
// bounded in-flight semaphore.
package llmgateway

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/semaphore"

	"github.com/oncopulse/newsletter/pkg/config"
	"github.com/oncopulse/newsletter/pkg/state"
	"github.com/oncopulse/newsletter/pkg/telemetry"
)

// Gateway is the pipeline-wide LLM access point. Construct once per run
// from config.LLMProviderRegistry and share across every node.
type Gateway struct {
	providers map[string]Provider
	order     []string
	breakers  map[string]*gobreaker.CircuitBreaker
	sem       *semaphore.Weighted
	metrics   *telemetry.Metrics
}

// SetMetrics attaches a Prometheus collector set; nil (the default) means
// per-provider call outcomes are only visible via logs.
func (g *Gateway) SetMetrics(m *telemetry.Metrics) { g.metrics = m }

// New builds a Gateway from the configured provider registry, wiring one
// Provider implementation per configured provider type and wrapping each
// in its own circuit breaker.
func New(registry *config.LLMProviderRegistry, maxInFlight int) (*Gateway, error) {
	providers := make(map[string]Provider)
	breakers := make(map[string]*gobreaker.CircuitBreaker)

	for name, pc := range registry.GetAll() {
		provider, err := buildProvider(*pc)
		if err != nil {
			return nil, err
		}
		providers[name] = provider
		breakers[name] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 3,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		})
	}

	if maxInFlight < 1 {
		maxInFlight = 1
	}

	return &Gateway{
		providers: providers,
		order:     registry.Order(),
		breakers:  breakers,
		sem:       semaphore.NewWeighted(int64(maxInFlight)),
	}, nil
}

// NewWithProviders builds a Gateway directly from already-constructed
// providers, bypassing config-driven wiring. Used by tests elsewhere in
// the module (and available to any caller that wants to inject a custom
// Provider, e.g. a local model server not covered by the three built-in
// provider types).
func NewWithProviders(providers map[string]Provider, order []string, maxInFlight int) *Gateway {
	breakers := make(map[string]*gobreaker.CircuitBreaker, len(providers))
	for name := range providers {
		breakers[name] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 3,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		})
	}
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &Gateway{
		providers: providers,
		order:     order,
		breakers:  breakers,
		sem:       semaphore.NewWeighted(int64(maxInFlight)),
	}
}

func buildProvider(pc config.LLMProviderConfig) (Provider, error) {
	switch pc.Type {
	case config.LLMProviderAnthropic:
		return NewAnthropicProvider(pc), nil
	case config.LLMProviderLangChain:
		return NewLangChainProvider(pc), nil
	case config.LLMProviderBedrock:
		return NewBedrockProvider(pc), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider type %q", state.ErrConfig, pc.Type)
	}
}

// Complete runs req through the fallback chain in configured priority
// order. Each provider call is gated by the shared semaphore and that
// provider's own circuit breaker; a breaker-open or call failure advances
// to the next provider. Returns state.ErrFatal only once every provider in
// the chain has failed.
func (g *Gateway) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return CompletionResponse{}, fmt.Errorf("%w: %v", state.ErrTimeout, err)
	}
	defer g.sem.Release(1)

	var lastErr error
	for _, name := range g.order {
		provider, ok := g.providers[name]
		if !ok {
			continue
		}
		breaker := g.breakers[name]

		result, err := breaker.Execute(func() (any, error) {
			return provider.Complete(ctx, req)
		})
		if err == nil {
			if g.metrics != nil {
				g.metrics.IncLLMCall(name, "ok")
			}
			return result.(CompletionResponse), nil
		}
		lastErr = fmt.Errorf("provider %s: %w", name, err)
		if g.metrics != nil {
			g.metrics.IncLLMCall(name, "error")
		}
		slog.Warn("llm provider failed, falling back", "provider", name, "breaker_state", breaker.State().String(), "error", err)
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no LLM providers configured")
	}
	slog.Error("llm fallback chain exhausted", "error", lastErr)
	return CompletionResponse{}, fmt.Errorf("%w: every provider in the fallback chain failed: %v", state.ErrFatal, lastErr)
}
