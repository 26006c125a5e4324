package llmgateway

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"
)

type fakeProvider struct {
	name string
	fn   func(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

func (f fakeProvider) Name() string { return f.name }
func (f fakeProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	return f.fn(ctx, req)
}

func newTestGateway(providers map[string]Provider, order []string) *Gateway {
	breakers := make(map[string]*gobreaker.CircuitBreaker)
	for name := range providers {
		breakers[name] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name: name,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 5
			},
		})
	}
	return &Gateway{
		providers: providers,
		order:     order,
		breakers:  breakers,
		sem:       semaphore.NewWeighted(4),
	}
}

func TestGatewayUsesFirstHealthyProvider(t *testing.T) {
	g := newTestGateway(map[string]Provider{
		"a": fakeProvider{name: "a", fn: func(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
			return CompletionResponse{Text: "from-a"}, nil
		}},
		"b": fakeProvider{name: "b", fn: func(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
			t.Fatal("should not reach provider b")
			return CompletionResponse{}, nil
		}},
	}, []string{"a", "b"})

	resp, err := g.Complete(context.Background(), CompletionRequest{UserPrompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "from-a", resp.Text)
}

func TestGatewayFallsBackOnProviderError(t *testing.T) {
	g := newTestGateway(map[string]Provider{
		"a": fakeProvider{name: "a", fn: func(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
			return CompletionResponse{}, errors.New("boom")
		}},
		"b": fakeProvider{name: "b", fn: func(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
			return CompletionResponse{Text: "from-b"}, nil
		}},
	}, []string{"a", "b"})

	resp, err := g.Complete(context.Background(), CompletionRequest{UserPrompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "from-b", resp.Text)
}

func TestGatewayFatalWhenEveryProviderFails(t *testing.T) {
	g := newTestGateway(map[string]Provider{
		"a": fakeProvider{name: "a", fn: func(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
			return CompletionResponse{}, errors.New("boom-a")
		}},
		"b": fakeProvider{name: "b", fn: func(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
			return CompletionResponse{}, errors.New("boom-b")
		}},
	}, []string{"a", "b"})

	_, err := g.Complete(context.Background(), CompletionRequest{UserPrompt: "hi"})
	require.Error(t, err)
}

func TestGatewayCircuitOpensAfterRepeatedFailures(t *testing.T) {
	calls := 0
	g := newTestGateway(map[string]Provider{
		"a": fakeProvider{name: "a", fn: func(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
			calls++
			return CompletionResponse{}, errors.New("boom")
		}},
	}, []string{"a"})

	for i := 0; i < 10; i++ {
		_, _ = g.Complete(context.Background(), CompletionRequest{UserPrompt: "hi"})
	}
	// Once the breaker trips, further calls fail fast without invoking the
	// provider function again.
	callsAtTrip := calls
	_, _ = g.Complete(context.Background(), CompletionRequest{UserPrompt: "hi"})
	assert.LessOrEqual(t, calls-callsAtTrip, 1)
}
