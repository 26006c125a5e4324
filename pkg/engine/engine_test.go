package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncopulse/newsletter/pkg/checkpoint"
	"github.com/oncopulse/newsletter/pkg/config"
	"github.com/oncopulse/newsletter/pkg/state"
)

func testEngineConfig() *config.EngineConfig {
	return &config.EngineConfig{
		FanOutWidth:         2,
		NodeTimeout:         time.Second,
		MaxRetries:          2,
		BackoffBase:         time.Millisecond,
		BackoffMax:          5 * time.Millisecond,
		CancellationGrace:   50 * time.Millisecond,
		CheckpointEnabled:   true,
		MaxInFlightLLMCalls: 2,
	}
}

func TestEngineRunsNodesInOrder(t *testing.T) {
	e := New(testEngineConfig(), checkpoint.NewMemorySink())
	var order []string

	e.RegisterNode("a", func(ctx context.Context, s *state.SharedState) error {
		order = append(order, "a")
		return nil
	}, Policy{})
	e.RegisterNode("b", func(ctx context.Context, s *state.SharedState) error {
		order = append(order, "b")
		return nil
	}, Policy{})
	e.AddEdge("a", "b")

	s := state.New("run-1", "AI in Oncology", time.Now())
	require.NoError(t, e.Run(context.Background(), s))
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestEngineRetriesRetryableFailures(t *testing.T) {
	e := New(testEngineConfig(), checkpoint.NewMemorySink())
	attempts := 0
	e.RegisterNode("a", func(ctx context.Context, s *state.SharedState) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}, Policy{MaxRetries: 3, BackoffBase: time.Millisecond, BackoffMax: 2 * time.Millisecond})

	s := state.New("run-1", "AI in Oncology", time.Now())
	require.NoError(t, e.Run(context.Background(), s))
	assert.Equal(t, 3, attempts)
}

func TestEngineGivesUpAfterMaxRetries(t *testing.T) {
	e := New(testEngineConfig(), checkpoint.NewMemorySink())
	attempts := 0
	e.RegisterNode("a", func(ctx context.Context, s *state.SharedState) error {
		attempts++
		return errors.New("always fails")
	}, Policy{MaxRetries: 2, BackoffBase: time.Millisecond, BackoffMax: time.Millisecond})

	s := state.New("run-1", "AI in Oncology", time.Now())
	err := e.Run(context.Background(), s)
	require.Error(t, err)
	assert.Equal(t, 3, attempts) // initial + 2 retries
}

func TestEngineConditionalEdge(t *testing.T) {
	e := New(testEngineConfig(), checkpoint.NewMemorySink())
	e.RegisterNode("decide", func(ctx context.Context, s *state.SharedState) error {
		s.CurrentStage = "decide"
		return nil
	}, Policy{})
	e.RegisterNode("yes", func(ctx context.Context, s *state.SharedState) error {
		s.MainTopic = "took-yes-branch"
		return nil
	}, Policy{})
	e.RegisterNode("no", func(ctx context.Context, s *state.SharedState) error {
		s.MainTopic = "took-no-branch"
		return nil
	}, Policy{})
	e.AddConditionalEdge("decide", func(s *state.SharedState) string {
		return "yes"
	})

	s := state.New("run-1", "", time.Now())
	require.NoError(t, e.Run(context.Background(), s))
	assert.Equal(t, "took-yes-branch", s.MainTopic)
}

func TestEngineCheckpointAndResume(t *testing.T) {
	sink := checkpoint.NewMemorySink()
	cfg := testEngineConfig()

	e := New(cfg, sink)
	e.RegisterNode("a", func(ctx context.Context, s *state.SharedState) error {
		s.Metrics.TotalArticles = 5
		return nil
	}, Policy{})
	e.RegisterNode("b", func(ctx context.Context, s *state.SharedState) error {
		return errors.New("b always fails")
	}, Policy{MaxRetries: 0})
	e.AddEdge("a", "b")

	s := state.New("run-resume", "AI in Oncology", time.Now())
	err := e.Run(context.Background(), s)
	require.Error(t, err)

	// A fresh engine instance, simulating a process restart, resumes from
	// the checkpoint saved after node "a" completed.
	e2 := New(cfg, sink)
	e2.RegisterNode("a", func(ctx context.Context, s *state.SharedState) error {
		t.Fatal("node a should not re-run after resume")
		return nil
	}, Policy{})
	var bRan bool
	e2.RegisterNode("b", func(ctx context.Context, s *state.SharedState) error {
		bRan = true
		return nil
	}, Policy{})
	e2.AddEdge("a", "b")

	resumed := state.New("run-resume", "", time.Now())
	startNode, ok, err := e2.Resume(context.Background(), "run-resume", resumed)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "b", startNode)

	require.NoError(t, e2.RunFrom(context.Background(), resumed, startNode))
	assert.True(t, bRan)
	assert.Equal(t, 5, resumed.Metrics.TotalArticles, "resumed state should carry forward node a's output")
}

func TestEngineCancellationRespectsGraceWindow(t *testing.T) {
	cfg := testEngineConfig()
	cfg.NodeTimeout = 10 * time.Millisecond
	cfg.CancellationGrace = 30 * time.Millisecond

	e := New(cfg, nil)
	returned := false
	e.RegisterNode("slow", func(ctx context.Context, s *state.SharedState) error {
		<-ctx.Done()
		time.Sleep(15 * time.Millisecond)
		returned = true
		return ctx.Err()
	}, Policy{MaxRetries: 0})

	s := state.New("run-1", "AI in Oncology", time.Now())
	err := e.Run(context.Background(), s)
	require.Error(t, err)
	assert.True(t, returned, "node should have been given its grace window to return")
}
