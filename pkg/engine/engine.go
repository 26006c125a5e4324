// Package engine implements a small directed-acyclic-graph workflow
// engine: named nodes wired by fixed or conditional edges, each executed
// with its own timeout/retry/backoff policy, checkpointed after every
// successful step, and cancellable with a grace window for the running
// node to observe ctx.Done().
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/oncopulse/newsletter/pkg/checkpoint"
	"github.com/oncopulse/newsletter/pkg/config"
	"github.com/oncopulse/newsletter/pkg/state"
	"github.com/oncopulse/newsletter/pkg/telemetry"
)

var tracer = otel.Tracer("github.com/oncopulse/newsletter/pkg/engine")

// Engine runs a DAG of NodeFuncs against one SharedState.
type Engine struct {
	nodes       map[string]*registeredNode
	edges       map[string]string
	conditional map[string]ConditionFunc
	start       string

	cfg        *config.EngineConfig
	checkpoint checkpoint.Sink
	metrics    *telemetry.Metrics
}

// SetMetrics attaches a Prometheus collector set; nil (the default) means
// node durations are tracked only in SharedState.Metrics.Durations.
func (e *Engine) SetMetrics(m *telemetry.Metrics) { e.metrics = m }

// New builds an empty Engine. cfg supplies defaults for any node whose
// Policy is left zero-valued; sink may be nil to disable checkpointing.
func New(cfg *config.EngineConfig, sink checkpoint.Sink) *Engine {
	return &Engine{
		nodes:       make(map[string]*registeredNode),
		edges:       make(map[string]string),
		conditional: make(map[string]ConditionFunc),
		cfg:         cfg,
		checkpoint:  sink,
	}
}

// RegisterNode adds a node under name with the given policy. The first
// registered node is the run's entry point unless SetStart overrides it.
func (e *Engine) RegisterNode(name string, fn NodeFunc, policy Policy) {
	e.nodes[name] = &registeredNode{name: name, fn: fn, policy: policy}
	if e.start == "" {
		e.start = name
	}
}

// SetStart overrides the entry node.
func (e *Engine) SetStart(name string) { e.start = name }

// AddEdge wires a fixed successor: after from completes, to runs next.
func (e *Engine) AddEdge(from, to string) { e.edges[from] = to }

// AddConditionalEdge wires a dynamic successor decided by cond once from
// completes.
func (e *Engine) AddConditionalEdge(from string, cond ConditionFunc) {
	e.conditional[from] = cond
}

// Run executes the DAG starting from the entry node until a node returns
// no successor. Every successful node triggers a checkpoint save (if a
// sink is configured); Run can be resumed from a prior checkpoint via
// RunFrom.
func (e *Engine) Run(ctx context.Context, s *state.SharedState) error {
	return e.RunFrom(ctx, s, e.start)
}

// RunFrom executes the DAG starting at startNode, used both for a fresh
// run and for resuming after Resume restores state from a checkpoint.
func (e *Engine) RunFrom(ctx context.Context, s *state.SharedState, startNode string) error {
	current := startNode
	for current != "" {
		node, ok := e.nodes[current]
		if !ok {
			return fmt.Errorf("%w: unknown node %q", state.ErrFatal, current)
		}

		s.CurrentStage = current
		start := time.Now()
		err := e.runNodeWithPolicy(ctx, node, s)
		elapsed := time.Since(start)
		s.Metrics.Durations = append(s.Metrics.Durations, state.StageDuration{Stage: current, Duration: elapsed})
		if e.metrics != nil {
			e.metrics.ObserveNodeDuration(current, elapsed)
		}
		if err != nil {
			slog.Error("node failed", "node", current, "run_id", s.RunID, "error", err)
			return fmt.Errorf("node %s: %w", current, err)
		}
		slog.Info("node completed", "node", current, "run_id", s.RunID, "duration", elapsed)

		if e.checkpoint != nil && (e.cfg == nil || e.cfg.CheckpointEnabled) {
			if err := e.saveCheckpoint(ctx, s); err != nil {
				s.AddError(state.NewPipelineError(current, "", err, false, time.Now()))
			}
		}

		current = e.next(current, s)
	}
	return nil
}

func (e *Engine) next(from string, s *state.SharedState) string {
	if cond, ok := e.conditional[from]; ok {
		return cond(s)
	}
	return e.edges[from]
}

// Resume loads the last checkpoint for runID (if any) into s and returns
// the stage to resume from. ok is false when no checkpoint exists, in
// which case callers should start a fresh Run.
func (e *Engine) Resume(ctx context.Context, runID string, s *state.SharedState) (string, bool, error) {
	if e.checkpoint == nil {
		return "", false, nil
	}
	data, ok, err := e.checkpoint.Load(ctx, runID)
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	if err := json.Unmarshal(data, s); err != nil {
		return "", false, fmt.Errorf("decode checkpoint: %w", err)
	}
	return e.next(s.CurrentStage, s), true, nil
}

func (e *Engine) saveCheckpoint(ctx context.Context, s *state.SharedState) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	return e.checkpoint.Save(ctx, s.RunID, data)
}

func (e *Engine) runNodeWithPolicy(ctx context.Context, node *registeredNode, s *state.SharedState) error {
	policy := e.resolvePolicy(node.policy)

	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		nodeCtx, cancel := context.WithTimeout(ctx, policy.Timeout)
		err := e.runOnce(nodeCtx, node, s)
		cancel()

		if err == nil {
			return nil
		}
		lastErr = err

		retryable := policy.Retryable
		if retryable == nil {
			retryable = func(error) bool { return true }
		}
		if !retryable(err) || attempt == policy.MaxRetries {
			break
		}

		delay := backoffDelay(policy.BackoffBase, policy.BackoffMax, attempt)
		slog.Warn("node attempt failed, retrying", "node", node.name, "run_id", s.RunID, "attempt", attempt+1, "error", err, "backoff", delay)
		s.AddError(state.NewPipelineError(node.name, "", err, true, time.Now()))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

func (e *Engine) runOnce(ctx context.Context, node *registeredNode, s *state.SharedState) error {
	nodeCtx, span := tracer.Start(ctx, "engine.node."+node.name, trace.WithAttributes(
		attribute.String("node.name", node.name),
		attribute.String("run.id", s.RunID),
	))
	defer span.End()

	done := make(chan error, 1)
	go func() {
		done <- node.fn(nodeCtx, s)
	}()

	select {
	case err := <-done:
		return err
	case <-nodeCtx.Done():
		grace := e.cfg.CancellationGrace
		if grace <= 0 {
			grace = 10 * time.Second
		}
		select {
		case err := <-done:
			return err
		case <-time.After(grace):
			return fmt.Errorf("%w: node %s did not return within cancellation grace window", state.ErrTimeout, node.name)
		}
	}
}

func (e *Engine) resolvePolicy(p Policy) Policy {
	if e.cfg == nil {
		if p.Timeout == 0 {
			p.Timeout = 2 * time.Minute
		}
		return p
	}
	if p.Timeout == 0 {
		p.Timeout = e.cfg.NodeTimeout
	}
	if p.MaxRetries == 0 {
		p.MaxRetries = e.cfg.MaxRetries
	}
	if p.BackoffBase == 0 {
		p.BackoffBase = e.cfg.BackoffBase
	}
	if p.BackoffMax == 0 {
		p.BackoffMax = e.cfg.BackoffMax
	}
	return p
}

func backoffDelay(base, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	if max <= 0 {
		max = 10 * time.Second
	}
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if d > max {
		d = max
	}
	jitter := time.Duration(rand.Int63n(int64(d)/4 + 1))
	return d + jitter
}
