package engine

import (
	"context"
	"time"

	"github.com/oncopulse/newsletter/pkg/state"
)

// NodeFunc is one step of the workflow DAG. It reads and writes
// SharedState directly; the engine guarantees only one NodeFunc executes
// at a time against a given state (fan-out nodes own their own
// concurrency internally, merging into state once before returning).
type NodeFunc func(ctx context.Context, s *state.SharedState) error

// Policy controls retry/backoff/timeout behavior for one node. A zero
// Policy means "use the engine's configured defaults."
type Policy struct {
	Timeout     time.Duration
	MaxRetries  int
	BackoffBase time.Duration
	BackoffMax  time.Duration
	// Retryable decides whether err should trigger a retry. Nil means
	// "retry any non-nil error up to MaxRetries."
	Retryable func(err error) bool
}

// ConditionFunc decides, after a node completes, which node name to run
// next. Returning "" ends the run.
type ConditionFunc func(s *state.SharedState) string

type registeredNode struct {
	name   string
	fn     NodeFunc
	policy Policy
}
