package nodes

import (
	"context"
	"fmt"
	"time"

	"github.com/oncopulse/newsletter/pkg/state"
)

// Initialize populates SharedState.TopicsConfig from the loaded
// configuration and enforces the zero-topics-is-fatal invariant. It is
// always the workflow's entry node.
func Initialize(deps *Deps) func(context.Context, *state.SharedState) error {
	return func(ctx context.Context, s *state.SharedState) error {
		if err := state.ValidateTopicConfigs(deps.Config.Topics); err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
		s.TopicsConfig = deps.Config.Topics
		if s.MainTopic == "" {
			s.MainTopic = deps.Config.MainTopic
		}
		s.StartedAt = time.Now()
		return nil
	}
}
