package nodes

import (
	"context"
	"log/slog"
	"strings"

	"github.com/oncopulse/newsletter/pkg/state"
)

// FinalizeOnFailure is the conditional-edge target for a run that hit a
// fatal, non-retryable error partway through. It records the terminal
// stage so the run's checkpoint reflects where it actually stopped, and
// leaves every already-produced artifact untouched rather than cleaning
// anything up.
func FinalizeOnFailure(deps *Deps) func(context.Context, *state.SharedState) error {
	return func(ctx context.Context, s *state.SharedState) error {
		slog.Error("run terminated early by fatal error, finalizing with partial artifacts", "run_id", s.RunID)
		s.CurrentStage = "failed"
		return nil
	}
}

// RouteOnFatalError is an engine.ConditionFunc: a stage that cannot
// proceed at all records a PipelineError wrapping state.ErrFatal for its
// own stage instead of returning a hard Go error, so the engine can still
// reach FinalizeOnFailure and let the run wind down gracefully (artifacts
// already produced are kept, notify still fires) rather than aborting
// Run() outright. next is the stage to take when no such error is present
// for the stage that just completed.
func RouteOnFatalError(next string) func(*state.SharedState) string {
	fatalMarker := state.ErrFatal.Error()
	return func(s *state.SharedState) string {
		for _, pe := range s.Errors {
			if pe.Stage == s.CurrentStage && strings.Contains(pe.Message, fatalMarker) {
				slog.Error("fatal error detected, routing to finalize_on_failure", "stage", s.CurrentStage, "run_id", s.RunID)
				return "finalize_on_failure"
			}
		}
		return next
	}
}
