package nodes

import (
	"context"
	"strings"
	"time"

	"github.com/oncopulse/newsletter/pkg/llmgateway"
	"github.com/oncopulse/newsletter/pkg/state"
)

type executiveSummaryVars struct {
	MainTopic  string
	TopicCount int
}

type executiveSummaryResult struct {
	Summary string `json:"summary"`
}

// ExecutiveSummary synthesizes every topic's overview into one cross-topic
// opening section. Runs after SummarizeTopics, before the per-topic Review
// pass, treating the executive summary as a synthesis of first-draft
// summaries rather than the post-review finals.
func ExecutiveSummary(deps *Deps) func(context.Context, *state.SharedState) error {
	return func(ctx context.Context, s *state.SharedState) error {
		if len(s.TopicSummaries) == 0 {
			s.ExecutiveSummary = "No articles available for this period."
			return nil
		}

		rendered, err := deps.Prompts.Render("executive_summary", executiveSummaryVars{
			MainTopic:  s.MainTopic,
			TopicCount: len(s.TopicSummaries),
		})
		if err != nil {
			s.AddError(state.NewPipelineError("executive_summary", "", err, false, time.Now()))
			s.ExecutiveSummary = fallbackExecutiveSummary(s)
			return nil
		}

		resp, err := deps.Gateway.Complete(ctx, llmgateway.CompletionRequest{
			SystemPrompt: rendered.SystemPrompt,
			UserPrompt:   formatTopicOverviews(s),
			MaxTokens:    800,
			Temperature:  0.4,
		})
		if err != nil {
			s.AddError(state.NewPipelineError("executive_summary", "", err, true, time.Now()))
			s.ExecutiveSummary = fallbackExecutiveSummary(s)
			return nil
		}

		var parsed executiveSummaryResult
		if err := rendered.Format.Parse(resp.Text, &parsed); err != nil {
			s.AddError(state.NewPipelineError("executive_summary", "", err, false, time.Now()))
			s.ExecutiveSummary = fallbackExecutiveSummary(s)
			return nil
		}

		s.ExecutiveSummary = parsed.Summary
		return nil
	}
}

func formatTopicOverviews(s *state.SharedState) string {
	var b strings.Builder
	for _, name := range s.OrderedTopicNames() {
		ts, ok := s.TopicSummaryFor(name)
		if !ok {
			continue
		}
		b.WriteString(ts.TopicName)
		b.WriteString(": ")
		b.WriteString(ts.Overview)
		b.WriteString("\n")
	}
	return b.String()
}

func fallbackExecutiveSummary(s *state.SharedState) string {
	return "This issue covers " + strings.Join(s.OrderedTopicNames(), ", ") + "."
}
