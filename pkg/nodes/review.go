package nodes

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oncopulse/newsletter/pkg/llmgateway"
	"github.com/oncopulse/newsletter/pkg/state"
)

type reviewVars struct {
	MainTopic string
	TopicName string
}

type reviewResult struct {
	Score    float64  `json:"score"`
	Feedback string   `json:"feedback"`
	Issues   []string `json:"issues"`
}

// Review scores every topic summary for factual grounding, relevance,
// coverage, and style. A summary that scores below ReviewThreshold gets
// exactly one re-summarize attempt, incorporating the review feedback; the
// second attempt is accepted unconditionally (no minimum-improvement-delta
// gate) and, if it is still below threshold, kept anyway with a
// non-retryable PipelineError recorded rather than looping further.
func Review(deps *Deps) func(context.Context, *state.SharedState) error {
	return func(ctx context.Context, s *state.SharedState) error {
		width := boundedWidth(deps.Config.Engine.FanOutWidth)
		sem := make(chan struct{}, width)
		var wg sync.WaitGroup

		for _, name := range s.OrderedTopicNames() {
			name := name
			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				reviewOneTopic(ctx, deps, s, name)
			}()
		}

		wg.Wait()
		s.Metrics.AvgQuality = averageQuality(s)
		return nil
	}
}

// averageQuality computes the mean score across every recorded review
// verdict. Returns 0 when no topic was reviewed (e.g. zero articles
// retained for every topic this issue).
func averageQuality(s *state.SharedState) float64 {
	if len(s.Reviews) == 0 {
		return 0
	}
	var total float64
	for _, v := range s.Reviews {
		total += v.Score
	}
	return total / float64(len(s.Reviews))
}

func reviewOneTopic(ctx context.Context, deps *Deps, s *state.SharedState, topicName string) {
	ts, ok := s.TopicSummaryFor(topicName)
	if !ok {
		return
	}

	verdict, ok := runReview(ctx, deps, s, ts)
	if !ok {
		return
	}
	ts.QualityScore = verdict.Score
	s.ReplaceTopicSummary(ts)
	s.SetReview(topicName, verdict)
	if deps.Metrics != nil {
		deps.Metrics.ObserveReviewScore(topicName, verdict.Score)
	}

	threshold := deps.Config.Defaults.ReviewThreshold
	if verdict.Score >= threshold {
		return
	}

	tr, ok := s.TopicResultFor(topicName)
	if !ok {
		return
	}

	slog.Info("topic summary below review threshold, re-summarizing once", "topic", topicName, "score", verdict.Score, "threshold", threshold)
	revised := resummarizeWithFeedback(ctx, deps, s, tr, verdict)
	revisedVerdict, ok := runReview(ctx, deps, s, revised)
	if ok {
		revised.QualityScore = revisedVerdict.Score
		s.SetReview(topicName, revisedVerdict)
		if deps.Metrics != nil {
			deps.Metrics.ObserveReviewScore(topicName, revisedVerdict.Score)
		}
		if revisedVerdict.Score < threshold {
			slog.Warn("topic summary still below review threshold after re-summarize, keeping anyway", "topic", topicName, "score", revisedVerdict.Score, "threshold", threshold)
			s.AddError(state.NewPipelineError("review", topicName,
				fmt.Errorf("%w: topic %q still below review threshold after one re-summarize pass (score %.2f < %.2f)",
					state.ErrValidation, topicName, revisedVerdict.Score, threshold),
				false, time.Now()))
		}
	} else {
		revised.QualityScore = ts.QualityScore
	}
	s.ReplaceTopicSummary(revised)
}

func runReview(ctx context.Context, deps *Deps, s *state.SharedState, ts state.TopicSummary) (state.ReviewVerdict, bool) {
	rendered, err := deps.Prompts.Render("review", reviewVars{
		MainTopic: s.MainTopic,
		TopicName: ts.TopicName,
	})
	if err != nil {
		s.AddError(state.NewPipelineError("review", ts.TopicName, err, false, time.Now()))
		return state.ReviewVerdict{}, false
	}

	resp, err := deps.Gateway.Complete(ctx, llmgateway.CompletionRequest{
		SystemPrompt: rendered.SystemPrompt,
		UserPrompt:   formatTopicSummaryForReview(ts),
		MaxTokens:    800,
		Temperature:  0.1,
	})
	if err != nil {
		s.AddError(state.NewPipelineError("review", ts.TopicName, err, true, time.Now()))
		return state.ReviewVerdict{}, false
	}

	var parsed reviewResult
	if err := rendered.Format.Parse(resp.Text, &parsed); err != nil {
		s.AddError(state.NewPipelineError("review", ts.TopicName, err, false, time.Now()))
		return state.ReviewVerdict{}, false
	}

	issues := make([]state.ReviewIssue, 0, len(parsed.Issues))
	for _, i := range parsed.Issues {
		issues = append(issues, state.ReviewIssue(i))
	}

	return state.ReviewVerdict{
		TopicName: ts.TopicName,
		Score:     parsed.Score,
		Feedback:  parsed.Feedback,
		Issues:    issues,
	}, true
}

func formatTopicSummaryForReview(ts state.TopicSummary) string {
	out := "Overview: " + ts.Overview + "\n\nKey findings:\n"
	for _, f := range ts.KeyFindings {
		out += "- " + f + "\n"
	}
	out += "\nNotable trends:\n"
	for _, t := range ts.NotableTrends {
		out += "- " + t + "\n"
	}
	return out
}

func resummarizeWithFeedback(ctx context.Context, deps *Deps, s *state.SharedState, tr *state.TopicResult, verdict state.ReviewVerdict) state.TopicSummary {
	rendered, err := deps.Prompts.Render("summarize_topic", summarizeVars{
		MainTopic:    s.MainTopic,
		TopicName:    tr.Topic.Name,
		ArticleCount: len(tr.Articles),
	})
	if err != nil {
		s.AddError(state.NewPipelineError("review", tr.Topic.Name, err, false, time.Now()))
		return fallbackSummary(tr)
	}

	userPrompt := formatArticlesForScoring(tr.Articles) +
		"\n\nThe previous draft was reviewed and found lacking: " + verdict.Feedback +
		"\nRevise the summary to address this feedback."

	resp, err := deps.Gateway.Complete(ctx, llmgateway.CompletionRequest{
		SystemPrompt: rendered.SystemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    1500,
		Temperature:  0.4,
	})
	if err != nil {
		s.AddError(state.NewPipelineError("review", tr.Topic.Name, err, true, time.Now()))
		return fallbackSummary(tr)
	}

	var parsed summarizeResult
	if err := rendered.Format.Parse(resp.Text, &parsed); err != nil {
		s.AddError(state.NewPipelineError("review", tr.Topic.Name, err, false, time.Now()))
		return fallbackSummary(tr)
	}

	topArticles := tr.Articles
	if len(topArticles) > 5 {
		topArticles = topArticles[:5]
	}

	return state.TopicSummary{
		TopicName:     tr.Topic.Name,
		Overview:      parsed.Overview,
		KeyFindings:   parsed.KeyFindings,
		NotableTrends: parsed.NotableTrends,
		TopArticles:   topArticles,
	}
}
