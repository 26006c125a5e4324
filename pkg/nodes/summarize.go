package nodes

import (
	"context"
	"sync"
	"time"

	"github.com/oncopulse/newsletter/pkg/llmgateway"
	"github.com/oncopulse/newsletter/pkg/state"
)

// summarizeVars is the template variable set for summarize_topic.
type summarizeVars struct {
	MainTopic    string
	TopicName    string
	ArticleCount int
}

// summarizeResult mirrors builtinSummarizeTopic's response shape.
type summarizeResult struct {
	Overview      string   `json:"overview"`
	KeyFindings   []string `json:"key_findings"`
	NotableTrends []string `json:"notable_trends"`
}

// SummarizeTopics drafts one TopicSummary per topic with at least one
// retained article. A topic with zero articles (error=no_articles from
// fetch, or every candidate filtered below the relevance threshold)
// produces no TopicSummary at all — §4.3.2/§4.3.3's contract is that such
// a topic is absent from the issue, not filled with a placeholder.
func SummarizeTopics(deps *Deps) func(context.Context, *state.SharedState) error {
	return func(ctx context.Context, s *state.SharedState) error {
		width := boundedWidth(deps.Config.Engine.FanOutWidth)
		sem := make(chan struct{}, width)
		var wg sync.WaitGroup

		for _, name := range s.OrderedTopicNames() {
			tr, ok := s.TopicResultFor(name)
			if !ok || len(tr.Articles) == 0 {
				continue
			}
			tr := tr
			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				summary := summarizeOneTopic(ctx, deps, s, tr)
				s.ReplaceTopicSummary(summary)
			}()
		}

		wg.Wait()
		return nil
	}
}

func summarizeOneTopic(ctx context.Context, deps *Deps, s *state.SharedState, tr *state.TopicResult) state.TopicSummary {
	rendered, err := deps.Prompts.Render("summarize_topic", summarizeVars{
		MainTopic:    s.MainTopic,
		TopicName:    tr.Topic.Name,
		ArticleCount: len(tr.Articles),
	})
	if err != nil {
		s.AddError(state.NewPipelineError("summarize_topics", tr.Topic.Name, err, false, time.Now()))
		return fallbackSummary(tr)
	}

	resp, err := deps.Gateway.Complete(ctx, llmgateway.CompletionRequest{
		SystemPrompt: rendered.SystemPrompt,
		UserPrompt:   formatArticlesForScoring(tr.Articles),
		MaxTokens:    1500,
		Temperature:  0.4,
	})
	if err != nil {
		s.AddError(state.NewPipelineError("summarize_topics", tr.Topic.Name, err, true, time.Now()))
		return fallbackSummary(tr)
	}

	var parsed summarizeResult
	if err := rendered.Format.Parse(resp.Text, &parsed); err != nil {
		s.AddError(state.NewPipelineError("summarize_topics", tr.Topic.Name, err, false, time.Now()))
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
		QualityScore:  0, // set by the review node
	}
}

// fallbackSummary is used when the LLM call or parse fails: a minimal,
// still-useful summary built from article titles alone.
func fallbackSummary(tr *state.TopicResult) state.TopicSummary {
	findings := make([]string, 0, len(tr.Articles))
	for _, a := range tr.Articles {
		findings = append(findings, a.Title)
	}
	topArticles := tr.Articles
	if len(topArticles) > 5 {
		topArticles = topArticles[:5]
	}
	return state.TopicSummary{
		TopicName:   tr.Topic.Name,
		Overview:    "Automated summarization was unavailable for this topic; titles of retained articles are listed below.",
		KeyFindings: findings,
		TopArticles: topArticles,
	}
}
