package nodes

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oncopulse/newsletter/pkg/llmgateway"
	"github.com/oncopulse/newsletter/pkg/prompt"
	"github.com/oncopulse/newsletter/pkg/state"
)

// relevanceVars is the template variable set for analyze_relevance.
type relevanceVars struct {
	MainTopic        string
	TopicName        string
	TopicDescription string
}

// ScoreAndFilter asks the LLM to score every retained article's relevance
// to its topic with one call per article, drops anything under the
// configured threshold, then keeps at most TopKPerTopic by descending
// score. A topic with zero articles (fetch recorded error=no_articles) is
// skipped entirely — there is nothing to score.
func ScoreAndFilter(deps *Deps) func(context.Context, *state.SharedState) error {
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
				scoreTopicArticles(ctx, deps, s, tr)
			}()
		}

		wg.Wait()
		s.Metrics.TotalArticles = totalRetainedArticles(s)
		return nil
	}
}

func totalRetainedArticles(s *state.SharedState) int {
	total := 0
	for _, name := range s.OrderedTopicNames() {
		if tr, ok := s.TopicResultFor(name); ok {
			total += len(tr.Articles)
		}
	}
	return total
}

// scoreTopicArticles scores each of tr's articles with its own LLM call
// (§4.3.3): on a non-numeric or out-of-range reply it retries once, and on
// a second failure assigns relevance 0.0 and records a non-retryable,
// article-granularity PipelineError rather than failing the topic.
func scoreTopicArticles(ctx context.Context, deps *Deps, s *state.SharedState, tr *state.TopicResult) {
	rendered, err := deps.Prompts.Render("analyze_relevance", relevanceVars{
		MainTopic:        s.MainTopic,
		TopicName:        tr.Topic.Name,
		TopicDescription: tr.Topic.Description,
	})
	if err != nil {
		s.AddError(state.NewPipelineError("score_and_filter", tr.Topic.Name, err, false, time.Now()))
		return
	}

	width := boundedWidth(deps.Config.Engine.FanOutWidth)
	sem := make(chan struct{}, width)
	var wg sync.WaitGroup

	for i := range tr.Articles {
		i := i
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			score := scoreOneArticle(ctx, deps, s, tr, rendered, &tr.Articles[i])
			tr.Articles[i].SetRelevance(score)
		}()
	}
	wg.Wait()

	threshold := deps.Config.Defaults.RelevanceThreshold
	retained := make([]state.Article, 0, len(tr.Articles))
	for _, a := range tr.Articles {
		if a.RelevanceScore != nil && *a.RelevanceScore >= threshold {
			retained = append(retained, a)
		}
	}

	state.SortByRelevanceDesc(retained)
	topK := deps.Config.Defaults.TopKPerTopic
	if topK > 0 && len(retained) > topK {
		retained = retained[:topK]
	}

	tr.Articles = retained
	s.SetTopicResult(tr.Topic.Name, tr)
}

// scoreOneArticle issues the analyze_relevance call for a single article,
// retrying exactly once on a parse failure or an out-of-range score before
// falling back to 0.0 with a recorded, non-retryable error.
func scoreOneArticle(ctx context.Context, deps *Deps, s *state.SharedState, tr *state.TopicResult, rendered prompt.Rendered, article *state.Article) float64 {
	const maxAttempts = 2
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := deps.Gateway.Complete(ctx, llmgateway.CompletionRequest{
			SystemPrompt: rendered.SystemPrompt,
			UserPrompt:   formatArticleForScoring(*article),
			MaxTokens:    20,
			Temperature:  0.0,
		})
		if err != nil {
			lastErr = err
			continue
		}

		var score float64
		if err := rendered.Format.Parse(resp.Text, &score); err != nil {
			lastErr = err
			continue
		}
		if score < 0 || score > 1 {
			lastErr = fmt.Errorf("%w: relevance score %v out of [0,1] range", state.ErrParse, score)
			continue
		}
		return score
	}

	s.AddError(state.NewPipelineError("score_and_filter", tr.Topic.Name, lastErr, false, time.Now()))
	return 0.0
}

func formatArticleForScoring(a state.Article) string {
	content := ""
	if a.Content != nil {
		content = *a.Content
	} else if a.Summary != nil {
		content = *a.Summary
	}
	return fmt.Sprintf("url: %s\ntitle: %s\nexcerpt: %s\n", a.URL, a.Title, truncate(content, 500))
}

// formatArticlesForScoring renders a batch of articles for prompts that do
// take the whole retained set at once (summarize_topic's draft pass and
// review's re-summarize pass), unlike analyze_relevance which scores one
// article per call.
func formatArticlesForScoring(articles []state.Article) string {
	out := ""
	for i, a := range articles {
		title := a.Title
		content := ""
		if a.Content != nil {
			content = *a.Content
		} else if a.Summary != nil {
			content = *a.Summary
		}
		out += fmt.Sprintf("%d. url: %s\ntitle: %s\nexcerpt: %s\n\n", i+1, a.URL, title, truncate(content, 500))
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
