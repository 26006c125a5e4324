package nodes

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oncopulse/newsletter/pkg/state"
)

// FetchAllTopics fans out retrieval across every configured topic, bounded
// by Engine.FanOutWidth concurrent topics at a time. Each topic's result
// (articles or a recorded error) lands in SharedState.TopicResults
// independently of the others — one topic's retrieval failure never blocks
// or fails the rest.
func FetchAllTopics(deps *Deps) func(context.Context, *state.SharedState) error {
	return func(ctx context.Context, s *state.SharedState) error {
		width := boundedWidth(deps.Config.Engine.FanOutWidth)
		maxResults := deps.Config.Defaults.MaxArticlesPerTopic
		now := time.Now()

		sem := make(chan struct{}, width)
		var wg sync.WaitGroup

		for _, topic := range s.TopicsConfig {
			topic := topic
			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()

				articles, errs := deps.Retriever.Retrieve(ctx, topic, maxResults, now)
				for _, pe := range errs {
					pe.Topic = topic.Name
					s.AddError(pe)
				}

				tr := &state.TopicResult{
					Topic:     topic,
					Articles:  articles,
					FetchedAt: now,
				}
				if len(articles) == 0 {
					tr.Error = "no_articles"
				}
				s.SetTopicResult(topic.Name, tr)
			}()
		}

		wg.Wait()

		if totalArticles(s) == 0 {
			slog.Warn("every configured topic returned zero articles, continuing with empty topics", "run_id", s.RunID, "topic_count", len(s.TopicsConfig))
		}
		return nil
	}
}

func totalArticles(s *state.SharedState) int {
	total := 0
	for _, name := range s.OrderedTopicNames() {
		tr, ok := s.TopicResultFor(name)
		if !ok {
			continue
		}
		total += len(tr.Articles)
	}
	return total
}
