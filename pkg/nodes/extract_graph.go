package nodes

import (
	"context"

	"github.com/oncopulse/newsletter/pkg/knowledgegraph"
	"github.com/oncopulse/newsletter/pkg/state"
)

// ExtractGraph builds the run's knowledge graph from every retained
// article's title and content, then generates a centrality-ranked glossary
// for the top GlossarySize entities.
func ExtractGraph(deps *Deps) func(context.Context, *state.SharedState) error {
	return func(ctx context.Context, s *state.SharedState) error {
		var texts []string
		for _, name := range s.OrderedTopicNames() {
			tr, ok := s.TopicResultFor(name)
			if !ok {
				continue
			}
			for _, a := range tr.Articles {
				texts = append(texts, articleText(a))
			}
		}

		builder := knowledgegraph.NewBuilder(deps.Ontology)
		kg := builder.Build(texts)
		kg.Glossary = knowledgegraph.BuildGlossary(ctx, deps.Gateway, deps.Prompts, s.MainTopic, kg, deps.Config.Defaults.GlossarySize)

		s.KnowledgeGraph = kg
		return nil
	}
}

func articleText(a state.Article) string {
	text := a.Title
	if a.Summary != nil {
		text += ". " + *a.Summary
	} else if a.Content != nil {
		text += ". " + *a.Content
	}
	return text
}
