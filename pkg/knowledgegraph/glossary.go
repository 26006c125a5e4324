package knowledgegraph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/oncopulse/newsletter/pkg/llmgateway"
	"github.com/oncopulse/newsletter/pkg/prompt"
	"github.com/oncopulse/newsletter/pkg/state"
)

// glossaryVars is the template variable set for the define_term prompt.
type glossaryVars struct {
	Term       string
	EntityType string
	MainTopic  string
}

// defineTermResult mirrors builtinDefineTerm's response schema.
type defineTermResult struct {
	Definition string `json:"definition"`
}

// BuildGlossary ranks every entity by centrality and LLM-defines the top n,
// falling back to a templated definition (naming the entity's type and a
// context sentence it occurred in) if the gateway call fails — the run
// must still produce a usable glossary even with every provider down.
func BuildGlossary(ctx context.Context, gw *llmgateway.Gateway, prompts *prompt.Registry, mainTopic string, kg state.KnowledgeGraph, size int) []state.GlossaryEntry {
	ranked := Rank(kg)
	if size > 0 && len(ranked) > size {
		ranked = ranked[:size]
	}

	entries := make([]state.GlossaryEntry, 0, len(ranked))
	for _, r := range ranked {
		definition := defineTerm(ctx, gw, prompts, mainTopic, r.Entity)
		entries = append(entries, state.GlossaryEntry{
			Term:       r.Entity.SurfaceForm,
			EntityType: r.Entity.EntityType,
			Importance: r.Importance,
			Definition: definition,
			Related:    relatedTerms(kg, r.Entity),
		})
	}
	return entries
}

func defineTerm(ctx context.Context, gw *llmgateway.Gateway, prompts *prompt.Registry, mainTopic string, entity state.KGEntity) string {
	if gw == nil || prompts == nil {
		return fallbackDefinition(entity)
	}

	rendered, err := prompts.Render("define_term", glossaryVars{
		Term:       entity.SurfaceForm,
		EntityType: string(entity.EntityType),
		MainTopic:  mainTopic,
	})
	if err != nil {
		return fallbackDefinition(entity)
	}

	userPrompt := strings.Join(entity.Contexts, "\n")
	resp, err := gw.Complete(ctx, llmgateway.CompletionRequest{
		SystemPrompt: rendered.SystemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    256,
		Temperature:  0.2,
	})
	if err != nil {
		return fallbackDefinition(entity)
	}

	var parsed defineTermResult
	if err := rendered.Format.Parse(resp.Text, &parsed); err != nil || parsed.Definition == "" {
		return fallbackDefinition(entity)
	}
	return parsed.Definition
}

// fallbackDefinition is used when no provider is reachable: a short,
// templated sentence naming the entity's type and, if available, the
// first sentence it occurred in.
func fallbackDefinition(entity state.KGEntity) string {
	typeLabel := strings.ReplaceAll(string(entity.EntityType), "_", " ")
	if len(entity.Contexts) == 0 {
		return fmt.Sprintf("%s: a %s referenced in this issue.", entity.SurfaceForm, typeLabel)
	}
	return fmt.Sprintf("%s: a %s. Context: %s", entity.SurfaceForm, typeLabel, entity.Contexts[0])
}

// relatedTerms returns the top-3 neighbor entities connected to entity by
// any relation, ranked by edge weight (the number of relations linking the
// pair, i.e. their co-occurrence count) rather than encounter order.
func relatedTerms(kg state.KnowledgeGraph, entity state.KGEntity) []string {
	weight := make(map[string]int)
	var order []string
	for _, r := range kg.Relations {
		var other string
		switch entity.SurfaceForm {
		case r.Source:
			other = r.Target
		case r.Target:
			other = r.Source
		default:
			continue
		}
		if other == "" {
			continue
		}
		if _, ok := weight[other]; !ok {
			order = append(order, other)
		}
		weight[other]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return weight[order[i]] > weight[order[j]]
	})

	if len(order) > 3 {
		order = order[:3]
	}
	return order
}
