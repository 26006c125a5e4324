package knowledgegraph

import (
	"strings"

	"github.com/oncopulse/newsletter/pkg/state"
)

// typePair is an ordered (source type, target type) key into the relation
// trigger table.
type typePair struct {
	from, to state.EntityType
}

// triggerRule maps a set of lexemes that, when present in the sentence
// between two co-occurring entities, indicate a specific relation rather
// than the RelationAssociatedWith default.
type triggerRule struct {
	lexemes  []string
	relation state.RelationType
}

// relationTriggers is deliberately small and directional: only the type
// pairs where the corpus's own vocabulary cleanly signals something more
// specific than "associated with" get an entry. Every other co-occurring
// pair within sentenceWindow falls through to RelationAssociatedWith per
// the bounded scope decided for this builder (see DESIGN.md).
var relationTriggers = map[typePair][]triggerRule{
	{state.EntityTreatment, state.EntityCancerType}: {
		{lexemes: []string{"treats", "treatment for", "treating", "therapy for"}, relation: state.RelationTreats},
	},
	{state.EntityDiagnostic, state.EntityCancerType}: {
		{lexemes: []string{"diagnoses", "diagnosis of", "detects", "detection of", "screens for"}, relation: state.RelationDetects},
	},
	{state.EntityBiomarker, state.EntityCancerType}: {
		{lexemes: []string{"biomarker for", "marker for", "predictive of", "prognostic for"}, relation: state.RelationBiomarkerFor},
	},
	{state.EntityAITechnology, state.EntityCancerType}: {
		{lexemes: []string{"analyzes", "analysis of", "used in", "applied to"}, relation: state.RelationAnalyzes},
	},
	{state.EntityAITechnology, state.EntityDiagnostic}: {
		{lexemes: []string{"used in", "powers", "applied to", "integrated into"}, relation: state.RelationUsedIn},
	},
	{state.EntityAITechnology, state.EntityBiomarker}: {
		{lexemes: []string{"identifies", "identifying", "discovers"}, relation: state.RelationIdentifies},
	},
	{state.EntityAITechnology, state.EntityTreatment}: {
		{lexemes: []string{"evaluates", "evaluation of", "assesses"}, relation: state.RelationEvaluates},
	},
	{state.EntityTreatment, state.EntityBiomarker}: {
		{lexemes: []string{"targets", "targeting"}, relation: state.RelationTargets},
	},
	{state.EntityResearchConcept, state.EntityCancerType}: {
		{lexemes: []string{"predicts", "prediction of", "forecasts"}, relation: state.RelationPredicts},
	},
	{state.EntityAITechnology, state.EntityResearchConcept}: {
		{lexemes: []string{"monitors", "monitoring", "tracks"}, relation: state.RelationMonitors},
	},
}

// Builder extracts entities and infers relations from a batch of article
// text, producing one state.KnowledgeGraph per run.
type Builder struct {
	extractor *Extractor
}

// NewBuilder wraps an Extractor built from the run's merged ontology.
func NewBuilder(ont Ontology) *Builder {
	return &Builder{extractor: NewExtractor(ont)}
}

// entityOccurrence pairs an extracted entity with the sentence index it
// came from, so relation inference can test co-occurrence within a
// sentence without re-scanning text.
type entityOccurrence struct {
	entity        state.KGEntity
	sentenceIndex int
}

// Build runs extraction across every article's combined title+summary
// text and infers relations between entities that co-occur in the same
// sentence, defaulting to RelationAssociatedWith when no trigger lexeme
// for the pair's type combination is present (Open Question: relation
// defaulting, resolved in DESIGN.md).
func (b *Builder) Build(articleTexts []string) state.KnowledgeGraph {
	var allSentences []string
	for _, text := range articleTexts {
		allSentences = append(allSentences, SplitSentences(text)...)
	}

	entities := b.extractor.Extract(allSentences)
	entityByKey := make(map[string]state.KGEntity, len(entities))
	for _, e := range entities {
		entityByKey[e.EntityKey()] = e
	}

	occurrences := b.occurrencesBySentence(allSentences, entityByKey)
	relations := b.inferRelations(allSentences, occurrences)

	return state.KnowledgeGraph{
		Entities:  entities,
		Relations: relations,
	}
}

// occurrencesBySentence re-runs token-boundary matching per sentence
// (rather than reusing Extract's aggregate counts) so each occurrence
// carries the sentence it appeared in, needed for relation inference.
func (b *Builder) occurrencesBySentence(sentences []string, known map[string]state.KGEntity) map[int][]state.KGEntity {
	out := make(map[int][]state.KGEntity)
	for i, sentence := range sentences {
		perSentence := b.extractor.Extract([]string{sentence})
		for _, e := range perSentence {
			if canonical, ok := known[e.EntityKey()]; ok {
				out[i] = append(out[i], canonical)
			}
		}
	}
	return out
}

func (b *Builder) inferRelations(sentences []string, occurrences map[int][]state.KGEntity) []state.KGRelation {
	seen := make(map[string]bool)
	var relations []state.KGRelation

	// Iterate sentence indices in order, not by ranging occurrences
	// directly — map iteration order is randomized and would make
	// KGRelation.Evidence (set from whichever sentence is processed first
	// for a pair) nondeterministic across runs on identical input.
	for idx := 0; idx < len(sentences); idx++ {
		entities, ok := occurrences[idx]
		if !ok || len(entities) < 2 {
			continue
		}
		sentence := sentences[idx]
		lowerSentence := strings.ToLower(sentence)

		for i := 0; i < len(entities); i++ {
			for j := 0; j < len(entities); j++ {
				if i == j {
					continue
				}
				source, target := entities[i], entities[j]
				if source.SurfaceForm == target.SurfaceForm && source.EntityType == target.EntityType {
					continue
				}

				pairKey := source.EntityKey() + "->" + target.EntityKey()
				if seen[pairKey] {
					continue
				}

				relation := resolveRelation(source.EntityType, target.EntityType, lowerSentence)
				if relation == "" {
					continue // no rule registered for this ordered type pair at all
				}
				seen[pairKey] = true
				relations = append(relations, state.KGRelation{
					Source:   source.SurfaceForm,
					Relation: relation,
					Target:   target.SurfaceForm,
					Evidence: sentence,
				})
			}
		}
	}
	return relations
}

// resolveRelation returns the triggered relation for (from, to) if the
// sentence contains one of its lexemes, RelationAssociatedWith if the
// pair has a registered direction but no lexeme matched, or "" if no
// rule exists for this ordered pair (the reverse direction may still
// match on its own pass).
func resolveRelation(from, to state.EntityType, lowerSentence string) state.RelationType {
	rules, ok := relationTriggers[typePair{from: from, to: to}]
	if !ok {
		return ""
	}
	for _, rule := range rules {
		for _, lexeme := range rule.lexemes {
			if strings.Contains(lowerSentence, lexeme) {
				return rule.relation
			}
		}
	}
	return state.RelationAssociatedWith
}
