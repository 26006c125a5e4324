package knowledgegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncopulse/newsletter/pkg/state"
)

func testOntology() Ontology {
	return Ontology{
		"cancer_type":   {"breast cancer", "lung cancer"},
		"ai_technology": {"deep learning", "machine learning"},
		"biomarker":     {"PD-L1"},
		"diagnostic":    {"mammography"},
	}
}

func TestSplitSentences(t *testing.T) {
	sentences := SplitSentences("Deep learning improves lung cancer detection. Dr. Lee led the study. It outperformed mammography.")
	require.Len(t, sentences, 3)
	assert.Contains(t, sentences[0], "lung cancer detection")
}

func TestExtractorLongestMatchWins(t *testing.T) {
	ont := Ontology{
		"cancer_type": {"lung cancer", "lung"},
	}
	ex := NewExtractor(ont)
	entities := ex.Extract([]string{"Lung cancer rates are rising."})
	require.Len(t, entities, 1)
	assert.Equal(t, "Lung cancer", entities[0].SurfaceForm)
}

func TestExtractorRespectsTokenBoundaries(t *testing.T) {
	ont := Ontology{"ai_technology": {"AI"}}
	ex := NewExtractor(ont)
	entities := ex.Extract([]string{"The pain was unrelated to AI research."})
	require.Len(t, entities, 1)
	assert.Equal(t, "AI", entities[0].SurfaceForm)
}

func TestBuilderInfersTriggeredRelation(t *testing.T) {
	b := NewBuilder(testOntology())
	kg := b.Build([]string{"Deep learning analyzes lung cancer scans with high accuracy."})

	require.NotEmpty(t, kg.Relations)
	var found bool
	for _, r := range kg.Relations {
		if r.Relation == state.RelationAnalyzes {
			found = true
		}
	}
	assert.True(t, found, "expected an 'analyzes' relation between the AI technology and the cancer type")
}

func TestBuilderDefaultsToAssociatedWithWhenNoTrigger(t *testing.T) {
	b := NewBuilder(testOntology())
	kg := b.Build([]string{"PD-L1 and breast cancer were both mentioned in the same cohort study."})

	require.NotEmpty(t, kg.Relations)
	for _, r := range kg.Relations {
		assert.Equal(t, state.RelationAssociatedWith, r.Relation)
	}
}

func TestRankOrdersByCombinedScore(t *testing.T) {
	kg := state.KnowledgeGraph{
		Entities: []state.KGEntity{
			{SurfaceForm: "deep learning", EntityType: state.EntityAITechnology, Frequency: 10},
			{SurfaceForm: "breast cancer", EntityType: state.EntityCancerType, Frequency: 1},
		},
		Relations: []state.KGRelation{
			{Source: "deep learning", Relation: state.RelationAnalyzes, Target: "breast cancer"},
		},
	}
	ranked := Rank(kg)
	require.Len(t, ranked, 2)
	assert.Equal(t, "deep learning", ranked[0].Entity.SurfaceForm)
	assert.Greater(t, ranked[0].Importance, ranked[1].Importance)
}

func TestBuildGlossaryFallsBackWithoutGateway(t *testing.T) {
	kg := state.KnowledgeGraph{
		Entities: []state.KGEntity{
			{SurfaceForm: "deep learning", EntityType: state.EntityAITechnology, Frequency: 3, Contexts: []string{"Deep learning improved accuracy."}},
		},
	}
	entries := BuildGlossary(nil, nil, nil, "AI in Oncology", kg, 5)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Definition, "deep learning")
}

func TestExportJSONRoundTrips(t *testing.T) {
	kg := state.KnowledgeGraph{Entities: []state.KGEntity{{SurfaceForm: "x", EntityType: state.EntityOther}}}
	data, err := ExportJSON(kg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"surface_form\": \"x\"")
}
