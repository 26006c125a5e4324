package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRendersBuiltinTemplate(t *testing.T) {
	r := NewRegistry(nil)
	out, err := r.Render("summarize_topic", map[string]any{
		"TopicName":   "immunotherapy",
		"MainTopic":   "AI in Oncology",
		"ArticleCount": 7,
	})
	require.NoError(t, err)
	assert.Contains(t, out.SystemPrompt, "immunotherapy")
	assert.Contains(t, out.SystemPrompt, "7 retained articles")
	assert.IsType(t, JSONSchemaParser{}, out.Format)
}

func TestRegistryUnknownPrompt(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Render("does_not_exist", nil)
	require.Error(t, err)
}

func TestRegistryUserOverrideBackfillsFromBuiltin(t *testing.T) {
	user := Catalog{
		"review": Template{
			Name: "review",
			Tone: "Brutally direct.",
		},
	}
	r := NewRegistry(user)
	out, err := r.Render("review", map[string]any{"TopicName": "biomarkers", "MainTopic": "AI in Oncology"})
	require.NoError(t, err)
	assert.Contains(t, out.SystemPrompt, "Brutally direct.")
	assert.Contains(t, out.SystemPrompt, "biomarkers", "Context section should survive from the built-in backfill")
}

func TestJSONSchemaParserExtractsFencedBlock(t *testing.T) {
	var got struct {
		Score float64 `json:"score"`
	}
	raw := "Here is my answer:\n```json\n{\"score\": 0.8}\n```\nThanks."
	p := JSONSchemaParser{}
	require.NoError(t, p.Parse(raw, &got))
	assert.Equal(t, 0.8, got.Score)
}

func TestJSONSchemaParserNoJSONIsParseError(t *testing.T) {
	p := JSONSchemaParser{}
	var got map[string]any
	err := p.Parse("no json here at all", &got)
	require.Error(t, err)
}

func TestNumericRegexParser(t *testing.T) {
	p := NumericRegexParser{}
	var got float64
	require.NoError(t, p.Parse("The relevance score is 0.73 out of 1.", &got))
	assert.Equal(t, 0.73, got)
}
