package compose

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncopulse/newsletter/pkg/state"
)

func testState(t *testing.T) *state.SharedState {
	t.Helper()
	s := state.New("run-1", "AI in Oncology", time.Now())
	s.ExecutiveSummary = "This issue covers two sub-topics."
	s.TopicsConfig = []state.TopicConfig{{Name: "Imaging", Query: "ai imaging"}}
	s.ReplaceTopicSummary(state.TopicSummary{
		TopicName:     "Imaging",
		Overview:      "Deep learning improved detection rates.",
		KeyFindings:   []string{"Finding one", "Finding two"},
		NotableTrends: []string{"Trend one"},
		TopArticles: []state.Article{
			{Title: "A Study", URL: "https://example.com/a"},
		},
		QualityScore: 0.8,
	})
	s.KnowledgeGraph.Glossary = []state.GlossaryEntry{
		{Term: "deep learning", Definition: "A class of machine learning models."},
	}
	return s
}

func TestRenderMarkdownIncludesRestrictedElementsOnly(t *testing.T) {
	s := testState(t)
	md := RenderMarkdown(s)

	assert.Contains(t, md, "## AI in Oncology")
	assert.Contains(t, md, "### Imaging")
	assert.Contains(t, md, "**Key findings**")
	assert.NotContains(t, md, "| ")  // no tables
	assert.NotContains(t, md, "#### ") // no deeper headings than H3
}

func TestRenderHTMLEmbedsCoverAsDataURI(t *testing.T) {
	s := testState(t)
	cover := []byte{0x89, 0x50, 0x4e, 0x47}
	html, err := RenderHTML(s, cover, nil)
	require.NoError(t, err)
	assert.True(t, strings.Contains(html, "data:image/png;base64,"))
	assert.Contains(t, html, "Imaging")
}

func TestRenderHTMLOmitsCoverWhenAbsent(t *testing.T) {
	s := testState(t)
	html, err := RenderHTML(s, nil, nil)
	require.NoError(t, err)
	assert.NotContains(t, html, "data:image/png")
}

func TestRenderJSONElidesLongContent(t *testing.T) {
	s := testState(t)
	long := strings.Repeat("x", 1000)
	ts, _ := s.TopicSummaryFor("Imaging")
	ts.TopArticles[0].Content = &long
	s.ReplaceTopicSummary(ts)

	data, err := RenderJSON(s)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	topics := parsed["topics"].([]any)
	articles := topics[0].(map[string]any)["articles"].([]any)
	content := articles[0].(map[string]any)["content"].(string)
	assert.Less(t, len(content), 1000)
	assert.Contains(t, content, "elided")
}

func TestRenderJSONKeepsShortContentIntact(t *testing.T) {
	s := testState(t)
	short := "short content"
	ts, _ := s.TopicSummaryFor("Imaging")
	ts.TopArticles[0].Content = &short
	s.ReplaceTopicSummary(ts)

	data, err := RenderJSON(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), "short content")
	assert.NotContains(t, string(data), "elided")
}
