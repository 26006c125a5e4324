package compose

import (
	"encoding/json"
	"fmt"

	"github.com/oncopulse/newsletter/pkg/state"
)

// elisionThreshold is the content length above which RenderJSON replaces
// an article's full content with a truncated preview, keeping the JSON
// snapshot artifact small enough to archive or diff across runs.
const elisionThreshold = 500

// jsonArticle mirrors state.Article but elides long content.
type jsonArticle struct {
	Title          string   `json:"title"`
	URL            string   `json:"url"`
	Source         *string  `json:"source,omitempty"`
	Content        *string  `json:"content,omitempty"`
	Summary        *string  `json:"summary,omitempty"`
	RelevanceScore *float64 `json:"relevance_score,omitempty"`
}

type jsonTopic struct {
	Name          string        `json:"name"`
	Overview      string        `json:"overview"`
	KeyFindings   []string      `json:"key_findings"`
	NotableTrends []string      `json:"notable_trends"`
	QualityScore  float64       `json:"quality_score"`
	Articles      []jsonArticle `json:"articles"`
}

type jsonSnapshot struct {
	RunID            string               `json:"run_id"`
	MainTopic        string               `json:"main_topic"`
	ExecutiveSummary string               `json:"executive_summary"`
	Topics           []jsonTopic          `json:"topics"`
	Glossary         []state.GlossaryEntry `json:"glossary"`
	Metrics          state.Metrics        `json:"metrics"`
}

// RenderJSON produces the run's JSON snapshot artifact, a lossless-except-
// for-elision record of everything SharedState carries. Any article
// content/summary longer than elisionThreshold characters is truncated
// with a marker so a human skimming the file doesn't download megabytes
// of retrieved source text.
func RenderJSON(s *state.SharedState) ([]byte, error) {
	snapshot := jsonSnapshot{
		RunID:            s.RunID,
		MainTopic:        s.MainTopic,
		ExecutiveSummary: s.ExecutiveSummary,
		Glossary:         s.KnowledgeGraph.Glossary,
		Metrics:          s.Metrics,
	}

	for _, name := range s.OrderedTopicNames() {
		ts, ok := s.TopicSummaryFor(name)
		if !ok {
			continue
		}
		jt := jsonTopic{
			Name:          ts.TopicName,
			Overview:      ts.Overview,
			KeyFindings:   ts.KeyFindings,
			NotableTrends: ts.NotableTrends,
			QualityScore:  ts.QualityScore,
		}
		for _, a := range ts.TopArticles {
			jt.Articles = append(jt.Articles, elideArticle(a))
		}
		snapshot.Topics = append(snapshot.Topics, jt)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json snapshot: %w", err)
	}
	return data, nil
}

func elideArticle(a state.Article) jsonArticle {
	out := jsonArticle{
		Title:          a.Title,
		URL:            a.URL,
		Source:         a.Source,
		RelevanceScore: a.RelevanceScore,
	}
	out.Content = elideField(a.Content)
	out.Summary = elideField(a.Summary)
	return out
}

func elideField(field *string) *string {
	if field == nil || len(*field) <= elisionThreshold {
		return field
	}
	elided := (*field)[:elisionThreshold] + fmt.Sprintf("... [%d more characters elided]", len(*field)-elisionThreshold)
	return &elided
}
