package compose

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"

	"github.com/oncopulse/newsletter/pkg/state"
)

// htmlTemplate renders a single, self-contained HTML document: every image
// is a base64 data URI so the file has no external asset dependencies and
// can be emailed or archived on its own.
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.MainTopic}}</title>
<style>
body { font-family: Georgia, serif; max-width: 760px; margin: 0 auto; padding: 2rem 1rem; color: #222; }
h2 { border-bottom: 2px solid #2f6fed; padding-bottom: 0.3rem; }
h3 { color: #2f6fed; }
.cover { width: 100%; height: auto; border-radius: 6px; margin-bottom: 1.5rem; }
.chart { max-width: 100%; margin: 0.5rem 0 1rem; }
.glossary-term { font-weight: bold; }
.source-list { font-size: 0.9rem; }
.badge { display: inline-block; padding: 0.1rem 0.5rem; border-radius: 999px; font-size: 0.75rem; font-weight: bold; color: #fff; }
.badge-high { background: #2ea04a; }
.badge-mid { background: #d99a1b; }
.badge-low { background: #d13b3b; }
.quality-badge { margin-left: 0.5rem; }
</style>
</head>
<body>
{{if .CoverDataURI}}<img class="cover" src="{{.CoverDataURI}}" alt="cover image">{{end}}
<h2>{{.MainTopic}}</h2>
<p>{{.ExecutiveSummary}}</p>
{{range .Topics}}
<h3>{{.Name}}{{if .QualityBadge}} <span class="badge {{.QualityBadge.Class}} quality-badge">quality {{.QualityBadge.Label}}</span>{{end}}</h3>
<p>{{.Overview}}</p>
{{if .KeyFindings}}<p><strong>Key findings</strong></p><ul>{{range .KeyFindings}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .NotableTrends}}<p><strong>Notable trends</strong></p><ul>{{range .NotableTrends}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .Sources}}<p class="source-list"><strong>Top articles</strong></p><ul class="source-list">{{range .Sources}}<li><a href="{{.URL}}">{{.Title}}</a> ({{.SourceName}}) <span class="badge {{.RelevanceBadge.Class}}">{{.RelevanceBadge.Label}}</span></li>{{end}}</ul>{{end}}
{{end}}
{{if .Glossary}}
<h2>Glossary</h2>
{{range .Glossary}}<p><span class="glossary-term">{{.Term}}</span> &mdash; {{.Definition}}</p>{{end}}
{{end}}
{{if .Charts}}
<h2>Analytics</h2>
{{range .Charts}}<p><strong>{{.Label}}</strong></p><img class="chart" src="{{.DataURI}}" alt="{{.Label}}">{{end}}
{{end}}
</body>
</html>
`

// badgeView renders a small colored label from a score in [0,1]: green at
// or above 0.7, amber at or above 0.4, red below.
type badgeView struct {
	Label string
	Class string
}

func newBadge(score float64) badgeView {
	switch {
	case score >= 0.7:
		return badgeView{Label: fmt.Sprintf("%.2f", score), Class: "badge-high"}
	case score >= 0.4:
		return badgeView{Label: fmt.Sprintf("%.2f", score), Class: "badge-mid"}
	default:
		return badgeView{Label: fmt.Sprintf("%.2f", score), Class: "badge-low"}
	}
}

type htmlTopicView struct {
	Name          string
	Overview      string
	KeyFindings   []string
	NotableTrends []string
	Sources       []htmlSourceView
	QualityBadge  *badgeView
}

type htmlSourceView struct {
	Title          string
	URL            string
	SourceName     string
	RelevanceBadge badgeView
}

type htmlChartView struct {
	Label   string
	DataURI string
}

type htmlGlossaryView struct {
	Term       string
	Definition string
}

type htmlDocView struct {
	MainTopic        string
	ExecutiveSummary string
	CoverDataURI     string
	Topics           []htmlTopicView
	Glossary         []htmlGlossaryView
	Charts           []htmlChartView
}

// chartOrder fixes the Analytics section's display order: distribution,
// quality gauge, quality-by-topic, dashboard. A chart the producer didn't
// generate (disabled or failed) is silently omitted, never shown blank.
var chartOrder = []struct{ name, label string }{
	{"distribution", "Article Distribution"},
	{"quality_gauge", "Overall Quality"},
	{"quality_by_topic", "Quality by Topic"},
	{"dashboard", "Run Dashboard"},
}

// RenderHTML builds the self-contained HTML artifact. cover and charts may
// be nil/empty when image generation is disabled or failed; the template
// simply omits the corresponding <img> tag. charts is keyed by chart name
// (see chartOrder) rather than by topic — the Analytics section is
// run-wide, not per-topic.
func RenderHTML(s *state.SharedState, cover []byte, charts map[string][]byte) (string, error) {
	tmpl, err := template.New("newsletter").Parse(htmlTemplate)
	if err != nil {
		return "", fmt.Errorf("parse html template: %w", err)
	}

	view := htmlDocView{
		MainTopic:        s.MainTopic,
		ExecutiveSummary: s.ExecutiveSummary,
		CoverDataURI:     dataURI(cover, "image/png"),
	}

	for _, name := range s.OrderedTopicNames() {
		ts, ok := s.TopicSummaryFor(name)
		if !ok {
			continue
		}
		tv := htmlTopicView{
			Name:          ts.TopicName,
			Overview:      ts.Overview,
			KeyFindings:   ts.KeyFindings,
			NotableTrends: ts.NotableTrends,
		}
		if ts.QualityScore > 0 {
			b := newBadge(ts.QualityScore)
			tv.QualityBadge = &b
		}
		for _, a := range ts.TopArticles {
			sourceName := "unknown"
			if a.Source != nil && *a.Source != "" {
				sourceName = *a.Source
			}
			score := 0.0
			if a.RelevanceScore != nil {
				score = *a.RelevanceScore
			}
			tv.Sources = append(tv.Sources, htmlSourceView{
				Title:          a.Title,
				URL:            a.URL,
				SourceName:     sourceName,
				RelevanceBadge: newBadge(score),
			})
		}
		view.Topics = append(view.Topics, tv)
	}

	for _, g := range s.KnowledgeGraph.Glossary {
		view.Glossary = append(view.Glossary, htmlGlossaryView{Term: g.Term, Definition: g.Definition})
	}

	for _, c := range chartOrder {
		data, ok := charts[c.name]
		if !ok || len(data) == 0 {
			continue
		}
		view.Charts = append(view.Charts, htmlChartView{Label: c.label, DataURI: dataURI(data, "image/png")})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

func dataURI(data []byte, mimeType string) string {
	if len(data) == 0 {
		return ""
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
