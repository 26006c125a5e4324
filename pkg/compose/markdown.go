// Package compose renders a completed run's SharedState into the three
// output artifacts: restricted Markdown, a self-contained HTML page,
// and a JSON snapshot.
package compose

import (
	"fmt"
	"strings"

	"github.com/oncopulse/newsletter/pkg/state"
)

// RenderMarkdown produces the newsletter body using only a restricted
// subset of Markdown: H2/H3 headings, paragraphs, and bold emphasis — no
// tables, images, or nested lists, so the same source renders cleanly
// wherever it's pasted (Slack, email clients, plain viewers).
func RenderMarkdown(s *state.SharedState) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## %s\n\n", s.MainTopic)
	fmt.Fprintf(&b, "%s\n\n", s.ExecutiveSummary)

	for _, name := range s.OrderedTopicNames() {
		ts, ok := s.TopicSummaryFor(name)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "### %s\n\n", ts.TopicName)
		fmt.Fprintf(&b, "%s\n\n", ts.Overview)

		if len(ts.KeyFindings) > 0 {
			b.WriteString("**Key findings**\n\n")
			for _, f := range ts.KeyFindings {
				fmt.Fprintf(&b, "- %s\n", f)
			}
			b.WriteString("\n")
		}

		if len(ts.NotableTrends) > 0 {
			b.WriteString("**Notable trends**\n\n")
			for _, t := range ts.NotableTrends {
				fmt.Fprintf(&b, "- %s\n", t)
			}
			b.WriteString("\n")
		}

		if len(ts.TopArticles) > 0 {
			b.WriteString("**Sources**\n\n")
			for _, a := range ts.TopArticles {
				fmt.Fprintf(&b, "- [%s](%s)\n", a.Title, a.URL)
			}
			b.WriteString("\n")
		}
	}

	if len(s.KnowledgeGraph.Glossary) > 0 {
		b.WriteString("## Glossary\n\n")
		for _, g := range s.KnowledgeGraph.Glossary {
			fmt.Fprintf(&b, "**%s** — %s\n\n", g.Term, g.Definition)
		}
	}

	writeMetadataFooter(&b, s)

	return b.String()
}

// writeMetadataFooter appends the run's provenance block: the fixed trailer
// every issue carries regardless of which sections above it were populated.
func writeMetadataFooter(b *strings.Builder, s *state.SharedState) {
	b.WriteString("## Metadata\n\n")
	fmt.Fprintf(b, "- Run ID: %s\n", s.RunID)
	fmt.Fprintf(b, "- Generated: %s\n", s.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(b, "- Topics covered: %d\n", len(s.TopicSummaries))
	fmt.Fprintf(b, "- Total articles retained: %d\n", s.Metrics.TotalArticles)
	fmt.Fprintf(b, "- Average review quality: %.2f\n", s.Metrics.AvgQuality)
	fmt.Fprintf(b, "- Errors recorded: %d\n", len(s.Errors))
}
