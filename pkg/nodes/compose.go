package nodes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oncopulse/newsletter/pkg/compose"
	"github.com/oncopulse/newsletter/pkg/knowledgegraph"
	"github.com/oncopulse/newsletter/pkg/media"
	"github.com/oncopulse/newsletter/pkg/state"
)

// ComposeOutputs renders every configured output artifact (Markdown, HTML,
// JSON, knowledge-graph JSON, optionally a cover image and analytics
// charts) to Config.OutputDir and records their paths in
// SharedState.Outputs. A single artifact's failure is recorded as a
// non-retryable PipelineError rather than failing the whole run — a
// newsletter missing its cover image is still a newsletter.
//
// Artifacts follow a fixed naming convention, all keyed off one
// YYYYMMDD_HHMMSS timestamp derived from the run's start time:
// newsletter_{ts}.md/.html, run_results_{ts}.json, images/cover_{ts}.png,
// charts/{name}_{ts}.png, knowledge_graphs/kg_{ts}.json.
func ComposeOutputs(deps *Deps, cover media.ImageProvider) func(context.Context, *state.SharedState) error {
	if cover == nil {
		cover = media.NewGradientCoverProvider()
	}

	return func(ctx context.Context, s *state.SharedState) error {
		outDir := deps.Config.OutputDir
		if outDir == "" {
			outDir = "."
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("compose_outputs: create output dir: %w", err)
		}

		ts := s.StartedAt.Format("20060102_150405")
		var outputs state.Outputs

		if err := writeArtifact(outDir, "newsletter_"+ts+".md", []byte(compose.RenderMarkdown(s)), &outputs.MDPath); err != nil {
			s.AddError(state.NewPipelineError("compose_outputs", "", err, false, time.Now()))
		}

		var coverBytes []byte
		if deps.Config.Features.EnableCoverImage {
			imagesDir := filepath.Join(outDir, "images")
			var err error
			coverBytes, err = cover.GenerateCover(ctx, s.MainTopic)
			if err != nil {
				s.AddError(state.NewPipelineError("compose_outputs", "", err, false, time.Now()))
				coverBytes = nil
			} else if err := os.MkdirAll(imagesDir, 0o755); err != nil {
				s.AddError(state.NewPipelineError("compose_outputs", "", err, false, time.Now()))
			} else if err := writeArtifact(imagesDir, "cover_"+ts+".png", coverBytes, &outputs.CoverPath); err != nil {
				s.AddError(state.NewPipelineError("compose_outputs", "", err, false, time.Now()))
			}
		}

		charts := buildAnalyticsCharts(s)
		if deps.Config.Features.EnableCharts && len(charts) > 0 {
			chartsDir := filepath.Join(outDir, "charts")
			outputs.Charts = make(map[string]string)
			if err := os.MkdirAll(chartsDir, 0o755); err != nil {
				s.AddError(state.NewPipelineError("compose_outputs", "", err, false, time.Now()))
			} else {
				for name, data := range charts {
					var path string
					if err := writeArtifact(chartsDir, sanitizeFilename(name)+"_"+ts+".png", data, &path); err != nil {
						s.AddError(state.NewPipelineError("compose_outputs", name, err, false, time.Now()))
						continue
					}
					outputs.Charts[name] = path
				}
			}
		} else {
			charts = nil
		}

		html, err := compose.RenderHTML(s, coverBytes, charts)
		if err != nil {
			s.AddError(state.NewPipelineError("compose_outputs", "", err, false, time.Now()))
		} else if err := writeArtifact(outDir, "newsletter_"+ts+".html", []byte(html), &outputs.HTMLPath); err != nil {
			s.AddError(state.NewPipelineError("compose_outputs", "", err, false, time.Now()))
		}

		jsonSnapshot, err := compose.RenderJSON(s)
		if err != nil {
			s.AddError(state.NewPipelineError("compose_outputs", "", err, false, time.Now()))
		} else if err := writeArtifact(outDir, "run_results_"+ts+".json", jsonSnapshot, &outputs.JSONPath); err != nil {
			s.AddError(state.NewPipelineError("compose_outputs", "", err, false, time.Now()))
		}

		kgJSON, err := knowledgegraph.ExportJSON(s.KnowledgeGraph)
		if err != nil {
			s.AddError(state.NewPipelineError("compose_outputs", "", err, false, time.Now()))
		} else {
			kgDir := filepath.Join(outDir, "knowledge_graphs")
			if err := os.MkdirAll(kgDir, 0o755); err != nil {
				s.AddError(state.NewPipelineError("compose_outputs", "", err, false, time.Now()))
			} else if err := writeArtifact(kgDir, "kg_"+ts+".json", kgJSON, &outputs.KGPath); err != nil {
				s.AddError(state.NewPipelineError("compose_outputs", "", err, false, time.Now()))
			}
		}

		s.Outputs = outputs
		return nil
	}
}

// buildAnalyticsCharts renders the run's up-to-four Analytics charts:
// article distribution per topic, an overall quality gauge, quality score
// per topic, and a combined dashboard. Each is independent — a failure
// rendering one doesn't block the others, and an empty run (no topic
// summaries) simply produces no charts at all.
func buildAnalyticsCharts(s *state.SharedState) map[string][]byte {
	if len(s.TopicSummaries) == 0 {
		return nil
	}

	distribution := make(map[string]float64)
	qualityByTopic := make(map[string]float64)
	for _, ts := range s.TopicSummaries {
		distribution[ts.TopicName] = float64(len(ts.TopArticles))
		qualityByTopic[ts.TopicName] = ts.QualityScore
	}

	charts := make(map[string][]byte)
	if data, err := media.RenderBarChart(distribution, 0, 0); err == nil {
		charts["distribution"] = data
	}
	if data, err := media.RenderGauge(s.Metrics.AvgQuality, 0, 0); err == nil {
		charts["quality_gauge"] = data
	}
	if data, err := media.RenderBarChart(qualityByTopic, 0, 0); err == nil {
		charts["quality_by_topic"] = data
	}
	if data, err := media.RenderDashboard(distribution, s.Metrics.AvgQuality, 0, 0); err == nil {
		charts["dashboard"] = data
	}
	return charts
}

func writeArtifact(dir, filename string, data []byte, pathOut *string) error {
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	*pathOut = path
	return nil
}

func sanitizeFilename(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == ' ':
			out = append(out, '-')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
