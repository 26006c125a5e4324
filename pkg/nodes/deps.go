// Package nodes implements the workflow engine's node functions: one file
// per pipeline stage, composed into a DAG by cmd/newsletter at startup.
package nodes

import (
	"github.com/oncopulse/newsletter/pkg/config"
	"github.com/oncopulse/newsletter/pkg/knowledgegraph"
	"github.com/oncopulse/newsletter/pkg/llmgateway"
	"github.com/oncopulse/newsletter/pkg/prompt"
	"github.com/oncopulse/newsletter/pkg/retrieval"
	"github.com/oncopulse/newsletter/pkg/telemetry"
)

// Deps bundles every dependency the node functions need, built once in
// cmd/newsletter/main.go and closed over by each NodeFunc constructor.
// Metrics may be left nil; every node guards its use.
type Deps struct {
	Config    *config.Config
	Gateway   *llmgateway.Gateway
	Prompts   *prompt.Registry
	Retriever *retrieval.MetaRetriever
	Ontology  knowledgegraph.Ontology
	Metrics   *telemetry.Metrics
}
