package knowledgegraph

import (
	"encoding/json"
	"fmt"

	"github.com/oncopulse/newsletter/pkg/state"
)

// ExportJSON renders a knowledge graph as indented JSON for the run's
// kg_path artifact, independent of the main JSON snapshot compose produces
// (which elides long article content; the graph itself is always small
// enough to keep in full).
func ExportJSON(kg state.KnowledgeGraph) ([]byte, error) {
	data, err := json.MarshalIndent(kg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode knowledge graph: %w", err)
	}
	return data, nil
}
