package knowledgegraph

import (
	"sort"

	"github.com/oncopulse/newsletter/pkg/state"
)

// degreeStats accumulates raw in/out degree counts per entity key before
// normalization.
type degreeStats struct {
	out int
	in  int
}

// RankedEntity pairs a KGEntity with its computed importance score.
type RankedEntity struct {
	Entity     state.KGEntity
	Importance float64
}

// Rank scores every entity by
// 0.4*freq_norm + 0.3*out_degree_norm + 0.3*in_degree_norm, each term
// normalized against the maximum observed value so the top entity in
// each dimension contributes its full weight. Returned in descending
// importance order.
func Rank(kg state.KnowledgeGraph) []RankedEntity {
	degrees := make(map[string]*degreeStats, len(kg.Entities))
	for _, e := range kg.Entities {
		degrees[e.EntityKey()] = &degreeStats{}
	}
	bySurface := make(map[string]string, len(kg.Entities)) // surface form -> entity key, for relation lookups
	for _, e := range kg.Entities {
		bySurface[e.SurfaceForm] = e.EntityKey()
	}

	for _, r := range kg.Relations {
		if key, ok := bySurface[r.Source]; ok {
			degrees[key].out++
		}
		if key, ok := bySurface[r.Target]; ok {
			degrees[key].in++
		}
	}

	maxFreq, maxOut, maxIn := 0, 0, 0
	for _, e := range kg.Entities {
		if e.Frequency > maxFreq {
			maxFreq = e.Frequency
		}
	}
	for _, d := range degrees {
		if d.out > maxOut {
			maxOut = d.out
		}
		if d.in > maxIn {
			maxIn = d.in
		}
	}

	ranked := make([]RankedEntity, 0, len(kg.Entities))
	for _, e := range kg.Entities {
		d := degrees[e.EntityKey()]
		score := 0.4*normalize(e.Frequency, maxFreq) +
			0.3*normalize(d.out, maxOut) +
			0.3*normalize(d.in, maxIn)
		ranked = append(ranked, RankedEntity{Entity: e, Importance: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Importance > ranked[j].Importance
	})
	return ranked
}

func normalize(value, max int) float64 {
	if max <= 0 {
		return 0
	}
	return float64(value) / float64(max)
}
