package retrieval

import "github.com/oncopulse/newsletter/pkg/state"

// DedupArticles removes duplicates by normalized URL first, then by
// normalized title for articles whose URLs differ (syndicated reprints).
// The first occurrence wins, so callers should order input by source
// priority before calling this. Dedup is scoped to the slice passed in —
// callers invoke this once per topic, never across topics, per the
// project's per-topic dedup policy (see DESIGN.md Open Question 3).
func DedupArticles(articles []state.Article) []state.Article {
	seenURL := make(map[string]struct{}, len(articles))
	seenTitle := make(map[string]struct{}, len(articles))
	out := make([]state.Article, 0, len(articles))

	for _, a := range articles {
		u := a.NormalizedURL()
		if _, ok := seenURL[u]; ok {
			continue
		}
		t := a.NormalizedTitle()
		if t != "" {
			if _, ok := seenTitle[t]; ok {
				continue
			}
		}
		seenURL[u] = struct{}{}
		if t != "" {
			seenTitle[t] = struct{}{}
		}
		out = append(out, a)
	}
	return out
}
