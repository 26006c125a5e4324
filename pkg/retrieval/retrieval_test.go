package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncopulse/newsletter/pkg/state"
)

type stubRetriever struct {
	name     string
	articles []state.Article
	err      error
}

func (s stubRetriever) Name() string { return s.name }
func (s stubRetriever) Retrieve(ctx context.Context, topic state.TopicConfig, maxResults int) ([]state.Article, error) {
	return s.articles, s.err
}

func mustArticle(t *testing.T, title, rawURL string, published *time.Time) state.Article {
	t.Helper()
	a, err := state.NewArticle(title, rawURL, nil, nil, nil, published)
	require.NoError(t, err)
	return a
}

func TestMetaRetrieverMergesAndDedups(t *testing.T) {
	t1 := time.Now().Add(-24 * time.Hour)
	t2 := time.Now()

	a1 := mustArticle(t, "Paper One", "https://pubmed.ncbi.nlm.nih.gov/1", &t1)
	dup := mustArticle(t, "Paper One", "https://pubmed.ncbi.nlm.nih.gov/1", &t1)
	a2 := mustArticle(t, "Paper Two", "https://example.com/2", &t2)

	meta := NewMetaRetriever(
		stubRetriever{name: "pubmed", articles: []state.Article{a1}},
		stubRetriever{name: "web_search", articles: []state.Article{dup, a2}},
	)

	topic, _ := state.NewTopicConfig("x", "", "query", nil)
	got, errs := meta.Retrieve(context.Background(), topic, 10, time.Now())
	assert.Empty(t, errs)
	require.Len(t, got, 2)
	assert.Equal(t, "Paper Two", got[0].Title, "more recent article should sort first")
}

func TestMetaRetrieverAccumulatesSourceErrorsWithoutAborting(t *testing.T) {
	a1 := mustArticle(t, "Paper One", "https://example.com/1", nil)
	meta := NewMetaRetriever(
		stubRetriever{name: "pubmed", err: errors.New("network down")},
		stubRetriever{name: "web_search", articles: []state.Article{a1}},
	)

	topic, _ := state.NewTopicConfig("x", "", "query", nil)
	got, errs := meta.Retrieve(context.Background(), topic, 10, time.Now())
	require.Len(t, got, 1)
	require.Len(t, errs, 1)
	assert.Equal(t, "retrieve", errs[0].Stage)
}

func TestMetaRetrieverCapsAtMaxResults(t *testing.T) {
	var articles []state.Article
	for i := 0; i < 5; i++ {
		articles = append(articles, mustArticle(t, "title", "https://example.com/"+string(rune('a'+i)), nil))
	}
	meta := NewMetaRetriever(stubRetriever{name: "web_search", articles: articles})
	topic, _ := state.NewTopicConfig("x", "", "query", nil)
	got, _ := meta.Retrieve(context.Background(), topic, 2, time.Now())
	assert.Len(t, got, 2)
}

func TestDedupArticlesByNormalizedURL(t *testing.T) {
	a := mustArticle(t, "A", "https://example.com/path", nil)
	b := mustArticle(t, "Different title", "HTTPS://EXAMPLE.com/path/", nil)
	out := DedupArticles([]state.Article{a, b})
	assert.Len(t, out, 1)
}

func TestDedupArticlesByNormalizedTitle(t *testing.T) {
	a := mustArticle(t, "Same Title", "https://example.com/a", nil)
	b := mustArticle(t, "same title", "https://example.com/b", nil)
	out := DedupArticles([]state.Article{a, b})
	assert.Len(t, out, 1)
}

func TestParseDatePermissive(t *testing.T) {
	cases := []string{
		"2026-01-15",
		"2026-01-15T10:00:00Z",
		"15 January 2026",
		"January 15, 2026",
	}
	for _, c := range cases {
		_, ok := ParseDate(c)
		assert.True(t, ok, "expected %q to parse", c)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	_, ok := ParseDate("not-a-date-at-all")
	assert.False(t, ok)
}

func TestMatchesKeywords(t *testing.T) {
	assert.True(t, matchesKeywords("A study on PD-1 inhibitors", []string{"pd-1"}))
	assert.False(t, matchesKeywords("Unrelated gardening article", []string{"pd-1", "immunotherapy"}))
}
