package state

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTopicConfig(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		tc, err := NewTopicConfig("immunotherapy", "checkpoint inhibitors", "immunotherapy cancer", []string{"PD-1", "CTLA-4"})
		require.NoError(t, err)
		assert.Equal(t, "immunotherapy", tc.Name)
		assert.Equal(t, []string{"PD-1", "CTLA-4"}, tc.Keywords)
	})

	t.Run("empty query rejected", func(t *testing.T) {
		_, err := NewTopicConfig("immunotherapy", "desc", "  ", nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := NewTopicConfig("", "desc", "query", nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
	})
}

func TestValidateTopicConfigs(t *testing.T) {
	t.Run("empty slice is fatal", func(t *testing.T) {
		err := ValidateTopicConfigs(nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrFatal))
	})

	t.Run("duplicate names rejected", func(t *testing.T) {
		a, _ := NewTopicConfig("x", "", "q1", nil)
		b, _ := NewTopicConfig("x", "", "q2", nil)
		err := ValidateTopicConfigs([]TopicConfig{a, b})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("distinct names accepted", func(t *testing.T) {
		a, _ := NewTopicConfig("x", "", "q1", nil)
		b, _ := NewTopicConfig("y", "", "q2", nil)
		require.NoError(t, ValidateTopicConfigs([]TopicConfig{a, b}))
	})
}

func TestNewArticle(t *testing.T) {
	t.Run("valid minimal", func(t *testing.T) {
		a, err := NewArticle("A new CAR-T trial", "https://pubmed.ncbi.nlm.nih.gov/12345", nil, nil, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "A new CAR-T trial", a.Title)
	})

	t.Run("relative url rejected", func(t *testing.T) {
		_, err := NewArticle("title", "/not/absolute", nil, nil, nil, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("no title and no content rejected", func(t *testing.T) {
		_, err := NewArticle("", "https://example.com/a", nil, nil, nil, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("title-only is accepted", func(t *testing.T) {
		_, err := NewArticle("Some headline", "https://example.com/a", nil, nil, nil, nil)
		require.NoError(t, err)
	})
}

func TestArticleSetRelevanceClamps(t *testing.T) {
	a := Article{}
	a.SetRelevance(1.7)
	require.NotNil(t, a.RelevanceScore)
	assert.Equal(t, 1.0, *a.RelevanceScore)

	a.SetRelevance(-0.3)
	assert.Equal(t, 0.0, *a.RelevanceScore)
}

func TestArticleNormalization(t *testing.T) {
	a, err := NewArticle("Title", "HTTPS://Example.COM/Path/", nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "example.com/path", a.NormalizedURL())
}

func TestSortByRelevanceDesc(t *testing.T) {
	high := 0.9
	low := 0.2
	articles := []Article{
		{Title: "low", RelevanceScore: &low},
		{Title: "nil-score"},
		{Title: "high", RelevanceScore: &high},
	}
	SortByRelevanceDesc(articles)
	assert.Equal(t, "high", articles[0].Title)
	assert.Equal(t, "low", articles[1].Title)
	assert.Equal(t, "nil-score", articles[2].Title)
}

func TestSharedStateAddErrorConcurrent(t *testing.T) {
	s := New("run-1", "oncology AI", time.Now())
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func(i int) {
			s.AddError(NewPipelineError("fetch", "topic", errors.New("boom"), true, time.Now()))
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}
	assert.Len(t, s.Errors, 10)
}

func TestSharedStateReplaceTopicSummary(t *testing.T) {
	s := New("run-1", "oncology AI", time.Now())
	s.TopicSummaries = []TopicSummary{{TopicName: "a", QualityScore: 0.1}}
	s.ReplaceTopicSummary(TopicSummary{TopicName: "a", QualityScore: 0.9})
	got, ok := s.TopicSummaryFor("a")
	require.True(t, ok)
	assert.Equal(t, 0.9, got.QualityScore)

	s.ReplaceTopicSummary(TopicSummary{TopicName: "b", QualityScore: 0.5})
	assert.Len(t, s.TopicSummaries, 2)
}

func TestOrderedTopicNames(t *testing.T) {
	s := New("run-1", "oncology AI", time.Now())
	s.TopicsConfig = []TopicConfig{{Name: "b"}, {Name: "a"}}
	assert.Equal(t, []string{"b", "a"}, s.OrderedTopicNames())
}
