package telemetry

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandlerExposesRecordedSamples(t *testing.T) {
	m := NewMetrics()
	m.ObserveNodeDuration("fetch_all_topics", 250*time.Millisecond)
	m.IncLLMCall("anthropic", "ok")
	m.IncLLMCall("bedrock", "error")
	m.AddArticlesFetched("ai-in-oncology", 7)
	m.ObserveReviewScore("ai-in-oncology", 0.82)
	m.IncRun("completed")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "newsletter_node_duration_seconds")
	assert.Contains(t, body, `newsletter_llm_calls_total{outcome="ok",provider="anthropic"} 1`)
	assert.Contains(t, body, `newsletter_llm_calls_total{outcome="error",provider="bedrock"} 1`)
	assert.Contains(t, body, `newsletter_articles_fetched_total{topic="ai-in-oncology"} 7`)
	assert.Contains(t, body, "newsletter_review_score")
	assert.Contains(t, body, `newsletter_runs_total{outcome="completed"} 1`)
}

func TestAddArticlesFetchedIgnoresNonPositive(t *testing.T) {
	m := NewMetrics()
	m.AddArticlesFetched("empty-topic", 0)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.NotContains(t, rec.Body.String(), "empty-topic")
}

func TestInitTracerProviderInstallsGlobalProvider(t *testing.T) {
	shutdown, err := InitTracerProvider("newsletter-test")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	defer func() { _ = shutdown(context.Background()) }()
}
