package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/oncopulse/newsletter/pkg/state"
)

// WebSearchRetriever is the generic, last-resort retriever used when a
// topic's query surfaces too little from the domain-specific retrievers.
// It talks to a configurable search API over its documented REST/JSON
// interface — no Go SDK for any particular web-search vendor appears
// anywhere in the reference corpus, so this is plain net/http + json
// against an operator-supplied endpoint, the same shape the corpus uses
// for every other bespoke REST integration it doesn't have a client
// library for.
type WebSearchRetriever struct {
	endpoint   string
	apiKeyEnv  string
	httpClient *http.Client
}

// NewWebSearchRetriever builds a retriever against endpoint, authenticating
// with the API key found in the apiKeyEnv environment variable.
func NewWebSearchRetriever(endpoint, apiKeyEnv string) *WebSearchRetriever {
	return &WebSearchRetriever{
		endpoint:   endpoint,
		apiKeyEnv:  apiKeyEnv,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (w *WebSearchRetriever) Name() string { return "web_search" }

type webSearchResponseItem struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Snippet     string `json:"snippet"`
	PublishedAt string `json:"published_at"`
	Source      string `json:"source"`
}

func (w *WebSearchRetriever) Retrieve(ctx context.Context, topic state.TopicConfig, maxResults int) ([]state.Article, error) {
	key := os.Getenv(w.apiKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("%w: environment variable %s is not set", state.ErrConfig, w.apiKeyEnv)
	}

	q := url.Values{}
	q.Set("q", topic.Query)
	q.Set("count", fmt.Sprintf("%d", maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", state.ErrSource, err)
	}
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", state.ErrSource, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", state.ErrSource, resp.StatusCode)
	}

	var items []webSearchResponseItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: %v", state.ErrSource, err)
	}

	articles := make([]state.Article, 0, len(items))
	for _, item := range items {
		var published *time.Time
		if t, ok := ParseDate(item.PublishedAt); ok {
			published = &t
		}
		source := item.Source
		if source == "" {
			source = "web-search"
		}
		snippet := item.Snippet
		article, err := state.NewArticle(item.Title, item.URL, &source, nil, &snippet, published)
		if err != nil {
			continue
		}
		articles = append(articles, article)
	}
	return articles, nil
}
