// Package retrieval implements the search connectors that populate each
// topic's candidate article pool: domain-specific clients (PubMed,
// journal/RSS feeds) preferred by default, and generic web-search clients
// used as fallback or augmentation, composed behind a single MetaRetriever
// that dedups and ranks their combined output.
package retrieval

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/oncopulse/newsletter/pkg/state"
	"github.com/oncopulse/newsletter/pkg/telemetry"
)

// Retriever fetches candidate articles for one topic. Implementations
// never raise on a single-source failure — they return state.ErrSource so
// the meta-retriever can continue with whatever other sources produced.
type Retriever interface {
	Name() string
	Retrieve(ctx context.Context, topic state.TopicConfig, maxResults int) ([]state.Article, error)
}

// defaultRetrieverSemaphore bounds how many retriever calls run
// concurrently across the whole process, independent of how many topics
// FetchAllTopics is fanning out at once.
const defaultRetrieverSemaphore = 4

// perRetrieverTimeout is the soft timeout §4.6 gives each retriever: a
// retriever that hasn't answered within this window is skipped rather
// than awaited, so one slow domain source never stalls a topic.
const perRetrieverTimeout = 15 * time.Second

// MetaRetriever composes domain and generic retrievers per the §4.6
// policy: domain-first with generic augmentation below a minimum result
// count, or (when domain sources are disabled) a preferred generic
// retriever with another as failover. Domain retrievers are always
// preferred on dedup/sort ties, since they are merged ahead of any
// generic augmentation.
type MetaRetriever struct {
	domain  []Retriever
	generic []Retriever

	useDomainSources bool
	minDomainResults int

	sem     chan struct{}
	limiter *rate.Limiter

	metrics *telemetry.Metrics
}

// MetaRetrieverOption configures a MetaRetriever at construction.
type MetaRetrieverOption func(*MetaRetriever)

// WithSemaphore overrides the default global concurrent-retriever-call
// cap (4).
func WithSemaphore(n int) MetaRetrieverOption {
	return func(m *MetaRetriever) {
		if n > 0 {
			m.sem = make(chan struct{}, n)
		}
	}
}

// WithRateLimit paces outbound retriever requests to at most rps per
// second with the given burst, shared across every retriever this
// MetaRetriever composes — most upstream APIs (NCBI E-utilities chief
// among them) rate-limit by caller, not by endpoint.
func WithRateLimit(rps float64, burst int) MetaRetrieverOption {
	return func(m *MetaRetriever) {
		if rps > 0 {
			m.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// SetMetrics attaches a Prometheus collector set; nil (the default) means
// per-topic fetch counts are only visible via SharedState.TopicResults.
func (m *MetaRetriever) SetMetrics(metrics *telemetry.Metrics) { m.metrics = metrics }

// NewMetaRetriever composes domain and generic retriever groups.
// useDomainSources and minDomainResults implement the §4.6 branch
// selection; see Retrieve.
func NewMetaRetriever(domain, generic []Retriever, useDomainSources bool, minDomainResults int, opts ...MetaRetrieverOption) *MetaRetriever {
	if minDomainResults <= 0 {
		minDomainResults = 3
	}
	m := &MetaRetriever{
		domain:           domain,
		generic:          generic,
		useDomainSources: useDomainSources,
		minDomainResults: minDomainResults,
		sem:              make(chan struct{}, defaultRetrieverSemaphore),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type retrieveOutcome struct {
	source   string
	articles []state.Article
	err      error
}

// Retrieve runs the §4.6 policy for one topic. A retriever that errors or
// exceeds its soft timeout contributes a state.PipelineError to errs and
// zero articles; it never aborts the others.
func (m *MetaRetriever) Retrieve(ctx context.Context, topic state.TopicConfig, maxResults int, now time.Time) ([]state.Article, []state.PipelineError) {
	var outcomes []retrieveOutcome

	switch {
	case m.useDomainSources:
		outcomes = m.runGroup(ctx, topic, maxResults, m.domain)
		if countArticles(outcomes) < m.minDomainResults && len(m.generic) > 0 {
			slog.Info("domain retrievers below minimum, augmenting from generic retriever",
				"topic", topic.Name, "domain_results", countArticles(outcomes), "min_domain_results", m.minDomainResults)
			outcomes = append(outcomes, m.runOne(ctx, topic, maxResults, m.generic[0]))
		}
	case len(m.generic) > 0:
		preferred := m.runOne(ctx, topic, maxResults, m.generic[0])
		outcomes = append(outcomes, preferred)
		if len(preferred.articles) == 0 && len(m.generic) > 1 {
			slog.Info("preferred generic retriever returned nothing, failing over",
				"topic", topic.Name, "preferred", m.generic[0].Name(), "failover", m.generic[1].Name())
			outcomes = append(outcomes, m.runOne(ctx, topic, maxResults, m.generic[1]))
		}
	}

	var errs []state.PipelineError
	merged := make([]state.Article, 0, maxResults*len(outcomes))
	for _, o := range outcomes {
		if o.err != nil {
			slog.Warn("retriever failed for topic", "source", o.source, "topic", topic.Name, "error", o.err)
			errs = append(errs, state.NewPipelineError("retrieve", topic.Name, o.err, true, now))
			continue
		}
		merged = append(merged, o.articles...)
	}
	if len(outcomes) > 0 && len(errs) == len(outcomes) && len(merged) == 0 {
		slog.Error("every retriever failed for topic", "topic", topic.Name)
	}

	deduped := DedupArticles(merged)
	SortByPriorityThenRecency(deduped)

	if len(deduped) > maxResults {
		deduped = deduped[:maxResults]
	}
	if m.metrics != nil {
		m.metrics.AddArticlesFetched(topic.Name, len(deduped))
	}
	return deduped, errs
}

// runGroup invokes every retriever in group concurrently, each bounded by
// the soft per-retriever timeout, global semaphore, and rate limiter.
func (m *MetaRetriever) runGroup(ctx context.Context, topic state.TopicConfig, maxResults int, group []Retriever) []retrieveOutcome {
	outcomes := make([]retrieveOutcome, len(group))
	var wg sync.WaitGroup
	for i, r := range group {
		i, r := i, r
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = m.runOne(ctx, topic, maxResults, r)
		}()
	}
	wg.Wait()
	return outcomes
}

// runOne invokes a single retriever, acquiring the global semaphore and
// rate limiter (if configured) first and bounding the call by the soft
// per-retriever timeout.
func (m *MetaRetriever) runOne(ctx context.Context, topic state.TopicConfig, maxResults int, r Retriever) retrieveOutcome {
	if m.sem != nil {
		select {
		case m.sem <- struct{}{}:
			defer func() { <-m.sem }()
		case <-ctx.Done():
			return retrieveOutcome{source: r.Name(), err: ctx.Err()}
		}
	}
	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return retrieveOutcome{source: r.Name(), err: err}
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, perRetrieverTimeout)
	defer cancel()

	articles, err := r.Retrieve(callCtx, topic, maxResults)
	return retrieveOutcome{source: r.Name(), articles: articles, err: err}
}

func countArticles(outcomes []retrieveOutcome) int {
	total := 0
	for _, o := range outcomes {
		total += len(o.articles)
	}
	return total
}

// SortByPriorityThenRecency sorts by published date descending; articles
// with no published date sort after those with one, preserving relative
// input order among equals (stable sort). Callers merge domain-sourced
// articles ahead of generic ones so ties resolve in the domain source's
// favor.
func SortByPriorityThenRecency(articles []state.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		a, b := articles[i].PublishedDate, articles[j].PublishedDate
		if a == nil && b == nil {
			return false
		}
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.After(*b)
	})
}
