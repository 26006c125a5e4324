// Package state defines the typed shared state threaded through the
// newsletter pipeline, along with the domain records (topics, articles,
// summaries, reviews, knowledge-graph entities) that populate it. Types here
// carry validation tags and are built through validated constructors at
// ingress, per the project's "no opportunistic dict access" design note.
package state

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// EntityType enumerates the domain-ontology categories a KGEntity can belong
// to. Kept as a string enum (rather than an opportunistic string field) so
// invalid values are caught at construction.
type EntityType string

const (
	EntityCancerType      EntityType = "cancer_type"
	EntityTreatment       EntityType = "treatment"
	EntityBiomarker       EntityType = "biomarker"
	EntityDiagnostic      EntityType = "diagnostic"
	EntityAITechnology    EntityType = "ai_technology"
	EntityResearchConcept EntityType = "research_concept"
	EntityOther           EntityType = "other"
)

// IsValid reports whether t is one of the recognized entity types.
func (t EntityType) IsValid() bool {
	switch t {
	case EntityCancerType, EntityTreatment, EntityBiomarker, EntityDiagnostic,
		EntityAITechnology, EntityResearchConcept, EntityOther:
		return true
	default:
		return false
	}
}

// RelationType enumerates the canonical relation labels a KGRelation can
// carry. "associated_with" is the untyped fallback (§4.7 build procedure).
type RelationType string

const (
	RelationTreats         RelationType = "treats"
	RelationDiagnoses      RelationType = "diagnoses"
	RelationBiomarkerFor   RelationType = "biomarker_for"
	RelationAnalyzes       RelationType = "analyzes"
	RelationDetects        RelationType = "detects"
	RelationAssociatedWith RelationType = "associated_with"
	RelationUsedIn         RelationType = "used_in"
	RelationEvaluates      RelationType = "evaluates"
	RelationTargets        RelationType = "targets"
	RelationPredicts       RelationType = "predicts"
	RelationIdentifies     RelationType = "identifies"
	RelationMonitors       RelationType = "monitors"
	RelationClassifies     RelationType = "classifies"
	RelationOther          RelationType = "other"
)

// ReviewIssue enumerates the categories a ReviewVerdict can flag.
type ReviewIssue string

const (
	IssueFactual   ReviewIssue = "factual"
	IssueRelevance ReviewIssue = "relevance"
	IssueCoverage  ReviewIssue = "coverage"
	IssueStyle     ReviewIssue = "style"
)

// TopicConfig describes one newsletter sub-topic. Immutable after load;
// NewTopicConfig is the only validated constructor.
type TopicConfig struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Query       string   `json:"query" validate:"required"`
	Keywords    []string `json:"keywords"`
}

// NewTopicConfig validates and constructs a TopicConfig. Keywords order is
// preserved verbatim since it is a meaningful ordered sequence per the data
// model, not a set.
func NewTopicConfig(name, description, query string, keywords []string) (TopicConfig, error) {
	tc := TopicConfig{
		Name:        strings.TrimSpace(name),
		Description: description,
		Query:       strings.TrimSpace(query),
		Keywords:    append([]string(nil), keywords...),
	}
	if err := validate.Struct(tc); err != nil {
		return TopicConfig{}, fmt.Errorf("%w: invalid topic config: %v", ErrValidation, err)
	}
	return tc, nil
}

// ValidateTopicConfigs enforces the run-wide invariant that topic names are
// unique and every topic has a non-empty query. Returns ErrFatal when the
// slice is empty, matching the initialize node's fatal-if-zero-topics rule.
func ValidateTopicConfigs(topics []TopicConfig) error {
	if len(topics) == 0 {
		return fmt.Errorf("%w: no topics configured", ErrFatal)
	}
	seen := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		if t.Query == "" {
			return fmt.Errorf("%w: topic %q has an empty query", ErrValidation, t.Name)
		}
		if _, dup := seen[t.Name]; dup {
			return fmt.Errorf("%w: duplicate topic name %q", ErrValidation, t.Name)
		}
		seen[t.Name] = struct{}{}
	}
	return nil
}

// Article is a single retrieved candidate, validated before it enters state.
type Article struct {
	Title          string     `json:"title" validate:"required"`
	URL            string     `json:"url" validate:"required,url"`
	Source         *string    `json:"source,omitempty"`
	Content        *string    `json:"content,omitempty"`
	Summary        *string    `json:"summary,omitempty"`
	PublishedDate  *time.Time `json:"published_date,omitempty"`
	RelevanceScore *float64   `json:"relevance_score,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// NewArticle validates and constructs an Article. A ValidationError is
// returned (never raised) for malformed URLs or an article lacking both
// title and content, so callers can drop it and log at debug level per the
// error-handling design.
func NewArticle(title, rawURL string, source, content, summary *string, published *time.Time) (Article, error) {
	a := Article{
		Title:         strings.TrimSpace(title),
		URL:           strings.TrimSpace(rawURL),
		Source:        source,
		Content:       content,
		Summary:       summary,
		PublishedDate: published,
	}
	if a.Title == "" && (content == nil || strings.TrimSpace(*content) == "") {
		return Article{}, fmt.Errorf("%w: article has neither title nor content", ErrValidation)
	}
	parsed, err := url.Parse(a.URL)
	if err != nil || !parsed.IsAbs() {
		return Article{}, fmt.Errorf("%w: article URL %q is not an absolute URL", ErrValidation, rawURL)
	}
	if err := validate.Struct(a); err != nil {
		return Article{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return a, nil
}

// SetRelevance assigns a relevance score, clamping to the bounds the data
// model requires. It never panics on out-of-range input — callers that got
// a bad score from an LLM are expected to clamp to 0 explicitly instead.
func (a *Article) SetRelevance(score float64) {
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	a.RelevanceScore = &score
}

// NormalizedURL lower-cases the host+path and strips a trailing slash, the
// key used for cross-source dedup (§4.6).
func (a Article) NormalizedURL() string {
	u, err := url.Parse(a.URL)
	if err != nil {
		return strings.ToLower(strings.TrimSuffix(a.URL, "/"))
	}
	host := strings.ToLower(u.Host)
	path := strings.TrimSuffix(u.Path, "/")
	return host + path
}

// NormalizedTitle lower-cases and trims the title for exact-match dedup.
func (a Article) NormalizedTitle() string {
	return strings.ToLower(strings.TrimSpace(a.Title))
}

// SortByRelevanceDesc sorts articles in place, most relevant first. A nil
// score sorts as if it were zero, per the "articles lacking a verdict sink
// to the bottom" behavior implied by §4.3.3.
func SortByRelevanceDesc(articles []Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return scoreOf(articles[i]) > scoreOf(articles[j])
	})
}

func scoreOf(a Article) float64 {
	if a.RelevanceScore == nil {
		return 0
	}
	return *a.RelevanceScore
}

// TopicResult is the per-topic outcome of fetch_all_topics / score_and_filter.
type TopicResult struct {
	Topic     TopicConfig `json:"topic"`
	Articles  []Article   `json:"articles"`
	FetchedAt time.Time   `json:"fetched_at"`
	Error     string      `json:"error,omitempty"`
}

// TopicSummary is the narrative output of summarize_topics for one topic.
type TopicSummary struct {
	TopicName      string    `json:"topic_name"`
	Overview       string    `json:"overview"`
	KeyFindings    []string  `json:"key_findings"`
	NotableTrends  []string  `json:"notable_trends"`
	TopArticles    []Article `json:"top_articles"`
	QualityScore   float64   `json:"quality_score"`
}

// ReviewVerdict is the review node's assessment of one TopicSummary.
type ReviewVerdict struct {
	TopicName string        `json:"topic_name"`
	Score     float64       `json:"score"`
	Feedback  string        `json:"feedback"`
	Issues    []ReviewIssue `json:"issues"`
}

// KGEntity is a domain entity discovered by the knowledge-graph builder.
// Uniqueness is (SurfaceForm, EntityType); callers key a registry on
// EntityKey rather than comparing structs.
type KGEntity struct {
	SurfaceForm string     `json:"surface_form"`
	EntityType  EntityType `json:"entity_type"`
	Frequency   int        `json:"frequency"`
	Contexts    []string   `json:"contexts"`
}

// EntityKey returns the (surface_form, entity_type) uniqueness key.
func (e KGEntity) EntityKey() string {
	return string(e.EntityType) + "|" + e.SurfaceForm
}

// KGRelation is a directed edge between two distinct entities.
type KGRelation struct {
	Source   string       `json:"source"`
	Relation RelationType `json:"relation"`
	Target   string       `json:"target"`
	Evidence string       `json:"evidence"`
}

// GlossaryEntry is one centrality-ranked, LLM-defined glossary term.
type GlossaryEntry struct {
	Term       string     `json:"term"`
	EntityType EntityType `json:"entity_type"`
	Importance float64    `json:"importance"`
	Definition string     `json:"definition"`
	Related    []string   `json:"related"`
}

// KnowledgeGraph bundles the builder's output for storage in SharedState.
type KnowledgeGraph struct {
	Entities  []KGEntity      `json:"entities"`
	Relations []KGRelation    `json:"relations"`
	Glossary  []GlossaryEntry `json:"glossary"`
}

// Outputs records the artifact paths compose_outputs produced.
type Outputs struct {
	HTMLPath       string            `json:"html_path,omitempty"`
	MDPath         string            `json:"md_path,omitempty"`
	JSONPath       string            `json:"json_path,omitempty"`
	KGPath         string            `json:"kg_path,omitempty"`
	CoverPath      string            `json:"cover_path,omitempty"`
	Charts         map[string]string `json:"charts,omitempty"`
	FluxPromptsPath string           `json:"flux_prompts_path,omitempty"`
}

// StageDuration records how long one node execution took, including retries.
type StageDuration struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration"`
	Attempts int           `json:"attempts"`
}

// Metrics aggregates run-wide numbers computed as the pipeline progresses.
type Metrics struct {
	TotalArticles int             `json:"total_articles"`
	AvgQuality    float64         `json:"avg_quality"`
	Durations     []StageDuration `json:"durations"`
}

// SharedState is the single typed record threaded through every node. The
// workflow engine enforces that only the currently running node writes to
// it; fan-out nodes own disjoint topic-keyed sub-maps until they merge at
// node completion (§4.2, §5).
type SharedState struct {
	mu sync.Mutex

	RunID         string                   `json:"run_id"`
	StartedAt     time.Time                `json:"started_at"`
	MainTopic     string                   `json:"main_topic"`
	TopicsConfig  []TopicConfig            `json:"topics_config"`
	TopicResults  map[string]*TopicResult  `json:"topic_results"`
	TopicSummaries []TopicSummary          `json:"topic_summaries"`
	ExecutiveSummary string                `json:"executive_summary"`
	Reviews       map[string]ReviewVerdict `json:"reviews"`
	KnowledgeGraph KnowledgeGraph          `json:"knowledge_graph"`
	Outputs       Outputs                  `json:"outputs"`
	Errors        []PipelineError          `json:"errors"`
	CurrentStage  string                   `json:"current_stage"`
	Metrics       Metrics                  `json:"metrics"`
}

// New creates an empty SharedState ready for the initialize node.
func New(runID, mainTopic string, startedAt time.Time) *SharedState {
	return &SharedState{
		RunID:        runID,
		StartedAt:    startedAt,
		MainTopic:    mainTopic,
		TopicResults: make(map[string]*TopicResult),
		Reviews:      make(map[string]ReviewVerdict),
	}
}

// AddError appends a non-fatal error to the run's accumulated error list.
// Safe for concurrent fan-out callers; the lock is held only for the append.
func (s *SharedState) AddError(pe PipelineError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Errors = append(s.Errors, pe)
}

// TopicSummaryFor returns the summary for name, if one exists.
func (s *SharedState) TopicSummaryFor(name string) (TopicSummary, bool) {
	for _, ts := range s.TopicSummaries {
		if ts.TopicName == name {
			return ts, true
		}
	}
	return TopicSummary{}, false
}

// ReplaceTopicSummary swaps in a new TopicSummary for the same topic name,
// used by the review node's bounded re-summarize retry (§4.3.6) to apply
// the replacement atomically under the state lock.
func (s *SharedState) ReplaceTopicSummary(ts TopicSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.TopicSummaries {
		if existing.TopicName == ts.TopicName {
			s.TopicSummaries[i] = ts
			return
		}
	}
	s.TopicSummaries = append(s.TopicSummaries, ts)
}

// TopicResultFor returns the fetch result stored for name, if any. Locked
// the same way as SetTopicResult so reads from the main goroutine never
// race with a fan-out goroutine's concurrent write.
func (s *SharedState) TopicResultFor(name string) (*TopicResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr, ok := s.TopicResults[name]
	return tr, ok
}

// SetTopicResult stores the fetch result for one topic. Fan-out nodes call
// this from per-topic goroutines; the lock makes concurrent writes to the
// shared map safe even though each goroutine only ever touches its own key.
func (s *SharedState) SetTopicResult(name string, tr *TopicResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TopicResults[name] = tr
}

// SetReview stores the review verdict for one topic, guarded the same way
// as SetTopicResult.
func (s *SharedState) SetReview(topicName string, verdict ReviewVerdict) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reviews[topicName] = verdict
}

// OrderedTopicNames returns topic names in TopicsConfig order, the
// deterministic order downstream output must respect regardless of
// fan-out completion order (§5).
func (s *SharedState) OrderedTopicNames() []string {
	names := make([]string, len(s.TopicsConfig))
	for i, tc := range s.TopicsConfig {
		names[i] = tc.Name
	}
	return names
}
