package config

import "time"

// PipelineDefaults holds the numeric knobs fixed as sane defaults for
// relevance scoring, retrieval volume, and the knowledge graph.
type PipelineDefaults struct {
	MaxArticlesPerTopic int     `yaml:"max_articles_per_topic"`
	RecencyWindowDays   int     `yaml:"recency_window_days"`
	RelevanceThreshold  float64 `yaml:"relevance_threshold"`
	TopKPerTopic        int     `yaml:"top_k_per_topic"`
	ReviewThreshold     float64 `yaml:"review_threshold"`
	GlossarySize        int     `yaml:"glossary_size"`

	// MinDomainResults is the meta-retriever's augmentation threshold: when
	// domain sources are in use and their aggregate falls below this count,
	// the generic retriever augments the result set.
	MinDomainResults int `yaml:"min_domain_results"`
}

// DefaultPipelineDefaults returns the built-in pipeline defaults.
func DefaultPipelineDefaults() *PipelineDefaults {
	return &PipelineDefaults{
		MaxArticlesPerTopic: 10,
		RecencyWindowDays:   30,
		RelevanceThreshold:  0.3,
		TopKPerTopic:        10,
		ReviewThreshold:     0.5,
		GlossarySize:        15,
		MinDomainResults:    3,
	}
}

// RetentionConfig controls how long generated run artifacts live in
// OutputDir before pkg/cleanup prunes them.
type RetentionConfig struct {
	ArtifactRetentionDays int           `yaml:"artifact_retention_days"`
	CleanupInterval       time.Duration `yaml:"cleanup_interval"`
}

// DefaultRetentionConfig returns the built-in retention policy: keep a
// month of past issues, sweep once a day.
func DefaultRetentionConfig() *RetentionConfig {
	return &RetentionConfig{
		ArtifactRetentionDays: 30,
		CleanupInterval:       24 * time.Hour,
	}
}
