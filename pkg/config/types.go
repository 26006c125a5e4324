package config

import (
	"github.com/oncopulse/newsletter/pkg/knowledgegraph"
	"github.com/oncopulse/newsletter/pkg/state"
)

// TopicsYAMLConfig is the shape of topics.yaml: the list of sub-topics the
// run covers, plus the headline topic used for the cover/title.
type TopicsYAMLConfig struct {
	MainTopic string              `yaml:"main_topic"`
	Topics    []TopicYAMLEntry    `yaml:"topics"`
}

// TopicYAMLEntry mirrors state.TopicConfig's fields for YAML decoding; kept
// separate from state.TopicConfig so the validated constructor stays the
// only path to building a state.TopicConfig.
type TopicYAMLEntry struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Query       string   `yaml:"query"`
	Keywords    []string `yaml:"keywords"`
}

// LLMProvidersYAMLConfig is the shape of llm-providers.yaml.
type LLMProvidersYAMLConfig struct {
	Order     []string                      `yaml:"order"`
	Providers map[string]LLMProviderConfig  `yaml:"providers"`
}

// FeatureFlags toggles optional pipeline behavior.
type FeatureFlags struct {
	EnableCoverImage    bool `yaml:"enable_cover_image"`
	EnableCharts        bool `yaml:"enable_charts"`
	EnableNotifications bool `yaml:"enable_notifications"`
	EnableScheduler     bool `yaml:"enable_scheduler"`

	// UseDomainSources selects the Meta-Retriever's domain-first policy
	// (domain retrievers plus generic augmentation below min_domain_results)
	// over the generic-preferred-with-failover policy.
	UseDomainSources bool `yaml:"use_domain_sources"`

	// Checkpointing toggles whether the engine persists state after every
	// node. Disabling it means a cancelled or crashed run cannot resume.
	Checkpointing bool `yaml:"checkpointing"`
}

// DefaultFeatureFlags returns every optional feature turned on, enabling
// integrations by default and letting operators opt out.
func DefaultFeatureFlags() FeatureFlags {
	return FeatureFlags{
		EnableCoverImage:    true,
		EnableCharts:        true,
		EnableNotifications: true,
		EnableScheduler:     false,
		UseDomainSources:    true,
		Checkpointing:       true,
	}
}

// Config is the fully loaded, validated, ready-to-use configuration root.
type Config struct {
	Topics       []state.TopicConfig
	MainTopic    string
	LLMProviders *LLMProviderRegistry
	Engine       *EngineConfig
	Defaults     *PipelineDefaults
	Retention    *RetentionConfig
	Features     FeatureFlags
	Ontology     knowledgegraph.Ontology
	PromptsPath  string
	OntologyPath string
	ScheduleCron string
	SlackChannel string
	OutputDir    string
}

// Stats summarizes configuration volume for startup logging.
type Stats struct {
	Topics       int
	LLMProviders int
}

// Stats computes summary counters over the loaded configuration.
func (c *Config) Stats() Stats {
	return Stats{
		Topics:       len(c.Topics),
		LLMProviders: c.LLMProviders.Len(),
	}
}
