package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/oncopulse/newsletter/pkg/knowledgegraph"
	"github.com/oncopulse/newsletter/pkg/state"
)

// Initialize loads, merges, and validates configuration from configDir.
// This is the primary entry point cmd/newsletter calls at startup.
//
// Steps performed:
//  1. Load topics.yaml and llm-providers.yaml (ontology.yaml optional)
//  2. Expand environment variables
//  3. Merge built-in + user-defined LLM providers and ontology
//  4. Build registries
//  5. Apply engine/pipeline defaults
//  6. Validate everything
//  7. Return Config ready for use
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("initializing configuration")

	cfg, ontology, err := load(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := NewValidator(cfg).ValidateAll(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	stats := cfg.Stats()
	log.Info("configuration initialized",
		"topics", stats.Topics,
		"llm_providers", stats.LLMProviders,
		"ontology_entity_types", len(ontology))

	return cfg, nil
}

type configLoader struct {
	configDir string
}

func load(configDir string) (*Config, map[string][]string, error) {
	loader := &configLoader{configDir: configDir}
	builtin := GetBuiltinConfig()

	var topicsYAML TopicsYAMLConfig
	if err := loader.loadYAML("topics.yaml", &topicsYAML, true); err != nil {
		return nil, nil, NewLoadError("topics.yaml", err)
	}

	var llmYAML LLMProvidersYAMLConfig
	if err := loader.loadYAML("llm-providers.yaml", &llmYAML, false); err != nil {
		return nil, nil, NewLoadError("llm-providers.yaml", err)
	}

	var ontologyYAML map[string][]string
	if err := loader.loadYAML("ontology.yaml", &ontologyYAML, false); err != nil {
		return nil, nil, NewLoadError("ontology.yaml", err)
	}

	topics := make([]state.TopicConfig, 0, len(topicsYAML.Topics))
	for _, t := range topicsYAML.Topics {
		tc, err := state.NewTopicConfig(t.Name, t.Description, t.Query, t.Keywords)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid topic %q: %w", t.Name, err)
		}
		topics = append(topics, tc)
	}

	mergedProviders := mergeLLMProviders(builtin.LLMProviders, llmYAML.Providers)
	order := mergeOrder(builtin.LLMProviderOrder, llmYAML.Order)
	providerPtrs := make(map[string]*LLMProviderConfig, len(mergedProviders))
	for name, p := range mergedProviders {
		pc := p
		providerPtrs[name] = &pc
	}

	mergedOntology := mergeOntology(builtin.Ontology, ontologyYAML)

	cfg := &Config{
		Topics:       topics,
		MainTopic:    topicsYAML.MainTopic,
		LLMProviders: NewLLMProviderRegistry(providerPtrs, order),
		Engine:       DefaultEngineConfig(),
		Defaults:     DefaultPipelineDefaults(),
		Retention:    DefaultRetentionConfig(),
		Features:     DefaultFeatureFlags(),
		Ontology:     knowledgegraph.Ontology(mergedOntology),
		OntologyPath: filepath.Join(configDir, "ontology.yaml"),
		PromptsPath:  filepath.Join(configDir, "prompts.yaml"),
		OutputDir:    "./output",
	}
	return cfg, mergedOntology, nil
}

// loadYAML reads filename from the config directory, expands environment
// variables, and unmarshals into target. When optional is true, a missing
// file is not an error — target is left at its zero value.
func (l *configLoader) loadYAML(filename string, target any, required bool) error {
	path := filepath.Join(l.configDir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if required {
				return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return nil
		}
		return err
	}

	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidYAML, path, err)
	}
	return nil
}
