package config

import "sync"

// BuiltinConfig holds the defaults shipped with the binary: the LLM
// provider fallback chain and the domain ontology used when an operator
// supplies no llm-providers.yaml / ontology.yaml of their own.
type BuiltinConfig struct {
	LLMProviders     map[string]LLMProviderConfig
	LLMProviderOrder []string
	Ontology         map[string][]string // entity_type -> dictionary terms
}

var (
	builtinConfig     *BuiltinConfig
	builtinConfigOnce sync.Once
)

// GetBuiltinConfig returns the singleton built-in configuration, lazily
// initialized on first use.
func GetBuiltinConfig() *BuiltinConfig {
	builtinConfigOnce.Do(initBuiltinConfig)
	return builtinConfig
}

func initBuiltinConfig() {
	builtinConfig = &BuiltinConfig{
		LLMProviders:     initBuiltinLLMProviders(),
		LLMProviderOrder: []string{"anthropic", "langchain-fallback", "bedrock"},
		Ontology:         initBuiltinOntology(),
	}
}

func initBuiltinLLMProviders() map[string]LLMProviderConfig {
	return map[string]LLMProviderConfig{
		"anthropic": {
			Type:        LLMProviderAnthropic,
			Model:       "claude-sonnet-4-5",
			APIKeyEnv:   "ANTHROPIC_API_KEY",
			MaxTokens:   4096,
			Temperature: 0.3,
		},
		"langchain-fallback": {
			Type:        LLMProviderLangChain,
			Model:       "gpt-4o-mini",
			APIKeyEnv:   "OPENAI_API_KEY",
			MaxTokens:   4096,
			Temperature: 0.3,
		},
		"bedrock": {
			Type:        LLMProviderBedrock,
			Model:       "anthropic.claude-3-5-sonnet-20241022-v2:0",
			RegionEnv:   "AWS_REGION",
			MaxTokens:   4096,
			Temperature: 0.3,
		},
	}
}

// initBuiltinOntology seeds the dictionary-based entity extractor with a
// minimal oncology/AI vocabulary so the knowledge graph produces something
// useful before an operator supplies a richer ontology.yaml.
func initBuiltinOntology() map[string][]string {
	return map[string][]string{
		"cancer_type": {
			"non-small cell lung cancer", "breast cancer", "melanoma",
			"colorectal cancer", "pancreatic cancer", "glioblastoma",
			"prostate cancer", "leukemia", "lymphoma",
		},
		"treatment": {
			"immunotherapy", "chemotherapy", "radiotherapy", "CAR-T cell therapy",
			"checkpoint inhibitor", "targeted therapy", "immune checkpoint blockade",
		},
		"biomarker": {
			"PD-L1", "BRCA1", "BRCA2", "HER2", "EGFR", "KRAS", "circulating tumor DNA",
			"tumor mutational burden",
		},
		"diagnostic": {
			"liquid biopsy", "whole-genome sequencing", "digital pathology",
			"next-generation sequencing", "immunohistochemistry",
		},
		"ai_technology": {
			"deep learning", "convolutional neural network", "large language model",
			"foundation model", "machine learning", "computer vision", "transformer model",
		},
		"research_concept": {
			"clinical trial", "overall survival", "progression-free survival",
			"randomized controlled trial", "cohort study", "meta-analysis",
		},
	}
}
