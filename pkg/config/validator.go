package config

import (
	"fmt"

	"github.com/oncopulse/newsletter/pkg/state"
)

// Validator runs comprehensive, fail-fast validation over a loaded Config.
type Validator struct {
	cfg *Config
}

// NewValidator creates a validator for cfg.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll validates in dependency order: topics, then LLM providers,
// then engine, then defaults. Stops at the first failure since later
// components assume earlier ones are sound.
func (v *Validator) ValidateAll() error {
	if err := v.validateTopics(); err != nil {
		return fmt.Errorf("topic validation failed: %w", err)
	}
	if err := v.validateLLMProviders(); err != nil {
		return fmt.Errorf("LLM provider validation failed: %w", err)
	}
	if err := v.validateEngine(); err != nil {
		return fmt.Errorf("engine validation failed: %w", err)
	}
	if err := v.validateDefaults(); err != nil {
		return fmt.Errorf("defaults validation failed: %w", err)
	}
	return nil
}

func (v *Validator) validateTopics() error {
	return state.ValidateTopicConfigs(v.cfg.Topics)
}

func (v *Validator) validateLLMProviders() error {
	if v.cfg.LLMProviders == nil || v.cfg.LLMProviders.Len() == 0 {
		return NewValidationError("llm_providers", "*", "", fmt.Errorf("%w: no LLM providers configured", ErrValidationFailed))
	}
	for _, name := range v.cfg.LLMProviders.Order() {
		if !v.cfg.LLMProviders.Has(name) {
			return NewValidationError("llm_providers", name, "order", ErrProviderNotFound)
		}
	}
	for name, p := range v.cfg.LLMProviders.GetAll() {
		if !p.Type.IsValid() {
			return NewValidationError("llm_providers", name, "type", ErrInvalidValue("type", p.Type))
		}
		if p.Model == "" {
			return NewValidationError("llm_providers", name, "model", ErrMissingField("model"))
		}
	}
	return nil
}

func (v *Validator) validateEngine() error {
	e := v.cfg.Engine
	if e == nil {
		return NewValidationError("engine", "*", "", fmt.Errorf("%w: engine config is nil", ErrValidationFailed))
	}
	if e.FanOutWidth < 1 {
		return NewValidationError("engine", "*", "fan_out_width", fmt.Errorf("%w: must be >= 1, got %d", ErrValidationFailed, e.FanOutWidth))
	}
	if e.NodeTimeout <= 0 {
		return NewValidationError("engine", "*", "node_timeout", fmt.Errorf("%w: must be positive", ErrValidationFailed))
	}
	if e.MaxRetries < 0 {
		return NewValidationError("engine", "*", "max_retries", fmt.Errorf("%w: must be >= 0", ErrValidationFailed))
	}
	if e.MaxInFlightLLMCalls < 1 {
		return NewValidationError("engine", "*", "max_in_flight_llm_calls", fmt.Errorf("%w: must be >= 1", ErrValidationFailed))
	}
	return nil
}

func (v *Validator) validateDefaults() error {
	d := v.cfg.Defaults
	if d == nil {
		return NewValidationError("defaults", "*", "", fmt.Errorf("%w: defaults config is nil", ErrValidationFailed))
	}
	if d.RelevanceThreshold < 0 || d.RelevanceThreshold > 1 {
		return NewValidationError("defaults", "*", "relevance_threshold", fmt.Errorf("%w: must be in [0,1]", ErrValidationFailed))
	}
	if d.ReviewThreshold < 0 || d.ReviewThreshold > 1 {
		return NewValidationError("defaults", "*", "review_threshold", fmt.Errorf("%w: must be in [0,1]", ErrValidationFailed))
	}
	if d.TopKPerTopic < 1 {
		return NewValidationError("defaults", "*", "top_k_per_topic", fmt.Errorf("%w: must be >= 1", ErrValidationFailed))
	}
	return nil
}

// ErrInvalidValue builds a field-invalid-value error.
func ErrInvalidValue(field string, value any) error {
	return fmt.Errorf("invalid value for %s: %v", field, value)
}

// ErrMissingField builds a field-missing error.
func ErrMissingField(field string) error {
	return fmt.Errorf("missing required field %s", field)
}
