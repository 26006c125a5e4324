package config

import "time"

// EngineConfig controls the workflow engine's concurrency, retry, and
// checkpoint behavior.
type EngineConfig struct {
	// FanOutWidth bounds how many topics are fetched/summarized concurrently.
	FanOutWidth int `yaml:"fan_out_width"`

	// NodeTimeout is the default per-node execution deadline.
	NodeTimeout time.Duration `yaml:"node_timeout"`

	// MaxRetries is the default number of retries for a retryable node
	// failure, before the error is accumulated and the node is skipped.
	MaxRetries int `yaml:"max_retries"`

	// BackoffBase is the base delay for exponential backoff between retries.
	BackoffBase time.Duration `yaml:"backoff_base"`

	// BackoffMax caps the computed backoff delay.
	BackoffMax time.Duration `yaml:"backoff_max"`

	// CancellationGrace is how long a running node gets to observe
	// ctx.Done() and return before the engine gives up waiting on it.
	CancellationGrace time.Duration `yaml:"cancellation_grace"`

	// CheckpointEnabled toggles writing a checkpoint after every node.
	CheckpointEnabled bool `yaml:"checkpoint_enabled"`

	// MaxInFlightLLMCalls bounds concurrent calls through the LLM gateway
	// across the whole run, independent of FanOutWidth.
	MaxInFlightLLMCalls int `yaml:"max_in_flight_llm_calls"`
}

// DefaultEngineConfig returns the built-in engine defaults.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		FanOutWidth:         5,
		NodeTimeout:         2 * time.Minute,
		MaxRetries:          2,
		BackoffBase:         500 * time.Millisecond,
		BackoffMax:          10 * time.Second,
		CancellationGrace:   10 * time.Second,
		CheckpointEnabled:   true,
		MaxInFlightLLMCalls: 8,
	}
}
