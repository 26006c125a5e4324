package state

import (
	"errors"
	"fmt"
	"time"
)

// Error taxonomy shared across the pipeline. Nodes wrap these sentinels with
// fmt.Errorf("%w: ...") so callers can classify a failure with errors.Is
// without depending on the package that produced it.
var (
	// ErrConfig indicates missing credentials or configuration discovered at
	// first use (lazy init). Fatal for the node that hit it.
	ErrConfig = errors.New("config error")

	// ErrSource indicates a single retriever failed or returned nothing.
	// Never fatal — the meta-retriever continues with whatever it has.
	ErrSource = errors.New("source error")

	// ErrParse indicates LLM output did not satisfy its declared response
	// format. Retryable up to the owning node's policy.
	ErrParse = errors.New("parse error")

	// ErrValidation indicates a record failed schema validation at ingress.
	// The record is dropped; never surfaces as a run error.
	ErrValidation = errors.New("validation error")

	// ErrTimeout indicates a request- or node-level deadline was exceeded.
	ErrTimeout = errors.New("timeout error")

	// ErrFatal indicates the run cannot proceed at all (e.g. zero topics,
	// no LLM provider reachable after every fallback).
	ErrFatal = errors.New("fatal error")
)

// PipelineError is a single accumulated entry in SharedState.Errors. It is
// additive and never raises — nodes append one of these and continue.
type PipelineError struct {
	Stage     string    `json:"stage"`
	Topic     string    `json:"topic,omitempty"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
	At        time.Time `json:"at"`
}

func (e PipelineError) String() string {
	if e.Topic != "" {
		return fmt.Sprintf("[%s/%s] %s (retryable=%v)", e.Stage, e.Topic, e.Message, e.Retryable)
	}
	return fmt.Sprintf("[%s] %s (retryable=%v)", e.Stage, e.Message, e.Retryable)
}

// NewPipelineError builds a PipelineError from an arbitrary error, stamping
// the current time. Pass now explicitly so callers stay deterministic in
// tests that fix a clock.
func NewPipelineError(stage, topic string, err error, retryable bool, now time.Time) PipelineError {
	return PipelineError{
		Stage:     stage,
		Topic:     topic,
		Message:   err.Error(),
		Retryable: retryable,
		At:        now,
	}
}
