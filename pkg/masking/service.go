// Package masking redacts secret-shaped substrings (API keys, bearer
// tokens, Slack tokens) from log output and recorded error messages: its
// own logs must never echo a credential back from a failed provider call.
package masking

import "log/slog"

// Service applies every built-in regex pattern to a piece of text. All
// patterns are compiled once at construction; Redact itself never errors —
// a pattern that doesn't match simply leaves its substring untouched.
type Service struct {
	patterns []CompiledPattern
}

// NewService builds a Service with every built-in pattern.
func NewService() *Service {
	s := &Service{patterns: builtinPatterns}
	slog.Info("masking service initialized", "patterns", len(s.patterns))
	return s
}

// Redact replaces every secret-shaped substring in text with a masked
// placeholder. Safe to call on empty or already-redacted text.
func (s *Service) Redact(text string) string {
	if text == "" {
		return text
	}
	redacted := text
	for _, p := range s.patterns {
		redacted = p.Regex.ReplaceAllString(redacted, p.Replacement)
	}
	return redacted
}
