package masking

import "regexp"

// CompiledPattern holds a pre-compiled regex pattern with its replacement.
type CompiledPattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
}

// builtinPatterns catches the secret/API-key shapes most likely to leak
// into this pipeline's logs and error messages: LLM provider API keys
// echoed back in a provider's error body, and bearer/basic auth headers
// surfaced by a failed HTTP call in pkg/retrieval.
var builtinPatterns = []CompiledPattern{
	{
		Name:        "anthropic_api_key",
		Regex:       regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`),
		Replacement: "[MASKED_ANTHROPIC_KEY]",
	},
	{
		Name:        "aws_access_key_id",
		Regex:       regexp.MustCompile(`\b(AKIA|ASIA)[A-Z0-9]{16}\b`),
		Replacement: "[MASKED_AWS_KEY]",
	},
	{
		Name:        "bearer_token",
		Regex:       regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._~+/=-]{10,}`),
		Replacement: "Bearer [MASKED_TOKEN]",
	},
	{
		Name:        "basic_auth_header",
		Regex:       regexp.MustCompile(`(?i)\bBasic\s+[A-Za-z0-9+/=]{10,}`),
		Replacement: "Basic [MASKED_CREDENTIALS]",
	},
	{
		Name:        "slack_token",
		Regex:       regexp.MustCompile(`xox[baprs]-[A-Za-z0-9-]{10,}`),
		Replacement: "[MASKED_SLACK_TOKEN]",
	},
	{
		Name:        "generic_key_assignment",
		Regex:       regexp.MustCompile(`(?i)(api[_-]?key|secret|token|password)\s*[:=]\s*["']?[A-Za-z0-9_/+.=-]{8,}["']?`),
		Replacement: "$1=[MASKED]",
	},
}
