package prompt

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/oncopulse/newsletter/pkg/state"
)

// ResponseFormat parses a raw LLM completion into a typed value, returning
// state.ErrParse (never raising) when the completion doesn't conform.
type ResponseFormat interface {
	// Parse unmarshals raw into out, a pointer to the caller's expected shape.
	Parse(raw string, out any) error
}

func newResponseFormat(kind, schema string) (ResponseFormat, error) {
	switch kind {
	case "json_schema", "":
		return JSONSchemaParser{Schema: schema}, nil
	case "numeric":
		return NumericRegexParser{}, nil
	default:
		return nil, fmt.Errorf("unknown response format %q", kind)
	}
}

// JSONSchemaParser extracts a JSON value from a completion (tolerating
// surrounding prose or a ```json fenced block, which chat models commonly
// add despite being asked for raw JSON) and unmarshals it into out.
//
// Schema is carried for documentation/future validation; structural
// checking here is limited to "is it JSON that unmarshals into out", since
// a full JSON-Schema validator is out of scope for this registry.
type JSONSchemaParser struct {
	Schema string
}

var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\}|\\[.*?\\])\\s*```")

func (p JSONSchemaParser) Parse(raw string, out any) error {
	candidate := extractJSON(raw)
	if candidate == "" {
		return fmt.Errorf("%w: no JSON object or array found in completion", state.ErrParse)
	}
	if err := json.Unmarshal([]byte(candidate), out); err != nil {
		return fmt.Errorf("%w: %v", state.ErrParse, err)
	}
	return nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if m := fencedJSONPattern.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	start := strings.IndexAny(raw, "{[")
	if start == -1 {
		return ""
	}
	end := strings.LastIndexAny(raw, "}]")
	if end == -1 || end < start {
		return ""
	}
	return raw[start : end+1]
}

// NumericRegexParser extracts the first floating point number found in a
// completion, used for prompts whose expected reply is a bare score rather
// than a JSON object (kept as a fallback parser for providers that ignore
// the JSON formatting instruction).
type NumericRegexParser struct{}

var numericPattern = regexp.MustCompile(`-?\d+(\.\d+)?`)

func (p NumericRegexParser) Parse(raw string, out any) error {
	match := numericPattern.FindString(raw)
	if match == "" {
		return fmt.Errorf("%w: no numeric value found in completion", state.ErrParse)
	}
	val, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return fmt.Errorf("%w: %v", state.ErrParse, err)
	}
	ptr, ok := out.(*float64)
	if !ok {
		return fmt.Errorf("%w: NumericRegexParser requires *float64, got %T", state.ErrParse, out)
	}
	*ptr = val
	return nil
}
