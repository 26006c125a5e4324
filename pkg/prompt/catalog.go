// Package prompt implements the CO-STAR prompt registry: named, versioned
// prompt templates rendered with per-call variables and paired with a
// declared response format the caller uses to parse the model's reply.
package prompt

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Template is one CO-STAR prompt entry: Context, Objective, Style, Tone,
// Audience, and Response format, each rendered independently and then
// joined into a single system message.
type Template struct {
	Name      string `yaml:"name"`
	Context   string `yaml:"context"`
	Objective string `yaml:"objective"`
	Style     string `yaml:"style"`
	Tone      string `yaml:"tone"`
	Audience  string `yaml:"audience"`
	Response  string `yaml:"response"`
	Format    string `yaml:"format"` // "json_schema" | "numeric"
	Schema    string `yaml:"schema,omitempty"`

	// Variables is the ordered list of template variables this prompt's
	// sections require at render time. Render checks these are all present
	// on the caller's vars struct before executing any section.
	Variables []string `yaml:"variables,omitempty"`
}

// Catalog is a name-keyed set of prompt templates, as loaded from YAML.
type Catalog map[string]Template

// LoadCatalog reads a prompts.yaml file. A missing file is not an error —
// the caller is expected to fall back to the built-in catalog.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Catalog{}, nil
		}
		return nil, fmt.Errorf("read prompt catalog %s: %w", path, err)
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse prompt catalog %s: %w", path, err)
	}
	return c, nil
}

// Merge overlays user-defined templates on top of the built-in catalog.
// A user template that only sets a few fields (e.g. just Tone) has its
// remaining fields backfilled from the built-in template of the same name,
// the same partial-override discipline pkg/config applies to LLM providers.
func Merge(builtin, user Catalog) Catalog {
	result := make(Catalog, len(builtin)+len(user))
	for name, t := range builtin {
		result[name] = t
	}
	for name, userTemplate := range user {
		merged := userTemplate
		if base, ok := builtin[name]; ok {
			_ = mergo.Merge(&merged, base)
		}
		result[name] = merged
	}
	return result
}
