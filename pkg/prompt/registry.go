package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"text/template"

	"github.com/oncopulse/newsletter/pkg/state"
)

// ErrPromptNotFound indicates a requested template name has no entry in
// either the user or built-in catalog.
var ErrPromptNotFound = errors.New("prompt not found")

// Rendered is a fully rendered CO-STAR prompt, ready to hand to an LLM
// provider as a system message, plus the response format the caller should
// use to parse the reply.
type Rendered struct {
	SystemPrompt string
	Format       ResponseFormat
}

// Registry resolves a template by name and renders it against per-call
// variables. Built once at startup from the merged built-in+user catalog;
// safe for concurrent use since Catalog is read-only after construction.
type Registry struct {
	catalog Catalog
}

// NewRegistry builds a Registry from a user catalog overlaid on the
// built-in one. Pass a nil or empty user catalog to use built-ins only.
func NewRegistry(user Catalog) *Registry {
	return &Registry{catalog: Merge(BuiltinCatalog(), user)}
}

// Render looks up name and executes its CO-STAR sections as Go templates
// against vars, joining them into one system prompt.
func (r *Registry) Render(name string, vars any) (Rendered, error) {
	t, ok := r.catalog[name]
	if !ok {
		return Rendered{}, fmt.Errorf("%w: %s", ErrPromptNotFound, name)
	}

	if err := checkRequiredVariables(name, t.Variables, vars); err != nil {
		return Rendered{}, err
	}

	sections := []struct {
		label, body string
	}{
		{"Context", t.Context},
		{"Objective", t.Objective},
		{"Style", t.Style},
		{"Tone", t.Tone},
		{"Audience", t.Audience},
		{"Response format", t.Response},
	}

	var out bytes.Buffer
	for _, s := range sections {
		if s.body == "" {
			continue
		}
		rendered, err := renderSection(name, s.label, s.body, vars)
		if err != nil {
			return Rendered{}, err
		}
		fmt.Fprintf(&out, "## %s\n%s\n\n", s.label, rendered)
	}

	format, err := newResponseFormat(t.Format, t.Schema)
	if err != nil {
		return Rendered{}, fmt.Errorf("prompt %s: %w", name, err)
	}

	return Rendered{SystemPrompt: out.String(), Format: format}, nil
}

// checkRequiredVariables verifies every name in required is an exported
// field on vars (a struct or pointer to struct), raising state.ErrConfig
// if any is absent. It checks presence, not value: a topic with a blank
// description is a valid empty string, not a missing variable.
func checkRequiredVariables(promptName string, required []string, vars any) error {
	if len(required) == 0 {
		return nil
	}
	v := reflect.ValueOf(vars)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	for _, name := range required {
		if v.Kind() != reflect.Struct || !v.FieldByName(name).IsValid() {
			return fmt.Errorf("prompt %s: %w: missing required variable %q", promptName, state.ErrConfig, name)
		}
	}
	return nil
}

func renderSection(promptName, label, body string, vars any) (string, error) {
	tpl, err := template.New(promptName + "/" + label).Parse(body)
	if err != nil {
		return "", fmt.Errorf("prompt %s section %s: %w", promptName, label, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("prompt %s section %s: %w", promptName, label, err)
	}
	return buf.String(), nil
}
