package config

import "dario.cat/mergo"

// mergeLLMProviders merges the built-in provider chain with any
// user-supplied llm-providers.yaml. User-defined providers override
// built-in ones of the same name; fields a user provider leaves zero are
// backfilled from the built-in entry of the same name via mergo.
func mergeLLMProviders(builtin, user map[string]LLMProviderConfig) map[string]LLMProviderConfig {
	result := make(map[string]LLMProviderConfig, len(builtin)+len(user))
	for name, p := range builtin {
		result[name] = p
	}
	for name, userProvider := range user {
		merged := userProvider
		if base, ok := builtin[name]; ok {
			_ = mergo.Merge(&merged, base)
		}
		result[name] = merged
	}
	return result
}

// mergeOrder returns the user-declared provider order if non-empty,
// otherwise the built-in default order.
func mergeOrder(builtin, user []string) []string {
	if len(user) > 0 {
		return user
	}
	return append([]string(nil), builtin...)
}

// mergeOntology merges a user ontology.yaml into the built-in dictionary.
// A user entity type's term list replaces the built-in list entirely
// (operators are expected to supply complete lists per type, not deltas).
func mergeOntology(builtin, user map[string][]string) map[string][]string {
	result := make(map[string][]string, len(builtin)+len(user))
	for t, terms := range builtin {
		result[t] = terms
	}
	for t, terms := range user {
		result[t] = terms
	}
	return result
}
