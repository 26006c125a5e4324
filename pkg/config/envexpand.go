package config

import "os"

// ExpandEnv expands ${VAR} and $VAR references in raw YAML bytes using the
// standard library's shell-style expansion. Missing variables expand to
// the empty string; validation is expected to catch required fields left
// empty by a missing variable.
func ExpandEnv(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}
