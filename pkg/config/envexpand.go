package config

import "os"

// ExpandEnv expands environment variables in a setting value using Go's
// standard library. Supports both ${VAR} and $VAR syntax. Load does not
// call it; every variable is read verbatim.
//
// Missing variables expand to empty string; callers validate emptiness
// themselves rather than treating expansion failure as an error.
func ExpandEnv(s string) string {
	return os.ExpandEnv(s)
}
