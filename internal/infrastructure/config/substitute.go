package config

import (
	"os"
	"regexp"
)

// Lookup resolves a variable name. It stands in for os.LookupEnv so tests can
// feed their own values.
type Lookup func(name string) (string, bool)

func EnvLookup(name string) (string, bool) { return os.LookupEnv(name) }

var placeholder = regexp.MustCompile(`\$\{process\.env\.([A-Za-z_][A-Za-z0-9_]*)\}`)

// SubstituteVariables replaces every ${process.env.NAME} in s. Names the
// lookup cannot resolve become the empty string.
func SubstituteVariables(s string, lookup Lookup) string {
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		v, _ := lookup(name)
		return v
	})
}
