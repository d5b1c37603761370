// Package pyenv models the project's Python environment: the .pipit
// virtualenv on disk and the interpreter/OS predicates that decide which
// manifest entries apply to it.
package pyenv

import (
	"strings"

	"github.com/sortiz4/pipit/pkg/manifest"
)

// Applies reports whether a manifest entry is applicable to the given
// interpreter version and OS family.
//
// An entry's python field holds comma-separated interpreter tokens at
// major.minor granularity; "3.8" accepts any 3.8.x interpreter. The system
// field holds OS-family tokens matched exactly. Absent fields are
// wildcards, and both conditions must hold.
func Applies(dep manifest.Dependency, interpreter, system string) bool {
	return matchesInterpreter(dep.Python, interpreter) && matchesSystem(dep.System, system)
}

func matchesInterpreter(tokens, interpreter string) bool {
	if tokens == "" {
		return true
	}
	for _, token := range splitTokens(tokens) {
		if interpreter == token || strings.HasPrefix(interpreter, token+".") {
			return true
		}
	}
	return false
}

func matchesSystem(tokens, system string) bool {
	if tokens == "" {
		return true
	}
	for _, token := range splitTokens(tokens) {
		if system == token {
			return true
		}
	}
	return false
}

func splitTokens(s string) []string {
	parts := strings.Split(s, ",")
	tokens := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			tokens = append(tokens, part)
		}
	}
	return tokens
}
