// Package reqfile reads dependency declarations from foreign formats — pip
// requirements files and pyproject.toml — so existing projects can be
// brought under manifest management in one step.
package reqfile

import (
	"bufio"
	"os"
	"strings"

	"github.com/sortiz4/pipit/pkg/errors"
	"github.com/sortiz4/pipit/pkg/pep440"
)

// Entry is one imported dependency declaration.
type Entry struct {
	Name    string // normalized package name
	Version string // specifier set or locator, "*" when unconstrained
	Dev     bool   // destined for dev-dependencies
}

// ParseRequirements reads a pip requirements file. Comments, blank lines,
// and option lines ("-r", "-e", "--index-url", ...) are skipped; every
// remaining line must be a valid requirement. Environment markers are
// dropped — the manifest's python/system predicates cannot express them.
func ParseRequirements(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	seen := map[string]bool{}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == '-' {
			continue
		}
		// Strip environment markers and trailing comments.
		line, _, _ = strings.Cut(line, ";")
		if i := strings.Index(line, " #"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)

		name, req, err := pep440.ParseArgument(line)
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "importing %q from %s", line, path)
		}
		if seen[name] {
			continue
		}
		seen[name] = true

		entries = append(entries, Entry{Name: name, Version: requirementString(req)})
	}
	return entries, scanner.Err()
}

func requirementString(req pep440.Requirement) string {
	if req.IsVCS() {
		return req.Locator.String()
	}
	if req.Specs.Any() {
		return pep440.Wildcard
	}
	return req.Specs.String()
}
