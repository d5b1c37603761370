package reqfile

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/sortiz4/pipit/pkg/errors"
	"github.com/sortiz4/pipit/pkg/pep440"
)

// ParsePyproject reads dependency declarations from a pyproject.toml. Both
// PEP 621 projects ([project.dependencies]) and poetry projects
// ([tool.poetry.dependencies]) are understood; poetry's caret and tilde
// operators are translated into equivalent specifier ranges. Poetry dev
// groups map to dev entries. Extras (optional-dependencies) and python
// markers are not imported.
//
// Entries come back in document order, so importing the same file twice
// yields the same manifest bytes.
func ParsePyproject(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc pyprojectFile
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parsing %s", path)
	}

	var entries []Entry
	seen := map[string]bool{}
	add := func(e Entry) {
		if !seen[e.Name] {
			seen[e.Name] = true
			entries = append(entries, e)
		}
	}

	for _, req := range doc.Project.Dependencies {
		entry, err := parsePEP621(req, path)
		if err != nil {
			return nil, err
		}
		add(entry)
	}

	poetry := doc.Tool.Poetry
	if err := addPoetryGroup(poetry.Dependencies, tableKeys(md, "tool", "poetry", "dependencies"), false, add); err != nil {
		return nil, err
	}
	if err := addPoetryGroup(poetry.DevDependencies, tableKeys(md, "tool", "poetry", "dev-dependencies"), true, add); err != nil {
		return nil, err
	}
	for _, groupName := range tableKeys(md, "tool", "poetry", "group") {
		deps := poetry.Group[groupName].Dependencies
		if err := addPoetryGroup(deps, tableKeys(md, "tool", "poetry", "group", groupName, "dependencies"), true, add); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// tableKeys returns the immediate child keys of the table at prefix, in the
// order they appear in the document. Decoded maps lose that order, so it has
// to come from the parse metadata.
func tableKeys(md toml.MetaData, prefix ...string) []string {
	var names []string
	seen := map[string]bool{}
	for _, key := range md.Keys() {
		if len(key) <= len(prefix) || !keyHasPrefix(key, prefix) {
			continue
		}
		name := key[len(prefix)]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

func keyHasPrefix(key toml.Key, prefix []string) bool {
	for i, p := range prefix {
		if key[i] != p {
			return false
		}
	}
	return true
}

type pyprojectFile struct {
	Project struct {
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Dependencies    map[string]any `toml:"dependencies"`
			DevDependencies map[string]any `toml:"dev-dependencies"`
			Group           map[string]struct {
				Dependencies map[string]any `toml:"dependencies"`
			} `toml:"group"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

func parsePEP621(req, path string) (Entry, error) {
	req, _, _ = strings.Cut(req, ";")
	name, parsed, err := pep440.ParseArgument(strings.TrimSpace(req))
	if err != nil {
		return Entry{}, errors.Wrap(errors.GetCode(err), err, "importing %q from %s", req, path)
	}
	return Entry{Name: name, Version: requirementString(parsed)}, nil
}

func addPoetryGroup(deps map[string]any, names []string, dev bool, add func(Entry)) error {
	for _, rawName := range names {
		value, ok := deps[rawName]
		if !ok {
			continue
		}
		name := pep440.Normalize(rawName)
		if name == "python" {
			continue
		}

		constraint := ""
		switch v := value.(type) {
		case string:
			constraint = v
		case map[string]any:
			constraint, _ = v["version"].(string)
		}

		version, err := poetryConstraint(constraint)
		if err != nil {
			return err
		}
		add(Entry{Name: name, Version: version, Dev: dev})
	}
	return nil
}

// poetryConstraint translates a poetry version constraint into a specifier
// set. Caret allows changes up to the next leftmost non-zero segment;
// tilde is poetry's spelling of a compatible release.
func poetryConstraint(c string) (string, error) {
	c = strings.TrimSpace(c)
	switch {
	case c == "" || c == pep440.Wildcard:
		return pep440.Wildcard, nil

	case strings.HasPrefix(c, "^"):
		v, err := pep440.ParseVersion(c[1:])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(">=%s,<%s", c[1:], caretUpperBound(v.Release)), nil

	case strings.HasPrefix(c, "~"):
		base := c[1:]
		v, err := pep440.ParseVersion(base)
		if err != nil {
			return "", err
		}
		// "~1.2" allows 1.2.x only, so the compatible-release clause needs
		// the patch segment spelled out.
		if len(v.Release) <= 2 {
			base += ".0"
		}
		return "~=" + base, nil

	default:
		if _, err := pep440.ParseSpecifierSet(c); err != nil {
			return "", err
		}
		return c, nil
	}
}

func caretUpperBound(release []int) string {
	bound := make([]int, len(release))
	for i, seg := range release {
		if seg != 0 || i == len(release)-1 {
			bound[i] = seg + 1
			break
		}
	}
	parts := make([]string, len(bound))
	for i, seg := range bound {
		parts[i] = fmt.Sprint(seg)
	}
	return strings.Join(parts, ".")
}
