package pep440

import (
	"regexp"
	"strings"

	"github.com/sortiz4/pipit/pkg/errors"
)

// Wildcard is the version value that matches any version.
const Wildcard = "*"

// clauseRE splits a specifier clause into its operator and version text.
var clauseRE = regexp.MustCompile(`^(===|==|!=|<=|>=|~=|<|>)?\s*(.+)$`)

// Specifier is a single comparison clause such as ">=1.0" or "==1.2.*".
type Specifier struct {
	Op      string
	Version Version

	// Prefix holds the release segments before ".*" for wildcard clauses
	// ("==1.2.*" stores [1 2]); nil for exact clauses.
	Prefix []int

	raw string
}

// SpecifierSet is a comma-joined conjunction of specifier clauses.
// An empty set (or the single clause "*") matches every version.
type SpecifierSet struct {
	Specs []Specifier

	raw string
}

// ParseSpecifierSet parses a comma-separated specifier set.
//
// Grammar notes, matching the manifest's version-string rules:
//   - a bare version number means exact equality ("1.2" is "==1.2")
//   - "*" alone matches any version
//   - "==" and "!=" accept a trailing ".*" release-prefix wildcard
//   - the arbitrary-equality operator "===" is rejected with
//     UNSUPPORTED_OPERATOR
func ParseSpecifierSet(s string) (SpecifierSet, error) {
	raw := strings.TrimSpace(s)
	set := SpecifierSet{raw: raw}

	if raw == "" || raw == Wildcard {
		return set, nil
	}

	for _, clause := range strings.Split(raw, ",") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			return SpecifierSet{}, errors.New(errors.ErrCodeInvalidVersion, "empty clause in specifier %q", s)
		}
		spec, err := parseSpecifier(clause)
		if err != nil {
			return SpecifierSet{}, err
		}
		set.Specs = append(set.Specs, spec)
	}
	return set, nil
}

func parseSpecifier(clause string) (Specifier, error) {
	m := clauseRE.FindStringSubmatch(clause)
	if m == nil {
		return Specifier{}, errors.New(errors.ErrCodeInvalidVersion, "invalid specifier clause: %q", clause)
	}

	op, version := m[1], strings.TrimSpace(m[2])
	if op == "===" {
		return Specifier{}, errors.New(errors.ErrCodeUnsupportedOperator, "arbitrary equality (===) is not supported: %q", clause)
	}
	if op == "" {
		// Bare version means exact match.
		op = "=="
	}

	spec := Specifier{Op: op, raw: clause}

	if prefix, ok := strings.CutSuffix(version, ".*"); ok {
		if op != "==" && op != "!=" {
			return Specifier{}, errors.New(errors.ErrCodeInvalidVersion, "wildcard requires an equality operator: %q", clause)
		}
		v, err := ParseVersion(prefix)
		if err != nil {
			return Specifier{}, err
		}
		if v.Pre != nil || v.Post != nil || v.Dev != nil || v.Local != "" {
			return Specifier{}, errors.New(errors.ErrCodeInvalidVersion, "wildcard requires a plain release prefix: %q", clause)
		}
		spec.Version = v
		spec.Prefix = v.Release
		return spec, nil
	}

	v, err := ParseVersion(version)
	if err != nil {
		return Specifier{}, err
	}
	if op == "~=" && len(v.Release) < 2 {
		return Specifier{}, errors.New(errors.ErrCodeInvalidVersion, "compatible release requires at least two release segments: %q", clause)
	}
	spec.Version = v
	return spec, nil
}

// Matches evaluates a single clause against a concrete version.
func (s Specifier) Matches(v Version) bool {
	if s.Prefix != nil {
		match := v.Epoch == s.Version.Epoch && v.releasePrefixMatch(s.Prefix)
		if s.Op == "!=" {
			return !match
		}
		return match
	}

	switch s.Op {
	case "==":
		return v.Equal(s.Version)
	case "!=":
		return !v.Equal(s.Version)
	case "<":
		return v.Compare(s.Version) < 0
	case ">":
		return v.Compare(s.Version) > 0
	case "<=":
		return v.Compare(s.Version) <= 0
	case ">=":
		return v.Compare(s.Version) >= 0
	case "~=":
		// "~=2.2.1" means ">=2.2.1, ==2.2.*".
		if v.Compare(s.Version) < 0 {
			return false
		}
		prefix := s.Version.Release[:len(s.Version.Release)-1]
		return v.Epoch == s.Version.Epoch && v.releasePrefixMatch(prefix)
	}
	return false
}

// Matches evaluates all clauses conjunctively. The empty set matches
// everything.
func (ss SpecifierSet) Matches(v Version) bool {
	for _, spec := range ss.Specs {
		if !spec.Matches(v) {
			return false
		}
	}
	return true
}

// MatchesString parses a concrete version string and evaluates the set
// against it. Unparseable versions never match.
func (ss SpecifierSet) MatchesString(version string) bool {
	v, err := ParseVersion(version)
	if err != nil {
		return false
	}
	return ss.Matches(v)
}

// Any reports whether the set matches every version (no clauses).
func (ss SpecifierSet) Any() bool { return len(ss.Specs) == 0 }

// String returns the specifier set as originally written.
func (ss SpecifierSet) String() string { return ss.raw }

// PipArgument renders the set as a pip requirement argument for the given
// package name: "name" for the wildcard set, "name==1.2" for a bare pin,
// "name>=1.0,<2.0" otherwise.
func (ss SpecifierSet) PipArgument(name string) string {
	if ss.Any() {
		return name
	}
	var clauses []string
	for _, spec := range ss.Specs {
		clause := spec.raw
		if !strings.HasPrefix(clause, spec.Op) {
			// Bare version: restore the elided equality operator.
			clause = spec.Op + clause
		}
		clauses = append(clauses, clause)
	}
	return name + strings.Join(clauses, ",")
}
