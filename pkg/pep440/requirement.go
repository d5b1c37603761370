package pep440

import (
	"regexp"
	"strings"

	"github.com/sortiz4/pipit/pkg/errors"
)

// Requirement is the result of parsing a version string: exactly one of
// Specs or Locator is set.
type Requirement struct {
	Specs   *SpecifierSet
	Locator *Locator
}

// IsVCS reports whether the requirement is a version-control locator.
func (r Requirement) IsVCS() bool { return r.Locator != nil }

// Parse parses a manifest version string into a Requirement. The string is
// either a specifier set ("*", "1.2", ">=1.0,<2.0") or a version-control
// locator ("git+https://host/repo@ref#egg=name").
func Parse(s string) (Requirement, error) {
	if IsLocator(s) {
		loc, err := ParseLocator(s)
		if err != nil {
			return Requirement{}, err
		}
		return Requirement{Locator: &loc}, nil
	}
	set, err := ParseSpecifierSet(s)
	if err != nil {
		return Requirement{}, err
	}
	return Requirement{Specs: &set}, nil
}

// argumentRE captures the package name and trailing specifier of a
// command-line requirement such as "requests>=2.0".
var argumentRE = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)(.*)$`)

// ParseArgument parses a command-line package argument into a normalized
// package name and its requirement.
//
// Accepted forms:
//   - "flask"            — any version
//   - "flask==2.0"       — explicit specifier set
//   - "flask 2.0" is not accepted; the specifier must be attached
//   - "git+https://host/repo@ref#egg=flask" — version-control locator
//
// For locators the egg identifier is mandatory: the package name must be
// derivable without invoking the installer. A locator without "#egg=" fails
// with MISSING_EGG.
func ParseArgument(arg string) (string, Requirement, error) {
	arg = strings.TrimSpace(arg)

	if IsLocator(arg) {
		loc, err := ParseLocator(arg)
		if err != nil {
			return "", Requirement{}, err
		}
		if loc.Egg == "" {
			return "", Requirement{}, errors.New(errors.ErrCodeMissingEgg, "locator carries no egg identifier: %q", arg)
		}
		if err := errors.ValidatePackageName(loc.Egg); err != nil {
			return "", Requirement{}, err
		}
		return Normalize(loc.Egg), Requirement{Locator: &loc}, nil
	}

	m := argumentRE.FindStringSubmatch(arg)
	if m == nil {
		return "", Requirement{}, errors.New(errors.ErrCodeInvalidPackage, "invalid package argument: %q", arg)
	}
	name, spec := Normalize(m[1]), strings.TrimSpace(m[2])
	if err := errors.ValidatePackageName(name); err != nil {
		return "", Requirement{}, err
	}

	set, err := ParseSpecifierSet(spec)
	if err != nil {
		return "", Requirement{}, err
	}
	return name, Requirement{Specs: &set}, nil
}

// Normalize converts a package name to its canonical comparison form,
// following PEP 503: lowercase with underscores replaced by hyphens.
func Normalize(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}
