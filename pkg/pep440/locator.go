package pep440

import (
	"regexp"
	"strings"

	"github.com/sortiz4/pipit/pkg/errors"
)

// vcsSchemes are the version-control systems pip understands.
var vcsSchemes = map[string]bool{
	"git": true,
	"hg":  true,
	"bzr": true,
	"svn": true,
}

var locatorPrefixRE = regexp.MustCompile(`^(git|hg|bzr|svn)\+`)

// Locator is a version-control locator of the form
// {scheme}+{url}[@{ref}]#egg={name}.
type Locator struct {
	Scheme string // "git", "hg", "bzr", or "svn"
	URL    string // transport URL, without the ref or fragment
	Ref    string // branch, tag, or revision (optional)
	Egg    string // embedded package name (may be empty inside a manifest)
}

// IsLocator reports whether s looks like a version-control locator rather
// than a version specifier.
func IsLocator(s string) bool {
	return locatorPrefixRE.MatchString(s) || strings.Contains(s, "#egg=")
}

// ParseLocator parses a version-control locator. The egg identifier is
// optional here; manifest entries derive the package name from their key.
// Use [ParseArgument] for command-line requirements, where the egg is
// mandatory.
//
// Subdirectory fragments are rejected: the manifest cannot express them
// safely, only pip's raw syntax can.
func ParseLocator(s string) (Locator, error) {
	s = strings.TrimSpace(s)

	base, fragment, _ := strings.Cut(s, "#")
	loc := Locator{}

	if frag := fragment; frag != "" {
		for _, part := range strings.Split(frag, "&") {
			key, value, _ := strings.Cut(part, "=")
			switch key {
			case "egg":
				loc.Egg = strings.ToLower(value)
			case "subdirectory":
				return Locator{}, errors.New(errors.ErrCodeUnsupported, "subdirectory locators are not supported: %q", s)
			}
		}
	}

	scheme, rest, ok := strings.Cut(base, "+")
	if !ok || !vcsSchemes[scheme] || rest == "" {
		return Locator{}, errors.New(errors.ErrCodeInvalidVersion, "invalid version-control locator: %q", s)
	}
	loc.Scheme = scheme

	// A ref is the text after an "@" that follows the last path separator,
	// so userinfo in "git+ssh://git@host/repo" is left alone.
	url := rest
	if at := strings.LastIndex(url, "@"); at > strings.LastIndex(url, "/") {
		loc.Ref = url[at+1:]
		url = url[:at]
	}
	loc.URL = url

	return loc, nil
}

// String renders the locator back into pip's URL form, without the egg
// fragment.
func (l Locator) String() string {
	s := l.Scheme + "+" + l.URL
	if l.Ref != "" {
		s += "@" + l.Ref
	}
	return s
}

// PipArgument renders the locator as a pip requirement argument, appending
// the egg fragment so pip can name the resulting distribution. The name
// parameter is used when the locator itself carries no egg.
func (l Locator) PipArgument(name string) string {
	egg := l.Egg
	if egg == "" {
		egg = name
	}
	return l.String() + "#egg=" + egg
}
