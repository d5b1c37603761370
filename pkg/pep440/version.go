// Package pep440 implements the subset of PEP 440 version handling that the
// synchronization engine needs: concrete versions, specifier sets, and
// version-control locators.
//
// The model is pure: parsing and matching perform no I/O, and parsing the
// same string twice yields equal values. All errors carry codes from
// pkg/errors so the CLI can map them to exit statuses.
package pep440

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sortiz4/pipit/pkg/errors"
)

// versionRE matches the PEP 440 version grammar (epoch, release, pre, post,
// dev, local), with the normalization-friendly label spellings.
var versionRE = regexp.MustCompile(`^v?(?:(\d+)!)?(\d+(?:\.\d+)*)` +
	`(?:[._-]?(a|b|c|rc|alpha|beta|pre|preview)[._-]?(\d*))?` +
	`(?:[._-]?(post|r|rev)[._-]?(\d*)|-(\d+))?` +
	`(?:[._-]?(dev)[._-]?(\d*))?` +
	`(?:\+([a-z0-9]+(?:[._-][a-z0-9]+)*))?$`)

// Sentinel ranks for comparing optional pre/post/dev segments.
const (
	rankNegInf = -1 << 30
	rankInf    = 1 << 30
)

// Version is a parsed PEP 440 version.
type Version struct {
	Epoch   int
	Release []int
	Pre     *Segment // a, b, or rc
	Post    *int
	Dev     *int
	Local   string

	original string
}

// Segment is a labeled numeric version segment such as the "rc1" in "1.0rc1".
type Segment struct {
	Label string
	Num   int
}

// ParseVersion parses a concrete version string.
// Returns an INVALID_VERSION error if s does not follow the PEP 440 grammar.
func ParseVersion(s string) (Version, error) {
	original := strings.TrimSpace(s)
	m := versionRE.FindStringSubmatch(strings.ToLower(original))
	if m == nil {
		return Version{}, errors.New(errors.ErrCodeInvalidVersion, "invalid version: %q", s)
	}

	v := Version{original: original}

	if m[1] != "" {
		v.Epoch, _ = strconv.Atoi(m[1])
	}
	for _, part := range strings.Split(m[2], ".") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, errors.New(errors.ErrCodeInvalidVersion, "invalid release segment in %q", s)
		}
		v.Release = append(v.Release, n)
	}
	if m[3] != "" {
		v.Pre = &Segment{Label: normalizePreLabel(m[3]), Num: atoiDefault(m[4])}
	}
	if m[5] != "" {
		n := atoiDefault(m[6])
		v.Post = &n
	} else if m[7] != "" {
		// Implicit post release: "1.0-1" means "1.0.post1".
		n := atoiDefault(m[7])
		v.Post = &n
	}
	if m[8] != "" {
		n := atoiDefault(m[9])
		v.Dev = &n
	}
	v.Local = m[10]

	return v, nil
}

func normalizePreLabel(label string) string {
	switch label {
	case "alpha":
		return "a"
	case "beta":
		return "b"
	case "c", "pre", "preview":
		return "rc"
	}
	return label
}

func atoiDefault(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}

// String returns the original spelling the version was parsed from.
func (v Version) String() string { return v.original }

// IsPrerelease reports whether the version has a pre or dev segment.
func (v Version) IsPrerelease() bool { return v.Pre != nil || v.Dev != nil }

// Compare returns -1, 0, or +1 as v sorts before, equal to, or after o.
// Ordering follows PEP 440: epoch, release (zero-padded), then
// dev < pre < final < post, with the local segment as final tiebreak.
func (v Version) Compare(o Version) int {
	if v.Epoch != o.Epoch {
		return cmpInt(v.Epoch, o.Epoch)
	}
	if c := cmpRelease(v.Release, o.Release); c != 0 {
		return c
	}
	if c := cmpSegment(v.preKey(), o.preKey()); c != 0 {
		return c
	}
	if c := cmpInt(v.postKey(), o.postKey()); c != 0 {
		return c
	}
	if c := cmpInt(v.devKey(), o.devKey()); c != 0 {
		return c
	}
	return cmpLocal(v.Local, o.Local)
}

// Equal reports whether two versions compare as equal.
func (v Version) Equal(o Version) bool { return v.Compare(o) == 0 }

// preKey maps the pre segment onto a sortable pair. A final release sorts
// after every pre-release; a pure dev release sorts before them.
func (v Version) preKey() Segment {
	if v.Pre != nil {
		return *v.Pre
	}
	if v.Dev != nil && v.Post == nil {
		return Segment{Label: "", Num: rankNegInf}
	}
	return Segment{Label: "zz", Num: rankInf}
}

func (v Version) postKey() int {
	if v.Post == nil {
		return rankNegInf
	}
	return *v.Post
}

func (v Version) devKey() int {
	if v.Dev == nil {
		return rankInf
	}
	return *v.Dev
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpRelease(a, b []int) int {
	n := max(len(a), len(b))
	for i := 0; i < n; i++ {
		var av, bv int
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if c := cmpInt(av, bv); c != 0 {
			return c
		}
	}
	return 0
}

func cmpSegment(a, b Segment) int {
	if a.Label != b.Label {
		return strings.Compare(a.Label, b.Label)
	}
	return cmpInt(a.Num, b.Num)
}

// cmpLocal compares local version segments. A version without a local
// segment sorts before one with; segments compare piecewise with numeric
// parts ordered numerically and after alphanumeric parts.
func cmpLocal(a, b string) int {
	if a == b {
		return 0
	}
	if a == "" {
		return -1
	}
	if b == "" {
		return 1
	}
	as := strings.FieldsFunc(a, isLocalSep)
	bs := strings.FieldsFunc(b, isLocalSep)
	for i := 0; i < len(as) && i < len(bs); i++ {
		an, aErr := strconv.Atoi(as[i])
		bn, bErr := strconv.Atoi(bs[i])
		switch {
		case aErr == nil && bErr == nil:
			if c := cmpInt(an, bn); c != 0 {
				return c
			}
		case aErr == nil:
			return 1 // numeric segments sort after alphanumeric
		case bErr == nil:
			return -1
		default:
			if c := strings.Compare(as[i], bs[i]); c != 0 {
				return c
			}
		}
	}
	return cmpInt(len(as), len(bs))
}

func isLocalSep(r rune) bool {
	return r == '.' || r == '-' || r == '_'
}

// releasePrefixMatch reports whether the release of v starts with the given
// prefix segments, used by wildcard specifiers ("==1.2.*").
func (v Version) releasePrefixMatch(prefix []int) bool {
	for i, want := range prefix {
		var got int
		if i < len(v.Release) {
			got = v.Release[i]
		}
		if got != want {
			return false
		}
	}
	return true
}
