// Package manifest implements the pipit.json dependency manifest store.
//
// The manifest is a JSON document with two dependency groups,
// "dependencies" and "dev-dependencies", each mapping a package name to
// either a bare version string or a {python?, system?, version?} object.
// Unknown top-level keys are preserved verbatim across rewrites so user
// data is never destroyed; unknown per-entry fields are rejected.
//
// The store is value-oriented: mutating operations return a new Manifest
// and never modify the receiver, so callers can hold onto a loaded
// manifest and only persist the result of a successful action. Key order
// is preserved on rewrite (new entries append) to keep diffs minimal, and
// writes are atomic (temp file + rename).
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sortiz4/pipit/pkg/errors"
	"github.com/sortiz4/pipit/pkg/pep440"
)

// Filename is the manifest's project-relative file name.
const Filename = "pipit.json"

// The two dependency groups.
const (
	Dependencies    = "dependencies"
	DevDependencies = "dev-dependencies"
)

// Groups lists the dependency groups in their canonical order.
var Groups = []string{Dependencies, DevDependencies}

// Manifest is an immutable snapshot of the dependency manifest.
type Manifest struct {
	// keys is the top-level key order as loaded, including group keys and
	// unknown keys.
	keys []string

	groups map[string]*Group

	// extra holds unknown top-level values verbatim.
	extra map[string]json.RawMessage
}

// Group is an insertion-ordered mapping of package name to dependency.
type Group struct {
	names []string
	deps  map[string]Dependency
}

// New returns an empty manifest.
func New() *Manifest {
	return &Manifest{
		groups: map[string]*Group{},
		extra:  map[string]json.RawMessage{},
	}
}

// Create writes an empty manifest file in dir if one does not exist yet.
func Create(dir string) error {
	path := filepath.Join(dir, Filename)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte("{}\n"), 0o644)
}

// Load reads and validates the manifest at path. Package names are
// normalized to their canonical lowercase form.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeManifestNotFound, "dependency manifest not found at %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeManifestNotFound, err, "reading manifest %s", path)
	}
	m, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ParseDocument parses a manifest document held in memory. Callers that
// read from disk should use [Load], which reports a missing file
// distinctly.
func ParseDocument(data []byte) (*Manifest, error) {
	return parse(data)
}

func parse(data []byte) (*Manifest, error) {
	m := New()

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeManifestMalformed, err, "parsing manifest")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New(errors.ErrCodeManifestMalformed, "manifest must be a JSON object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeManifestMalformed, err, "parsing manifest")
		}
		key := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, errors.Wrap(errors.ErrCodeManifestMalformed, err, "parsing manifest key %q", key)
		}

		if slices.Contains(m.keys, key) {
			return nil, errors.New(errors.ErrCodeManifestMalformed, "duplicate top-level key %q", key)
		}
		m.keys = append(m.keys, key)

		if key == Dependencies || key == DevDependencies {
			group, err := parseGroup(key, raw)
			if err != nil {
				return nil, err
			}
			m.groups[key] = group
		} else {
			m.extra[key] = raw
		}
	}

	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, errors.Wrap(errors.ErrCodeManifestMalformed, err, "parsing manifest")
	}
	return m, nil
}

func parseGroup(name string, data json.RawMessage) (*Group, error) {
	group := &Group{deps: map[string]Dependency{}}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeManifestMalformed, err, "parsing group %q", name)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New(errors.ErrCodeManifestMalformed, "group %q must be a JSON object", name)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeManifestMalformed, err, "parsing group %q", name)
		}
		pkg := pep440.Normalize(tok.(string))

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, errors.Wrap(errors.ErrCodeManifestMalformed, err, "parsing entry %q", pkg)
		}

		dep, err := decodeDependency(pkg, raw)
		if err != nil {
			return nil, err
		}
		if _, exists := group.deps[pkg]; !exists {
			group.names = append(group.names, pkg)
		}
		group.deps[pkg] = dep
	}
	return group, nil
}

// Names returns the group's package names in insertion order.
func (g *Group) Names() []string {
	if g == nil {
		return nil
	}
	return slices.Clone(g.names)
}

// Get looks up a dependency by normalized package name.
func (g *Group) Get(name string) (Dependency, bool) {
	if g == nil {
		return Dependency{}, false
	}
	dep, ok := g.deps[pep440.Normalize(name)]
	return dep, ok
}

// Len returns the number of entries in the group.
func (g *Group) Len() int {
	if g == nil {
		return 0
	}
	return len(g.names)
}

func (g *Group) clone() *Group {
	if g == nil {
		return nil
	}
	clone := &Group{
		names: slices.Clone(g.names),
		deps:  make(map[string]Dependency, len(g.deps)),
	}
	for name, dep := range g.deps {
		clone.deps[name] = dep
	}
	return clone
}

// Group returns the named dependency group, which may be nil if the
// manifest does not carry it.
func (m *Manifest) Group(name string) *Group {
	return m.groups[name]
}

// Has reports whether the package is present in any group.
func (m *Manifest) Has(name string) bool {
	name = pep440.Normalize(name)
	for _, group := range m.groups {
		if _, ok := group.deps[name]; ok {
			return true
		}
	}
	return false
}

// AddOrUpdate returns a new manifest with the entry for name inserted into
// (or overwritten in) the given group. The receiver is unchanged.
func (m *Manifest) AddOrUpdate(group, name string, dep Dependency) *Manifest {
	name = pep440.Normalize(name)
	clone := m.clone()

	g := clone.groups[group]
	if g == nil {
		g = &Group{deps: map[string]Dependency{}}
		clone.groups[group] = g
		if !slices.Contains(clone.keys, group) {
			clone.keys = append(clone.keys, group)
		}
	}
	if _, exists := g.deps[name]; !exists {
		g.names = append(g.names, name)
	}
	g.deps[name] = dep
	return clone
}

// SetVersion returns a new manifest with the version of name rewritten in
// every group that contains it, preserving each entry's shape.
func (m *Manifest) SetVersion(name, version string) *Manifest {
	name = pep440.Normalize(name)
	clone := m.clone()
	for _, group := range clone.groups {
		if dep, ok := group.deps[name]; ok {
			group.deps[name] = dep.WithVersion(version)
		}
	}
	return clone
}

// Remove returns a new manifest with name removed from every group where it
// is present. Removing an absent name is a no-op, not an error.
func (m *Manifest) Remove(name string) *Manifest {
	name = pep440.Normalize(name)
	clone := m.clone()
	for _, group := range clone.groups {
		if _, ok := group.deps[name]; ok {
			delete(group.deps, name)
			group.names = slices.DeleteFunc(group.names, func(n string) bool { return n == name })
		}
	}
	return clone
}

func (m *Manifest) clone() *Manifest {
	clone := &Manifest{
		keys:   slices.Clone(m.keys),
		groups: make(map[string]*Group, len(m.groups)),
		extra:  make(map[string]json.RawMessage, len(m.extra)),
	}
	for name, group := range m.groups {
		clone.groups[name] = group.clone()
	}
	for key, raw := range m.extra {
		clone.extra[key] = raw
	}
	return clone
}

// Save writes the manifest to path atomically: the document is rendered to
// a temporary file in the same directory and renamed into place, so a crash
// mid-write never corrupts the manifest. Key order is preserved and empty
// groups are omitted.
func (m *Manifest) Save(path string) error {
	data := m.render()

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, Filename+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp manifest: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp manifest: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting manifest permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp manifest: %w", err)
	}
	return nil
}

// render produces the persisted document: two-space indent, preserved key
// order, trailing newline.
func (m *Manifest) render() []byte {
	var buf bytes.Buffer
	buf.WriteString("{")

	first := true
	writeKey := func(key string, value []byte) {
		if !first {
			buf.WriteString(",")
		}
		first = false
		buf.WriteString("\n  ")
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteString(": ")
		buf.Write(indented(value, "  "))
	}

	for _, key := range m.keys {
		if group, ok := m.groups[key]; ok {
			if group.Len() == 0 {
				// Empty groups are dropped, as the original file format does.
				continue
			}
			writeKey(key, renderGroup(group))
			continue
		}
		if raw, ok := m.extra[key]; ok {
			writeKey(key, compactIndent(raw))
		}
	}

	if first {
		return []byte("{}\n")
	}
	buf.WriteString("\n}\n")
	return buf.Bytes()
}

func renderGroup(g *Group) []byte {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, name := range g.names {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  ")
		k, _ := json.Marshal(name)
		buf.Write(k)
		buf.WriteString(": ")
		buf.Write(indented(compactIndent(encodeDependency(g.deps[name])), "  "))
	}
	buf.WriteString("\n}")
	return buf.Bytes()
}

// compactIndent re-indents a raw JSON value with two-space indentation.
func compactIndent(raw json.RawMessage) []byte {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return raw
	}
	return buf.Bytes()
}

// indented shifts every line after the first by the given prefix so nested
// values line up under their key.
func indented(value []byte, prefix string) []byte {
	return []byte(strings.ReplaceAll(string(value), "\n", "\n"+prefix))
}
