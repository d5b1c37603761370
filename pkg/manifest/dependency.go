package manifest

import (
	"encoding/json"

	"github.com/sortiz4/pipit/pkg/errors"
)

// Dependency is a single manifest entry: either a bare version string or a
// structured record restricting the entry to interpreter versions and
// operating-system families.
//
// The zero value means "any version, anywhere".
type Dependency struct {
	// Python holds comma-separated interpreter tokens ("3.8,3.9").
	// Empty matches all interpreter versions.
	Python string

	// System holds comma-separated OS-family tokens ("posix,nt").
	// Empty matches all families.
	System string

	// Version is the version string: a specifier set, a version-control
	// locator, or empty/"*" for any version.
	Version string

	// structured records whether the entry was written as an object, so
	// round-trips preserve the author's shape.
	structured bool
}

// Structured reports whether the entry persists as an object rather than a
// bare version string.
func (d Dependency) Structured() bool {
	return d.structured || d.Python != "" || d.System != ""
}

// WithVersion returns a copy of the dependency with its version replaced,
// keeping the persisted shape (a structured entry stays structured).
func (d Dependency) WithVersion(version string) Dependency {
	d.Version = version
	return d
}

// EffectiveVersion returns the version string, mapping the empty string to
// the wildcard.
func (d Dependency) EffectiveVersion() string {
	if d.Version == "" {
		return "*"
	}
	return d.Version
}

// dependencyFields are the only keys allowed in a structured entry.
// Anything else is a malformed manifest, not data to be preserved.
var dependencyFields = map[string]bool{
	"python":  true,
	"system":  true,
	"version": true,
}

// decodeDependency decodes a manifest value that is either a JSON string or
// a {python?, system?, version?} object.
func decodeDependency(name string, raw json.RawMessage) (Dependency, error) {
	var version string
	if err := json.Unmarshal(raw, &version); err == nil {
		return Dependency{Version: version}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Dependency{}, errors.New(errors.ErrCodeManifestMalformed, "entry %q must be a version string or object", name)
	}
	for key := range fields {
		if !dependencyFields[key] {
			return Dependency{}, errors.New(errors.ErrCodeManifestMalformed, "entry %q has unknown field %q", name, key)
		}
	}

	dep := Dependency{structured: true}
	for key, target := range map[string]*string{
		"python":  &dep.Python,
		"system":  &dep.System,
		"version": &dep.Version,
	} {
		if raw, ok := fields[key]; ok {
			if err := json.Unmarshal(raw, target); err != nil {
				return Dependency{}, errors.New(errors.ErrCodeManifestMalformed, "entry %q field %q must be a string", name, key)
			}
		}
	}
	return dep, nil
}

// encodeDependency renders a dependency back into its persisted JSON value.
func encodeDependency(d Dependency) json.RawMessage {
	if !d.Structured() {
		data, _ := json.Marshal(d.EffectiveVersion())
		return data
	}

	// Field order is fixed so rewrites are stable.
	obj := orderedObject{}
	if d.Python != "" {
		obj.add("python", d.Python)
	}
	if d.System != "" {
		obj.add("system", d.System)
	}
	if d.Version != "" {
		obj.add("version", d.Version)
	}
	return obj.marshal()
}

// orderedObject builds a small JSON object with deterministic key order.
type orderedObject struct {
	keys   []string
	values []string
}

func (o *orderedObject) add(key, value string) {
	o.keys = append(o.keys, key)
	o.values = append(o.values, value)
}

func (o *orderedObject) marshal() json.RawMessage {
	buf := []byte{'{'}
	for i, key := range o.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		k, _ := json.Marshal(key)
		v, _ := json.Marshal(o.values[i])
		buf = append(buf, k...)
		buf = append(buf, ':')
		buf = append(buf, v...)
	}
	return append(buf, '}')
}
