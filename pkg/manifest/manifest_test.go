package manifest

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sortiz4/pipit/pkg/errors"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), Filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeManifest(t, `{
  "dependencies": {
    "requests": ">=2.0,<3.0",
    "Flask": "1.1"
  },
  "dev-dependencies": {
    "pytest": {
      "python": "3.8,3.9",
      "version": "~=7.4.0"
    }
  }
}
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	deps := m.Group(Dependencies)
	if got := deps.Names(); !reflect.DeepEqual(got, []string{"requests", "flask"}) {
		t.Errorf("Names = %v, want [requests flask] (normalized, insertion order)", got)
	}

	dep, ok := deps.Get("requests")
	if !ok {
		t.Fatal("requests not found")
	}
	if dep.Version != ">=2.0,<3.0" {
		t.Errorf("Version = %q, want %q", dep.Version, ">=2.0,<3.0")
	}

	pytest, ok := m.Group(DevDependencies).Get("pytest")
	if !ok {
		t.Fatal("pytest not found")
	}
	if pytest.Python != "3.8,3.9" || pytest.Version != "~=7.4.0" {
		t.Errorf("pytest = %+v", pytest)
	}
	if !pytest.Structured() {
		t.Error("pytest should be structured")
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), Filename))
	if !errors.Is(err, errors.ErrCodeManifestNotFound) {
		t.Errorf("got %v, want MANIFEST_NOT_FOUND", err)
	}
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "nonsense"},
		{"not object", `["a"]`},
		{"group not object", `{"dependencies": ["a"]}`},
		{"unknown entry field", `{"dependencies": {"a": {"platform": "posix"}}}`},
		{"entry not string or object", `{"dependencies": {"a": 42}}`},
		{"non-string field", `{"dependencies": {"a": {"version": 1}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, tt.content)
			_, err := Load(path)
			if !errors.Is(err, errors.ErrCodeManifestMalformed) {
				t.Errorf("got %v, want MANIFEST_MALFORMED", err)
			}
		})
	}
}

func TestLoad_UnknownTopLevelKeysPreserved(t *testing.T) {
	path := writeManifest(t, `{
  "name": "my-project",
  "dependencies": {
    "requests": "*"
  },
  "scripts": {
    "serve": "python app.py"
  }
}
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := m.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if _, ok := reloaded.extra["name"]; !ok {
		t.Error("unknown key \"name\" not preserved")
	}
	if _, ok := reloaded.extra["scripts"]; !ok {
		t.Error("unknown key \"scripts\" not preserved")
	}
}

func TestSave_RoundTripIdempotent(t *testing.T) {
	path := writeManifest(t, `{"dependencies":{"b":"2.0","a":"1.0"},"dev-dependencies":{"c":{"system":"posix","version":">=1.0"}}}`)

	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Save(path); err != nil {
		t.Fatal(err)
	}
	first, _ := os.ReadFile(path)

	m2, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := m2.Save(path); err != nil {
		t.Fatal(err)
	}
	second, _ := os.ReadFile(path)

	if string(first) != string(second) {
		t.Errorf("save is not idempotent:\n%s\nvs\n%s", first, second)
	}

	// Insertion order survives: "b" was declared before "a".
	reloaded, _ := Load(path)
	if got := reloaded.Group(Dependencies).Names(); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Errorf("Names = %v, want [b a]", got)
	}
}

func TestAddOrUpdate_Immutable(t *testing.T) {
	m := New()
	m2 := m.AddOrUpdate(Dependencies, "Requests", Dependency{Version: "~=2.31.0"})

	if m.Has("requests") {
		t.Error("original manifest was mutated")
	}
	if !m2.Has("requests") {
		t.Error("updated manifest missing entry")
	}

	dep, _ := m2.Group(Dependencies).Get("requests")
	if dep.Version != "~=2.31.0" {
		t.Errorf("Version = %q", dep.Version)
	}
}

func TestAddThenRemove_RestoresManifest(t *testing.T) {
	path := writeManifest(t, `{
  "dependencies": {
    "requests": "*"
  }
}
`)
	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	before := string(m.render())
	after := string(m.AddOrUpdate(Dependencies, "flask", Dependency{Version: "2.0"}).Remove("flask").render())
	if before != after {
		t.Errorf("add+remove did not restore manifest:\n%s\nvs\n%s", before, after)
	}
}

func TestRemove_AllGroupsAndAbsent(t *testing.T) {
	m := New().
		AddOrUpdate(Dependencies, "shared", Dependency{Version: "1.0"}).
		AddOrUpdate(DevDependencies, "shared", Dependency{Version: "1.0"})

	m2 := m.Remove("shared")
	if m2.Has("shared") {
		t.Error("Remove did not clear both groups")
	}

	// Removing an absent name is a no-op, not an error.
	m3 := m2.Remove("missing")
	if m3.Has("missing") {
		t.Error("unexpected entry")
	}
}

func TestSetVersion_PreservesShape(t *testing.T) {
	path := writeManifest(t, `{
  "dependencies": {
    "numpy": {
      "python": "3.10",
      "version": "1.24"
    }
  },
  "dev-dependencies": {
    "numpy": "1.24"
  }
}
`)
	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	m2 := m.SetVersion("numpy", "~=1.26.0")

	dep, _ := m2.Group(Dependencies).Get("numpy")
	if !dep.Structured() || dep.Python != "3.10" || dep.Version != "~=1.26.0" {
		t.Errorf("structured entry = %+v", dep)
	}

	devDep, _ := m2.Group(DevDependencies).Get("numpy")
	if devDep.Structured() || devDep.Version != "~=1.26.0" {
		t.Errorf("bare entry = %+v", devDep)
	}
}

func TestSave_OmitsEmptyGroups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, Filename)

	m := New().
		AddOrUpdate(Dependencies, "requests", Dependency{Version: "*"}).
		Remove("requests")
	if err := m.Save(path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "{}\n" {
		t.Errorf("got %q, want %q", data, "{}\n")
	}
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()
	if err := Create(dir); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, Filename))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{}\n" {
		t.Errorf("got %q, want %q", data, "{}\n")
	}

	// Create never overwrites an existing manifest.
	if err := os.WriteFile(filepath.Join(dir, Filename), []byte(`{"dependencies":{}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Create(dir); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(filepath.Join(dir, Filename))
	if string(data) != `{"dependencies":{}}` {
		t.Error("Create overwrote an existing manifest")
	}
}
