package pip

import (
	"testing"

	"github.com/sortiz4/pipit/pkg/errors"
)

func TestParseList(t *testing.T) {
	out := []byte(`[{"name": "Flask", "version": "2.3.2"}, {"name": "typing_extensions", "version": "4.7.1"}]`)

	pkgs, err := parseList(out)
	if err != nil {
		t.Fatalf("parseList failed: %v", err)
	}
	if len(pkgs) != 2 {
		t.Fatalf("got %d packages, want 2", len(pkgs))
	}
	if pkgs[0].Name != "flask" || pkgs[0].Version != "2.3.2" {
		t.Errorf("pkgs[0] = %+v", pkgs[0])
	}
	if pkgs[1].Name != "typing-extensions" {
		t.Errorf("name not normalized: %q", pkgs[1].Name)
	}
}

func TestParseList_Empty(t *testing.T) {
	pkgs, err := parseList([]byte("[]"))
	if err != nil {
		t.Fatalf("parseList failed: %v", err)
	}
	if len(pkgs) != 0 {
		t.Errorf("got %d packages, want 0", len(pkgs))
	}
}

func TestParseList_Malformed(t *testing.T) {
	_, err := parseList([]byte("WARNING: something"))
	if !errors.Is(err, errors.ErrCodeInstallerFailure) {
		t.Errorf("got %v, want INSTALLER_FAILURE", err)
	}
}

func TestSnapshot(t *testing.T) {
	snap := Snapshot([]Package{
		{Name: "flask", Version: "2.3.2"},
		{Name: "requests", Version: "2.31.0"},
	})

	if snap["flask"] != "2.3.2" {
		t.Errorf("flask = %q", snap["flask"])
	}
	if _, ok := snap["django"]; ok {
		t.Error("unexpected entry for django")
	}
}
