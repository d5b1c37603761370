package pyenv

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/sortiz4/pipit/pkg/errors"
)

func TestEnvPaths(t *testing.T) {
	env := New("/project")

	if env.Root() != filepath.Join("/project", DirName) {
		t.Errorf("Root = %q", env.Root())
	}

	bin := "bin"
	if runtime.GOOS == "windows" {
		bin = "Scripts"
	}
	if !strings.Contains(env.Pip(), filepath.Join(DirName, bin)) {
		t.Errorf("Pip = %q, want under %s/%s", env.Pip(), DirName, bin)
	}
	if !strings.Contains(env.Python(), filepath.Join(DirName, bin)) {
		t.Errorf("Python = %q, want under %s/%s", env.Python(), DirName, bin)
	}
}

func TestEnvExists(t *testing.T) {
	dir := t.TempDir()
	env := New(dir)

	if env.Exists() {
		t.Error("Exists() = true before provisioning")
	}
	if err := env.Check(); !errors.Is(err, errors.ErrCodeEnvNotFound) {
		t.Errorf("Check() = %v, want ENV_NOT_FOUND", err)
	}

	if err := os.Mkdir(env.Root(), 0o755); err != nil {
		t.Fatal(err)
	}
	if !env.Exists() {
		t.Error("Exists() = false after creating the directory")
	}
	if err := env.Check(); err != nil {
		t.Errorf("Check() = %v, want nil", err)
	}
}

func TestCurrentSystem(t *testing.T) {
	got := CurrentSystem()
	if runtime.GOOS == "windows" {
		if got != "nt" {
			t.Errorf("CurrentSystem = %q, want nt", got)
		}
	} else if got != "posix" {
		t.Errorf("CurrentSystem = %q, want posix", got)
	}
}
