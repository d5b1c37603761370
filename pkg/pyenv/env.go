package pyenv

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sortiz4/pipit/pkg/errors"
)

// DirName is the virtualenv's project-relative directory name.
const DirName = ".pipit"

// Env is a handle to the project's virtualenv. It is a plain path wrapper;
// nothing is touched on disk until Provision or one of the interpreter
// queries runs.
type Env struct {
	root string
}

// New returns the environment rooted at projectDir/.pipit.
func New(projectDir string) *Env {
	return &Env{root: filepath.Join(projectDir, DirName)}
}

// Root returns the virtualenv directory.
func (e *Env) Root() string {
	return e.root
}

// binDir is "bin" on POSIX systems and "Scripts" on Windows, matching the
// layout virtualenv creates.
func (e *Env) binDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(e.root, "Scripts")
	}
	return filepath.Join(e.root, "bin")
}

// Python returns the path of the environment's interpreter.
func (e *Env) Python() string {
	return filepath.Join(e.binDir(), exeName("python"))
}

// Pip returns the path of the environment's pip executable.
func (e *Env) Pip() string {
	return filepath.Join(e.binDir(), exeName("pip"))
}

func exeName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

// Exists reports whether the virtualenv has been provisioned.
func (e *Env) Exists() bool {
	info, err := os.Stat(e.root)
	return err == nil && info.IsDir()
}

// Check returns an error if the virtualenv is missing.
func (e *Env) Check() error {
	if !e.Exists() {
		return errors.New(errors.ErrCodeEnvNotFound, "no environment at %s (run \"pipit new\" first)", e.root)
	}
	return nil
}

// Provision creates the virtualenv by invoking the virtualenv tool. An
// optional interpreter selects the Python the environment is built on
// (virtualenv's -p flag). Provisioning an existing environment is an error.
func (e *Env) Provision(ctx context.Context, interpreter string) error {
	if e.Exists() {
		return errors.New(errors.ErrCodeInvalidInput, "environment already exists at %s", e.root)
	}

	args := []string{e.root}
	if interpreter != "" {
		args = append(args, "-p", interpreter)
	}

	cmd := exec.CommandContext(ctx, "virtualenv", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrap(errors.ErrCodeInstallerFailure, err, "virtualenv failed: %s", strings.TrimSpace(stderr.String()))
	}
	return nil
}

// InterpreterVersion asks the environment's interpreter for its full
// version ("3.11.4").
func (e *Env) InterpreterVersion(ctx context.Context) (string, error) {
	if err := e.Check(); err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, e.Python(), "-c", "import platform; print(platform.python_version())")
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", errors.Wrap(errors.ErrCodeInstallerFailure, err, "querying interpreter version")
	}
	return strings.TrimSpace(string(out)), nil
}

// CurrentSystem returns the OS-family token for this machine, following
// Python's os.name convention: "nt" on Windows, "posix" elsewhere.
func CurrentSystem() string {
	if runtime.GOOS == "windows" {
		return "nt"
	}
	return "posix"
}
