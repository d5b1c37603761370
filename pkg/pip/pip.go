// Package pip drives the environment's pip executable: installing,
// removing, and listing packages. Higher layers speak through the Installer
// interface so planning logic can be tested without a live environment.
package pip

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os/exec"
	"strings"

	"github.com/sortiz4/pipit/pkg/errors"
	"github.com/sortiz4/pipit/pkg/pep440"
)

// Package is one installed package as reported by the environment.
type Package struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Installer abstracts the external package installer.
type Installer interface {
	// Install installs a single requirement ("flask==2.0", a VCS URL, ...).
	Install(ctx context.Context, requirement string) error

	// Update upgrades a single requirement to the newest allowed version.
	Update(ctx context.Context, requirement string) error

	// Uninstall removes the named package.
	Uninstall(ctx context.Context, name string) error

	// ListInstalled reports every package present in the environment.
	ListInstalled(ctx context.Context) ([]Package, error)
}

// Exec is the Installer backed by a real pip executable.
type Exec struct {
	path string

	// Output receives pip's streamed output when non-nil.
	Output io.Writer
}

// NewExec returns an installer that shells out to the pip at path.
func NewExec(path string) *Exec {
	return &Exec{path: path}
}

func (e *Exec) Install(ctx context.Context, requirement string) error {
	return e.run(ctx, "install", requirement)
}

func (e *Exec) Update(ctx context.Context, requirement string) error {
	return e.run(ctx, "install", "-U", requirement)
}

func (e *Exec) Uninstall(ctx context.Context, name string) error {
	return e.run(ctx, "uninstall", "-y", name)
}

// ListInstalled runs "pip list --format=json" and normalizes package names.
func (e *Exec) ListInstalled(ctx context.Context) ([]Package, error) {
	cmd := exec.CommandContext(ctx, e.path, "list", "--format=json")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeInstallerFailure, err, "pip list failed: %s", strings.TrimSpace(stderr.String()))
	}
	return parseList(out)
}

// run executes a pip subcommand, streaming output to e.Output and carrying
// pip's stderr verbatim into the failure message.
func (e *Exec) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, e.path, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if e.Output != nil {
		cmd.Stdout = e.Output
		cmd.Stderr = io.MultiWriter(&stderr, e.Output)
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrap(errors.ErrCodeInstallerFailure, err, "pip %s failed: %s", args[0], strings.TrimSpace(stderr.String()))
	}
	return nil
}

func parseList(data []byte) ([]Package, error) {
	var pkgs []Package
	if err := json.Unmarshal(data, &pkgs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInstallerFailure, err, "parsing pip list output")
	}
	for i := range pkgs {
		pkgs[i].Name = pep440.Normalize(pkgs[i].Name)
	}
	return pkgs, nil
}

// Snapshot indexes installed packages by normalized name.
func Snapshot(pkgs []Package) map[string]string {
	snap := make(map[string]string, len(pkgs))
	for _, pkg := range pkgs {
		snap[pkg.Name] = pkg.Version
	}
	return snap
}
