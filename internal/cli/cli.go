// Package cli implements the pipit command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sortiz4/pipit/pkg/buildinfo"
	"github.com/sortiz4/pipit/pkg/errors"
	"github.com/sortiz4/pipit/pkg/httputil"
	"github.com/sortiz4/pipit/pkg/manifest"
	"github.com/sortiz4/pipit/pkg/pip"
	"github.com/sortiz4/pipit/pkg/planner"
	"github.com/sortiz4/pipit/pkg/pyenv"
	"github.com/sortiz4/pipit/pkg/pypi"
)

const (
	// appName is the application name used for directories and display.
	appName = "pipit"

	// indexCacheTTL is how long PyPI metadata is cached between runs.
	indexCacheTTL = time.Hour
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands
// registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Pipit records Python dependencies and keeps the environment in sync",
		Long:         `Pipit is a dependency manager for Python projects: it records packages and their version constraints in pipit.json and synchronizes an isolated environment to match, delegating installation to pip.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid usage")
	})

	root.AddCommand(c.newCommand())
	root.AddCommand(c.installCommand())
	root.AddCommand(c.uninstallCommand())
	root.AddCommand(c.updateCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// minArgs validates positional arguments with a coded usage error so the
// exit status distinguishes usage mistakes from runtime failures.
func minArgs(n int, what string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) < n {
			return errors.New(errors.ErrCodeInvalidInput, "requires at least %d %s argument", n, what)
		}
		return nil
	}
}

// =============================================================================
// Project Context
// =============================================================================

// project bundles everything a synchronizing command needs: the loaded
// manifest, the environment, and a planner wired to it.
type project struct {
	dir          string
	manifestPath string
	manifest     *manifest.Manifest
	env          *pyenv.Env
	planner      *planner.Planner
}

// openProject loads the manifest and environment of the working directory
// and queries the interpreter version the predicate evaluation runs
// against.
func (c *CLI) openProject(ctx context.Context) (*project, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	manifestPath := filepath.Join(dir, manifest.Filename)
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	env := pyenv.New(dir)
	if err := env.Check(); err != nil {
		return nil, err
	}
	interpreter, err := env.InterpreterVersion(ctx)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("opened project", "dir", dir, "python", interpreter)

	return &project{
		dir:          dir,
		manifestPath: manifestPath,
		manifest:     m,
		env:          env,
		planner: &planner.Planner{
			Installer:   pip.NewExec(env.Pip()),
			Interpreter: interpreter,
			System:      pyenv.CurrentSystem(),
		},
	}, nil
}

// installedSnapshot queries the environment for its installed packages.
func (p *project) installedSnapshot(ctx context.Context) (map[string]string, error) {
	pkgs, err := p.planner.Installer.ListInstalled(ctx)
	if err != nil {
		return nil, err
	}
	return pip.Snapshot(pkgs), nil
}

// executePlan runs the actions one at a time so each gets its own status
// line, persisting the manifest after every successful mutation.
func (p *project) executePlan(ctx context.Context, actions []planner.Action) error {
	for _, action := range actions {
		spinner := newSpinnerWithContext(ctx, actionMessage(action)+"...")
		spinner.Start()

		next, err := p.planner.Execute(ctx, p.manifest, p.manifestPath, []planner.Action{action})
		p.manifest = next
		if err != nil {
			spinner.StopWithError(actionMessage(action) + " failed")
			return err
		}
		spinner.StopWithSuccess(actionDone(action))
	}
	return nil
}

func actionMessage(a planner.Action) string {
	switch a.Kind {
	case planner.Install:
		return "Installing " + a.Name
	case planner.Update:
		return "Updating " + a.Name
	default:
		return "Uninstalling " + a.Name
	}
}

func actionDone(a planner.Action) string {
	switch a.Kind {
	case planner.Install:
		return "Installed " + a.Name
	case planner.Update:
		return "Updated " + a.Name
	default:
		return "Uninstalled " + a.Name
	}
}

// =============================================================================
// Package Index
// =============================================================================

// newIndex creates the PyPI client used for outdated checks, backed by the
// file cache under the XDG cache directory.
func newIndex(noCache bool) *pypi.Client {
	if noCache {
		return pypi.NewClient(nil)
	}
	dir, err := cacheDir()
	if err != nil {
		return pypi.NewClient(nil)
	}
	cache, err := httputil.NewCache(dir, indexCacheTTL)
	if err != nil {
		return pypi.NewClient(nil)
	}
	return pypi.NewClient(cache)
}

// cacheDir returns the cache directory using the XDG standard
// (~/.cache/pipit/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
