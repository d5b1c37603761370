package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sortiz4/pipit/pkg/planner"
)

// installCommand creates the "install" command. Without packages it
// synchronizes the environment against the manifest; with packages it
// installs them and records them in the manifest.
func (c *CLI) installCommand() *cobra.Command {
	var dev bool

	cmd := &cobra.Command{
		Use:   "install [packages...]",
		Short: "Install manifest dependencies or add new ones",
		Long: `Install dependencies.

With no arguments, every applicable manifest entry missing from the
environment is installed and unsatisfied entries are brought back within
their constraints. With package arguments, each package is installed and
recorded in the manifest; unconstrained packages are pinned to the version
pip selected.

Packages may carry a specifier set ("flask>=2.0,<3.0") or be a
version-control locator ("git+https://host/repo.git@ref#egg=name").`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInstall(cmd.Context(), args, dev)
		},
	}

	cmd.Flags().BoolVarP(&dev, "dev", "d", false, "target dev-dependencies")

	return cmd
}

func (c *CLI) runInstall(ctx context.Context, args []string, dev bool) error {
	proj, err := c.openProject(ctx)
	if err != nil {
		return err
	}

	var actions []planner.Action
	if len(args) > 0 {
		actions, err = proj.planner.PlanAdd(args, dev)
	} else {
		var installed map[string]string
		installed, err = proj.installedSnapshot(ctx)
		if err != nil {
			return err
		}
		actions, err = proj.planner.PlanSync(proj.manifest, dev, installed)
	}
	if err != nil {
		return err
	}

	if len(actions) == 0 {
		printInfo("Everything up to date")
		return nil
	}
	return proj.executePlan(ctx, actions)
}
