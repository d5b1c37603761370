package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// updateCommand creates the "update" command.
func (c *CLI) updateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update [packages...]",
		Short: "Upgrade installed manifest dependencies",
		Long: `Upgrade dependencies.

With no arguments, every installed applicable manifest entry is upgraded;
pinned entries chase the newest release and are re-pinned, ranged entries
upgrade within their constraint. Version-control entries are skipped —
changing a ref requires an explicit install.

With package arguments, only those packages are upgraded; a name not
present in the manifest is reported and the rest still proceed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runUpdate(cmd.Context(), args)
		},
	}
}

func (c *CLI) runUpdate(ctx context.Context, args []string) error {
	proj, err := c.openProject(ctx)
	if err != nil {
		return err
	}

	installed, err := proj.installedSnapshot(ctx)
	if err != nil {
		return err
	}

	actions, planErr := proj.planner.PlanUpdate(proj.manifest, args, installed)
	if planErr != nil {
		// Unmanaged names are reported but don't abort the managed ones.
		printWarning("%s", planErr.Error())
	}

	if len(actions) == 0 {
		if planErr != nil {
			return planErr
		}
		printInfo("Nothing to update")
		return nil
	}

	if err := proj.executePlan(ctx, actions); err != nil {
		return err
	}
	return planErr
}
