package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// uninstallCommand creates the "uninstall" command.
func (c *CLI) uninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall packages...",
		Short: "Remove packages and their manifest entries",
		Long: `Uninstall the named packages from the environment and remove them from
every manifest group. Packages are removed exactly as named; transitive
dependencies they pulled in are left installed.`,
		Args: minArgs(1, "package"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runUninstall(cmd.Context(), args)
		},
	}
}

func (c *CLI) runUninstall(ctx context.Context, args []string) error {
	proj, err := c.openProject(ctx)
	if err != nil {
		return err
	}

	actions, err := proj.planner.PlanUninstall(args)
	if err != nil {
		return err
	}
	return proj.executePlan(ctx, actions)
}
