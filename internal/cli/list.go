package cli

import (
	"context"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sortiz4/pipit/pkg/pip"
)

// listCommand creates the "list" command.
func (c *CLI) listCommand() *cobra.Command {
	var (
		outdated    bool
		interactive bool
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed packages",
		Long: `List every package installed in the environment.

With --outdated, each package is checked against the package index and only
those with a newer release are shown. If the index cannot be reached the
check degrades to a warning; the plain listing never fails on network
errors.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runList(cmd.Context(), outdated, interactive, noCache)
		},
	}

	cmd.Flags().BoolVar(&outdated, "outdated", false, "show only packages with a newer release")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse packages in an interactive table")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the package index cache")

	return cmd
}

func (c *CLI) runList(ctx context.Context, outdated, interactive, noCache bool) error {
	proj, err := c.openProject(ctx)
	if err != nil {
		return err
	}

	installed, err := proj.planner.Installer.ListInstalled(ctx)
	if err != nil {
		return err
	}
	sort.Slice(installed, func(i, j int) bool { return installed[i].Name < installed[j].Name })

	var stale []pip.OutdatedPackage
	if outdated || interactive {
		spinner := newSpinnerWithContext(ctx, "Checking the package index...")
		spinner.Start()
		stale, err = pip.FindOutdated(ctx, installed, newIndex(noCache))
		spinner.Stop()
		if err != nil {
			// An unreachable index degrades the check, never the listing.
			printWarning("Could not check for newer releases: %s", err)
			stale = nil
		}
	}

	if interactive {
		model := newPackageListModel(installed, stale)
		_, err := tea.NewProgram(model).Run()
		return err
	}

	if outdated {
		if len(stale) == 0 {
			printInfo("Everything up to date")
			return nil
		}
		for _, pkg := range stale {
			printOutdated(pkg.Name, pkg.Installed, pkg.Latest)
		}
		return nil
	}

	if len(installed) == 0 {
		printInfo("No packages installed")
		return nil
	}
	for _, pkg := range installed {
		printPackage(pkg.Name, pkg.Version)
	}
	return nil
}
