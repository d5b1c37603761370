package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sortiz4/pipit/pkg/manifest"
	"github.com/sortiz4/pipit/pkg/pyenv"
)

// newCommand creates the "new" command, which initializes a project: an
// empty manifest plus a provisioned environment.
func (c *CLI) newCommand() *cobra.Command {
	var python string

	cmd := &cobra.Command{
		Use:   "new [path]",
		Short: "Initialize a project manifest and environment",
		Long: `Initialize a pipit project in the given directory (default: the current
directory): create an empty pipit.json and provision the .pipit environment
through virtualenv.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return c.runNew(cmd.Context(), dir, python)
		},
	}

	cmd.Flags().StringVarP(&python, "python", "p", "", "interpreter to build the environment on (virtualenv -p)")

	return cmd
}

func (c *CLI) runNew(ctx context.Context, dir, python string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	if err := manifest.Create(abs); err != nil {
		return err
	}

	env := pyenv.New(abs)
	if env.Exists() {
		printInfo("Environment already exists")
		printFile(env.Root())
		return nil
	}

	track := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Provisioning environment...")
	spinner.Start()

	if err := env.Provision(ctx, python); err != nil {
		spinner.StopWithError("Provisioning failed")
		return err
	}
	spinner.Stop()
	track.done("Environment provisioned")

	printSuccess("Project initialized")
	printFile(filepath.Join(abs, manifest.Filename))
	printFile(env.Root())
	printNewline()
	printNextStep("Add a dependency", appName+" install <package>")

	return nil
}
