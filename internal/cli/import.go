package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sortiz4/pipit/pkg/errors"
	"github.com/sortiz4/pipit/pkg/manifest"
	"github.com/sortiz4/pipit/pkg/reqfile"
)

// importCommand creates the "import" command, which converts an existing
// requirements.txt or pyproject.toml into manifest entries.
func (c *CLI) importCommand() *cobra.Command {
	var dev bool

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import dependencies from requirements.txt or pyproject.toml",
		Long: `Import dependency declarations from another format into pipit.json.

Without an argument, the current directory is searched for requirements.txt
and then pyproject.toml. Imported entries are merged into the manifest;
existing entries for the same package are overwritten. Entries that declare
a dev group in the source land in dev-dependencies.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := ""
			if len(args) > 0 {
				file = args[0]
			}
			return c.runImport(file, dev)
		},
	}

	cmd.Flags().BoolVarP(&dev, "dev", "d", false, "record every imported entry as a dev-dependency")

	return cmd
}

func (c *CLI) runImport(file string, dev bool) error {
	if file == "" {
		found, err := detectImportFile(".")
		if err != nil {
			return err
		}
		file = found
	}

	entries, err := parseImportFile(file)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		printInfo("Nothing to import from %s", file)
		return nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	manifestPath := filepath.Join(dir, manifest.Filename)

	m, err := manifest.Load(manifestPath)
	if errors.Is(err, errors.ErrCodeManifestNotFound) {
		m = manifest.New()
	} else if err != nil {
		return err
	}

	for _, entry := range entries {
		group := manifest.Dependencies
		if dev || entry.Dev {
			group = manifest.DevDependencies
		}
		m = m.AddOrUpdate(group, entry.Name, manifest.Dependency{Version: entry.Version})
	}
	if err := m.Save(manifestPath); err != nil {
		return err
	}

	printSuccess("Imported %d packages from %s", len(entries), file)
	printFile(manifestPath)
	printNewline()
	printNextStep("Synchronize the environment", appName+" install")

	return nil
}

// detectImportFile picks the source file when none was named, preferring
// requirements.txt over pyproject.toml.
func detectImportFile(dir string) (string, error) {
	for _, name := range []string{"requirements.txt", "pyproject.toml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "no requirements.txt or pyproject.toml found (name a file to import)")
}

// parseImportFile dispatches on the file name: anything ending in .toml is
// read as a pyproject, everything else as a requirements file.
func parseImportFile(path string) ([]reqfile.Entry, error) {
	if strings.HasSuffix(path, ".toml") {
		return reqfile.ParsePyproject(path)
	}
	return reqfile.ParseRequirements(path)
}
