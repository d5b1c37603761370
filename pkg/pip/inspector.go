package pip

import (
	"context"

	"github.com/sortiz4/pipit/pkg/errors"
	"github.com/sortiz4/pipit/pkg/pep440"
)

// Index resolves a package name to the newest version a package index
// knows about. Implementations return ("", nil) for packages the index has
// no record of, so locally-built or VCS-installed packages are skipped
// rather than treated as failures.
type Index interface {
	LatestVersion(ctx context.Context, name string) (string, error)
}

// OutdatedPackage pairs an installed version with the newer one available.
type OutdatedPackage struct {
	Name      string
	Installed string
	Latest    string
}

// FindOutdated checks the given installed packages against the index and
// reports those with a strictly newer release available. Packages whose
// installed version does not parse are skipped; they were not installed
// from the index in the first place.
func FindOutdated(ctx context.Context, installed []Package, index Index) ([]OutdatedPackage, error) {
	var outdated []OutdatedPackage
	for _, pkg := range installed {
		current, err := pep440.ParseVersion(pkg.Version)
		if err != nil {
			continue
		}

		latest, err := index.LatestVersion(ctx, pkg.Name)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeIndexUnavailable, err, "checking %s against the package index", pkg.Name)
		}
		if latest == "" {
			continue
		}

		newest, err := pep440.ParseVersion(latest)
		if err != nil {
			continue
		}
		if newest.Compare(current) > 0 {
			outdated = append(outdated, OutdatedPackage{
				Name:      pkg.Name,
				Installed: pkg.Version,
				Latest:    latest,
			})
		}
	}
	return outdated, nil
}
