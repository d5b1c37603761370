package planner

import (
	"context"
	"strings"

	"github.com/sortiz4/pipit/pkg/errors"
	"github.com/sortiz4/pipit/pkg/manifest"
	"github.com/sortiz4/pipit/pkg/pip"
)

// Execute runs the plan against the installer, strictly in order. After
// each successful action the manifest mutation it implies is applied and —
// when path is non-empty — persisted before the next action starts. A
// failing action aborts the remaining plan but never rolls back completed
// actions; the manifest returned reflects everything that committed.
func (p *Planner) Execute(ctx context.Context, m *manifest.Manifest, path string, actions []Action) (*manifest.Manifest, error) {
	for _, action := range actions {
		var err error
		switch action.Kind {
		case Install:
			err = p.Installer.Install(ctx, action.Argument)
		case Update:
			err = p.Installer.Update(ctx, action.Argument)
		case Uninstall:
			err = p.Installer.Uninstall(ctx, action.Name)
		}
		if err != nil {
			return m, err
		}

		next, err := p.commit(ctx, m, action)
		if err != nil {
			return m, err
		}
		if next != m {
			if path != "" {
				if err := next.Save(path); err != nil {
					return m, err
				}
			}
			m = next
		}
	}
	return m, nil
}

// commit applies an action's manifest mutation and returns the new
// manifest, or the old one unchanged when the action doesn't touch it.
func (p *Planner) commit(ctx context.Context, m *manifest.Manifest, action Action) (*manifest.Manifest, error) {
	switch action.Kind {
	case Uninstall:
		if !m.Has(action.Name) {
			return m, nil
		}
		return m.Remove(action.Name), nil

	case Install:
		if action.Group == "" {
			return m, nil
		}
		pinValue := action.pinValue
		if action.pin == pinConcrete {
			version, err := p.installedVersion(ctx, action.Name)
			if err != nil {
				return nil, err
			}
			pinValue = pinFor(version)
		}

		dep := manifest.Dependency{Version: pinValue}
		if existing, ok := m.Group(action.Group).Get(action.Name); ok {
			dep = existing.WithVersion(pinValue)
		}
		return m.AddOrUpdate(action.Group, action.Name, dep), nil

	case Update:
		if action.pin != pinRewrite {
			return m, nil
		}
		version, err := p.installedVersion(ctx, action.Name)
		if err != nil {
			return nil, err
		}
		return m.SetVersion(action.Name, pinFor(version)), nil
	}
	return m, nil
}

// installedVersion re-queries the environment for the concrete version an
// action just produced.
func (p *Planner) installedVersion(ctx context.Context, name string) (string, error) {
	pkgs, err := p.Installer.ListInstalled(ctx)
	if err != nil {
		return "", err
	}
	if version, ok := pip.Snapshot(pkgs)[name]; ok {
		return version, nil
	}
	return "", errors.New(errors.ErrCodeInstallerFailure, "installer reported success but %s is not installed", name)
}

// pinFor builds the pin recorded after an unconstrained install: a
// compatible-release clause, or exact equality for single-segment versions
// that cannot carry one.
func pinFor(version string) string {
	if strings.Contains(version, ".") {
		return "~=" + version
	}
	return "==" + version
}
