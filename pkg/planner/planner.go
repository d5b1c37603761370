// Package planner is the synchronization engine: it compares the manifest,
// the environment's installed state, and the requested command, and
// produces an ordered list of installer actions.
//
// Planning and execution are separate phases. Planning is pure: parse
// errors abort the whole command before any action runs, and inapplicable
// entries (wrong interpreter version or OS family) are silently skipped so
// cross-platform manifests never fail on the "wrong" platform. Execution
// runs actions strictly in order, one at a time, and persists the manifest
// immediately after each successful mutation — an interrupted run never
// loses more than the in-flight action.
package planner

import (
	stderrors "errors"

	"github.com/sortiz4/pipit/pkg/errors"
	"github.com/sortiz4/pipit/pkg/manifest"
	"github.com/sortiz4/pipit/pkg/pep440"
	"github.com/sortiz4/pipit/pkg/pip"
	"github.com/sortiz4/pipit/pkg/pyenv"
)

// Kind identifies the installer operation an action performs.
type Kind string

const (
	Install   Kind = "install"
	Update    Kind = "update"
	Uninstall Kind = "uninstall"
)

// pinMode says what to write back into the manifest after an action
// succeeds.
type pinMode int

const (
	pinNone     pinMode = iota
	pinSpec             // write the planned value verbatim
	pinConcrete         // pin the concrete version the installer chose
	pinRewrite          // refresh an existing pin to the new concrete version
)

// Action is one step of a synchronization plan.
type Action struct {
	Kind Kind

	// Name is the normalized package name.
	Name string

	// Argument is the requirement handed to the installer. Empty for
	// uninstall actions, which pass Name instead.
	Argument string

	// Group is the manifest group a successful install is recorded in;
	// empty when the action doesn't touch the manifest.
	Group string

	pin      pinMode
	pinValue string
}

// Planner plans and executes synchronization runs against one environment.
type Planner struct {
	Installer pip.Installer

	// Interpreter is the environment's full interpreter version ("3.11.4").
	Interpreter string

	// System is the OS-family token ("posix" or "nt").
	System string
}

func (p *Planner) applies(dep manifest.Dependency) bool {
	return pyenv.Applies(dep, p.Interpreter, p.System)
}

type scopedEntry struct {
	name string
	dep  manifest.Dependency
	req  pep440.Requirement
}

// scopeGroups collects the applicable entries of the given groups in
// manifest order, parsing every version string up front. A name declared in
// both groups is scoped once, from the group listed first.
func (p *Planner) scopeGroups(m *manifest.Manifest, groups []string) ([]scopedEntry, error) {
	var entries []scopedEntry
	seen := map[string]bool{}

	for _, groupName := range groups {
		group := m.Group(groupName)
		for _, name := range group.Names() {
			if seen[name] {
				continue
			}
			seen[name] = true

			dep, _ := group.Get(name)
			if !p.applies(dep) {
				continue
			}
			req, err := pep440.Parse(dep.EffectiveVersion())
			if err != nil {
				return nil, err
			}
			entries = append(entries, scopedEntry{name: name, dep: dep, req: req})
		}
	}
	return entries, nil
}

// PlanSync plans "install" with no packages: every applicable manifest
// entry not satisfied by an installed record gets an action. Satisfied
// entries are skipped, unsatisfied-but-installed entries become updates,
// and version-control entries are always reinstalled since a ref cannot be
// checked without fetching.
func (p *Planner) PlanSync(m *manifest.Manifest, dev bool, installed map[string]string) ([]Action, error) {
	groups := []string{manifest.Dependencies}
	if dev {
		groups = append(groups, manifest.DevDependencies)
	}
	entries, err := p.scopeGroups(m, groups)
	if err != nil {
		return nil, err
	}

	var actions []Action
	for _, e := range entries {
		if e.req.IsVCS() {
			actions = append(actions, Action{
				Kind:     Install,
				Name:     e.name,
				Argument: e.req.Locator.PipArgument(e.name),
			})
			continue
		}

		current, ok := installed[e.name]
		switch {
		case !ok:
			actions = append(actions, Action{
				Kind:     Install,
				Name:     e.name,
				Argument: e.req.Specs.PipArgument(e.name),
			})
		case !e.req.Specs.MatchesString(current):
			actions = append(actions, Action{
				Kind:     Update,
				Name:     e.name,
				Argument: e.req.Specs.PipArgument(e.name),
			})
		}
	}
	return actions, nil
}

// PlanAdd plans "install" with explicit packages. Each argument is
// installed as given; after success the manifest records the explicit
// specifier or locator verbatim, or — for unconstrained arguments — a
// compatible-release pin of the concrete version the installer chose.
func (p *Planner) PlanAdd(args []string, dev bool) ([]Action, error) {
	group := manifest.Dependencies
	if dev {
		group = manifest.DevDependencies
	}

	var actions []Action
	for _, arg := range args {
		name, req, err := pep440.ParseArgument(arg)
		if err != nil {
			return nil, err
		}

		action := Action{Kind: Install, Name: name, Group: group}
		switch {
		case req.IsVCS():
			action.Argument = req.Locator.PipArgument(name)
			action.pin, action.pinValue = pinSpec, req.Locator.String()
		case req.Specs.Any():
			action.Argument = name
			action.pin = pinConcrete
		default:
			action.Argument = req.Specs.PipArgument(name)
			action.pin, action.pinValue = pinSpec, req.Specs.String()
		}
		actions = append(actions, action)
	}
	return actions, nil
}

// PlanUninstall plans "uninstall": exactly one action per named package,
// even when the name appears in both manifest groups. Removal never
// cascades to unnamed packages.
func (p *Planner) PlanUninstall(args []string) ([]Action, error) {
	var actions []Action
	seen := map[string]bool{}
	for _, arg := range args {
		name := pep440.Normalize(arg)
		if err := errors.ValidatePackageName(name); err != nil {
			return nil, err
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		actions = append(actions, Action{Kind: Uninstall, Name: name})
	}
	return actions, nil
}

// PlanUpdate plans "update". With no names the scope is every installed
// applicable manifest entry; version-control entries are excluded since
// changing a ref requires an explicit install. With names, the scope is the
// intersection with the manifest: each name absent from every group is
// reported as PACKAGE_NOT_MANAGED without aborting the rest, so the
// returned actions and error can both be non-empty.
func (p *Planner) PlanUpdate(m *manifest.Manifest, names []string, installed map[string]string) ([]Action, error) {
	entries, err := p.scopeGroups(m, manifest.Groups)
	if err != nil {
		return nil, err
	}

	var notManaged []error
	if len(names) > 0 {
		requested := map[string]bool{}
		for _, raw := range names {
			name := pep440.Normalize(raw)
			if !m.Has(name) {
				notManaged = append(notManaged, errors.New(errors.ErrCodePackageNotManaged, "%s is not a managed dependency", name))
				continue
			}
			requested[name] = true
		}
		entries = filterEntries(entries, requested)
	}

	var actions []Action
	for _, e := range entries {
		if e.req.IsVCS() {
			continue
		}
		if _, ok := installed[e.name]; !ok {
			continue
		}

		action := Action{Kind: Update, Name: e.name}
		switch {
		case pinnedSet(e.req.Specs):
			// Pinned entries chase the latest release and re-pin after.
			action.Argument = e.name
			action.pin = pinRewrite
		case e.req.Specs.Any():
			action.Argument = e.name
		default:
			action.Argument = e.req.Specs.PipArgument(e.name)
		}
		actions = append(actions, action)
	}
	return actions, stderrors.Join(notManaged...)
}

func filterEntries(entries []scopedEntry, requested map[string]bool) []scopedEntry {
	var kept []scopedEntry
	for _, e := range entries {
		if requested[e.name] {
			kept = append(kept, e)
		}
	}
	return kept
}

// pinnedSet reports whether a specifier set names a single concrete pin: a
// bare or exact version, or a compatible-release clause.
func pinnedSet(ss *pep440.SpecifierSet) bool {
	if len(ss.Specs) != 1 {
		return false
	}
	s := ss.Specs[0]
	return s.Op == "~=" || (s.Op == "==" && s.Prefix == nil)
}
