package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/pyci/internal/domain/entities"
	domainRepos "github.com/rios0rios0/pyci/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/pyci/internal/infrastructure/repositories"
	"github.com/rios0rios0/pyci/internal/pep440"
)

const changelogFileMode = 0o644

// UpdateDeps is the interface for the update-deps command.
type UpdateDeps interface {
	Execute(ctx context.Context, opts UpdateDepsOptions) (*entities.Report, error)
}

// UpdateDepsOptions holds the runtime options of one update-deps run.
type UpdateDepsOptions struct {
	RootPath              string
	FailFast              bool
	Ignore                []string // raw --ignore entries, parsed at the start of the run
	IgnoreSeparator       string
	Verbose               bool
	SkipUnnormalizedNames bool
	PreCommit             bool
	Index                 string
	IndexOptions          entities.IndexOptions
	Concurrency           int
	Changelog             string
}

// lookupKey identifies one index query; entries sharing a key share the result.
type lookupKey struct {
	name   string
	python string
}

type lookupResult struct {
	versions []string
	err      error
}

// plannedEntry is a dependency entry after parsing, before resolution.
type plannedEntry struct {
	entry  entities.DependencyEntry
	dep    *entities.DependencySpecifier
	update *entities.ResolvedUpdate // decided without a lookup
	key    lookupKey
}

// UpdateDepsCommand rewrites the dependency arrays of pyproject.toml to the
// newest versions allowed by the existing specifiers and the ignore rules.
type UpdateDepsCommand struct {
	indexRegistry *infraRepos.IndexRegistry
	projects      domainRepos.ProjectRepository
	git           domainRepos.GitRepository
}

// NewUpdateDepsCommand creates a new UpdateDepsCommand.
func NewUpdateDepsCommand(
	indexRegistry *infraRepos.IndexRegistry,
	projects domainRepos.ProjectRepository,
	git domainRepos.GitRepository,
) *UpdateDepsCommand {
	return &UpdateDepsCommand{indexRegistry: indexRegistry, projects: projects, git: git}
}

// Execute runs update-deps. The returned report is complete even when an
// error is returned; under fail-fast the project file is left untouched.
func (it *UpdateDepsCommand) Execute(ctx context.Context, opts UpdateDepsOptions) (*entities.Report, error) {
	report := &entities.Report{}

	rules, ignoreErrs := entities.ParseIgnoreRules(opts.Ignore, opts.IgnoreSeparator)
	for _, err := range ignoreErrs {
		logger.Warnf("[update-deps] Dropping ignore rule: %v", err)
	}
	report.IgnoreErrors = ignoreErrs
	logger.Debugf("[update-deps] Parsed %d ignore rule(s)", len(rules))

	rootPath, err := it.resolveRoot(opts)
	if err != nil {
		return report, err
	}

	project, err := it.projects.Load(ctx, rootPath)
	if err != nil {
		return report, fmt.Errorf("could not load the project at %s: %w", rootPath, err)
	}
	report.ProjectPath = project.Path

	pythonFloor, err := pep440.PythonFloor(project.RequiresPython)
	if err != nil {
		return report, fmt.Errorf("cannot determine the minimum Python version: %w", err)
	}
	report.PythonVersion = pythonFloor
	logger.Infof("[update-deps] Resolving dependencies for Python %s", pythonFloor)

	index, err := it.indexRegistry.Get(opts.Index, opts.IndexOptions)
	if err != nil {
		return report, err
	}

	plans := planEntries(project, pythonFloor, opts, report)
	if opts.FailFast && len(report.ParseErrors) > 0 {
		report.Updates = collectUpdates(plans, nil, rules, report, index.Name())
		return report, fmt.Errorf("aborting, unparseable dependencies: %w", errors.Join(report.ParseErrors...))
	}

	memo := prefetch(ctx, index, plans, opts)
	report.Updates = collectUpdates(plans, memo, rules, report, index.Name())

	if opts.FailFast && len(report.LookupErrors) > 0 {
		return report, fmt.Errorf("aborting, index lookups failed: %w", errors.Join(report.LookupErrors...))
	}

	replacements := make([]entities.LineReplacement, 0, len(report.Updates))
	for _, update := range report.Updates {
		if replacement, ok := update.Replacement(); ok {
			replacements = append(replacements, replacement)
		}
	}

	changed, err := it.projects.Write(ctx, project, replacements)
	if err != nil {
		return report, fmt.Errorf("could not write %s: %w", project.Path, err)
	}
	report.Changed = changed

	if changed && opts.Changelog != "" {
		if changelogErr := updateChangelog(resolveAgainst(rootPath, opts.Changelog), report.ChangelogEntries()); changelogErr != nil {
			logger.Warnf("[update-deps] Could not update the changelog: %v", changelogErr)
		}
	}

	return report, nil
}

func (it *UpdateDepsCommand) resolveRoot(opts UpdateDepsOptions) (string, error) {
	rootPath := opts.RootPath
	if rootPath == "" {
		rootPath = "."
	}
	if opts.PreCommit && rootPath == "." {
		topLevel, err := it.git.TopLevel(rootPath)
		if err != nil {
			return "", fmt.Errorf("could not determine the repository root: %w", err)
		}
		rootPath = topLevel
	}
	return filepath.Abs(rootPath)
}

// planEntries parses every entry and settles everything that needs no index lookup.
func planEntries(
	project *entities.Project,
	pythonFloor string,
	opts UpdateDepsOptions,
	report *entities.Report,
) []plannedEntry {
	projectName := pep440.NormalizeName(project.Name)
	plans := make([]plannedEntry, 0, len(project.Entries))

	for _, entry := range project.Entries {
		plan := plannedEntry{entry: entry}
		skip := func(decision entities.Decision, reason string) {
			plan.update = &entities.ResolvedUpdate{
				Dependency: plan.dep, RawLine: entry.Raw, Clause: -1, Decision: decision, Reason: reason,
			}
		}

		dep, err := entities.ParseDependency(entry.Raw)
		if err != nil {
			logger.Warnf("[update-deps] %v", err)
			report.ParseErrors = append(report.ParseErrors, err)
			skip(entities.DecisionSkipUnparseable, err.Error())
			plan.update.Err = err
			plans = append(plans, plan)
			continue
		}
		plan.dep = dep

		switch {
		case projectName != "" && dep.NormalizedName == projectName:
			logger.Debugf("[update-deps] Skipping self-reference %q", dep.FullName())
			skip(entities.DecisionSkipNoNewer, "self-reference")
		case dep.Unnormalized && opts.SkipUnnormalizedNames:
			logger.Infof("[update-deps] Dependency %q has an unnormalized package name and will be skipped.", dep.Name)
			skip(entities.DecisionSkipUnparseable, "unnormalized package name")
		case dep.URL != "":
			logger.Infof("[update-deps] Dependency %q is pinned to a URL and will be skipped.", dep.FullName())
			skip(entities.DecisionSkipUnconstrained, "pinned to a URL")
		case len(dep.Clauses) == 0:
			logger.Warnf(
				"[update-deps] Dependency %q is not version restricted and will be skipped. "+
					"Consider adding version restrictions.", dep.FullName(),
			)
			skip(entities.DecisionSkipUnconstrained, "not version restricted")
		case anchorClause(dep) < 0:
			skip(entities.DecisionSkipNoNewer, "no lower bound or pin to update")
		default:
			python, floorErr := markerFloor(dep, pythonFloor)
			if floorErr != nil {
				logger.Warnf("[update-deps] Dependency %q: %v", dep.FullName(), floorErr)
				skip(entities.DecisionSkipUnparseable, floorErr.Error())
				break
			}
			plan.key = lookupKey{name: dep.NormalizedName, python: python}
		}
		plans = append(plans, plan)
	}
	return plans
}

func markerFloor(dep *entities.DependencySpecifier, pythonFloor string) (string, error) {
	if dep.Marker == "" {
		return pythonFloor, nil
	}
	marker, err := pep440.ParseMarker(dep.Marker)
	if err != nil {
		return "", err
	}
	return pep440.MarkerPythonFloor(marker, pythonFloor)
}

// prefetch queries the index once per distinct (name, python) pair, with at
// most opts.Concurrency queries in flight and a timeout per query.
func prefetch(
	ctx context.Context,
	index domainRepos.IndexRepository,
	plans []plannedEntry,
	opts UpdateDepsOptions,
) map[lookupKey]lookupResult {
	var keys []lookupKey
	seen := map[lookupKey]bool{}
	for _, plan := range plans {
		if plan.update != nil || seen[plan.key] {
			continue
		}
		seen[plan.key] = true
		keys = append(keys, plan.key)
	}

	results := make([]lookupResult, len(keys))
	group, groupCtx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		group.SetLimit(opts.Concurrency)
	}
	for i, key := range keys {
		group.Go(func() error {
			lookupCtx := groupCtx
			if opts.IndexOptions.Timeout > 0 {
				var cancel context.CancelFunc
				lookupCtx, cancel = context.WithTimeout(groupCtx, opts.IndexOptions.Timeout)
				defer cancel()
			}
			logger.Debugf("[update-deps] Looking up %s for Python %s on %s", key.name, key.python, index.Name())
			versions, err := index.AvailableVersions(lookupCtx, key.name, key.python)
			results[i] = lookupResult{versions: versions, err: err}
			return nil
		})
	}
	_ = group.Wait() // lookups never fail the group; errors are kept per key

	memo := make(map[lookupKey]lookupResult, len(keys))
	for i, key := range keys {
		memo[key] = results[i]
	}
	return memo
}

// collectUpdates resolves every plan in file order. A nil memo marks every
// pending entry as not looked up.
func collectUpdates(
	plans []plannedEntry,
	memo map[lookupKey]lookupResult,
	rules entities.IgnoreRules,
	report *entities.Report,
	indexName string,
) []entities.ResolvedUpdate {
	updates := make([]entities.ResolvedUpdate, 0, len(plans))
	reported := map[lookupKey]bool{}

	for _, plan := range plans {
		var update entities.ResolvedUpdate
		switch {
		case plan.update != nil:
			update = *plan.update
		case memo == nil:
			update = entities.ResolvedUpdate{
				Dependency: plan.dep, RawLine: plan.entry.Raw, Clause: -1,
				Decision: entities.DecisionSkipUnparseable, Reason: "not looked up",
			}
		default:
			result := memo[plan.key]
			if result.err != nil {
				lookupErr := &entities.LookupError{Package: plan.dep.Name, Index: indexName, Err: result.err}
				if !reported[plan.key] {
					reported[plan.key] = true
					report.LookupErrors = append(report.LookupErrors, lookupErr)
					logger.Warnf("[update-deps] %v", lookupErr)
				}
				update = entities.ResolvedUpdate{
					Dependency: plan.dep, RawLine: plan.entry.Raw, Clause: -1,
					Decision: entities.DecisionSkipUnparseable, Reason: lookupErr.Error(), Err: lookupErr,
				}
			} else {
				update = ResolveUpdate(plan.dep, result.versions, rules)
			}
		}

		update.Group = plan.entry.Group
		logDecision(update)
		updates = append(updates, update)
	}
	return updates
}

func logDecision(update entities.ResolvedUpdate) {
	switch update.Decision {
	case entities.DecisionApply:
		logger.Infof("[update-deps] %s: %s", update.Name(), update.Reason)
	case entities.DecisionSkipIgnored:
		logger.Infof("[update-deps] %s: skipping %s (%s)", update.Name(), update.CandidateVersion, update.Reason)
	default:
		logger.Debugf("[update-deps] %s: %s (%s)", update.Name(), update.Decision, update.Reason)
	}
}

func resolveAgainst(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

func updateChangelog(path string, entries []string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	updated := entities.InsertChangelogEntry(string(content), entries)
	if updated == string(content) {
		logger.Warnf("[update-deps] %s has no [Unreleased] section, leaving it unchanged", path)
		return nil
	}
	return os.WriteFile(path, []byte(updated), changelogFileMode)
}
