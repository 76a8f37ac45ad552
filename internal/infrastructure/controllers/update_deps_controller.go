package controllers

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/pyci/internal/domain/commands"
	"github.com/rios0rios0/pyci/internal/domain/entities"
)

// UpdateDepsController handles the "update-deps" subcommand.
type UpdateDepsController struct {
	command      commands.UpdateDeps
	loadSettings entities.SettingsLoader
}

// NewUpdateDepsController creates a new UpdateDepsController.
func NewUpdateDepsController(
	command commands.UpdateDeps,
	loadSettings entities.SettingsLoader,
) *UpdateDepsController {
	return &UpdateDepsController{command: command, loadSettings: loadSettings}
}

// GetBind returns the Cobra command metadata for the update-deps controller.
func (it *UpdateDepsController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "update-deps",
		Short: "Update the dependencies of pyproject.toml",
		Long: `Update the version specifiers of every dependency in pyproject.toml
([project] dependencies and [project.optional-dependencies]) to the newest
release allowed by the existing constraints and the ignore rules.

Ignore rules use Dependabot's syntax, e.g.:
  --ignore "dependency-name=Sphinx...versions=>=4.5.0"
  --ignore "dependency-name=pydantic...update-types=version-update:semver-major"`,
	}
}

// Execute runs update-deps and prints the report.
func (it *UpdateDepsController) Execute(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	settings, err := it.loadSettings(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	opts := updateDepsOptions(cmd, settings.UpdateDeps)
	if opts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	report, err := it.command.Execute(context.Background(), opts)
	if report != nil {
		printReport(cmd.OutOrStdout(), report, opts.Verbose)
	}
	if err != nil {
		return err
	}
	return report.Err()
}

// AddFlags adds the update-deps flags to the given Cobra command.
func (it *UpdateDepsController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("root-repo-path", ".", "A resolvable path to the root of the repository folder")
	cmd.Flags().Bool("fail-fast", false, "Fail immediately if an error occurs")
	cmd.Flags().Bool("pre-commit", false, "Run as a pre-commit hook, resolving the repository root through git")
	cmd.Flags().StringArray("ignore", nil,
		"Ignore-rule in Dependabot format, e.g. 'dependency-name=Sphinx...versions=>=4.5.0' (repeatable)")
	cmd.Flags().String("ignore-separator", entities.DefaultIgnoreSeparator,
		"Separator between the key/value pairs of an --ignore entry")
	cmd.Flags().Bool("skip-unnormalized-python-package-names", false,
		"Skip dependencies whose names are not normalized (PEP 503)")
	cmd.Flags().String("index", entities.IndexPyPI, "Package index backend (pypi, pip)")
	cmd.Flags().String("index-url", entities.DefaultIndexURL, "Base URL of the package index")
	cmd.Flags().Duration("timeout", entities.DefaultTimeout, "Timeout of a single index lookup")
	cmd.Flags().Int("retries", entities.DefaultRetries, "Retries of a failed index request")
	cmd.Flags().Int("concurrency", entities.DefaultConcurrency, "Maximum concurrent index lookups")
	cmd.Flags().String("changelog", "", "Keep-a-Changelog file to record applied updates in")
}

// updateDepsOptions merges the settings file with the flags given explicitly.
func updateDepsOptions(cmd *cobra.Command, settings entities.UpdateDepsSettings) commands.UpdateDepsOptions {
	flags := cmd.Flags()
	verbose, _ := flags.GetBool("verbose")
	preCommit, _ := flags.GetBool("pre-commit")

	opts := commands.UpdateDepsOptions{
		RootPath:              settings.RootRepoPath,
		FailFast:              settings.FailFast,
		Ignore:                settings.Ignore,
		IgnoreSeparator:       settings.IgnoreSeparator,
		Verbose:               verbose,
		SkipUnnormalizedNames: settings.SkipUnnormalizedNames,
		PreCommit:             preCommit,
		Index:                 settings.Index,
		IndexOptions: entities.IndexOptions{
			URL:     settings.IndexURL,
			Timeout: settings.Timeout,
			Retries: settings.Retries,
		},
		Concurrency: settings.Concurrency,
		Changelog:   settings.Changelog,
	}

	if flags.Changed("root-repo-path") {
		opts.RootPath, _ = flags.GetString("root-repo-path")
	}
	if flags.Changed("fail-fast") {
		opts.FailFast, _ = flags.GetBool("fail-fast")
	}
	if flags.Changed("ignore") {
		opts.Ignore, _ = flags.GetStringArray("ignore")
	}
	if flags.Changed("ignore-separator") {
		opts.IgnoreSeparator, _ = flags.GetString("ignore-separator")
	}
	if flags.Changed("skip-unnormalized-python-package-names") {
		opts.SkipUnnormalizedNames, _ = flags.GetBool("skip-unnormalized-python-package-names")
	}
	if flags.Changed("index") {
		opts.Index, _ = flags.GetString("index")
	}
	if flags.Changed("index-url") {
		opts.IndexOptions.URL, _ = flags.GetString("index-url")
	}
	if flags.Changed("timeout") {
		opts.IndexOptions.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("retries") {
		opts.IndexOptions.Retries, _ = flags.GetInt("retries")
	}
	if flags.Changed("concurrency") {
		opts.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("changelog") {
		opts.Changelog, _ = flags.GetString("changelog")
	}
	return opts
}

func printReport(out io.Writer, report *entities.Report, verbose bool) {
	applied := report.Applied()
	if len(applied) == 0 {
		_, _ = fmt.Fprintln(out, "No dependency updates available.")
	} else {
		_, _ = fmt.Fprintln(out, "Successfully updated the following dependencies:")
		t := table.NewWriter()
		t.SetOutputMirror(out)
		t.AppendHeader(table.Row{"Dependency", "Group", "Current", "→", "New"})
		for _, update := range applied {
			t.AppendRow(table.Row{update.Name(), update.Group, update.CurrentVersion, "→", update.CandidateVersion})
		}
		t.Render()
	}

	skipped := report.Ignored()
	if verbose {
		skipped = append(skipped, report.NoNewer()...)
	}
	skipped = append(skipped, report.Failed()...)
	if len(skipped) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Dependency", "Group", "Decision", "Reason"})
	for _, update := range skipped {
		t.AppendRow(table.Row{update.Name(), update.Group, string(update.Decision), update.Reason})
	}
	t.Render()
}
