package controllers

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/pyci/internal/domain/commands"
	"github.com/rios0rios0/pyci/internal/domain/entities"
)

// SetverController handles the "setver" subcommand.
type SetverController struct {
	command      commands.Setver
	loadSettings entities.SettingsLoader
}

// NewSetverController creates a new SetverController.
func NewSetverController(command commands.Setver, loadSettings entities.SettingsLoader) *SetverController {
	return &SetverController{command: command, loadSettings: loadSettings}
}

// GetBind returns the Cobra command metadata for the setver controller.
func (it *SetverController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "setver",
		Short: "Set the version of a Python package",
		Long: `Set the version of a Python package.

By default __version__ in <package-dir>/__init__.py is rewritten. With
--code-base-update, each "file,pattern,replacement" entry is applied instead;
{package_dir} and {version} are expanded in the file path and the replacement.`,
	}
}

// Execute runs setver.
func (it *SetverController) Execute(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	settings, err := it.loadSettings(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	flags := cmd.Flags()
	opts := commands.SetverOptions{
		RootPath:        settings.UpdateDeps.RootRepoPath,
		PackageDir:      settings.Setver.PackageDir,
		CodeBaseUpdates: settings.Setver.CodeBaseUpdates,
		Separator:       settings.Setver.CodeBaseUpdateSeparator,
	}
	opts.Version, _ = flags.GetString("version")
	opts.Test, _ = flags.GetBool("test")
	opts.FailFast, _ = flags.GetBool("fail-fast")
	if flags.Changed("root-repo-path") {
		opts.RootPath, _ = flags.GetString("root-repo-path")
	}
	if flags.Changed("package-dir") {
		opts.PackageDir, _ = flags.GetString("package-dir")
	}
	if flags.Changed("code-base-update") {
		opts.CodeBaseUpdates, _ = flags.GetStringArray("code-base-update")
	}
	if flags.Changed("code-base-update-separator") {
		opts.Separator, _ = flags.GetString("code-base-update-separator")
	}
	if opts.PackageDir == "" {
		return fmt.Errorf("--package-dir is required")
	}

	result, err := it.command.Execute(context.Background(), opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.Test {
		for _, update := range result.Updates {
			_, _ = fmt.Fprintf(out, "filepath: %s\npattern: %q\nreplacement (input): %s\nreplacement (handled): %s\n",
				update.File, update.Pattern.String(), update.InputReplacement, update.Replacement)
		}
		return nil
	}
	_, _ = fmt.Fprintf(out, "Bumped version for %s to %s.\n", opts.PackageDir, result.Version)
	return nil
}

// AddFlags adds the setver flags to the given Cobra command.
func (it *SetverController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("version", "", "Version to set, SemVer or PEP 440 (a leading 'v' is allowed)")
	cmd.Flags().String("package-dir", "", "Relative path to the package directory, e.g. 'src/my_package'")
	cmd.Flags().String("root-repo-path", ".", "A resolvable path to the root of the repository folder")
	cmd.Flags().StringArray("code-base-update", nil,
		"'file,pattern,replacement' to update instead of __init__.py (repeatable)")
	cmd.Flags().String("code-base-update-separator", entities.DefaultPairSeparator,
		"Separator of the --code-base-update parts")
	cmd.Flags().Bool("test", false, "Print the resolved updates without writing")
	cmd.Flags().Bool("fail-fast", false, "Stop at the first invalid --code-base-update")
	_ = cmd.MarkFlagRequired("version")
}
