package controllers

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/pyci/internal/domain/commands"
	"github.com/rios0rios0/pyci/internal/domain/entities"
)

// DocsIndexController handles the "create-docs-index" subcommand.
type DocsIndexController struct {
	command      commands.DocsIndex
	loadSettings entities.SettingsLoader
}

// NewDocsIndexController creates a new DocsIndexController.
func NewDocsIndexController(command commands.DocsIndex, loadSettings entities.SettingsLoader) *DocsIndexController {
	return &DocsIndexController{command: command, loadSettings: loadSettings}
}

// GetBind returns the Cobra command metadata for the docs index controller.
func (it *DocsIndexController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "create-docs-index",
		Short: "Create the documentation landing page from README.md",
	}
}

// Execute runs create-docs-index.
func (it *DocsIndexController) Execute(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	settings, err := it.loadSettings(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	opts := commands.DocsIndexOptions{
		RootPath:             ".",
		DocsFolder:           settings.DocsIndex.DocsFolder,
		Replacements:         settings.DocsIndex.Replacements,
		ReplacementSeparator: settings.DocsIndex.ReplacementSeparator,
	}
	opts.PreCommit, _ = flags.GetBool("pre-commit")
	if flags.Changed("root-repo-path") {
		opts.RootPath, _ = flags.GetString("root-repo-path")
	}
	if flags.Changed("docs-folder") {
		opts.DocsFolder, _ = flags.GetString("docs-folder")
	}
	if flags.Changed("replacement") {
		opts.Replacements, _ = flags.GetStringArray("replacement")
	}
	if flags.Changed("replacement-separator") {
		opts.ReplacementSeparator, _ = flags.GetString("replacement-separator")
	}

	path, err := it.command.Execute(context.Background(), opts)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

// AddFlags adds the create-docs-index flags to the given Cobra command.
func (it *DocsIndexController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("pre-commit", false, "Run as a pre-commit hook and fail when the landing page changed")
	cmd.Flags().String("root-repo-path", ".", "A resolvable path to the root of the repository folder")
	cmd.Flags().String("docs-folder", entities.DefaultDocsFolder, "The folder name for the documentation root")
	cmd.Flags().StringArray("replacement", nil,
		"'old,new' string replacement applied to README.md (repeatable)")
	cmd.Flags().String("replacement-separator", entities.DefaultPairSeparator,
		"Separator of the --replacement parts")
}
