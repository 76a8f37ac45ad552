package controllers

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/pyci/internal/domain/commands"
	"github.com/rios0rios0/pyci/internal/domain/entities"
)

// APIReferenceController handles the "create-api-reference-docs" subcommand.
type APIReferenceController struct {
	command      commands.APIReference
	loadSettings entities.SettingsLoader
}

// NewAPIReferenceController creates a new APIReferenceController.
func NewAPIReferenceController(
	command commands.APIReference,
	loadSettings entities.SettingsLoader,
) *APIReferenceController {
	return &APIReferenceController{command: command, loadSettings: loadSettings}
}

// GetBind returns the Cobra command metadata for the API reference controller.
func (it *APIReferenceController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "create-api-reference-docs",
		Short: "Create mkdocstrings API reference pages for Python packages",
	}
}

// Execute runs create-api-reference-docs.
func (it *APIReferenceController) Execute(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	settings, err := it.loadSettings(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	section := settings.APIReference
	flags := cmd.Flags()
	opts := commands.APIReferenceOptions{
		RootPath:        ".",
		PackageDirs:     section.PackageDirs,
		DocsFolder:      section.DocsFolder,
		UnwantedFolders: section.UnwantedFolders,
		UnwantedFiles:   section.UnwantedFiles,
		FullDocsFolders: section.FullDocsFolders,
		FullDocsFiles:   section.FullDocsFiles,
		SpecialOptions:  section.SpecialOptions,
		Relative:        section.Relative,
	}
	opts.PreClean, _ = flags.GetBool("pre-clean")
	opts.PreCommit, _ = flags.GetBool("pre-commit")
	if flags.Changed("relative") {
		opts.Relative, _ = flags.GetBool("relative")
	}
	if flags.Changed("root-repo-path") {
		opts.RootPath, _ = flags.GetString("root-repo-path")
	}
	if flags.Changed("docs-folder") {
		opts.DocsFolder, _ = flags.GetString("docs-folder")
	}
	for flag, target := range map[string]*[]string{
		"package-dir":      &opts.PackageDirs,
		"unwanted-folder":  &opts.UnwantedFolders,
		"unwanted-file":    &opts.UnwantedFiles,
		"full-docs-folder": &opts.FullDocsFolders,
		"full-docs-file":   &opts.FullDocsFiles,
		"special-option":   &opts.SpecialOptions,
	} {
		if flags.Changed(flag) {
			*target, _ = flags.GetStringArray(flag)
		}
	}

	result, err := it.command.Execute(context.Background(), opts)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d page(s) under %s\n", len(result.Written), result.Directory)
	return nil
}

// AddFlags adds the create-api-reference-docs flags to the given Cobra command.
func (it *APIReferenceController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("package-dir", nil, "Path to a Python package to document (repeatable)")
	cmd.Flags().Bool("pre-clean", false, "Remove the api_reference folder before generating")
	cmd.Flags().Bool("pre-commit", false, "Run as a pre-commit hook and fail when pages changed")
	cmd.Flags().String("root-repo-path", ".", "A resolvable path to the root of the repository folder")
	cmd.Flags().String("docs-folder", entities.DefaultDocsFolder, "The folder name for the documentation root")
	cmd.Flags().StringArray("unwanted-folder", nil, "Folder name to skip, defaults to __pycache__ (repeatable)")
	cmd.Flags().StringArray("unwanted-file", nil, "File name to skip, defaults to __init__.py (repeatable)")
	cmd.Flags().StringArray("full-docs-folder", nil,
		"Package-relative folder whose pages show members without docstrings (repeatable)")
	cmd.Flags().StringArray("full-docs-file", nil,
		"Package-relative file whose page shows members without docstrings (repeatable)")
	cmd.Flags().StringArray("special-option", nil, "'file,option' mkdocstrings option for one page (repeatable)")
	cmd.Flags().Bool("relative", false, "Prefix module paths with the package path relative to the root")
}
