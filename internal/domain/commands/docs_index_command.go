package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/pyci/internal/domain/entities"
	domainRepos "github.com/rios0rios0/pyci/internal/domain/repositories"
)

const (
	readmeFileName    = "README.md"
	docsIndexFileName = "index.md"
)

// ErrLandingPageChanged is returned in pre-commit mode when the generated
// landing page differs from what is staged.
var ErrLandingPageChanged = errors.New("the landing page has been updated")

// DocsIndex is the interface for the create-docs-index command.
type DocsIndex interface {
	Execute(ctx context.Context, opts DocsIndexOptions) (string, error)
}

// DocsIndexOptions holds runtime options for create-docs-index.
type DocsIndexOptions struct {
	RootPath             string
	DocsFolder           string
	Replacements         []string
	ReplacementSeparator string
	PreCommit            bool
}

// DocsIndexCommand turns README.md into the documentation landing page.
type DocsIndexCommand struct {
	git domainRepos.GitRepository
}

// NewDocsIndexCommand creates a new DocsIndexCommand.
func NewDocsIndexCommand(git domainRepos.GitRepository) *DocsIndexCommand {
	return &DocsIndexCommand{git: git}
}

// Execute writes <docs>/index.md and returns its path.
func (it *DocsIndexCommand) Execute(_ context.Context, opts DocsIndexOptions) (string, error) {
	docsFolder := opts.DocsFolder
	if docsFolder == "" {
		docsFolder = entities.DefaultDocsFolder
	}
	separator := opts.ReplacementSeparator
	if separator == "" {
		separator = entities.DefaultPairSeparator
	}

	pairs, err := parseReplacements(opts.Replacements, separator)
	if err != nil {
		return "", err
	}
	pairs = append(pairs, [2]string{filepath.Base(docsFolder) + "/", ""})

	root, err := resolveRepositoryRoot(it.git, opts.RootPath, opts.PreCommit)
	if err != nil {
		return "", err
	}

	content, err := os.ReadFile(filepath.Join(root, readmeFileName))
	if err != nil {
		return "", fmt.Errorf("unable to read %s: %w", readmeFileName, err)
	}
	text := string(content)
	for _, pair := range pairs {
		text = strings.ReplaceAll(text, pair[0], pair[1])
	}

	relIndex := filepath.Join(docsFolder, docsIndexFileName)
	indexPath := filepath.Join(root, relIndex)
	if err = os.WriteFile(indexPath, []byte(text), 0o644); err != nil { //nolint:gosec // documentation file
		return "", fmt.Errorf("unable to write %s: %w", indexPath, err)
	}
	logger.Debugf("[docs] Wrote %s", indexPath)

	if !opts.PreCommit {
		return indexPath, nil
	}

	changed, err := it.git.HasUnstagedChanges(root, filepath.ToSlash(relIndex))
	if err != nil {
		return indexPath, err
	}
	if changed {
		return indexPath, fmt.Errorf("%w.\n\nPlease stage it:\n\n  git add %s", ErrLandingPageChanged, filepath.ToSlash(relIndex))
	}
	logger.Info("No changes - your landing page is up-to-date!")
	return indexPath, nil
}

// resolveRepositoryRoot uses the work tree root when a pre-commit hook runs
// from the default path.
func resolveRepositoryRoot(git domainRepos.GitRepository, root string, preCommit bool) (string, error) {
	if root == "" {
		root = "."
	}
	if preCommit && root == "." {
		topLevel, err := git.TopLevel(root)
		if err != nil {
			return "", err
		}
		return topLevel, nil
	}
	return filepath.Abs(root)
}

func parseReplacements(entries []string, separator string) ([][2]string, error) {
	pairs := make([][2]string, 0, len(entries)+1)
	for _, entry := range entries {
		parts := strings.Split(entry, separator)
		if len(parts) != 2 {
			return nil, fmt.Errorf(
				"a replacement must only include an 'old' and 'new' part when split by %q, got %q",
				separator, entry,
			)
		}
		pairs = append(pairs, [2]string{parts[0], parts[1]})
	}
	return pairs, nil
}
