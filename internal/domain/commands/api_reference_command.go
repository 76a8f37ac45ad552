package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/pyci/internal/domain/entities"
	domainRepos "github.com/rios0rios0/pyci/internal/domain/repositories"
)

const (
	apiReferenceDirName = "api_reference"
	pagesFileName       = ".pages"

	fullDocsOptions = "    options:\n      show_if_no_docstring: true\n"
	optionsHeader   = "    options:\n"
)

// ErrAPIReferenceChanged is returned in pre-commit mode when generated API
// reference pages differ from what is staged.
var ErrAPIReferenceChanged = errors.New("the API reference documentation has been updated")

// APIReference is the interface for the create-api-reference-docs command.
type APIReference interface {
	Execute(ctx context.Context, opts APIReferenceOptions) (*APIReferenceResult, error)
}

// APIReferenceOptions holds runtime options for create-api-reference-docs.
type APIReferenceOptions struct {
	RootPath    string
	PackageDirs []string
	DocsFolder  string

	// UnwantedFolders and UnwantedFiles are plain names, never paths.
	UnwantedFolders []string
	UnwantedFiles   []string

	// FullDocsFolders and FullDocsFiles are relative to the package
	// directory and also render members without a docstring.
	FullDocsFolders []string
	FullDocsFiles   []string

	// SpecialOptions are "file,option" pairs appended to the options block
	// of that file's page.
	SpecialOptions []string

	// Relative prefixes module paths with the package path relative to the
	// root instead of the package name.
	Relative  bool
	PreClean  bool
	PreCommit bool
}

// APIReferenceResult lists what a run produced.
type APIReferenceResult struct {
	Directory string
	Written   []string
}

// APIReferenceCommand writes one mkdocstrings page per Python module.
type APIReferenceCommand struct {
	git domainRepos.GitRepository
}

// NewAPIReferenceCommand creates a new APIReferenceCommand.
func NewAPIReferenceCommand(git domainRepos.GitRepository) *APIReferenceCommand {
	return &APIReferenceCommand{git: git}
}

type apiReferenceRun struct {
	opts           APIReferenceOptions
	root           string
	apiDir         string
	specialOptions map[string][]string
	written        []string
}

// Execute generates <docs>/api_reference for every package directory.
func (it *APIReferenceCommand) Execute(_ context.Context, opts APIReferenceOptions) (*APIReferenceResult, error) {
	if len(opts.PackageDirs) == 0 {
		return nil, errors.New("at least one package directory is required")
	}
	if opts.DocsFolder == "" {
		opts.DocsFolder = entities.DefaultDocsFolder
	}
	if opts.UnwantedFolders == nil {
		opts.UnwantedFolders = []string{"__pycache__"}
	}
	if opts.UnwantedFiles == nil {
		opts.UnwantedFiles = []string{initFileName}
	}
	for _, name := range slices.Concat(opts.UnwantedFolders, opts.UnwantedFiles) {
		if strings.Contains(name, "/") {
			return nil, fmt.Errorf("unwanted folders and files must be names, not paths: %q", name)
		}
	}

	specialOptions, err := parseSpecialOptions(opts.SpecialOptions)
	if err != nil {
		return nil, err
	}

	root, err := resolveRepositoryRoot(it.git, opts.RootPath, opts.PreCommit)
	if err != nil {
		return nil, err
	}

	run := &apiReferenceRun{
		opts:           opts,
		root:           root,
		apiDir:         filepath.Join(root, opts.DocsFolder, apiReferenceDirName),
		specialOptions: specialOptions,
	}
	if err = run.generate(); err != nil {
		return nil, err
	}
	result := &APIReferenceResult{Directory: run.apiDir, Written: run.written}

	if !opts.PreCommit {
		return result, nil
	}

	relDir := filepath.ToSlash(filepath.Join(opts.DocsFolder, apiReferenceDirName))
	changed, err := it.git.ChangedPaths(root, relDir)
	if err != nil {
		return result, err
	}
	if len(changed) > 0 {
		return result, fmt.Errorf(
			"%w. The following files have been changed/added/removed:\n\n%s\n\nPlease stage them:\n\n  git add %s",
			ErrAPIReferenceChanged, strings.Join(changed, "\n"), relDir,
		)
	}
	logger.Info("No changes - your API reference documentation is up-to-date!")
	return result, nil
}

func (r *apiReferenceRun) generate() error {
	if r.opts.PreClean {
		logger.Debugf("[docs] Removing %s", r.apiDir)
		if err := os.RemoveAll(r.apiDir); err != nil {
			return fmt.Errorf("unable to remove %s: %w", r.apiDir, err)
		}
	}
	if err := os.MkdirAll(r.apiDir, 0o755); err != nil { //nolint:gosec // documentation folder
		return fmt.Errorf("unable to create %s: %w", r.apiDir, err)
	}
	if err := r.write(filepath.Join(r.apiDir, pagesFileName), pagesTitle("API Reference")); err != nil {
		return err
	}

	for _, packageDir := range r.opts.PackageDirs {
		pkg := packageDir
		if !filepath.IsAbs(pkg) {
			pkg = filepath.Join(r.root, pkg)
		}
		if err := r.walkPackage(filepath.Clean(pkg)); err != nil {
			return err
		}
	}
	return nil
}

func (r *apiReferenceRun) walkPackage(pkg string) error {
	base := pkg
	if len(r.opts.PackageDirs) > 1 {
		base = filepath.Dir(pkg)
	}

	return filepath.WalkDir(pkg, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if path != pkg && slices.Contains(r.opts.UnwantedFolders, entry.Name()) {
			return fs.SkipDir
		}
		if _, statErr := os.Stat(filepath.Join(path, initFileName)); statErr != nil {
			logger.Debugf("[docs] Skipping %s, it is not a Python package", path)
			return nil
		}

		rel, relErr := filepath.Rel(base, path)
		if relErr != nil {
			return fmt.Errorf("unable to resolve %s: %w", path, relErr)
		}
		return r.writePackagePages(pkg, path, filepath.ToSlash(rel))
	})
}

func (r *apiReferenceRun) writePackagePages(pkg, dir, rel string) error {
	docsDir := filepath.Join(r.apiDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(docsDir, 0o755); err != nil { //nolint:gosec // documentation folder
		return fmt.Errorf("unable to create %s: %w", docsDir, err)
	}
	if rel != "." {
		if err := r.write(filepath.Join(docsDir, pagesFileName), pagesTitle(filepath.Base(rel))); err != nil {
			return err
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("unable to read %s: %w", dir, err)
	}
	modulePrefix, err := r.modulePrefix(pkg, rel)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".py") || slices.Contains(r.opts.UnwantedFiles, name) {
			continue
		}
		stem := strings.TrimSuffix(name, ".py")
		relFile := name
		if rel != "." {
			relFile = rel + "/" + name
		}

		page := fmt.Sprintf("# %s\n\n::: %s.%s\n", stem, modulePrefix, stem)
		if slices.Contains(r.opts.FullDocsFiles, relFile) || slices.Contains(r.opts.FullDocsFolders, rel) {
			page += fullDocsOptions
		}
		if options, ok := r.specialOptions[relFile]; ok {
			if !strings.Contains(page, optionsHeader) {
				page += optionsHeader
			}
			page += "      " + strings.Join(options, "\n      ") + "\n"
		}

		if err = r.write(filepath.Join(docsDir, stem+".md"), page); err != nil {
			return err
		}
	}
	return nil
}

// modulePrefix is the dotted import path of the package directory at rel.
func (r *apiReferenceRun) modulePrefix(pkg, rel string) (string, error) {
	prefix := filepath.Base(pkg)
	if r.opts.Relative {
		relPkg, err := filepath.Rel(r.root, pkg)
		if err != nil {
			return "", fmt.Errorf("unable to resolve %s: %w", pkg, err)
		}
		prefix = filepath.ToSlash(relPkg)
	}

	sub := rel
	if len(r.opts.PackageDirs) > 1 {
		// rel starts with the package name when several packages share the tree
		sub = strings.TrimPrefix(strings.TrimPrefix(rel, filepath.Base(pkg)), "/")
		if sub == "" {
			sub = "."
		}
	}
	if sub != "." {
		prefix += "/" + sub
	}
	return strings.ReplaceAll(prefix, "/", "."), nil
}

// write only touches files whose content changed.
func (r *apiReferenceRun) write(path, content string) error {
	current, err := os.ReadFile(path)
	if err == nil && bytes.Equal(current, []byte(content)) {
		return nil
	}
	if err = os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec // documentation file
		return fmt.Errorf("unable to write %s: %w", path, err)
	}
	logger.Debugf("[docs] Wrote %s", path)
	r.written = append(r.written, path)
	return nil
}

func pagesTitle(title string) string {
	return fmt.Sprintf("title: %q\n", title)
}

func parseSpecialOptions(entries []string) (map[string][]string, error) {
	options := make(map[string][]string, len(entries))
	for _, entry := range entries {
		file, option, ok := strings.Cut(entry, ",")
		if !ok || strings.Contains(option, ",") {
			return nil, fmt.Errorf(
				"a special option must include exactly one comma between the file and the option, got %q", entry,
			)
		}
		options[file] = append(options[file], option)
	}
	return options, nil
}
