package gitroot

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/rios0rios0/pyci/internal/domain/repositories"
)

// ErrNotRepository is returned when a path is outside any git work tree.
var ErrNotRepository = errors.New("not inside a git repository")

// GitRepository resolves work tree roots with go-git instead of shelling out.
type GitRepository struct{}

// NewGitRepository creates a git repository adapter.
func NewGitRepository() repositories.GitRepository {
	return &GitRepository{}
}

// TopLevel walks up from path until it finds the enclosing work tree.
func (r *GitRepository) TopLevel(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("unable to resolve %s: %w", path, err)
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", fmt.Errorf("%s: %w", abs, ErrNotRepository)
		}
		return "", fmt.Errorf("unable to open the repository at %s: %w", abs, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("unable to read the work tree of %s: %w", abs, err)
	}
	return worktree.Filesystem.Root(), nil
}

// HasUnstagedChanges compares the work tree copy of relPath with the index.
func (r *GitRepository) HasUnstagedChanges(root, relPath string) (bool, error) {
	status, err := r.status(root)
	if err != nil {
		return false, err
	}

	// Status.File would report unknown paths as untracked
	fileStatus, ok := status[cleanRelPath(relPath)]
	if !ok {
		return false, nil
	}
	return fileStatus.Worktree != git.Unmodified, nil
}

// ChangedPaths returns "XY path" lines, sorted by path, for every file under
// relDir whose work tree copy is modified, deleted or untracked.
func (r *GitRepository) ChangedPaths(root, relDir string) ([]string, error) {
	status, err := r.status(root)
	if err != nil {
		return nil, err
	}

	prefix := strings.TrimSuffix(cleanRelPath(relDir), "/") + "/"
	paths := make([]string, 0)
	for path, fileStatus := range status {
		if !strings.HasPrefix(path, prefix) || fileStatus.Worktree == git.Unmodified {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)

	lines := make([]string, 0, len(paths))
	for _, path := range paths {
		fileStatus := status[path]
		lines = append(lines, fmt.Sprintf("%c%c %s", fileStatus.Staging, fileStatus.Worktree, path))
	}
	return lines, nil
}

func (r *GitRepository) status(root string) (git.Status, error) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		return nil, fmt.Errorf("unable to open the repository at %s: %w", root, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("unable to read the work tree of %s: %w", root, err)
	}
	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("unable to read the status of %s: %w", root, err)
	}
	return status, nil
}

func cleanRelPath(path string) string {
	return filepath.ToSlash(strings.TrimPrefix(path, "./"))
}
