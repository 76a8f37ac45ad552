package gitroot_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/pyci/internal/infrastructure/repositories/gitroot"
)

func TestGitRepository_TopLevel(t *testing.T) {
	t.Parallel()

	t.Run("should return the work tree root from a nested directory", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		_, err := git.PlainInit(root, false)
		require.NoError(t, err)
		nested := filepath.Join(root, "src", "pkg")
		require.NoError(t, os.MkdirAll(nested, 0o755))
		repo := gitroot.NewGitRepository()

		// when
		topLevel, err := repo.TopLevel(nested)

		// then
		require.NoError(t, err)
		expected, err := filepath.EvalSymlinks(root)
		require.NoError(t, err)
		actual, err := filepath.EvalSymlinks(topLevel)
		require.NoError(t, err)
		assert.Equal(t, expected, actual)
	})

	t.Run("should fail outside a repository", func(t *testing.T) {
		t.Parallel()

		// given
		repo := gitroot.NewGitRepository()

		// when
		_, err := repo.TopLevel(t.TempDir())

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, gitroot.ErrNotRepository)
	})
}

func TestGitRepository_HasUnstagedChanges(t *testing.T) {
	t.Parallel()

	t.Run("should report untracked and modified files", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		gitRepo, err := git.PlainInit(root, false)
		require.NoError(t, err)
		require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "index.md"), []byte("# a\n"), 0o644))
		repo := gitroot.NewGitRepository()

		// when
		untracked, err := repo.HasUnstagedChanges(root, "docs/index.md")

		// then
		require.NoError(t, err)
		assert.True(t, untracked)

		// given
		worktree, err := gitRepo.Worktree()
		require.NoError(t, err)
		_, err = worktree.Add("docs/index.md")
		require.NoError(t, err)

		// when
		staged, err := repo.HasUnstagedChanges(root, "docs/index.md")

		// then
		require.NoError(t, err)
		assert.False(t, staged)

		// given
		require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "index.md"), []byte("# b\n"), 0o644))

		// when
		modified, err := repo.HasUnstagedChanges(root, "docs/index.md")

		// then
		require.NoError(t, err)
		assert.True(t, modified)
	})
}

func TestGitRepository_ChangedPaths(t *testing.T) {
	t.Parallel()

	t.Run("should list untracked and modified files below the directory only", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		gitRepo, err := git.PlainInit(root, false)
		require.NoError(t, err)
		apiDir := filepath.Join(root, "docs", "api_reference")
		require.NoError(t, os.MkdirAll(apiDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(apiDir, "core.md"), []byte("# core\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(apiDir, "util.md"), []byte("# util\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "index.md"), []byte("# a\n"), 0o644))
		worktree, err := gitRepo.Worktree()
		require.NoError(t, err)
		_, err = worktree.Add("docs/api_reference/core.md")
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(apiDir, "core.md"), []byte("# core v2\n"), 0o644))
		repo := gitroot.NewGitRepository()

		// when
		changed, err := repo.ChangedPaths(root, "docs/api_reference")

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{
			"AM docs/api_reference/core.md",
			"?? docs/api_reference/util.md",
		}, changed)
	})

	t.Run("should return nothing once every file is staged", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		gitRepo, err := git.PlainInit(root, false)
		require.NoError(t, err)
		apiDir := filepath.Join(root, "docs", "api_reference")
		require.NoError(t, os.MkdirAll(apiDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(apiDir, "core.md"), []byte("# core\n"), 0o644))
		worktree, err := gitRepo.Worktree()
		require.NoError(t, err)
		_, err = worktree.Add("docs/api_reference/core.md")
		require.NoError(t, err)
		repo := gitroot.NewGitRepository()

		// when
		changed, err := repo.ChangedPaths(root, "./docs/api_reference/")

		// then
		require.NoError(t, err)
		assert.Empty(t, changed)
	})
}
