//go:build unit

package commands_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/pyci/internal/domain/commands"
	"github.com/rios0rios0/pyci/test/infrastructure/repositorydoubles"
)

// writeSamplePackage lays out src/<name> with a sub package, a cache folder
// and a folder that is not a Python package.
func writeSamplePackage(t *testing.T, root, name string) {
	t.Helper()
	pkg := filepath.Join(root, "src", name)
	writeFile(t, filepath.Join(pkg, "__init__.py"), "")
	writeFile(t, filepath.Join(pkg, "core.py"), "")
	writeFile(t, filepath.Join(pkg, "README.txt"), "")
	writeFile(t, filepath.Join(pkg, "models", "__init__.py"), "")
	writeFile(t, filepath.Join(pkg, "models", "data.py"), "")
	writeFile(t, filepath.Join(pkg, "__pycache__", "core.py"), "")
	writeFile(t, filepath.Join(pkg, "scripts", "run.py"), "")
}

func TestAPIReferenceCommand_Execute(t *testing.T) {
	t.Parallel()

	t.Run("should write one page per module of a single package", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeSamplePackage(t, root, "pkg")
		command := commands.NewAPIReferenceCommand(&repositorydoubles.StubGitRepository{})

		// when
		result, err := command.Execute(context.Background(), commands.APIReferenceOptions{
			RootPath:    root,
			PackageDirs: []string{"src/pkg"},
		})

		// then
		require.NoError(t, err)
		apiDir := filepath.Join(root, "docs", "api_reference")
		assert.Equal(t, apiDir, result.Directory)
		assert.Equal(t, "title: \"API Reference\"\n", readFile(t, filepath.Join(apiDir, ".pages")))
		assert.Equal(t, "# core\n\n::: pkg.core\n", readFile(t, filepath.Join(apiDir, "core.md")))
		assert.Equal(t, "title: \"models\"\n", readFile(t, filepath.Join(apiDir, "models", ".pages")))
		assert.Equal(t, "# data\n\n::: pkg.models.data\n", readFile(t, filepath.Join(apiDir, "models", "data.md")))
		assert.NoFileExists(t, filepath.Join(apiDir, "__init__.md"))
		assert.NoFileExists(t, filepath.Join(apiDir, ".pages.md"))
		assert.NoDirExists(t, filepath.Join(apiDir, "__pycache__"))
		assert.NoDirExists(t, filepath.Join(apiDir, "scripts"))
		assert.Len(t, result.Written, 4)
	})

	t.Run("should prefix modules with the package path when relative", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeSamplePackage(t, root, "pkg")
		command := commands.NewAPIReferenceCommand(&repositorydoubles.StubGitRepository{})

		// when
		_, err := command.Execute(context.Background(), commands.APIReferenceOptions{
			RootPath:    root,
			PackageDirs: []string{"src/pkg"},
			Relative:    true,
		})

		// then
		require.NoError(t, err)
		apiDir := filepath.Join(root, "docs", "api_reference")
		assert.Equal(t, "# core\n\n::: src.pkg.core\n", readFile(t, filepath.Join(apiDir, "core.md")))
		assert.Equal(t, "# data\n\n::: src.pkg.models.data\n", readFile(t, filepath.Join(apiDir, "models", "data.md")))
	})

	t.Run("should nest pages under each package name when there are several", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeSamplePackage(t, root, "pkg")
		writeSamplePackage(t, root, "other")
		command := commands.NewAPIReferenceCommand(&repositorydoubles.StubGitRepository{})

		// when
		_, err := command.Execute(context.Background(), commands.APIReferenceOptions{
			RootPath:    root,
			PackageDirs: []string{"src/pkg", "src/other"},
		})

		// then
		require.NoError(t, err)
		apiDir := filepath.Join(root, "docs", "api_reference")
		assert.Equal(t, "title: \"pkg\"\n", readFile(t, filepath.Join(apiDir, "pkg", ".pages")))
		assert.Equal(t, "# core\n\n::: pkg.core\n", readFile(t, filepath.Join(apiDir, "pkg", "core.md")))
		assert.Equal(t,
			"# data\n\n::: other.models.data\n",
			readFile(t, filepath.Join(apiDir, "other", "models", "data.md")),
		)
	})

	t.Run("should add full docs and special options to the matching pages", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeSamplePackage(t, root, "pkg")
		command := commands.NewAPIReferenceCommand(&repositorydoubles.StubGitRepository{})

		// when
		_, err := command.Execute(context.Background(), commands.APIReferenceOptions{
			RootPath:        root,
			PackageDirs:     []string{"src/pkg"},
			FullDocsFolders: []string{"models"},
			SpecialOptions:  []string{"core.py,show_bases: false", "models/data.py,members: [Data]"},
		})

		// then
		require.NoError(t, err)
		apiDir := filepath.Join(root, "docs", "api_reference")
		assert.Equal(t,
			"# core\n\n::: pkg.core\n    options:\n      show_bases: false\n",
			readFile(t, filepath.Join(apiDir, "core.md")),
		)
		assert.Equal(t,
			"# data\n\n::: pkg.models.data\n    options:\n      show_if_no_docstring: true\n      members: [Data]\n",
			readFile(t, filepath.Join(apiDir, "models", "data.md")),
		)
	})

	t.Run("should leave unchanged pages alone and remove stale ones on pre-clean", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeSamplePackage(t, root, "pkg")
		command := commands.NewAPIReferenceCommand(&repositorydoubles.StubGitRepository{})
		opts := commands.APIReferenceOptions{RootPath: root, PackageDirs: []string{"src/pkg"}}
		_, err := command.Execute(context.Background(), opts)
		require.NoError(t, err)
		stale := filepath.Join(root, "docs", "api_reference", "removed.md")
		writeFile(t, stale, "# removed\n")

		// when
		second, err := command.Execute(context.Background(), opts)

		// then
		require.NoError(t, err)
		assert.Empty(t, second.Written)
		assert.FileExists(t, stale)

		// when
		opts.PreClean = true
		cleaned, err := command.Execute(context.Background(), opts)

		// then
		require.NoError(t, err)
		assert.Len(t, cleaned.Written, 4)
		assert.NoFileExists(t, stale)
	})

	t.Run("should ask to stage the generated pages in pre-commit mode", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeSamplePackage(t, root, "pkg")
		git := &repositorydoubles.StubGitRepository{
			Root:    root,
			Changed: []string{"?? site/api_reference/core.md"},
		}
		command := commands.NewAPIReferenceCommand(git)

		// when
		_, err := command.Execute(context.Background(), commands.APIReferenceOptions{
			RootPath:    ".",
			PackageDirs: []string{"src/pkg"},
			DocsFolder:  "site",
			PreCommit:   true,
		})

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, commands.ErrAPIReferenceChanged)
		assert.Contains(t, err.Error(), "?? site/api_reference/core.md")
		assert.Contains(t, err.Error(), "git add site/api_reference")
		assert.Equal(t, []string{"."}, git.TopLevelCalls)
		assert.Equal(t, []string{"site/api_reference"}, git.ChangedDirs)
	})

	t.Run("should succeed in pre-commit mode when nothing changed", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeSamplePackage(t, root, "pkg")
		git := &repositorydoubles.StubGitRepository{Root: root}
		command := commands.NewAPIReferenceCommand(git)

		// when
		_, err := command.Execute(context.Background(), commands.APIReferenceOptions{
			RootPath:    root,
			PackageDirs: []string{"src/pkg"},
			PreCommit:   true,
		})

		// then
		require.NoError(t, err)
		assert.Empty(t, git.TopLevelCalls)
		assert.Equal(t, []string{"docs/api_reference"}, git.ChangedDirs)
	})

	t.Run("should reject invalid options", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name     string
			opts     commands.APIReferenceOptions
			expected string
		}{
			{
				name:     "should require a package directory",
				opts:     commands.APIReferenceOptions{},
				expected: "package directory",
			},
			{
				name: "should reject an unwanted folder given as a path",
				opts: commands.APIReferenceOptions{
					PackageDirs:     []string{"src/pkg"},
					UnwantedFolders: []string{"pkg/tests"},
				},
				expected: "must be names",
			},
			{
				name: "should reject a special option without a comma",
				opts: commands.APIReferenceOptions{
					PackageDirs:    []string{"src/pkg"},
					SpecialOptions: []string{"core.py"},
				},
				expected: "exactly one comma",
			},
			{
				name: "should reject a special option with two commas",
				opts: commands.APIReferenceOptions{
					PackageDirs:    []string{"src/pkg"},
					SpecialOptions: []string{"core.py,a,b"},
				},
				expected: "exactly one comma",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				// given
				command := commands.NewAPIReferenceCommand(&repositorydoubles.StubGitRepository{})
				tt.opts.RootPath = t.TempDir()

				// when
				_, err := command.Execute(context.Background(), tt.opts)

				// then
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expected)
			})
		}
	})
}
