//go:build unit

package commands_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/pyci/internal/domain/commands"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestSetverCommand_Execute(t *testing.T) {
	t.Parallel()

	t.Run("should rewrite __version__ in the package init file", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		initFile := filepath.Join(root, "src", "pkg", "__init__.py")
		writeFile(t, initFile, "\"\"\"Package.\"\"\"\n__version__ = '0.1.0'   \n")
		command := commands.NewSetverCommand()

		// when
		result, err := command.Execute(context.Background(), commands.SetverOptions{
			RootPath:   root,
			PackageDir: "src/pkg",
			Version:    "v1.2.3",
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, "1.2.3", result.Version)
		assert.Equal(t, []string{initFile}, result.Written)
		assert.Equal(t, "\"\"\"Package.\"\"\"\n__version__ = \"1.2.3\"\n", readFile(t, initFile))
	})

	t.Run("should fail when the init file is missing", func(t *testing.T) {
		t.Parallel()

		// given
		command := commands.NewSetverCommand()

		// when
		_, err := command.Execute(context.Background(), commands.SetverOptions{
			RootPath:   t.TempDir(),
			PackageDir: "pkg",
			Version:    "1.0.0",
		})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "__init__.py")
	})

	t.Run("should apply code base updates with placeholders", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "pkg", "version.py"), "VERSION = \"0.0.1\"\n")
		writeFile(t, filepath.Join(root, "docs", "install.md"), "pip install pkg==0.0.1  \n")
		command := commands.NewSetverCommand()

		// when
		_, err := command.Execute(context.Background(), commands.SetverOptions{
			RootPath:   root,
			PackageDir: "pkg",
			Version:    "2.0.0",
			CodeBaseUpdates: []string{
				`{package_dir}/version.py,VERSION = ".*",VERSION = "{version}"`,
				`docs/install.md,pkg==[0-9.]+,pkg=={version}`,
			},
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, "VERSION = \"2.0.0\"\n", readFile(t, filepath.Join(root, "pkg", "version.py")))
		assert.Equal(t, "pip install pkg==2.0.0  \n", readFile(t, filepath.Join(root, "docs", "install.md")))
	})

	t.Run("should write nothing when one code base update is invalid", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		versionFile := filepath.Join(root, "pkg", "version.py")
		writeFile(t, versionFile, "VERSION = \"0.0.1\"\n")
		command := commands.NewSetverCommand()

		// when
		_, err := command.Execute(context.Background(), commands.SetverOptions{
			RootPath:   root,
			PackageDir: "pkg",
			Version:    "2.0.0",
			CodeBaseUpdates: []string{
				`pkg/version.py,VERSION = ".*",VERSION = "{version}"`,
				`missing.py,x,y`,
				`only,two`,
			},
		})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing.py")
		assert.Contains(t, err.Error(), "only,two")
		assert.Equal(t, "VERSION = \"0.0.1\"\n", readFile(t, versionFile))
	})

	t.Run("should stop at the first invalid entry under fail-fast", func(t *testing.T) {
		t.Parallel()

		// given
		command := commands.NewSetverCommand()

		// when
		_, err := command.Execute(context.Background(), commands.SetverOptions{
			RootPath:        t.TempDir(),
			PackageDir:      "pkg",
			Version:         "2.0.0",
			CodeBaseUpdates: []string{`missing.py,x,y`, `only,two`},
			FailFast:        true,
		})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing.py")
		assert.NotContains(t, err.Error(), "only,two")
	})

	t.Run("should resolve updates without writing in test mode", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		initFile := filepath.Join(root, "pkg", "__init__.py")
		writeFile(t, initFile, "__version__ = \"0.1.0\"\n")
		command := commands.NewSetverCommand()

		// when
		result, err := command.Execute(context.Background(), commands.SetverOptions{
			RootPath:   root,
			PackageDir: "pkg",
			Version:    "0.2.0",
			Test:       true,
		})

		// then
		require.NoError(t, err)
		require.Len(t, result.Updates, 1)
		assert.Equal(t, `__version__ = "0.2.0"`, result.Updates[0].Replacement)
		assert.Empty(t, result.Written)
		assert.Equal(t, "__version__ = \"0.1.0\"\n", readFile(t, initFile))
	})

	t.Run("should reject a version that is neither SemVer nor PEP 440", func(t *testing.T) {
		t.Parallel()

		// given
		command := commands.NewSetverCommand()

		// when
		_, err := command.Execute(context.Background(), commands.SetverOptions{
			RootPath:   t.TempDir(),
			PackageDir: "pkg",
			Version:    "one.two",
		})

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, commands.ErrInvalidPackageVersion)
	})
}

func TestNormalizeReleaseVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "should keep a SemVer version", input: "1.2.3-rc.1+build.5", expected: "1.2.3-rc.1+build.5"},
		{name: "should strip a leading v", input: "v0.4.0", expected: "0.4.0"},
		{name: "should pad a short PEP 440 version", input: "1.2", expected: "1.2.0"},
		{name: "should keep PEP 440 suffixes", input: "1.2rc1", expected: "1.2.0rc1"},
		{name: "should keep the epoch", input: "1!2.0.post3", expected: "1!2.0.0.post3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// given
			input := tt.input

			// when
			version, err := commands.NormalizeReleaseVersion(input)

			// then
			require.NoError(t, err)
			assert.Equal(t, tt.expected, version)
		})
	}
}
