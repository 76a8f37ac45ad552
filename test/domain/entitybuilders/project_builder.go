//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/pyci/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// ProjectBuilder helps create test projects with a fluent interface.
type ProjectBuilder struct {
	*testkit.BaseBuilder
	path           string
	name           string
	requiresPython string
	entries        []entities.DependencyEntry
}

// NewProjectBuilder creates a new project builder with sensible defaults.
func NewProjectBuilder() *ProjectBuilder {
	return &ProjectBuilder{
		BaseBuilder:    testkit.NewBaseBuilder(),
		path:           "pyproject.toml",
		name:           "sample",
		requiresPython: ">=3.9",
	}
}

// WithName sets the project name.
func (b *ProjectBuilder) WithName(name string) *ProjectBuilder {
	b.name = name
	return b
}

// WithRequiresPython sets the requires-python value.
func (b *ProjectBuilder) WithRequiresPython(requiresPython string) *ProjectBuilder {
	b.requiresPython = requiresPython
	return b
}

// WithDependency appends an entry to [project] dependencies.
func (b *ProjectBuilder) WithDependency(raw string) *ProjectBuilder {
	b.entries = append(b.entries, entities.DependencyEntry{Group: "dependencies", Raw: raw})
	return b
}

// WithOptionalDependency appends an entry to an optional dependency group.
func (b *ProjectBuilder) WithOptionalDependency(extra, raw string) *ProjectBuilder {
	b.entries = append(b.entries, entities.DependencyEntry{Group: "optional-dependencies." + extra, Raw: raw})
	return b
}

// Build creates the project (satisfies testkit.Builder interface).
func (b *ProjectBuilder) Build() interface{} {
	return b.BuildProject()
}

// BuildProject creates the project with a concrete return type.
func (b *ProjectBuilder) BuildProject() *entities.Project {
	return &entities.Project{
		Path:           b.path,
		Name:           b.name,
		RequiresPython: b.requiresPython,
		Entries:        append([]entities.DependencyEntry(nil), b.entries...),
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *ProjectBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.path = "pyproject.toml"
	b.name = "sample"
	b.requiresPython = ">=3.9"
	b.entries = nil
	return b
}

// Clone creates a deep copy of the ProjectBuilder.
func (b *ProjectBuilder) Clone() testkit.Builder {
	return &ProjectBuilder{
		BaseBuilder:    b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		path:           b.path,
		name:           b.name,
		requiresPython: b.requiresPython,
		entries:        append([]entities.DependencyEntry(nil), b.entries...),
	}
}
