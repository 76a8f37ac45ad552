//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/pyci/internal/domain/entities"
	"github.com/rios0rios0/pyci/internal/domain/repositories"
)

// InMemoryProjectRepository implements repositories.ProjectRepository over a
// Project value, applying writes to its entries.
type InMemoryProjectRepository struct {
	Project *entities.Project

	// --- Load ---
	LoadErr     error
	LoadedRoots []string

	// --- Write ---
	WriteErr error
	Writes   [][]entities.LineReplacement
}

var _ repositories.ProjectRepository = (*InMemoryProjectRepository)(nil)

func (r *InMemoryProjectRepository) Load(_ context.Context, rootPath string) (*entities.Project, error) {
	r.LoadedRoots = append(r.LoadedRoots, rootPath)
	if r.LoadErr != nil {
		return nil, r.LoadErr
	}
	return r.Project, nil
}

func (r *InMemoryProjectRepository) Write(
	_ context.Context, project *entities.Project, replacements []entities.LineReplacement,
) (bool, error) {
	r.Writes = append(r.Writes, replacements)
	if r.WriteErr != nil {
		return false, r.WriteErr
	}

	changed := false
	for i, entry := range project.Entries {
		for _, replacement := range replacements {
			if entry.Group == replacement.Group && entry.Raw == replacement.Old && replacement.New != entry.Raw {
				project.Entries[i].Raw = replacement.New
				changed = true
				break
			}
		}
	}
	return changed, nil
}

// Raws returns the current raw entries in order.
func (r *InMemoryProjectRepository) Raws() []string {
	raws := make([]string, 0, len(r.Project.Entries))
	for _, entry := range r.Project.Entries {
		raws = append(raws, entry.Raw)
	}
	return raws
}
