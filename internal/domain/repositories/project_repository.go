package repositories

import (
	"context"

	"github.com/rios0rios0/pyci/internal/domain/entities"
)

// ProjectRepository reads and rewrites a project's pyproject.toml.
type ProjectRepository interface {
	// Load reads the project found in rootPath.
	Load(ctx context.Context, rootPath string) (*entities.Project, error)

	// Write applies the replacements to the project file. The file is only
	// touched when at least one entry changes; the boolean reports whether it did.
	Write(ctx context.Context, project *entities.Project, replacements []entities.LineReplacement) (bool, error)
}
