package repositories

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/pyci/internal/domain/entities"
	domainRepos "github.com/rios0rios0/pyci/internal/domain/repositories"
	gitRepo "github.com/rios0rios0/pyci/internal/infrastructure/repositories/gitroot"
	pipRepo "github.com/rios0rios0/pyci/internal/infrastructure/repositories/pip"
	pypiRepo "github.com/rios0rios0/pyci/internal/infrastructure/repositories/pypi"
	pyprojectRepo "github.com/rios0rios0/pyci/internal/infrastructure/repositories/pyproject"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register index registry with all package index factories
	if err := container.Provide(func() *IndexRegistry {
		reg := NewIndexRegistry()
		reg.Register(entities.IndexPyPI, pypiRepo.NewPyPIIndexRepository)
		reg.Register(entities.IndexPip, pipRepo.NewPipIndexRepository)
		return reg
	}); err != nil {
		return err
	}

	if err := container.Provide(func() domainRepos.ProjectRepository {
		return pyprojectRepo.NewPyProjectRepository()
	}); err != nil {
		return err
	}

	return container.Provide(func() domainRepos.GitRepository {
		return gitRepo.NewGitRepository()
	})
}
