//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/pyci/internal/domain/repositories"
)

// StubGitRepository implements repositories.GitRepository with canned answers.
type StubGitRepository struct {
	// --- TopLevel ---
	Root          string
	TopLevelErr   error
	TopLevelCalls []string

	// --- HasUnstagedChanges ---
	Unstaged      bool
	UnstagedErr   error
	UnstagedPaths []string

	// --- ChangedPaths ---
	Changed     []string
	ChangedErr  error
	ChangedDirs []string
}

var _ repositories.GitRepository = (*StubGitRepository)(nil)

func (s *StubGitRepository) TopLevel(path string) (string, error) {
	s.TopLevelCalls = append(s.TopLevelCalls, path)
	return s.Root, s.TopLevelErr
}

func (s *StubGitRepository) HasUnstagedChanges(_, relPath string) (bool, error) {
	s.UnstagedPaths = append(s.UnstagedPaths, relPath)
	return s.Unstaged, s.UnstagedErr
}

func (s *StubGitRepository) ChangedPaths(_, relDir string) ([]string, error) {
	s.ChangedDirs = append(s.ChangedDirs, relDir)
	return s.Changed, s.ChangedErr
}
