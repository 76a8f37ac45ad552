//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"
	"sync"

	"github.com/rios0rios0/pyci/internal/domain/repositories"
)

// StubIndexRepository implements repositories.IndexRepository from fixed
// version lists. It is safe for concurrent use.
type StubIndexRepository struct {
	// --- identity ---
	IndexName string

	// --- AvailableVersions ---
	Versions map[string][]string
	Errs     map[string]error

	mu    sync.Mutex
	calls []IndexCall
}

// IndexCall records a single invocation of AvailableVersions.
type IndexCall struct {
	Name          string
	PythonVersion string
}

var _ repositories.IndexRepository = (*StubIndexRepository)(nil)

func (s *StubIndexRepository) Name() string {
	if s.IndexName == "" {
		return "stub"
	}
	return s.IndexName
}

func (s *StubIndexRepository) AvailableVersions(
	_ context.Context, name, pythonVersion string,
) ([]string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, IndexCall{Name: name, PythonVersion: pythonVersion})
	s.mu.Unlock()

	if err, ok := s.Errs[name]; ok {
		return nil, err
	}
	versions, ok := s.Versions[name]
	if !ok {
		return nil, fmt.Errorf("package %q not found", name)
	}
	return versions, nil
}

// Calls returns a copy of the recorded invocations.
func (s *StubIndexRepository) Calls() []IndexCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]IndexCall(nil), s.calls...)
}
