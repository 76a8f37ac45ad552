//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/pyci/internal/domain/commands"
	"github.com/rios0rios0/pyci/internal/domain/entities"
)

// StubUpdateDepsCommand is a stub implementation of commands.UpdateDeps.
type StubUpdateDepsCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	Report           *entities.Report
	LastOpts         commands.UpdateDepsOptions
}

var _ commands.UpdateDeps = (*StubUpdateDepsCommand)(nil)

func (s *StubUpdateDepsCommand) Execute(
	_ context.Context,
	opts commands.UpdateDepsOptions,
) (*entities.Report, error) {
	s.ExecuteCallCount++
	s.LastOpts = opts
	if s.Report == nil {
		return &entities.Report{}, s.ExecuteErr
	}
	return s.Report, s.ExecuteErr
}
