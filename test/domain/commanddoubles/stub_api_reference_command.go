//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/pyci/internal/domain/commands"
)

// StubAPIReferenceCommand is a stub implementation of commands.APIReference.
type StubAPIReferenceCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	Result           *commands.APIReferenceResult
	LastOpts         commands.APIReferenceOptions
}

var _ commands.APIReference = (*StubAPIReferenceCommand)(nil)

func (s *StubAPIReferenceCommand) Execute(
	_ context.Context,
	opts commands.APIReferenceOptions,
) (*commands.APIReferenceResult, error) {
	s.ExecuteCallCount++
	s.LastOpts = opts
	if s.ExecuteErr != nil {
		return nil, s.ExecuteErr
	}
	return s.Result, nil
}
