//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/pyci/internal/domain/commands"
)

// StubSetverCommand is a stub implementation of commands.Setver.
type StubSetverCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	Result           *commands.SetverResult
	LastOpts         commands.SetverOptions
}

var _ commands.Setver = (*StubSetverCommand)(nil)

func (s *StubSetverCommand) Execute(_ context.Context, opts commands.SetverOptions) (*commands.SetverResult, error) {
	s.ExecuteCallCount++
	s.LastOpts = opts
	if s.Result == nil {
		return &commands.SetverResult{Version: opts.Version}, s.ExecuteErr
	}
	return s.Result, s.ExecuteErr
}
