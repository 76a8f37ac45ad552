//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/pyci/internal/domain/commands"
)

// StubDocsIndexCommand is a stub implementation of commands.DocsIndex.
type StubDocsIndexCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	Path             string
	LastOpts         commands.DocsIndexOptions
}

var _ commands.DocsIndex = (*StubDocsIndexCommand)(nil)

func (s *StubDocsIndexCommand) Execute(_ context.Context, opts commands.DocsIndexOptions) (string, error) {
	s.ExecuteCallCount++
	s.LastOpts = opts
	return s.Path, s.ExecuteErr
}
