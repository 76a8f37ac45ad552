package entities_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/pyci/internal/domain/entities"
)

func sampleReport(t *testing.T) *entities.Report {
	t.Helper()
	numpy, err := entities.ParseDependency("numpy>=1.20")
	require.NoError(t, err)
	requests, err := entities.ParseDependency("requests==2.28.0")
	require.NoError(t, err)
	attrs, err := entities.ParseDependency("attrs")
	require.NoError(t, err)

	return &entities.Report{
		Updates: []entities.ResolvedUpdate{
			{
				Dependency: numpy, RawLine: "numpy>=1.20", Group: "dependencies",
				CurrentVersion: "1.20", CandidateVersion: "1.26.4", NewToken: "1.26.4",
				Decision: entities.DecisionApply,
			},
			{Dependency: requests, RawLine: "requests==2.28.0", Decision: entities.DecisionSkipIgnored},
			{Dependency: attrs, RawLine: "attrs", Decision: entities.DecisionSkipUnconstrained},
			{RawLine: "not a dependency", Decision: entities.DecisionSkipUnparseable},
		},
	}
}

func TestReport(t *testing.T) {
	t.Parallel()

	t.Run("should split updates by decision", func(t *testing.T) {
		t.Parallel()

		// given
		report := sampleReport(t)

		// when
		applied, ignored, noNewer, failed := report.Applied(), report.Ignored(), report.NoNewer(), report.Failed()

		// then
		require.Len(t, applied, 1)
		assert.Equal(t, "numpy", applied[0].Name())
		require.Len(t, ignored, 1)
		assert.Equal(t, "requests", ignored[0].Name())
		require.Len(t, noNewer, 1)
		assert.Equal(t, "attrs", noNewer[0].Name())
		require.Len(t, failed, 1)
		assert.Equal(t, "not a dependency", failed[0].Name())
	})

	t.Run("should not fail on dropped ignore rules alone", func(t *testing.T) {
		t.Parallel()

		// given
		report := sampleReport(t)
		report.IgnoreErrors = []error{errors.New("bad rule")}

		// when
		err := report.Err()

		// then
		assert.False(t, report.HasErrors())
		assert.NoError(t, err)
	})

	t.Run("should join parse and lookup errors", func(t *testing.T) {
		t.Parallel()

		// given
		report := sampleReport(t)
		report.ParseErrors = []error{&entities.ParseError{Line: "not a dependency", Reason: "no name"}}
		report.LookupErrors = []error{&entities.LookupError{Package: "numpy", Index: "pypi", Err: errors.New("timeout")}}

		// when
		err := report.Err()

		// then
		require.Error(t, err)
		assert.True(t, report.HasErrors())
		assert.ErrorIs(t, err, entities.ErrParse)
		assert.ErrorIs(t, err, entities.ErrLookup)
		assert.Contains(t, err.Error(), "timeout")
	})

	t.Run("should produce one changelog entry per applied update", func(t *testing.T) {
		t.Parallel()

		// given
		report := sampleReport(t)

		// when
		entries := report.ChangelogEntries()

		// then
		assert.Equal(t, []string{"- changed the `numpy` dependency from `1.20` to `1.26.4`"}, entries)
	})
}

func TestResolvedUpdate_Replacement(t *testing.T) {
	t.Parallel()

	t.Run("should build the old and new line of an applied update", func(t *testing.T) {
		t.Parallel()

		// given
		update := sampleReport(t).Updates[0]

		// when
		replacement, ok := update.Replacement()

		// then
		require.True(t, ok)
		assert.Equal(t, entities.LineReplacement{Group: "dependencies", Old: "numpy>=1.20", New: "numpy>=1.26.4"}, replacement)
	})

	t.Run("should skip updates that were not applied", func(t *testing.T) {
		t.Parallel()

		// given
		update := sampleReport(t).Updates[1]

		// when
		_, ok := update.Replacement()

		// then
		assert.False(t, ok)
	})
}
