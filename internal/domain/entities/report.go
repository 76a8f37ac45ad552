package entities

import (
	"errors"
	"fmt"
)

// Report summarises one update-deps run.
type Report struct {
	ProjectPath   string
	PythonVersion string
	Updates       []ResolvedUpdate
	ParseErrors   []error
	IgnoreErrors  []error
	LookupErrors  []error
	Changed       bool
}

func (r *Report) filter(decisions ...Decision) []ResolvedUpdate {
	var out []ResolvedUpdate
	for _, update := range r.Updates {
		for _, decision := range decisions {
			if update.Decision == decision {
				out = append(out, update)
				break
			}
		}
	}
	return out
}

// Applied returns the updates written to the project file.
func (r *Report) Applied() []ResolvedUpdate { return r.filter(DecisionApply) }

// Ignored returns the updates suppressed by ignore rules.
func (r *Report) Ignored() []ResolvedUpdate { return r.filter(DecisionSkipIgnored) }

// NoNewer returns the entries that are already up to date or need no update.
func (r *Report) NoNewer() []ResolvedUpdate {
	return r.filter(DecisionSkipNoNewer, DecisionSkipUnconstrained)
}

// Failed returns the entries that could not be parsed or looked up.
func (r *Report) Failed() []ResolvedUpdate { return r.filter(DecisionSkipUnparseable) }

// HasErrors reports whether any parse or lookup error was recorded.
// Dropped ignore rules do not fail a run.
func (r *Report) HasErrors() bool {
	return len(r.ParseErrors) > 0 || len(r.LookupErrors) > 0
}

// Err joins every recorded parse and lookup error.
func (r *Report) Err() error {
	if !r.HasErrors() {
		return nil
	}
	all := append(append([]error{}, r.ParseErrors...), r.LookupErrors...)
	return fmt.Errorf("errors occurred: %w", errors.Join(all...))
}

// ChangelogEntries returns one changelog bullet per applied update.
func (r *Report) ChangelogEntries() []string {
	applied := r.Applied()
	entries := make([]string, 0, len(applied))
	for _, update := range applied {
		entries = append(entries, fmt.Sprintf(
			"- changed the `%s` dependency from `%s` to `%s`",
			update.Dependency.Name, update.CurrentVersion, update.CandidateVersion,
		))
	}
	return entries
}
