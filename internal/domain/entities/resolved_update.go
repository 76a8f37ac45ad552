package entities

// Decision is the outcome of resolving one dependency entry.
type Decision string

const (
	DecisionApply             Decision = "apply"
	DecisionSkipIgnored       Decision = "skip-ignored"
	DecisionSkipUnparseable   Decision = "skip-unparseable"
	DecisionSkipNoNewer       Decision = "skip-no-newer"
	DecisionSkipUnconstrained Decision = "skip-unconstrained"
)

// ResolvedUpdate is produced once per dependency entry, in file order.
type ResolvedUpdate struct {
	// Dependency is nil when RawLine could not be parsed.
	Dependency       *DependencySpecifier
	RawLine          string
	Group            string
	CurrentVersion   string
	CandidateVersion string
	// Clause is the index of the clause whose version token is replaced.
	Clause   int
	NewToken string
	Decision Decision
	Reason   string
	Err      error
}

// Name returns the dependency name as written, or the raw line for unparseable entries.
func (u ResolvedUpdate) Name() string {
	if u.Dependency == nil {
		return u.RawLine
	}
	return u.Dependency.FullName()
}

// RewriteLine returns the entry with the resolved version in place. Anything
// but an applied update returns RawLine unchanged.
func RewriteLine(update ResolvedUpdate) string {
	if update.Decision != DecisionApply || update.Dependency == nil {
		return update.RawLine
	}
	if update.Clause < 0 || update.Clause >= len(update.Dependency.Clauses) {
		return update.RawLine
	}
	return update.Dependency.WithVersion(update.Clause, update.NewToken)
}

// Replacement returns the old/new pair for the project writer. ok is false
// when the line is unchanged.
func (u ResolvedUpdate) Replacement() (LineReplacement, bool) {
	newLine := RewriteLine(u)
	if newLine == u.RawLine {
		return LineReplacement{}, false
	}
	return LineReplacement{Group: u.Group, Old: u.RawLine, New: newLine}, true
}
