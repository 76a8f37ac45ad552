package commands

import (
	"fmt"
	"sort"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/pyci/internal/domain/entities"
	"github.com/rios0rios0/pyci/internal/pep440"
)

// minCompatibleSegments is the shortest release a "~=" clause may carry.
const minCompatibleSegments = 2

// anchorClause returns the index of the clause whose version gets rewritten:
// the first non-wildcard "==", "~=" or ">=" clause, or -1.
func anchorClause(dep *entities.DependencySpecifier) int {
	for i, clause := range dep.Clauses {
		if clause.Wildcard {
			continue
		}
		switch clause.Operator {
		case pep440.OpEqual, pep440.OpCompatible, pep440.OpGreaterEqual:
			return i
		default:
		}
	}
	return -1
}

// ResolveUpdate picks the newest acceptable version for dep out of available
// and decides what happens to the entry. The anchor clause is rewritten;
// every other clause (upper bounds, exclusions) must still hold for the
// candidate and is left untouched.
func ResolveUpdate(
	dep *entities.DependencySpecifier,
	available []string,
	rules entities.IgnoreRules,
) entities.ResolvedUpdate {
	update := entities.ResolvedUpdate{Dependency: dep, RawLine: dep.RawLine, Clause: -1}

	anchor := anchorClause(dep)
	if anchor < 0 {
		update.Decision = entities.DecisionSkipNoNewer
		update.Reason = "no lower bound or pin to update"
		return update
	}
	update.Clause = anchor

	clause := dep.Clauses[anchor]
	current := clause.Specifier().Parsed()
	update.CurrentVersion = clause.Version

	candidates := eligibleCandidates(dep, anchor, current, available)

	var ignoredReason string
	var ignoredCandidate string
	for _, candidate := range candidates {
		if !candidate.GreaterThan(current) {
			break
		}
		if ignored, reason := rules.Evaluate(dep.Name, current, candidate); ignored {
			if ignoredReason == "" {
				ignoredReason, ignoredCandidate = reason, candidate.String()
			}
			continue
		}

		token := newVersionToken(clause.Operator, current, candidate)
		update.CandidateVersion = candidate.String()
		if parsed, err := pep440.Parse(token); err == nil && parsed.Equal(current) {
			update.Decision = entities.DecisionSkipNoNewer
			update.Reason = fmt.Sprintf("%s%s already allows %s", clause.Operator, clause.Version, candidate)
			return update
		}

		update.NewToken = token
		update.Decision = entities.DecisionApply
		update.Reason = fmt.Sprintf("updated %s%s to %s%s", clause.Operator, clause.Version, clause.Operator, token)
		return update
	}

	if ignoredReason != "" {
		update.CandidateVersion = ignoredCandidate
		update.Decision = entities.DecisionSkipIgnored
		update.Reason = ignoredReason
		return update
	}

	update.Decision = entities.DecisionSkipNoNewer
	update.Reason = "already uses the latest version"
	return update
}

// eligibleCandidates parses available, drops invalid versions, pre-releases
// (unless current is one) and anything outside the non-anchor clauses, and
// returns the rest newest first.
func eligibleCandidates(
	dep *entities.DependencySpecifier,
	anchor int,
	current pep440.Version,
	available []string,
) []pep440.Version {
	constraints := make([]pep440.Specifier, 0, len(dep.Clauses))
	for i, clause := range dep.Clauses {
		if i == anchor {
			continue
		}
		spec := clause.Specifier()
		if spec.Operator == pep440.OpCompatible {
			// A second "~=" only contributes its floor.
			spec = pep440.MustParseSpecifier(">=" + clause.Version)
		}
		constraints = append(constraints, spec)
	}

	allowPre := current.IsPreRelease()
	candidates := make([]pep440.Version, 0, len(available))
	for _, raw := range available {
		v, err := pep440.Parse(raw)
		if err != nil {
			logger.Debugf("[update-deps] %v", &entities.VersionComparisonError{Package: dep.Name, Version: raw, Err: err})
			continue
		}
		if v.IsPreRelease() && !allowPre {
			continue
		}
		if !satisfiesAll(constraints, v) {
			continue
		}
		candidates = append(candidates, v)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].GreaterThan(candidates[j])
	})
	return candidates
}

func satisfiesAll(specs []pep440.Specifier, v pep440.Version) bool {
	for _, spec := range specs {
		if !spec.Contains(v) {
			return false
		}
	}
	return true
}

// newVersionToken renders the replacement version. "~=" keeps the number of
// release segments it was written with so the compatible range stays the same shape.
func newVersionToken(op pep440.Operator, current, candidate pep440.Version) string {
	if op == pep440.OpCompatible {
		return candidate.ReleaseString(max(len(current.Release), minCompatibleSegments))
	}
	return candidate.String()
}
