package entities

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rios0rios0/pyci/internal/pep440"
)

const (
	// DefaultIgnoreSeparator separates key/value pairs inside one ignore entry.
	DefaultIgnoreSeparator = "..."

	ignoreKeyDependencyName = "dependency-name"
	ignoreKeyVersions       = "versions"
	ignoreKeyUpdateTypes    = "update-types"

	maxIgnorePairs    = 3
	updateTypesPrefix = "version-update:semver-"
)

// UpdateType classifies a version bump by the first release segment that changed.
type UpdateType string

const (
	UpdateMajor UpdateType = "major"
	UpdateMinor UpdateType = "minor"
	UpdatePatch UpdateType = "patch"
)

var ignorePairPattern = regexp.MustCompile(`^(dependency-name|versions|update-types)=(.*)$`)

// IgnoreRule suppresses updates of dependencies whose normalized name matches
// NamePattern. A rule with neither Versions nor UpdateTypes matches on name alone.
type IgnoreRule struct {
	NamePattern string
	Versions    pep440.SpecifierSet
	UpdateTypes []UpdateType
	Entry       string

	matcher *regexp.Regexp
}

// ParseIgnoreRule parses "dependency-name=X...versions=>=2...update-types=version-update:semver-major".
func ParseIgnoreRule(entry, separator string) (IgnoreRule, error) {
	if separator == "" {
		separator = DefaultIgnoreSeparator
	}
	fail := func(reason string, err error) (IgnoreRule, error) {
		return IgnoreRule{}, &IgnoreRuleParseError{Entry: entry, Reason: reason, Err: err}
	}

	pairs := strings.SplitN(entry, separator, maxIgnorePairs)
	if strings.Contains(pairs[len(pairs)-1], separator) {
		return fail("more than three key/value-pairs were given, while there are only three allowed key names", nil)
	}

	values := map[string]string{}
	for _, pair := range pairs {
		match := ignorePairPattern.FindStringSubmatch(strings.TrimSpace(pair))
		if match == nil {
			return fail(fmt.Sprintf("could not parse ignore configuration %q", pair), nil)
		}
		if _, seen := values[match[1]]; seen {
			return fail(fmt.Sprintf("the configuration key %q was found multiple times", match[1]), nil)
		}
		values[match[1]] = strings.TrimSpace(match[2])
	}

	rule := IgnoreRule{Entry: entry, NamePattern: values[ignoreKeyDependencyName]}
	if rule.NamePattern == "" {
		return fail("missing required 'dependency-name' configuration", nil)
	}
	rule.matcher = compileNamePattern(rule.NamePattern)

	if raw, ok := values[ignoreKeyVersions]; ok {
		set, err := pep440.ParseSpecifierSet(raw)
		if err != nil || len(set) == 0 {
			return fail("'versions' must be an operator followed by a version number", err)
		}
		rule.Versions = set
	}

	if raw, ok := values[ignoreKeyUpdateTypes]; ok {
		for _, item := range strings.Split(raw, ",") {
			updateType, err := parseUpdateType(strings.TrimSpace(item))
			if err != nil {
				return fail(err.Error(), nil)
			}
			rule.UpdateTypes = append(rule.UpdateTypes, updateType)
		}
	}

	return rule, nil
}

func parseUpdateType(raw string) (UpdateType, error) {
	if !strings.HasPrefix(raw, updateTypesPrefix) {
		return "", fmt.Errorf(
			"'update-types' must be one of 'version-update:semver-major', "+
				"'version-update:semver-minor' or 'version-update:semver-patch', got %q", raw,
		)
	}
	switch updateType := UpdateType(strings.TrimPrefix(raw, updateTypesPrefix)); updateType {
	case UpdateMajor, UpdateMinor, UpdatePatch:
		return updateType, nil
	default:
		return "", fmt.Errorf("unknown update type %q", raw)
	}
}

// compileNamePattern turns a dependency-name glob into a regexp. "*" is the
// only wildcard; the rest is compared in normalized form.
func compileNamePattern(pattern string) *regexp.Regexp {
	pieces := strings.Split(pattern, "*")
	for i, piece := range pieces {
		if piece != "" {
			piece = pep440.NormalizeName(piece)
		}
		pieces[i] = regexp.QuoteMeta(piece)
	}
	return regexp.MustCompile("^" + strings.Join(pieces, ".*") + "$")
}

// MatchesName reports whether the rule applies to the given package name.
func (r IgnoreRule) MatchesName(name string) bool {
	matcher := r.matcher
	if matcher == nil {
		matcher = compileNamePattern(r.NamePattern)
	}
	return matcher.MatchString(pep440.NormalizeName(name))
}

// Suppresses reports whether the rule ignores the update current -> candidate.
// Versions and UpdateTypes must both hold when both are set.
func (r IgnoreRule) Suppresses(name string, current, candidate pep440.Version) (bool, string) {
	if !r.MatchesName(name) {
		return false, ""
	}
	if len(r.Versions) == 0 && len(r.UpdateTypes) == 0 {
		return true, fmt.Sprintf("all updates of %q are ignored", r.NamePattern)
	}

	var reasons []string
	if len(r.Versions) > 0 {
		if !r.Versions.Contains(candidate) {
			return false, ""
		}
		reasons = append(reasons, fmt.Sprintf("%s is in ignored versions %q", candidate, r.Versions.String()))
	}
	if len(r.UpdateTypes) > 0 {
		updateType, changed := ClassifyUpdate(current, candidate)
		if !changed || !r.hasUpdateType(updateType) {
			return false, ""
		}
		reasons = append(reasons, fmt.Sprintf("semver-%s updates are ignored", updateType))
	}

	return true, fmt.Sprintf("rule %q: %s", r.NamePattern, strings.Join(reasons, " and "))
}

func (r IgnoreRule) hasUpdateType(updateType UpdateType) bool {
	for _, t := range r.UpdateTypes {
		if t == updateType {
			return true
		}
	}
	return false
}

// ClassifyUpdate returns the kind of bump from current to candidate. The
// boolean is false when both versions are equal.
func ClassifyUpdate(current, candidate pep440.Version) (UpdateType, bool) {
	switch {
	case current.Epoch != candidate.Epoch, current.Segment(0) != candidate.Segment(0):
		return UpdateMajor, true
	case current.Segment(1) != candidate.Segment(1):
		return UpdateMinor, true
	case current.Segment(2) != candidate.Segment(2):
		return UpdatePatch, true
	case current.Compare(candidate) != 0:
		// Fourth and later release segments, pre, post and dev changes have
		// no semver name of their own and are ignored together with patches.
		return UpdatePatch, true
	default:
		return "", false
	}
}

// IgnoreRules is the full rule set of a run. Rules are OR'ed.
type IgnoreRules []IgnoreRule

// ParseIgnoreRules parses every entry, returning the valid rules and one
// IgnoreRuleParseError per dropped entry.
func ParseIgnoreRules(entries []string, separator string) (IgnoreRules, []error) {
	rules := make(IgnoreRules, 0, len(entries))
	var errs []error
	for _, entry := range entries {
		rule, err := ParseIgnoreRule(entry, separator)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rules = append(rules, rule)
	}
	return rules, errs
}

// Evaluate returns whether any rule suppresses the update, with that rule's reason.
func (rs IgnoreRules) Evaluate(name string, current, candidate pep440.Version) (bool, string) {
	for _, rule := range rs {
		if ignored, reason := rule.Suppresses(name, current, candidate); ignored {
			return true, reason
		}
	}
	return false, ""
}
