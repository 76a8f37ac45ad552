package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrParse marks a dependency line that does not follow the requirement grammar.
	ErrParse = errors.New("unparseable dependency")
	// ErrIgnoreRule marks a malformed ignore entry.
	ErrIgnoreRule = errors.New("unparseable ignore rule")
	// ErrLookup marks a failed package index query.
	ErrLookup = errors.New("index lookup failed")
	// ErrVersionComparison marks a candidate version that is not a valid version number.
	ErrVersionComparison = errors.New("invalid candidate version")
)

// ParseError is returned when a dependency line cannot be parsed.
type ParseError struct {
	Line   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse package and version specification %q: %s", e.Line, e.Reason)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// IgnoreRuleParseError is returned for an ignore entry that is dropped.
type IgnoreRuleParseError struct {
	Entry  string
	Reason string
	Err    error
}

func (e *IgnoreRuleParseError) Error() string {
	return fmt.Sprintf("could not parse ignore option %q: %s", e.Entry, e.Reason)
}

func (e *IgnoreRuleParseError) Unwrap() []error {
	return []error{ErrIgnoreRule, e.Err}
}

// LookupError is returned when the index cannot list versions for a package.
type LookupError struct {
	Package string
	Index   string
	Err     error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("could not look up %q on %s: %v", e.Package, e.Index, e.Err)
}

func (e *LookupError) Unwrap() []error {
	return []error{ErrLookup, e.Err}
}

// VersionComparisonError is recorded for a candidate that fails version parsing.
// The candidate is dropped; the dependency is still resolved.
type VersionComparisonError struct {
	Package string
	Version string
	Err     error
}

func (e *VersionComparisonError) Error() string {
	return fmt.Sprintf("package %q lists invalid version %q", e.Package, e.Version)
}

func (e *VersionComparisonError) Unwrap() []error {
	return []error{ErrVersionComparison, e.Err}
}
