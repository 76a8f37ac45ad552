package pep440

import (
	"regexp"
	"strings"
)

var (
	validNamePattern     = regexp.MustCompile(`(?i)^([A-Z0-9]|[A-Z0-9][A-Z0-9._-]*[A-Z0-9])$`)
	nameSeparatorPattern = regexp.MustCompile(`[-_.]+`)
)

// NormalizeName lowercases a project name and collapses runs of "-", "_" and
// "." into a single "-", so "Foo.Bar_baz" and "foo-bar-baz" compare equal.
func NormalizeName(name string) string {
	return strings.ToLower(nameSeparatorPattern.ReplaceAllString(name, "-"))
}

// IsValidName reports whether name is a syntactically valid project name.
func IsValidName(name string) bool {
	return validNamePattern.MatchString(name)
}

// IsNormalized reports whether name is already in normalized form.
func IsNormalized(name string) bool {
	return name == NormalizeName(name)
}
