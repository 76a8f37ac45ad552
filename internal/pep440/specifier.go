package pep440

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	goversion "github.com/aquasecurity/go-pep440-version"
)

// ErrInvalidSpecifier is returned when a version clause cannot be parsed.
var ErrInvalidSpecifier = errors.New("invalid specifier")

// Operator is a version comparison operator.
type Operator string

const (
	OpCompatible   Operator = "~="
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
	OpLessEqual    Operator = "<="
	OpGreaterEqual Operator = ">="
	OpLess         Operator = "<"
	OpGreater      Operator = ">"
	OpArbitrary    Operator = "==="
)

// Operators lists every operator, longest first, so prefix matching picks the right one.
var Operators = []Operator{ //nolint:gochecknoglobals // read-only table
	OpArbitrary, OpCompatible, OpEqual, OpNotEqual, OpLessEqual, OpGreaterEqual, OpLess, OpGreater,
}

var specifierPattern = regexp.MustCompile(`^\s*(===|~=|==|!=|<=|>=|<|>)\s*(\S+?)\s*$`)

// Specifier is a single version clause such as ">=1.2" or "==1.4.*".
type Specifier struct {
	Operator Operator
	Version  string // as written, without the wildcard suffix
	Wildcard bool

	parsed  Version
	matcher goversion.Specifiers
}

// ParseSpecifier parses one clause.
func ParseSpecifier(raw string) (Specifier, error) {
	match := specifierPattern.FindStringSubmatch(raw)
	if match == nil {
		return Specifier{}, fmt.Errorf("%w: %q", ErrInvalidSpecifier, raw)
	}

	spec := Specifier{Operator: Operator(match[1]), Version: match[2]}
	if spec.Operator == OpArbitrary {
		return spec, nil
	}

	if strings.HasSuffix(spec.Version, ".*") {
		if spec.Operator != OpEqual && spec.Operator != OpNotEqual {
			return Specifier{}, fmt.Errorf("%w: %q: wildcard only allowed with == and !=", ErrInvalidSpecifier, raw)
		}
		spec.Wildcard = true
		spec.Version = strings.TrimSuffix(spec.Version, ".*")
	}

	v, err := Parse(spec.Version)
	if err != nil {
		return Specifier{}, fmt.Errorf("%w: %q: %w", ErrInvalidSpecifier, raw, err)
	}
	spec.parsed = v

	if spec.Wildcard && (v.HasDev || v.HasPost || len(v.Local) > 0) {
		return Specifier{}, fmt.Errorf("%w: %q: wildcard after a suffix", ErrInvalidSpecifier, raw)
	}
	if len(v.Local) > 0 && spec.Operator != OpEqual && spec.Operator != OpNotEqual {
		return Specifier{}, fmt.Errorf("%w: %q: local versions only allowed with == and !=", ErrInvalidSpecifier, raw)
	}
	if spec.Operator == OpCompatible && len(v.Release) < 2 { //nolint:mnd // compatible release needs X.Y
		return Specifier{}, fmt.Errorf(
			"%w: %q: compatible release needs at least two release segments", ErrInvalidSpecifier, raw,
		)
	}

	// Pre-release filtering is left to the caller.
	if spec.matcher, err = goversion.NewSpecifiers(spec.String(), goversion.WithPreRelease(true)); err != nil {
		return Specifier{}, fmt.Errorf("%w: %q: %w", ErrInvalidSpecifier, raw, err)
	}
	return spec, nil
}

// MustParseSpecifier is like ParseSpecifier but panics on invalid input.
func MustParseSpecifier(raw string) Specifier {
	s, err := ParseSpecifier(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// Parsed returns the clause version. Zero for "===" clauses.
func (s Specifier) Parsed() Version {
	return s.parsed
}

func (s Specifier) String() string {
	if s.Wildcard {
		return string(s.Operator) + s.Version + ".*"
	}
	return string(s.Operator) + s.Version
}

// Contains reports whether v satisfies the clause. Pre-release filtering is
// left to the caller.
func (s Specifier) Contains(v Version) bool {
	if s.Operator == OpArbitrary {
		return strings.EqualFold(strings.TrimSpace(v.Original()), s.Version)
	}
	return s.matcher.Check(v.ordered)
}

// SpecifierSet is a comma separated list of clauses that must all hold.
type SpecifierSet []Specifier

// ParseSpecifierSet parses "clause, clause, ...". An empty string yields an
// empty set that contains every version.
func ParseSpecifierSet(raw string) (SpecifierSet, error) {
	if strings.TrimSpace(raw) == "" {
		return SpecifierSet{}, nil
	}
	parts := strings.Split(raw, ",")
	set := make(SpecifierSet, 0, len(parts))
	for _, part := range parts {
		spec, err := ParseSpecifier(part)
		if err != nil {
			return nil, err
		}
		set = append(set, spec)
	}
	return set, nil
}

// Contains reports whether v satisfies every clause.
func (s SpecifierSet) Contains(v Version) bool {
	for _, spec := range s {
		if !spec.Contains(v) {
			return false
		}
	}
	return true
}

func (s SpecifierSet) String() string {
	parts := make([]string, len(s))
	for i, spec := range s {
		parts[i] = spec.String()
	}
	return strings.Join(parts, ",")
}
