package entities

import (
	"strings"
	"unicode"

	"github.com/rios0rios0/pyci/internal/pep440"
)

// VersionClause is one "operator version" pair of a requirement, with the
// byte offsets of the version token inside the raw line.
type VersionClause struct {
	Operator pep440.Operator
	Version  string
	Wildcard bool
	Start    int
	End      int
}

// Specifier returns the clause as a parsed pep440 specifier.
func (c VersionClause) Specifier() pep440.Specifier {
	spec, _ := pep440.ParseSpecifier(c.String())
	return spec
}

func (c VersionClause) String() string {
	if c.Wildcard {
		return string(c.Operator) + c.Version + ".*"
	}
	return string(c.Operator) + c.Version
}

// DependencySpecifier is one parsed entry of a dependency array.
// RawLine is kept byte-for-byte so an untouched entry is written back unchanged.
type DependencySpecifier struct {
	Name           string
	NormalizedName string
	Extras         []string
	Clauses        []VersionClause
	URL            string
	Marker         string
	RawLine        string
	// Unnormalized is set when Name differs from its normalized form.
	Unnormalized bool
}

// SpecifierSet returns every clause as a pep440 set.
func (d *DependencySpecifier) SpecifierSet() pep440.SpecifierSet {
	set := make(pep440.SpecifierSet, 0, len(d.Clauses))
	for _, clause := range d.Clauses {
		set = append(set, clause.Specifier())
	}
	return set
}

// FullName is the name plus the extras as written, e.g. "uvicorn[standard]".
func (d *DependencySpecifier) FullName() string {
	if len(d.Extras) == 0 {
		return d.Name
	}
	return d.Name + "[" + strings.Join(d.Extras, ",") + "]"
}

// HasExtra reports whether the extras contain name, compared in normalized form.
func (d *DependencySpecifier) HasExtra(name string) bool {
	for _, extra := range d.Extras {
		if pep440.NormalizeName(extra) == pep440.NormalizeName(name) {
			return true
		}
	}
	return false
}

// WithVersion returns the raw line with the version token of clause i replaced.
func (d *DependencySpecifier) WithVersion(i int, version string) string {
	clause := d.Clauses[i]
	return d.RawLine[:clause.Start] + version + d.RawLine[clause.End:]
}

// ParseDependency parses a requirement such as
// `uvicorn[standard] >= 0.20, < 1 ; python_version < "3.12"`.
func ParseDependency(line string) (*DependencySpecifier, error) {
	s := &requirementScanner{line: line}
	dep := &DependencySpecifier{RawLine: line}

	s.skipSpace()
	dep.Name = s.takeWhile(isNameChar)
	if dep.Name == "" || !pep440.IsValidName(dep.Name) {
		return nil, s.fail("invalid package name")
	}
	dep.NormalizedName = pep440.NormalizeName(dep.Name)
	dep.Unnormalized = !pep440.IsNormalized(dep.Name)

	s.skipSpace()
	if s.peek() == '[' {
		extras, err := s.parseExtras()
		if err != nil {
			return nil, err
		}
		dep.Extras = extras
		s.skipSpace()
	}

	switch s.peek() {
	case '@':
		s.pos++
		s.skipSpace()
		dep.URL = s.takeWhile(func(r rune) bool { return !unicode.IsSpace(r) })
		if dep.URL == "" {
			return nil, s.fail("missing URL after @")
		}
		s.skipSpace()
	case '(':
		s.pos++
		end := strings.IndexByte(line[s.pos:], ')')
		if end < 0 {
			return nil, s.fail("missing closing parenthesis")
		}
		clauses, err := s.parseClauses(s.pos, s.pos+end)
		if err != nil {
			return nil, err
		}
		dep.Clauses = clauses
		s.pos += end + 1
		s.skipSpace()
	default:
		end := strings.IndexByte(line[s.pos:], ';')
		if end < 0 {
			end = len(line) - s.pos
		}
		clauses, err := s.parseClauses(s.pos, s.pos+end)
		if err != nil {
			return nil, err
		}
		dep.Clauses = clauses
		s.pos += end
	}

	if s.done() {
		return dep, nil
	}
	if s.peek() != ';' {
		return nil, s.fail("unexpected text after the version specification")
	}

	marker := strings.TrimSpace(line[s.pos+1:])
	if _, err := pep440.ParseMarker(marker); err != nil {
		return nil, &ParseError{Line: line, Reason: "invalid environment marker", Err: err}
	}
	dep.Marker = marker

	return dep, nil
}

type requirementScanner struct {
	line string
	pos  int
}

func (s *requirementScanner) done() bool {
	return s.pos >= len(s.line)
}

func (s *requirementScanner) peek() byte {
	if s.done() {
		return 0
	}
	return s.line[s.pos]
}

func (s *requirementScanner) skipSpace() {
	for !s.done() && unicode.IsSpace(rune(s.line[s.pos])) {
		s.pos++
	}
}

func (s *requirementScanner) takeWhile(keep func(rune) bool) string {
	start := s.pos
	for !s.done() && keep(rune(s.line[s.pos])) {
		s.pos++
	}
	return s.line[start:s.pos]
}

func (s *requirementScanner) fail(reason string) error {
	return &ParseError{Line: s.line, Reason: reason}
}

func (s *requirementScanner) parseExtras() ([]string, error) {
	end := strings.IndexByte(s.line[s.pos:], ']')
	if end < 0 {
		return nil, s.fail("missing closing bracket for extras")
	}
	body := s.line[s.pos+1 : s.pos+end]
	s.pos += end + 1

	if strings.TrimSpace(body) == "" {
		return []string{}, nil
	}
	parts := strings.Split(body, ",")
	extras := make([]string, 0, len(parts))
	for _, part := range parts {
		extra := strings.TrimSpace(part)
		if !pep440.IsValidName(extra) {
			return nil, s.fail("invalid extra " + `"` + extra + `"`)
		}
		extras = append(extras, extra)
	}
	return extras, nil
}

// parseClauses parses the comma separated clauses in line[from:to].
func (s *requirementScanner) parseClauses(from, to int) ([]VersionClause, error) {
	section := s.line[from:to]
	if strings.TrimSpace(section) == "" {
		return nil, nil
	}

	var clauses []VersionClause
	offset := from
	for _, part := range strings.Split(section, ",") {
		clause, err := s.parseClause(part, offset)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
		offset += len(part) + 1
	}
	return clauses, nil
}

func (s *requirementScanner) parseClause(part string, offset int) (VersionClause, error) {
	spec, err := pep440.ParseSpecifier(part)
	if err != nil {
		return VersionClause{}, &ParseError{Line: s.line, Reason: "invalid version clause " + `"` + strings.TrimSpace(part) + `"`, Err: err}
	}

	trimmed := strings.TrimLeftFunc(part, unicode.IsSpace)
	start := offset + (len(part) - len(trimmed)) + len(spec.Operator)
	for start < offset+len(part) && unicode.IsSpace(rune(s.line[start])) {
		start++
	}
	end := start + len(spec.Version)

	return VersionClause{
		Operator: spec.Operator,
		Version:  spec.Version,
		Wildcard: spec.Wildcard,
		Start:    start,
		End:      end,
	}, nil
}

func isNameChar(r rune) bool {
	return r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.')
}
