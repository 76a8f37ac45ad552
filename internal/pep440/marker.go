package pep440

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrInvalidMarker is returned when an environment marker cannot be parsed.
	ErrInvalidMarker = errors.New("invalid marker")
	// ErrUndefinedComparison is returned when a marker compares non-version strings with an ordering operator.
	ErrUndefinedComparison = errors.New("undefined marker comparison")
)

// markerVariables are the environment names a marker may reference.
var markerVariables = map[string]bool{ //nolint:gochecknoglobals // read-only table
	"python_version":                 true,
	"python_full_version":            true,
	"os_name":                        true,
	"sys_platform":                   true,
	"platform_release":               true,
	"platform_system":                true,
	"platform_version":               true,
	"platform_machine":               true,
	"platform_python_implementation": true,
	"implementation_name":            true,
	"implementation_version":         true,
	"extra":                          true,
}

// Environment maps marker variable names to their values. Missing names evaluate as "".
type Environment map[string]string

// Marker is a parsed environment marker such as `python_version < "3.11" and os_name == "nt"`.
type Marker struct {
	raw  string
	root markerNode
}

type markerNode interface {
	eval(env Environment) (bool, error)
	variables(seen map[string]bool)
}

type markerBool struct {
	and         bool
	left, right markerNode
}

type markerCompare struct {
	left, right markerValue
	op          string
}

type markerValue struct {
	variable bool
	text     string
}

// ParseMarker parses the text after ";" in a requirement.
func ParseMarker(raw string) (*Marker, error) {
	tokens, err := tokenizeMarker(raw)
	if err != nil {
		return nil, err
	}
	p := &markerParser{tokens: tokens, raw: raw}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, fmt.Errorf("%w: %q: unexpected %q", ErrInvalidMarker, raw, p.peek().text)
	}
	return &Marker{raw: strings.TrimSpace(raw), root: root}, nil
}

func (m *Marker) String() string {
	return m.raw
}

// Evaluate evaluates the marker against env.
func (m *Marker) Evaluate(env Environment) (bool, error) {
	return m.root.eval(env)
}

// Variables returns the set of environment variables referenced by the marker.
func (m *Marker) Variables() map[string]bool {
	seen := map[string]bool{}
	m.root.variables(seen)
	return seen
}

// References reports whether the marker uses any of the given variables.
func (m *Marker) References(names ...string) bool {
	vars := m.Variables()
	for _, name := range names {
		if vars[name] {
			return true
		}
	}
	return false
}

func (n markerBool) eval(env Environment) (bool, error) {
	left, err := n.left.eval(env)
	if err != nil {
		return false, err
	}
	if n.and && !left {
		return false, nil
	}
	if !n.and && left {
		return true, nil
	}
	return n.right.eval(env)
}

func (n markerBool) variables(seen map[string]bool) {
	n.left.variables(seen)
	n.right.variables(seen)
}

func (n markerCompare) variables(seen map[string]bool) {
	for _, v := range []markerValue{n.left, n.right} {
		if v.variable {
			seen[v.text] = true
		}
	}
}

func (v markerValue) resolve(env Environment) string {
	if v.variable {
		return env[v.text]
	}
	return v.text
}

func (n markerCompare) eval(env Environment) (bool, error) {
	lhs := n.left.resolve(env)
	rhs := n.right.resolve(env)

	switch n.op {
	case "in":
		return strings.Contains(rhs, lhs), nil
	case "not in":
		return !strings.Contains(rhs, lhs), nil
	}

	if spec, err := ParseSpecifier(n.op + rhs); err == nil {
		if v, parseErr := Parse(lhs); parseErr == nil {
			return spec.Contains(v), nil
		}
	}

	switch n.op {
	case "==", "===":
		return lhs == rhs, nil
	case "!=":
		return lhs != rhs, nil
	default:
		return false, fmt.Errorf("%w: %q %s %q", ErrUndefinedComparison, lhs, n.op, rhs)
	}
}

type markerTokenKind int

const (
	tokVariable markerTokenKind = iota
	tokString
	tokOperator
	tokAnd
	tokOr
	tokLParen
	tokRParen
)

type markerToken struct {
	kind markerTokenKind
	text string
}

func tokenizeMarker(raw string) ([]markerToken, error) {
	var tokens []markerToken
	runes := []rune(raw)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			tokens = append(tokens, markerToken{kind: tokLParen, text: "("})
			i++
		case r == ')':
			tokens = append(tokens, markerToken{kind: tokRParen, text: ")"})
			i++
		case r == '\'' || r == '"':
			end := i + 1
			for end < len(runes) && runes[end] != r {
				end++
			}
			if end >= len(runes) {
				return nil, fmt.Errorf("%w: %q: unterminated string", ErrInvalidMarker, raw)
			}
			tokens = append(tokens, markerToken{kind: tokString, text: string(runes[i+1 : end])})
			i = end + 1
		case strings.ContainsRune("<>=!~", r):
			end := i
			for end < len(runes) && strings.ContainsRune("<>=!~", runes[end]) {
				end++
			}
			op := string(runes[i:end])
			if !isMarkerOperator(op) {
				return nil, fmt.Errorf("%w: %q: unknown operator %q", ErrInvalidMarker, raw, op)
			}
			tokens = append(tokens, markerToken{kind: tokOperator, text: op})
			i = end
		case unicode.IsLetter(r) || r == '_':
			end := i
			for end < len(runes) && (unicode.IsLetter(runes[end]) || unicode.IsDigit(runes[end]) ||
				runes[end] == '_' || runes[end] == '.') {
				end++
			}
			word := string(runes[i:end])
			i = end
			tok, err := classifyWord(raw, word, runes, &i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		default:
			return nil, fmt.Errorf("%w: %q: unexpected character %q", ErrInvalidMarker, raw, r)
		}
	}
	return tokens, nil
}

func classifyWord(raw, word string, runes []rune, pos *int) (markerToken, error) {
	switch word {
	case "and":
		return markerToken{kind: tokAnd, text: word}, nil
	case "or":
		return markerToken{kind: tokOr, text: word}, nil
	case "in":
		return markerToken{kind: tokOperator, text: "in"}, nil
	case "not":
		// "not" is only valid as part of "not in".
		j := *pos
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j+2 <= len(runes) && string(runes[j:j+2]) == "in" &&
			(j+2 == len(runes) || !unicode.IsLetter(runes[j+2])) {
			*pos = j + 2
			return markerToken{kind: tokOperator, text: "not in"}, nil
		}
		return markerToken{}, fmt.Errorf("%w: %q: expected \"in\" after \"not\"", ErrInvalidMarker, raw)
	}

	name := strings.ReplaceAll(word, ".", "_")
	if markerVariables[name] {
		return markerToken{kind: tokVariable, text: name}, nil
	}
	return markerToken{}, fmt.Errorf("%w: %q: unknown variable %q", ErrInvalidMarker, raw, word)
}

func isMarkerOperator(op string) bool {
	switch op {
	case "<", "<=", ">", ">=", "==", "!=", "~=", "===":
		return true
	default:
		return false
	}
}

type markerParser struct {
	raw    string
	tokens []markerToken
	pos    int
}

func (p *markerParser) done() bool {
	return p.pos >= len(p.tokens)
}

func (p *markerParser) peek() markerToken {
	return p.tokens[p.pos]
}

func (p *markerParser) parseOr() (markerNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for !p.done() && p.peek().kind == tokOr {
		p.pos++
		right, rightErr := p.parseAnd()
		if rightErr != nil {
			return nil, rightErr
		}
		left = markerBool{and: false, left: left, right: right}
	}
	return left, nil
}

func (p *markerParser) parseAnd() (markerNode, error) {
	left, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	for !p.done() && p.peek().kind == tokAnd {
		p.pos++
		right, rightErr := p.parseExpr()
		if rightErr != nil {
			return nil, rightErr
		}
		left = markerBool{and: true, left: left, right: right}
	}
	return left, nil
}

func (p *markerParser) parseExpr() (markerNode, error) {
	if p.done() {
		return nil, fmt.Errorf("%w: %q: unexpected end", ErrInvalidMarker, p.raw)
	}
	if p.peek().kind == tokLParen {
		p.pos++
		node, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.done() || p.peek().kind != tokRParen {
			return nil, fmt.Errorf("%w: %q: missing closing parenthesis", ErrInvalidMarker, p.raw)
		}
		p.pos++
		return node, nil
	}

	left, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if p.done() || p.peek().kind != tokOperator {
		return nil, fmt.Errorf("%w: %q: expected an operator", ErrInvalidMarker, p.raw)
	}
	op := p.peek().text
	p.pos++
	right, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return markerCompare{left: left, right: right, op: op}, nil
}

func (p *markerParser) parseValue() (markerValue, error) {
	if p.done() {
		return markerValue{}, fmt.Errorf("%w: %q: unexpected end", ErrInvalidMarker, p.raw)
	}
	tok := p.peek()
	switch tok.kind {
	case tokVariable:
		p.pos++
		return markerValue{variable: true, text: tok.text}, nil
	case tokString:
		p.pos++
		return markerValue{text: tok.text}, nil
	default:
		return markerValue{}, fmt.Errorf("%w: %q: unexpected %q", ErrInvalidMarker, p.raw, tok.text)
	}
}
