// Package pep440 implements Python version numbers, version specifiers and
// environment markers as used by pip and PyPI.
package pep440

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	goversion "github.com/aquasecurity/go-pep440-version"
)

// ErrInvalidVersion is returned when a string is not a valid Python version.
var ErrInvalidVersion = errors.New("invalid version")

var versionPattern = regexp.MustCompile(`(?i)^\s*v?` +
	`(?:(?P<epoch>[0-9]+)!)?` +
	`(?P<release>[0-9]+(?:\.[0-9]+)*)` +
	`(?P<pre>[-_.]?(?P<pre_l>alpha|beta|preview|pre|rc|a|b|c)[-_.]?(?P<pre_n>[0-9]+)?)?` +
	`(?P<post>(?:-(?P<post_n1>[0-9]+))|(?:[-_.]?(?P<post_l>post|rev|r)[-_.]?(?P<post_n2>[0-9]+)?))?` +
	`(?P<dev>[-_.]?(?P<dev_l>dev)[-_.]?(?P<dev_n>[0-9]+)?)?` +
	`(?:\+(?P<local>[a-z0-9]+(?:[-_.][a-z0-9]+)*))?\s*$`)

// Version is a parsed Python version number. Ordering is delegated to
// go-pep440-version; the exported segments are kept for rewriting, which
// needs the release numbers the library does not expose.
type Version struct {
	Epoch   int
	Release []int
	PreKind string // "a", "b" or "rc"; empty when not a pre-release
	PreNum  int
	HasPost bool
	PostNum int
	HasDev  bool
	DevNum  int
	Local   []string

	original string
	ordered  goversion.Version
}

// Parse parses a version string.
func Parse(raw string) (Version, error) {
	ordered, err := goversion.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q: %w", ErrInvalidVersion, raw, err)
	}
	match := versionPattern.FindStringSubmatch(raw)
	if match == nil {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, raw)
	}
	group := func(name string) string {
		return match[versionPattern.SubexpIndex(name)]
	}

	v := Version{original: raw, ordered: ordered}

	if epoch := group("epoch"); epoch != "" {
		if v.Epoch, err = atoi(epoch, raw); err != nil {
			return Version{}, err
		}
	}

	for _, part := range strings.Split(group("release"), ".") {
		n, convErr := atoi(part, raw)
		if convErr != nil {
			return Version{}, convErr
		}
		v.Release = append(v.Release, n)
	}

	if group("pre") != "" {
		v.PreKind = normalizePreKind(group("pre_l"))
		if v.PreNum, err = optionalInt(group("pre_n"), raw); err != nil {
			return Version{}, err
		}
	}

	if group("post") != "" {
		v.HasPost = true
		num := group("post_n1")
		if num == "" {
			num = group("post_n2")
		}
		if v.PostNum, err = optionalInt(num, raw); err != nil {
			return Version{}, err
		}
	}

	if group("dev") != "" {
		v.HasDev = true
		if v.DevNum, err = optionalInt(group("dev_n"), raw); err != nil {
			return Version{}, err
		}
	}

	if local := group("local"); local != "" {
		v.Local = strings.FieldsFunc(strings.ToLower(local), func(r rune) bool {
			return r == '-' || r == '_' || r == '.'
		})
	}

	return v, nil
}

// MustParse is like Parse but panics on invalid input. Intended for constants and tests.
func MustParse(raw string) Version {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func atoi(s, raw string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidVersion, raw, err)
	}
	return n, nil
}

func optionalInt(s, raw string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return atoi(s, raw)
}

func normalizePreKind(label string) string {
	switch strings.ToLower(label) {
	case "a", "alpha":
		return "a"
	case "b", "beta":
		return "b"
	default:
		return "rc"
	}
}

// Original returns the string the version was parsed from.
func (v Version) Original() string {
	return v.original
}

// IsPreRelease reports whether the version is a pre-release or a development release.
func (v Version) IsPreRelease() bool {
	return v.PreKind != "" || v.HasDev
}

// Segment returns the i-th release segment, treating missing segments as zero.
func (v Version) Segment(i int) int {
	if i < len(v.Release) {
		return v.Release[i]
	}
	return 0
}

// String returns the canonical form of the version.
func (v Version) String() string {
	var sb strings.Builder
	if v.Epoch != 0 {
		sb.WriteString(strconv.Itoa(v.Epoch))
		sb.WriteByte('!')
	}
	sb.WriteString(joinInts(v.Release))
	if v.PreKind != "" {
		sb.WriteString(v.PreKind)
		sb.WriteString(strconv.Itoa(v.PreNum))
	}
	if v.HasPost {
		sb.WriteString(".post")
		sb.WriteString(strconv.Itoa(v.PostNum))
	}
	if v.HasDev {
		sb.WriteString(".dev")
		sb.WriteString(strconv.Itoa(v.DevNum))
	}
	if len(v.Local) > 0 {
		sb.WriteByte('+')
		sb.WriteString(strings.Join(v.Local, "."))
	}
	return sb.String()
}

// ReleaseString renders the epoch and the first n release segments, padding
// with zeros when the version has fewer segments.
func (v Version) ReleaseString(n int) string {
	parts := make([]int, n)
	for i := range parts {
		parts[i] = v.Segment(i)
	}
	prefix := ""
	if v.Epoch != 0 {
		prefix = strconv.Itoa(v.Epoch) + "!"
	}
	return prefix + joinInts(parts)
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, n := range values {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

// Equal reports whether both versions are equal under version ordering.
// 1.0 and 1.0.0 are equal.
func (v Version) Equal(o Version) bool {
	return v.Compare(o) == 0
}

// LessThan reports whether v sorts before o.
func (v Version) LessThan(o Version) bool {
	return v.Compare(o) < 0
}

// GreaterThan reports whether v sorts after o.
func (v Version) GreaterThan(o Version) bool {
	return v.Compare(o) > 0
}

// Compare returns -1, 0 or +1 under PEP 440 ordering.
func (v Version) Compare(o Version) int {
	return v.ordered.Compare(o.ordered)
}
