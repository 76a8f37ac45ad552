package entities

import "strings"

const (
	unreleasedHeading = "## [Unreleased]"
	changedHeading    = "### Changed"
	releaseHeading    = "## ["
	bullet            = "- "
)

// changelogSection holds the line indexes that bound the Unreleased section.
type changelogSection struct {
	heading int // "## [Unreleased]"
	end     int // next release heading, or len(lines)
	changed int // "### Changed" inside the section, or -1
}

// InsertChangelogEntry adds bullets to "### Changed" under "## [Unreleased]"
// of a Keep-a-Changelog document. The subsection is created when missing and
// the content is returned as is when there is no Unreleased section.
func InsertChangelogEntry(content string, entries []string) string {
	if len(entries) == 0 {
		return content
	}

	lines := strings.Split(content, "\n")
	section, ok := locateUnreleased(lines)
	if !ok {
		return content
	}

	if section.changed < 0 {
		block := append([]string{"", changedHeading, ""}, entries...)
		return strings.Join(splice(lines, section.heading+1, block), "\n")
	}

	at := section.changed
	for i := section.changed + 1; i < section.end; i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, bullet) {
			break
		}
		at = i
	}
	return strings.Join(splice(lines, at+1, entries), "\n")
}

func locateUnreleased(lines []string) (changelogSection, bool) {
	section := changelogSection{heading: -1, end: len(lines), changed: -1}
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case section.heading < 0:
			if trimmed == unreleasedHeading {
				section.heading = i
			}
		case strings.HasPrefix(trimmed, releaseHeading):
			section.end = i
			return section, true
		case trimmed == changedHeading && section.changed < 0:
			section.changed = i
		}
	}
	return section, section.heading >= 0
}

func splice(lines []string, at int, extra []string) []string {
	out := make([]string, 0, len(lines)+len(extra))
	out = append(out, lines[:at]...)
	out = append(out, extra...)
	return append(out, lines[at:]...)
}
