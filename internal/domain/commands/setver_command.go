package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/pyci/internal/pep440"
)

const (
	initFileName = "__init__.py"

	placeholderPackageDir = "{package_dir}"
	placeholderVersion    = "{version}"
)

var (
	// ErrInvalidPackageVersion is returned when --version is neither SemVer nor PEP 440.
	ErrInvalidPackageVersion = errors.New(
		"please specify version as a semantic version (SemVer) or PEP 440 version; " +
			"the version may be prepended by a 'v'",
	)

	defaultVersionPattern = regexp.MustCompile(`__version__ *= *(?:'|").*(?:'|")`)
)

// Setver is the interface for the setver command.
type Setver interface {
	Execute(ctx context.Context, opts SetverOptions) (*SetverResult, error)
}

// SetverOptions holds runtime options for setver.
type SetverOptions struct {
	RootPath        string
	PackageDir      string
	Version         string
	CodeBaseUpdates []string
	Separator       string
	Test            bool
	FailFast        bool
}

// CodeBaseUpdate is one validated `file,pattern,replacement` entry.
type CodeBaseUpdate struct {
	File             string
	Pattern          *regexp.Regexp
	InputReplacement string
	Replacement      string
}

// SetverResult lists what setver resolved and which files it rewrote.
type SetverResult struct {
	Version string
	Updates []CodeBaseUpdate
	Written []string
}

// SetverCommand writes a release version into a Python package.
type SetverCommand struct{}

// NewSetverCommand creates a new SetverCommand.
func NewSetverCommand() *SetverCommand {
	return &SetverCommand{}
}

// Execute validates every update first and writes nothing when any is invalid.
func (it *SetverCommand) Execute(_ context.Context, opts SetverOptions) (*SetverResult, error) {
	version, err := normalizeReleaseVersion(opts.Version)
	if err != nil {
		return nil, err
	}
	result := &SetverResult{Version: version}

	root, err := filepath.Abs(opts.RootPath)
	if err != nil {
		return result, fmt.Errorf("unable to resolve %q: %w", opts.RootPath, err)
	}
	if _, statErr := os.Stat(root); statErr != nil {
		return result, fmt.Errorf("could not find the repository root at: %s (user provided: %q)", root, opts.RootPath)
	}

	updates, err := resolveCodeBaseUpdates(root, version, opts)
	if err != nil {
		return result, err
	}
	result.Updates = updates

	if opts.Test {
		logger.Infof("[setver] Test mode: %d file(s) would be updated", len(updates))
		return result, nil
	}

	for _, update := range updates {
		if writeErr := rewriteLines(update.File, update.Pattern, update.Replacement); writeErr != nil {
			return result, writeErr
		}
		result.Written = append(result.Written, update.File)
	}
	logger.Infof("[setver] Bumped version for %s to %s", opts.PackageDir, version)
	return result, nil
}

// normalizeReleaseVersion accepts SemVer (optionally with a leading 'v') or a
// PEP 440 version, which is padded to three release segments.
func normalizeReleaseVersion(raw string) (string, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "v")
	if parsed, err := semver.StrictNewVersion(trimmed); err == nil {
		return parsed.String(), nil
	}

	parsed, err := pep440.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w (got %q)", ErrInvalidPackageVersion, raw)
	}
	segments := max(len(parsed.Release), 3)
	suffix := strings.TrimPrefix(parsed.String(), parsed.ReleaseString(len(parsed.Release)))
	return parsed.ReleaseString(segments) + suffix, nil
}

func resolveCodeBaseUpdates(root, version string, opts SetverOptions) ([]CodeBaseUpdate, error) {
	placeholders := strings.NewReplacer(placeholderPackageDir, opts.PackageDir, placeholderVersion, version)

	if len(opts.CodeBaseUpdates) == 0 {
		initFile := filepath.Join(root, opts.PackageDir, initFileName)
		if _, err := os.Stat(initFile); err != nil {
			return nil, fmt.Errorf("could not find the Python package's root %q file at: %s", initFileName, initFile)
		}
		input := `__version__ = "{version}"`
		return []CodeBaseUpdate{{
			File:             initFile,
			Pattern:          defaultVersionPattern,
			InputReplacement: input,
			Replacement:      placeholders.Replace(input),
		}}, nil
	}

	separator := opts.Separator
	if separator == "" {
		separator = ","
	}

	var (
		updates []CodeBaseUpdate
		errs    []error
	)
	for _, entry := range opts.CodeBaseUpdates {
		update, err := parseCodeBaseUpdate(root, entry, separator, placeholders)
		if err != nil {
			logger.Errorf("[setver] %v", err)
			if opts.FailFast {
				return nil, err
			}
			errs = append(errs, err)
			continue
		}
		logger.Debugf("[setver] file: %s, pattern: %q, replacement: %s -> %s",
			update.File, update.Pattern, update.InputReplacement, update.Replacement)
		updates = append(updates, update)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return updates, nil
}

func parseCodeBaseUpdate(root, entry, separator string, placeholders *strings.Replacer) (CodeBaseUpdate, error) {
	parts := strings.Split(entry, separator)
	if len(parts) != 3 {
		return CodeBaseUpdate{}, fmt.Errorf(
			"could not extract 'file path', 'pattern', 'replacement string' from %q (separator %q)",
			entry, separator,
		)
	}

	file := placeholders.Replace(parts[0])
	if !filepath.IsAbs(file) {
		file = filepath.Join(root, file)
	}
	if _, err := os.Stat(file); err != nil {
		return CodeBaseUpdate{}, fmt.Errorf("could not find the user-provided file at: %s", file)
	}

	pattern, err := regexp.Compile(parts[1])
	if err != nil {
		return CodeBaseUpdate{}, fmt.Errorf("invalid pattern %q: %w", parts[1], err)
	}

	return CodeBaseUpdate{
		File:             file,
		Pattern:          pattern,
		InputReplacement: parts[2],
		Replacement:      placeholders.Replace(parts[2]),
	}, nil
}

// rewriteLines applies pattern line by line. Trailing whitespace is trimmed
// except in Markdown files, and the file always ends with a newline.
func rewriteLines(path string, pattern *regexp.Regexp, replacement string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("unable to stat %s: %w", path, err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read %s: %w", path, err)
	}

	keepTrailing := strings.EqualFold(filepath.Ext(path), ".md")
	lines := strings.Split(strings.TrimSuffix(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n"), "\n")
	for i, line := range lines {
		if !keepTrailing {
			line = strings.TrimRight(line, " \t")
		}
		lines[i] = pattern.ReplaceAllString(line, replacement)
	}

	if err = os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), info.Mode().Perm()); err != nil {
		return fmt.Errorf("unable to write %s: %w", path, err)
	}
	return nil
}
