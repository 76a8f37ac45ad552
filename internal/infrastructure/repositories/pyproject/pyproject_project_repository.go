package pyproject

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/pyci/internal/domain/entities"
	"github.com/rios0rios0/pyci/internal/domain/repositories"
)

// FileName is the project metadata file read and rewritten by this repository.
const FileName = "pyproject.toml"

type pyprojectFile struct {
	Project struct {
		Name                 string              `toml:"name"`
		RequiresPython       string              `toml:"requires-python"`
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
}

// PyProjectRepository reads and rewrites the dependency arrays of pyproject.toml.
// Everything outside the rewritten strings is preserved byte for byte.
type PyProjectRepository struct{}

// NewPyProjectRepository creates a repository working on files of the local disk.
func NewPyProjectRepository() repositories.ProjectRepository {
	return &PyProjectRepository{}
}

// Load reads <root>/pyproject.toml. Entries of `dependencies` come first,
// followed by the optional groups in the order they appear in the file.
func (r *PyProjectRepository) Load(_ context.Context, root string) (*entities.Project, error) {
	path := filepath.Join(root, FileName)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", path, err)
	}

	var file pyprojectFile
	if err = toml.Unmarshal(content, &file); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return nil, fmt.Errorf("invalid TOML in %s at %d:%d: %w", path, row, col, err)
		}
		return nil, fmt.Errorf("invalid TOML in %s: %w", path, err)
	}

	project := &entities.Project{
		Path:           path,
		Name:           file.Project.Name,
		RequiresPython: file.Project.RequiresPython,
	}
	for _, raw := range file.Project.Dependencies {
		project.Entries = append(project.Entries, entities.DependencyEntry{Group: groupDependencies, Raw: raw})
	}
	for _, extra := range optionalGroupOrder(content, file.Project.OptionalDependencies) {
		for _, raw := range file.Project.OptionalDependencies[extra] {
			project.Entries = append(project.Entries, entities.DependencyEntry{
				Group: groupOptional + "." + extra,
				Raw:   raw,
			})
		}
	}

	logger.Debugf("[pyproject] Loaded %d dependency entries from %s", len(project.Entries), path)
	return project, nil
}

// optionalGroupOrder lists the extras in file order, falling back to
// alphabetical order for groups that could not be located.
func optionalGroupOrder(content []byte, groups map[string][]string) []string {
	order := make([]string, 0, len(groups))
	seen := make(map[string]bool, len(groups))

	arrays, err := locateDependencyArrays(content)
	if err != nil {
		logger.Debugf("[pyproject] Could not locate dependency arrays: %v", err)
	}
	for _, array := range arrays {
		extra, ok := strings.CutPrefix(array.Group, groupOptional+".")
		if !ok || seen[extra] {
			continue
		}
		if _, exists := groups[extra]; exists {
			order = append(order, extra)
			seen[extra] = true
		}
	}

	var rest []string
	for extra := range groups {
		if !seen[extra] {
			rest = append(rest, extra)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

// Write applies the replacements to the file at project.Path. It reports
// false without touching the file when the content would not change.
func (r *PyProjectRepository) Write(
	_ context.Context, project *entities.Project, replacements []entities.LineReplacement,
) (bool, error) {
	if len(replacements) == 0 {
		return false, nil
	}

	info, err := os.Stat(project.Path)
	if err != nil {
		return false, fmt.Errorf("unable to stat %s: %w", project.Path, err)
	}
	content, err := os.ReadFile(project.Path)
	if err != nil {
		return false, fmt.Errorf("unable to read %s: %w", project.Path, err)
	}

	updated, err := applyReplacements(content, replacements)
	if err != nil {
		return false, fmt.Errorf("unable to rewrite %s: %w", project.Path, err)
	}
	if updated == string(content) {
		return false, nil
	}

	if err = writeAtomically(project.Path, []byte(updated), info.Mode().Perm()); err != nil {
		return false, err
	}
	logger.Debugf("[pyproject] Wrote %d replacements to %s", len(replacements), project.Path)
	return true, nil
}

type edit struct {
	start, end int
	text       string
}

func applyReplacements(content []byte, replacements []entities.LineReplacement) (string, error) {
	arrays, err := locateDependencyArrays(content)
	if err != nil {
		return "", err
	}

	var edits []edit
	for _, replacement := range replacements {
		found := false
		for _, array := range arrays {
			if array.Group != replacement.Group {
				continue
			}
			for _, literal := range array.Literals {
				if literal.Value != replacement.Old {
					continue
				}
				text := encodeLiteral(replacement.New, literal.Delimiter)
				edits = append(edits, edit{start: literal.Start, end: literal.End, text: text})
				found = true
			}
		}
		if !found {
			return "", fmt.Errorf("entry %q not found in %s", replacement.Old, replacement.Group)
		}
	}

	sort.Slice(edits, func(i, j int) bool { return edits[i].start > edits[j].start })
	updated := string(content)
	for i, e := range edits {
		if i > 0 && edits[i-1].start == e.start {
			continue
		}
		updated = updated[:e.start] + e.text + updated[e.end:]
	}
	return updated, nil
}

// encodeLiteral renders value with the delimiter it replaces. Literal strings
// that cannot hold the value fall back to a basic string.
func encodeLiteral(value, delimiter string) string {
	switch delimiter {
	case "'":
		if !strings.ContainsAny(value, "'\n") {
			return delimiter + value + delimiter
		}
	case "'''":
		if !strings.Contains(value, delimiter) {
			return delimiter + value + delimiter
		}
	case `"""`:
		return delimiter + escapeBasic(value) + delimiter
	}
	return `"` + escapeBasic(value) + `"`
}

func escapeBasic(value string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`).Replace(value)
}

func writeAtomically(path string, content []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("unable to create a temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err = tmp.Write(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("unable to write %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("unable to close %s: %w", tmpName, err)
	}
	if err = os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("unable to set permissions on %s: %w", tmpName, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("unable to replace %s: %w", path, err)
	}
	return nil
}
