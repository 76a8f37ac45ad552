package pep440

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

var (
	// ErrNoPythonFloor is returned when requires-python has no lower bound.
	ErrNoPythonFloor = errors.New("no minimum Python version requirement")
	// ErrUnsatisfiablePython is returned when no Python release satisfies a marker.
	ErrUnsatisfiablePython = errors.New("no Python version satisfies the marker")
)

const (
	maxPythonMinor = 30
	maxPythonPatch = 30
	pythonCeiling  = "v4"
)

// PythonFloor returns the lowest Python release allowed by a requires-python
// value, e.g. ">=3.9,<4" gives "3.9" and ">3.8" gives "3.9".
func PythonFloor(requiresPython string) (string, error) {
	set, err := ParseSpecifierSet(requiresPython)
	if err != nil {
		return "", fmt.Errorf("requires-python %q: %w", requiresPython, err)
	}

	for _, spec := range set {
		var floor string
		switch spec.Operator {
		case OpGreaterEqual, OpEqual, OpCompatible:
			floor = pythonString(spec.parsed, precision(spec.parsed))
		case OpGreater:
			floor = bumpPython(pythonString(spec.parsed, precision(spec.parsed)), precision(spec.parsed))
		default:
			continue
		}
		if !semver.IsValid("v" + floor) {
			return "", fmt.Errorf("requires-python %q: %q is not a Python release", requiresPython, floor)
		}
		return floor, nil
	}

	return "", fmt.Errorf("requires-python %q: %w", requiresPython, ErrNoPythonFloor)
}

// PythonEnvironment returns the marker environment for a Python release with
// every other variable left empty.
func PythonEnvironment(python string) Environment {
	canonical := semver.Canonical("v" + python)
	return Environment{
		"python_version":      strings.TrimPrefix(semver.MajorMinor(canonical), "v"),
		"python_full_version": strings.TrimPrefix(canonical, "v"),
	}
}

// MarkerPythonFloor returns the smallest Python release at or above floor
// (same precision) for which the marker holds. Markers that do not mention
// the Python version keep floor.
func MarkerPythonFloor(marker *Marker, floor string) (string, error) {
	if marker == nil || !marker.References("python_version", "python_full_version") {
		return floor, nil
	}
	if !semver.IsValid("v" + floor) {
		return "", fmt.Errorf("%q is not a Python release", floor)
	}

	prec := strings.Count(floor, ".") + 1
	for candidate := floor; semver.Compare("v"+candidate, pythonCeiling) < 0; candidate = bumpPython(candidate, prec) {
		ok, err := marker.Evaluate(PythonEnvironment(candidate))
		if err != nil {
			return "", err
		}
		if ok {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrUnsatisfiablePython, marker)
}

// ComparePython compares two Python release strings such as "3.9" and "3.10.1".
func ComparePython(a, b string) int {
	return semver.Compare("v"+a, "v"+b)
}

func precision(v Version) int {
	return min(max(len(v.Release), 2), 3) //nolint:mnd // Python releases are X.Y or X.Y.Z
}

func pythonString(v Version, prec int) string {
	parts := make([]string, prec)
	for i := range parts {
		parts[i] = strconv.Itoa(v.Segment(i))
	}
	return strings.Join(parts, ".")
}

// bumpPython advances a release at the given precision, rolling over to the
// next minor or major once the usual Python ranges are exhausted.
func bumpPython(python string, prec int) string {
	canonical := strings.TrimPrefix(semver.Canonical("v"+python), "v")
	fields := strings.Split(canonical, ".")
	major, _ := strconv.Atoi(fields[0])
	minor, _ := strconv.Atoi(fields[1])
	patch, _ := strconv.Atoi(fields[2])

	if prec >= 3 && patch < maxPythonPatch { //nolint:mnd // patch precision
		patch++
	} else if minor < maxPythonMinor {
		minor, patch = minor+1, 0
	} else {
		major, minor, patch = major+1, 0, 0
	}

	if prec >= 3 { //nolint:mnd // patch precision
		return fmt.Sprintf("%d.%d.%d", major, minor, patch)
	}
	return fmt.Sprintf("%d.%d", major, minor)
}
