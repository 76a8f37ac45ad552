package repositories

import (
	"context"
)

// IndexRepository abstracts a Python package index (the PyPI JSON API, pip, ...).
type IndexRepository interface {
	// Name returns the index identifier (e.g. "pypi", "pip").
	Name() string

	// AvailableVersions lists the versions of a package installable on the
	// given Python release (e.g. "3.9"). Versions are returned as published;
	// invalid ones are filtered by the caller.
	AvailableVersions(ctx context.Context, name, pythonVersion string) ([]string, error)
}
