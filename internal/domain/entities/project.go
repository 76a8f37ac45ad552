package entities

// DependencyEntry is one string of a dependency array, in file order.
// Group is "dependencies" or "optional-dependencies.<extra>".
type DependencyEntry struct {
	Group string
	Raw   string
}

// Project is the subset of pyproject.toml the updater works on.
type Project struct {
	Path           string
	Name           string
	RequiresPython string
	Entries        []DependencyEntry
}

// LineReplacement swaps one dependency string for another within a group.
type LineReplacement struct {
	Group string
	Old   string
	New   string
}
