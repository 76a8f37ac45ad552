package repositories

// GitRepository answers questions about the git work tree a command runs in.
type GitRepository interface {
	// TopLevel returns the root of the work tree containing path.
	TopLevel(path string) (string, error)

	// HasUnstagedChanges reports whether relPath (relative to root) differs
	// from the index, including when it is untracked.
	HasUnstagedChanges(root, relPath string) (bool, error)

	// ChangedPaths lists the files below relDir (relative to root) that
	// differ from the index or are untracked, as short status lines.
	ChangedPaths(root, relDir string) ([]string, error)
}
