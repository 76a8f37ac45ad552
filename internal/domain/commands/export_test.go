package commands

// NormalizeReleaseVersion exports normalizeReleaseVersion for testing.
var NormalizeReleaseVersion = normalizeReleaseVersion //nolint:gochecknoglobals // test export

// ParseReplacements exports parseReplacements for testing.
var ParseReplacements = parseReplacements //nolint:gochecknoglobals // test export

// NewVersionToken exports newVersionToken for testing.
var NewVersionToken = newVersionToken //nolint:gochecknoglobals // test export
