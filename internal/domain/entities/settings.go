package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	IndexPyPI = "pypi"
	IndexPip  = "pip"

	DefaultIndexURL      = "https://pypi.org"
	DefaultTimeout       = 30 * time.Second
	DefaultRetries       = 3
	DefaultConcurrency   = 4
	DefaultDocsFolder    = "docs"
	DefaultPairSeparator = ","
)

// Settings is the optional .pyci.yaml file. Command-line flags take precedence.
type Settings struct {
	UpdateDeps   UpdateDepsSettings   `yaml:"update_deps"`
	DocsIndex    DocsIndexSettings    `yaml:"docs_index"`
	APIReference APIReferenceSettings `yaml:"api_reference"`
	Setver       SetverSettings       `yaml:"setver"`
}

// UpdateDepsSettings configures update-deps.
type UpdateDepsSettings struct {
	RootRepoPath          string        `yaml:"root_repo_path"`
	FailFast              bool          `yaml:"fail_fast"`
	Ignore                []string      `yaml:"ignore"`
	IgnoreSeparator       string        `yaml:"ignore_separator"`
	SkipUnnormalizedNames bool          `yaml:"skip_unnormalized_python_package_names"`
	Index                 string        `yaml:"index"`
	IndexURL              string        `yaml:"index_url"`
	Timeout               time.Duration `yaml:"timeout"`
	Retries               int           `yaml:"retries"`
	Concurrency           int           `yaml:"concurrency"`
	Changelog             string        `yaml:"changelog"`
}

// DocsIndexSettings configures create-docs-index.
type DocsIndexSettings struct {
	DocsFolder           string   `yaml:"docs_folder"`
	Replacements         []string `yaml:"replacements"`
	ReplacementSeparator string   `yaml:"replacement_separator"`
}

// APIReferenceSettings configures create-api-reference-docs.
type APIReferenceSettings struct {
	PackageDirs     []string `yaml:"package_dirs"`
	DocsFolder      string   `yaml:"docs_folder"`
	UnwantedFolders []string `yaml:"unwanted_folders"`
	UnwantedFiles   []string `yaml:"unwanted_files"`
	FullDocsFolders []string `yaml:"full_docs_folders"`
	FullDocsFiles   []string `yaml:"full_docs_files"`
	SpecialOptions  []string `yaml:"special_options"`
	Relative        bool     `yaml:"relative"`
}

// SetverSettings configures setver.
type SetverSettings struct {
	PackageDir              string   `yaml:"package_dir"`
	CodeBaseUpdates         []string `yaml:"code_base_updates"`
	CodeBaseUpdateSeparator string   `yaml:"code_base_update_separator"`
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// NewDefaultSettings returns the settings used when no file is found.
func NewDefaultSettings() *Settings {
	settings := &Settings{}
	settings.applyDefaults()
	return settings
}

// LoadSettings reads a settings file, expands ${ENV_VAR} references and validates it.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var settings Settings
	if unmarshalErr := yaml.Unmarshal([]byte(expandEnv(string(data))), &settings); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	settings.applyDefaults()
	if validateErr := settings.validate(); validateErr != nil {
		return nil, validateErr
	}
	return &settings, nil
}

// FindSettingsFile looks for a settings file in the usual locations.
func FindSettingsFile() (string, error) {
	locations := []string{".", ".config", "configs"}
	if homeDir, err := os.UserHomeDir(); err == nil && homeDir != "" {
		locations = append(locations, homeDir, filepath.Join(homeDir, ".config"))
	}

	names := []string{".pyci.yaml", ".pyci.yml", "pyci.yaml", "pyci.yml"}
	for _, location := range locations {
		for _, name := range names {
			candidate := filepath.Join(location, name)
			if _, statErr := os.Stat(candidate); statErr == nil {
				return candidate, nil
			}
		}
	}
	return "", errors.New("config file not found in default locations")
}

// ResolveSettings loads the explicit path when given, otherwise the first file
// found by FindSettingsFile, otherwise the defaults.
func ResolveSettings(explicitPath string) (*Settings, error) {
	if explicitPath != "" {
		return LoadSettings(explicitPath)
	}
	found, err := FindSettingsFile()
	if err != nil {
		logger.Debugf("No config file found, using defaults")
		return NewDefaultSettings(), nil
	}
	logger.Debugf("Using config file %q", found)
	return LoadSettings(found)
}

func expandEnv(raw string) string {
	return envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		value, ok := os.LookupEnv(name)
		if !ok {
			logger.Warnf("Environment variable %q is not set", name)
		}
		return value
	})
}

func (s *Settings) applyDefaults() {
	deps := &s.UpdateDeps
	if deps.RootRepoPath == "" {
		deps.RootRepoPath = "."
	}
	if deps.IgnoreSeparator == "" {
		deps.IgnoreSeparator = DefaultIgnoreSeparator
	}
	if deps.Index == "" {
		deps.Index = IndexPyPI
	}
	if deps.IndexURL == "" {
		deps.IndexURL = DefaultIndexURL
	}
	if deps.Timeout == 0 {
		deps.Timeout = DefaultTimeout
	}
	if deps.Retries == 0 {
		deps.Retries = DefaultRetries
	}
	if deps.Concurrency == 0 {
		deps.Concurrency = DefaultConcurrency
	}
	if s.DocsIndex.DocsFolder == "" {
		s.DocsIndex.DocsFolder = DefaultDocsFolder
	}
	if s.DocsIndex.ReplacementSeparator == "" {
		s.DocsIndex.ReplacementSeparator = DefaultPairSeparator
	}
	if s.APIReference.DocsFolder == "" {
		s.APIReference.DocsFolder = DefaultDocsFolder
	}
	if s.Setver.CodeBaseUpdateSeparator == "" {
		s.Setver.CodeBaseUpdateSeparator = DefaultPairSeparator
	}
}

func (s *Settings) validate() error {
	switch s.UpdateDeps.Index {
	case IndexPyPI, IndexPip:
	default:
		return fmt.Errorf("update_deps.index must be %q or %q, got %q", IndexPyPI, IndexPip, s.UpdateDeps.Index)
	}
	if s.UpdateDeps.Retries < 0 {
		return errors.New("update_deps.retries must not be negative")
	}
	if s.UpdateDeps.Concurrency < 0 {
		return errors.New("update_deps.concurrency must not be negative")
	}
	if s.UpdateDeps.Timeout < 0 {
		return errors.New("update_deps.timeout must not be negative")
	}
	return nil
}
