package pip

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/pyci/internal/domain/entities"
	"github.com/rios0rios0/pyci/internal/domain/repositories"
)

const (
	indexName             = "pip"
	availableVersionsLine = "Available versions:"
)

// runner executes a command and returns its standard output.
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// PipIndexRepository lists versions by running `pip index versions`.
// pip applies its own index configuration (pip.conf, PIP_INDEX_URL).
type PipIndexRepository struct {
	binary   string
	indexURL string
	run      runner
}

// NewPipIndexRepository creates an index backed by the pip executable on PATH.
func NewPipIndexRepository(opts entities.IndexOptions) repositories.IndexRepository {
	indexURL := ""
	if opts.URL != "" && opts.URL != entities.DefaultIndexURL {
		indexURL = opts.URL
	}
	return &PipIndexRepository{binary: "pip", indexURL: indexURL, run: execRunner}
}

func (r *PipIndexRepository) Name() string { return indexName }

// AvailableVersions runs `pip index versions --python-version <py> <name>`.
func (r *PipIndexRepository) AvailableVersions(
	ctx context.Context, name, pythonVersion string,
) ([]string, error) {
	args := []string{"index", "versions", "--disable-pip-version-check", "--python-version", pythonVersion}
	if r.indexURL != "" {
		args = append(args, "--index-url", r.indexURL)
	}
	args = append(args, name)

	logger.Debugf("[pip] Running %s %s", r.binary, strings.Join(args, " "))
	out, err := r.run(ctx, r.binary, args...)
	if err != nil {
		return nil, fmt.Errorf("%s index versions %s: %w", r.binary, name, err)
	}
	return parseIndexVersions(string(out))
}

// parseIndexVersions reads the "Available versions:" line of pip's output.
func parseIndexVersions(output string) ([]string, error) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, availableVersionsLine) {
			continue
		}
		var versions []string
		for _, field := range strings.Split(strings.TrimPrefix(line, availableVersionsLine), ",") {
			if v := strings.TrimSpace(field); v != "" {
				versions = append(versions, v)
			}
		}
		return versions, nil
	}

	firstLine, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
	return nil, fmt.Errorf("could not parse 'pip index versions' output: %q", firstLine)
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}
