package pypi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/pyci/internal/domain/entities"
	"github.com/rios0rios0/pyci/internal/domain/repositories"
	"github.com/rios0rios0/pyci/internal/pep440"
)

const indexName = "pypi"

// packageResponse is the subset of /pypi/<name>/json used here.
type packageResponse struct {
	Info struct {
		Name string `json:"name"`
	} `json:"info"`
	Releases map[string][]releaseFile `json:"releases"`
}

type releaseFile struct {
	RequiresPython *string `json:"requires_python"`
	Yanked         bool    `json:"yanked"`
}

// PyPIIndexRepository lists versions through the PyPI JSON API.
type PyPIIndexRepository struct {
	baseURL string
	client  *retryablehttp.Client
}

// NewPyPIIndexRepository creates a client for a PyPI compatible JSON API.
func NewPyPIIndexRepository(opts entities.IndexOptions) repositories.IndexRepository {
	client := retryablehttp.NewClient()
	client.RetryMax = opts.Retries
	client.Logger = nil
	if opts.Timeout > 0 {
		client.HTTPClient.Timeout = opts.Timeout
	}

	baseURL := opts.URL
	if baseURL == "" {
		baseURL = entities.DefaultIndexURL
	}
	return &PyPIIndexRepository{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (r *PyPIIndexRepository) Name() string { return indexName }

// AvailableVersions returns every non-yanked release with at least one file
// installable on pythonVersion.
func (r *PyPIIndexRepository) AvailableVersions(
	ctx context.Context, name, pythonVersion string,
) ([]string, error) {
	endpoint := fmt.Sprintf("%s/pypi/%s/json", r.baseURL, url.PathEscape(name))
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create the request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to query %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("package %q not found on %s", name, r.baseURL)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read the response body: %w", err)
	}
	var payload packageResponse
	if err = json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("unable to parse the response body: %w", err)
	}

	return installableVersions(name, payload.Releases, pythonVersion), nil
}

func installableVersions(name string, releases map[string][]releaseFile, pythonVersion string) []string {
	python, pyErr := pep440.Parse(pythonVersion)
	versions := make([]string, 0, len(releases))
	for version, files := range releases {
		if len(files) == 0 {
			continue
		}
		if pyErr != nil || anyFileInstallable(files, python) {
			versions = append(versions, version)
			continue
		}
		logger.Debugf("[pypi] %s %s does not support Python %s", name, version, pythonVersion)
	}
	return versions
}

func anyFileInstallable(files []releaseFile, python pep440.Version) bool {
	for _, file := range files {
		if file.Yanked {
			continue
		}
		if file.RequiresPython == nil || strings.TrimSpace(*file.RequiresPython) == "" {
			return true
		}
		set, err := pep440.ParseSpecifierSet(*file.RequiresPython)
		if err != nil {
			// pip ignores unparseable requires_python metadata as well
			return true
		}
		if set.Contains(python) {
			return true
		}
	}
	return false
}
