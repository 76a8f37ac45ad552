package pypi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/pyci/internal/domain/entities"
	"github.com/rios0rios0/pyci/internal/infrastructure/repositories/pypi"
)

const numpyPayload = `{
  "info": {"name": "numpy"},
  "releases": {
    "1.20.0": [{"requires_python": ">=3.7", "yanked": false}],
    "1.26.4": [{"requires_python": ">=3.9", "yanked": false}],
    "2.0.0":  [{"requires_python": ">=3.9", "yanked": false}],
    "2.1.0":  [{"requires_python": ">=3.10", "yanked": false}],
    "1.99.0": [{"requires_python": null, "yanked": true}],
    "0.9.0":  [],
    "1.0.0":  [{"requires_python": "not a specifier", "yanked": false}]
  }
}`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pypi/numpy/json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(numpyPayload))
		case "/pypi/broken/json":
			_, _ = w.Write([]byte("{"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestPyPIIndexRepository_AvailableVersions(t *testing.T) {
	t.Parallel()

	t.Run("should keep installable non-yanked releases", func(t *testing.T) {
		t.Parallel()

		// given
		server := newServer(t)
		repo := pypi.NewPyPIIndexRepository(entities.IndexOptions{URL: server.URL, Timeout: 5 * time.Second})

		// when
		versions, err := repo.AvailableVersions(context.Background(), "numpy", "3.9")

		// then
		require.NoError(t, err)
		sort.Strings(versions)
		assert.Equal(t, []string{"1.0.0", "1.20.0", "1.26.4", "2.0.0"}, versions)
	})

	t.Run("should report a missing package", func(t *testing.T) {
		t.Parallel()

		// given
		server := newServer(t)
		repo := pypi.NewPyPIIndexRepository(entities.IndexOptions{URL: server.URL})

		// when
		_, err := repo.AvailableVersions(context.Background(), "does-not-exist", "3.9")

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("should report a malformed payload", func(t *testing.T) {
		t.Parallel()

		// given
		server := newServer(t)
		repo := pypi.NewPyPIIndexRepository(entities.IndexOptions{URL: server.URL})

		// when
		_, err := repo.AvailableVersions(context.Background(), "broken", "3.9")

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unable to parse")
	})

	t.Run("should name itself pypi", func(t *testing.T) {
		t.Parallel()

		// given
		repo := pypi.NewPyPIIndexRepository(entities.IndexOptions{})

		// when
		name := repo.Name()

		// then
		assert.Equal(t, entities.IndexPyPI, name)
	})
}
