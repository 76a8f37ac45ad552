package repositories

import (
	"fmt"
	"sort"

	"github.com/rios0rios0/pyci/internal/domain/entities"
	domainRepos "github.com/rios0rios0/pyci/internal/domain/repositories"
)

// IndexFactory builds an IndexRepository for the given client options.
type IndexFactory func(opts entities.IndexOptions) domainRepos.IndexRepository

// IndexRegistry manages all registered package index implementations.
type IndexRegistry struct {
	factories map[string]IndexFactory
}

// NewIndexRegistry creates an empty index registry.
func NewIndexRegistry() *IndexRegistry {
	return &IndexRegistry{
		factories: make(map[string]IndexFactory),
	}
}

// Register adds an index factory under the given name (e.g. "pypi").
func (r *IndexRegistry) Register(name string, factory IndexFactory) {
	r.factories[name] = factory
}

// Get returns a configured index for the given name.
func (r *IndexRegistry) Get(name string, opts entities.IndexOptions) (domainRepos.IndexRepository, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown package index: %q (known: %v)", name, r.Names())
	}
	return factory(opts), nil
}

// Names returns the registered index names, sorted.
func (r *IndexRegistry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
