package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Hekkura/LibraryAppBE/pkg/domain"
)

// Store reads and writes the per-owner catalog documents of one scheme
type Store struct {
	backend domain.SearchBackend
	scheme  Scheme
}

// NewStore creates a catalog store on top of backend
func NewStore(backend domain.SearchBackend, scheme Scheme) *Store {
	return &Store{backend: backend, scheme: scheme}
}

// Get returns the resources listed for owner. found is false when the owner
// has no catalog document.
func (s *Store) Get(ctx context.Context, owner string) (ResourceSet, bool, error) {
	doc, err := s.backend.GetDocument(ctx, s.scheme.CatalogIndex, catalogKey(owner), []string{s.scheme.Field})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get catalog for %s '%s': %w", s.scheme.OwnerNoun, owner, err)
	}

	set, err := parseResourceSet(doc[s.scheme.Field])
	if err != nil {
		return nil, true, fmt.Errorf("catalog for %s '%s': %w", s.scheme.OwnerNoun, owner, err)
	}
	return set, true, nil
}

// Put replaces the resource list of owner's catalog document
func (s *Store) Put(ctx context.Context, owner string, resources ResourceSet) error {
	names := NewResourceSet(resources...)
	partial := domain.Document{s.scheme.Field: []string(names)}
	if err := s.backend.UpdateDocument(ctx, s.scheme.CatalogIndex, catalogKey(owner), partial); err != nil {
		return fmt.Errorf("put catalog for %s '%s': %w", s.scheme.OwnerNoun, owner, err)
	}
	return nil
}

func catalogKey(owner string) string {
	return strings.TrimSpace(owner)
}
