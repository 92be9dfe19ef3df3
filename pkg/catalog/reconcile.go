package catalog

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Hekkura/LibraryAppBE/pkg/domain"
	"github.com/Hekkura/LibraryAppBE/pkg/metrics"
)

// Outcome classifies the joint catalog/backend state of one resource
type Outcome int

const (
	OwnerNotFound Outcome = iota
	ResourceNotFound
	ResourceExists
)

func (o Outcome) String() string {
	switch o {
	case OwnerNotFound:
		return "OwnerNotFound"
	case ResourceNotFound:
		return "ResourceNotFound"
	case ResourceExists:
		return "ResourceExists"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Reconciliation is the result of Reconcile. Resources is the owner's current
// catalog set (nil for OwnerNotFound) so callers can mutate and re-save it
// without a second read.
type Reconciliation struct {
	Outcome   Outcome
	Owner     string
	Name      string
	Qualified string
	Resources ResourceSet
	// Divergent is set when the backend has the resource but the catalog does not list it
	Divergent bool
}

// Err returns the classification error of a non-existing resource, nil otherwise
func (r Reconciliation) Err(scheme Scheme) error {
	switch r.Outcome {
	case OwnerNotFound:
		return domain.OwnerNotFound(scheme.OwnerNoun, r.Owner)
	case ResourceNotFound:
		return domain.ResourceNotFound(scheme.ResourceNoun, r.Name)
	}
	return nil
}

// Reconciler compares catalog membership with backend existence
type Reconciler struct {
	backend domain.SearchBackend
	store   *Store
	scheme  Scheme
}

func NewReconciler(backend domain.SearchBackend, store *Store, scheme Scheme) *Reconciler {
	return &Reconciler{backend: backend, store: store, scheme: scheme}
}

// Reconcile classifies (owner, name). A name listed in the catalog is trusted
// without probing the backend; an unlisted name is probed and a backend hit is
// reported as ResourceExists with Divergent set.
func (r *Reconciler) Reconcile(ctx context.Context, owner, name string) (Reconciliation, error) {
	rec := Reconciliation{
		Owner:     owner,
		Name:      r.scheme.Normalize(name),
		Qualified: r.scheme.Resolve(owner, name),
	}

	resources, found, err := r.store.Get(ctx, owner)
	if err != nil {
		return rec, domain.Unknown(err)
	}
	if !found {
		rec.Outcome = OwnerNotFound
		return rec, nil
	}
	rec.Resources = resources

	if resources.Contains(rec.Name) {
		rec.Outcome = ResourceExists
		return rec, nil
	}

	exists, err := r.backend.IndexExists(ctx, rec.Qualified)
	if err != nil {
		return rec, domain.Unknown(err)
	}
	if exists {
		log.Warn().
			Str("owner", owner).
			Str(r.scheme.ResourceNoun, rec.Name).
			Str("qualified", rec.Qualified).
			Msg("backend resource missing from catalog")
		metrics.RecordDivergence(r.scheme.Name, metrics.DivergenceBackendOnly)
		rec.Outcome = ResourceExists
		rec.Divergent = true
		return rec, nil
	}

	rec.Outcome = ResourceNotFound
	return rec, nil
}
