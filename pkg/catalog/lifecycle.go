package catalog

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/Hekkura/LibraryAppBE/pkg/domain"
	"github.com/Hekkura/LibraryAppBE/pkg/metrics"
)

// Lifecycle creates and deletes the resources of one scheme, keeping the
// owner's catalog document and the backend in agreement.
//
// Create and Delete are split into a plan (decide) and a commit (two ordered
// writes). Neither write is rolled back when the other fails; the divergence
// is left for the next reconciliation of the same resource.
type Lifecycle struct {
	scheme     Scheme
	backend    domain.SearchBackend
	store      *Store
	reconciler *Reconciler
}

// NewLifecycle wires a store and reconciler for scheme on top of backend
func NewLifecycle(backend domain.SearchBackend, scheme Scheme) *Lifecycle {
	store := NewStore(backend, scheme)
	return &Lifecycle{
		scheme:     scheme,
		backend:    backend,
		store:      store,
		reconciler: NewReconciler(backend, store, scheme),
	}
}

func (l *Lifecycle) Scheme() Scheme {
	return l.scheme
}

func (l *Lifecycle) Store() *Store {
	return l.store
}

// Live probes the backend, returning a ServerDown error when it is unreachable
func (l *Lifecycle) Live(ctx context.Context) error {
	if err := l.backend.Ping(ctx); err != nil {
		return domain.ServerDown(err)
	}
	return nil
}

// Reconcile classifies (owner, name) without acting on it
func (l *Lifecycle) Reconcile(ctx context.Context, owner, name string) (Reconciliation, error) {
	return l.reconciler.Reconcile(ctx, owner, name)
}

// Require checks liveness, validates name and checks that it exists for
// owner, returning the classification error otherwise. Read paths use it
// before addressing the qualified name on the backend.
func (l *Lifecycle) Require(ctx context.Context, owner, name string) (Reconciliation, error) {
	if err := l.Live(ctx); err != nil {
		return Reconciliation{}, err
	}
	if err := l.scheme.Validate(owner, name); err != nil {
		return Reconciliation{}, err
	}
	rec, err := l.reconciler.Reconcile(ctx, owner, name)
	if err != nil {
		return rec, err
	}
	if rec.Outcome != ResourceExists {
		return rec, rec.Err(l.scheme)
	}
	return rec, nil
}

// List returns the resources of owner as recorded in its catalog
func (l *Lifecycle) List(ctx context.Context, owner string) (ResourceSet, error) {
	if err := l.Live(ctx); err != nil {
		return nil, err
	}
	if err := l.scheme.ValidateOwner(owner); err != nil {
		return nil, err
	}
	resources, found, err := l.store.Get(ctx, owner)
	if err != nil {
		return nil, domain.Unknown(err)
	}
	if !found {
		return nil, domain.OwnerNotFound(l.scheme.OwnerNoun, owner)
	}
	return resources, nil
}

// CreatePlan is a decided create waiting to be committed
type CreatePlan struct {
	Reconciliation
	Settings domain.IndexSettings

	lifecycle *Lifecycle
}

// PlanCreate runs the checks of a create: liveness, name validation and
// reconciliation. It fails with ResourceExists or OwnerNotFound when the
// resource cannot be created.
func (l *Lifecycle) PlanCreate(ctx context.Context, owner, name string, settings domain.IndexSettings) (*CreatePlan, error) {
	if err := l.Live(ctx); err != nil {
		return nil, err
	}
	if err := l.scheme.Validate(owner, name); err != nil {
		return nil, err
	}

	rec, err := l.reconciler.Reconcile(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	switch rec.Outcome {
	case OwnerNotFound:
		return nil, rec.Err(l.scheme)
	case ResourceExists:
		if rec.Divergent {
			l.repairMissingEntry(ctx, rec)
		}
		return nil, domain.ResourceExists(l.scheme.ResourceNoun, rec.Name)
	}

	return &CreatePlan{Reconciliation: rec, Settings: settings, lifecycle: l}, nil
}

// Commit writes the catalog entry first and then creates the backend
// resource. A failed catalog write is logged and the backend create still
// runs; a failed backend create is returned without undoing the catalog write.
func (p *CreatePlan) Commit(ctx context.Context) error {
	l := p.lifecycle

	if err := l.store.Put(ctx, p.Owner, p.Resources.With(p.Name)); err != nil {
		log.Error().Err(err).
			Str("owner", p.Owner).
			Str(l.scheme.ResourceNoun, p.Name).
			Msg("catalog write failed during create")
		metrics.RecordDivergence(l.scheme.Name, metrics.DivergenceCatalogWriteFailed)
	}

	if err := l.backend.CreateIndex(ctx, p.Qualified, p.Settings); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return domain.ResourceExists(l.scheme.ResourceNoun, p.Name)
		}
		log.Error().Err(err).
			Str("owner", p.Owner).
			Str("qualified", p.Qualified).
			Msg("backend create failed after catalog write")
		metrics.RecordDivergence(l.scheme.Name, metrics.DivergenceBackendWriteFailed)
		if errors.Is(err, domain.ErrBadRequest) {
			return domain.BadDataRequest("", err)
		}
		return domain.Unknown(err)
	}

	log.Info().
		Str("owner", p.Owner).
		Str("qualified", p.Qualified).
		Msgf("%s created", l.scheme.ResourceNoun)
	return nil
}

// Create plans and commits a create, returning the normalized resource name
func (l *Lifecycle) Create(ctx context.Context, owner, name string, settings domain.IndexSettings) (string, error) {
	plan, err := l.PlanCreate(ctx, owner, name, settings)
	if err == nil {
		err = plan.Commit(ctx)
	}
	l.record("create", "created", err)
	if err != nil {
		return "", err
	}
	return plan.Name, nil
}

// DeletePlan is a decided delete waiting to be committed
type DeletePlan struct {
	Reconciliation

	lifecycle *Lifecycle
}

// PlanDelete checks liveness and that the resource exists. Deleting a
// resource that is neither listed nor present in the backend is rejected.
func (l *Lifecycle) PlanDelete(ctx context.Context, owner, name string) (*DeletePlan, error) {
	rec, err := l.Require(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	return &DeletePlan{Reconciliation: rec, lifecycle: l}, nil
}

// Commit deletes the backend resource first and only then removes the
// catalog entry. When the backend delete fails the catalog is left untouched.
func (p *DeletePlan) Commit(ctx context.Context) error {
	l := p.lifecycle

	if err := l.backend.DeleteIndex(ctx, p.Qualified); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ResourceNotFound(l.scheme.ResourceNoun, p.Name)
		}
		return domain.Unknown(err)
	}

	if p.Resources.Contains(p.Name) {
		if err := l.store.Put(ctx, p.Owner, p.Resources.Without(p.Name)); err != nil {
			log.Error().Err(err).
				Str("owner", p.Owner).
				Str(l.scheme.ResourceNoun, p.Name).
				Msg("catalog write failed during delete")
			metrics.RecordDivergence(l.scheme.Name, metrics.DivergenceCatalogWriteFailed)
		}
	}

	log.Info().
		Str("owner", p.Owner).
		Str("qualified", p.Qualified).
		Msgf("%s deleted", l.scheme.ResourceNoun)
	return nil
}

// Delete plans and commits a delete
func (l *Lifecycle) Delete(ctx context.Context, owner, name string) error {
	plan, err := l.PlanDelete(ctx, owner, name)
	if err == nil {
		err = plan.Commit(ctx)
	}
	l.record("delete", "deleted", err)
	return err
}

// repairMissingEntry re-inserts a resource the backend has but the catalog forgot
func (l *Lifecycle) repairMissingEntry(ctx context.Context, rec Reconciliation) {
	if err := l.store.Put(ctx, rec.Owner, rec.Resources.With(rec.Name)); err != nil {
		log.Warn().Err(err).
			Str("owner", rec.Owner).
			Str(l.scheme.ResourceNoun, rec.Name).
			Msg("catalog repair failed")
		return
	}
	log.Info().
		Str("owner", rec.Owner).
		Str(l.scheme.ResourceNoun, rec.Name).
		Msg("catalog repaired from backend")
}

func (l *Lifecycle) record(op, success string, err error) {
	result := success
	if err != nil {
		result = domain.KindOf(err).String()
	}
	metrics.RecordLifecycle(l.scheme.Name, op, result)
}
