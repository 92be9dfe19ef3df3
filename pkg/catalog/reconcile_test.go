package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hekkura/LibraryAppBE/pkg/domain"
)

func newReconciler(b *faultyBackend, scheme Scheme) *Reconciler {
	return NewReconciler(b, NewStore(b, scheme), scheme)
}

func TestReconcile_OwnerNotFound(t *testing.T) {
	b := newFaultyBackend(t)
	scheme := IndexScheme(appCatalog)

	rec, err := newReconciler(b, scheme).Reconcile(context.Background(), "ghost", "x")
	require.NoError(t, err)
	assert.Equal(t, OwnerNotFound, rec.Outcome)
	assert.Nil(t, rec.Resources)
	assert.Equal(t, 0, b.callCount("IndexExists"), "no backend probe for an unknown owner")
	assert.Equal(t, domain.KindOwnerNotFound, domain.KindOf(rec.Err(scheme)))
}

func TestReconcile_CatalogHitSkipsBackendProbe(t *testing.T) {
	b := newFaultyBackend(t)
	scheme := IndexScheme(appCatalog)
	seedOwner(t, b, scheme, "app1", "movies")
	require.NoError(t, b.Engine.CreateIndex(context.Background(), "app1.movies", domain.DefaultIndexSettings()))

	rec, err := newReconciler(b, scheme).Reconcile(context.Background(), "app1", " Movies")
	require.NoError(t, err)
	assert.Equal(t, ResourceExists, rec.Outcome)
	assert.False(t, rec.Divergent)
	assert.Equal(t, "movies", rec.Name)
	assert.Equal(t, "app1.movies", rec.Qualified)
	assert.Equal(t, ResourceSet{"movies"}, rec.Resources)
	assert.Equal(t, 0, b.callCount("IndexExists"))
	assert.NoError(t, rec.Err(scheme))
}

// The catalog fast path is trusted even when the backend no longer has the
// resource. This is the one place the catalog wins over the backend.
func TestReconcile_CatalogHitBackendMissStillExists(t *testing.T) {
	b := newFaultyBackend(t)
	scheme := IndexScheme(appCatalog)

	for _, name := range []string{"movies", "books", "top_rated"} {
		t.Run(name, func(t *testing.T) {
			seedOwner(t, b, scheme, "app1", name)
			require.False(t, backendHas(t, b, "app1."+name))

			rec, err := newReconciler(b, scheme).Reconcile(context.Background(), "app1", name)
			require.NoError(t, err)
			assert.Equal(t, ResourceExists, rec.Outcome)
			assert.False(t, rec.Divergent)
		})
	}
}

func TestReconcile_BackendHitCatalogMissIsDivergent(t *testing.T) {
	b := newFaultyBackend(t)
	scheme := IndexScheme(appCatalog)
	seedOwner(t, b, scheme, "app1", "books")
	require.NoError(t, b.Engine.CreateIndex(context.Background(), "app1.movies", domain.DefaultIndexSettings()))

	rec, err := newReconciler(b, scheme).Reconcile(context.Background(), "app1", "movies")
	require.NoError(t, err)
	assert.Equal(t, ResourceExists, rec.Outcome)
	assert.True(t, rec.Divergent)
	assert.Equal(t, ResourceSet{"books"}, rec.Resources)
	assert.Equal(t, 1, b.callCount("IndexExists"))
}

func TestReconcile_ResourceNotFoundCarriesSet(t *testing.T) {
	b := newFaultyBackend(t)
	scheme := IndexScheme(appCatalog)
	seedOwner(t, b, scheme, "app1", "books", "music")

	rec, err := newReconciler(b, scheme).Reconcile(context.Background(), "app1", "movies")
	require.NoError(t, err)
	assert.Equal(t, ResourceNotFound, rec.Outcome)
	assert.Equal(t, ResourceSet{"books", "music"}, rec.Resources)
	assert.Equal(t, domain.KindResourceNotFound, domain.KindOf(rec.Err(scheme)))
}

func TestReconcile_BackendFailuresAreUnknown(t *testing.T) {
	scheme := IndexScheme(appCatalog)

	t.Run("catalog read", func(t *testing.T) {
		b := newFaultyBackend(t)
		b.failOn("GetDocument", errInjected)

		_, err := newReconciler(b, scheme).Reconcile(context.Background(), "app1", "movies")
		assert.Equal(t, domain.KindUnknown, domain.KindOf(err))
		assert.ErrorIs(t, err, errInjected)
	})

	t.Run("backend probe", func(t *testing.T) {
		b := newFaultyBackend(t)
		seedOwner(t, b, scheme, "app1")
		b.failOn("IndexExists", &domain.BackendError{Op: "exists", Status: 500})

		_, err := newReconciler(b, scheme).Reconcile(context.Background(), "app1", "movies")
		require.Error(t, err)
		assert.Equal(t, domain.KindUnknown, domain.KindOf(err))
	})
}
