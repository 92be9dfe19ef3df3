package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Hekkura/LibraryAppBE/pkg/backend/embedded"
	"github.com/Hekkura/LibraryAppBE/pkg/domain"
)

const (
	appCatalog  = "user_apps"
	userCatalog = "user_list"
)

var errInjected = errors.New("injected failure")

// faultyBackend wraps the embedded engine with call counting and per-operation failure injection
type faultyBackend struct {
	*embedded.Engine

	mu    sync.Mutex
	down  bool
	fail  map[string]error
	calls map[string]int
}

func newFaultyBackend(t *testing.T) *faultyBackend {
	t.Helper()
	engine := embedded.NewEngine()
	t.Cleanup(engine.StopBackgroundWorkers)
	return &faultyBackend{
		Engine: engine,
		fail:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

func (b *faultyBackend) enter(op string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[op]++
	return b.fail[op]
}

func (b *faultyBackend) failOn(op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.fail, op)
		return
	}
	b.fail[op] = err
}

func (b *faultyBackend) setDown(down bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.down = down
}

func (b *faultyBackend) callCount(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

func (b *faultyBackend) Ping(ctx context.Context) error {
	if err := b.enter("Ping"); err != nil {
		return err
	}
	b.mu.Lock()
	down := b.down
	b.mu.Unlock()
	if down {
		return errors.New("connection refused")
	}
	return b.Engine.Ping(ctx)
}

func (b *faultyBackend) IndexExists(ctx context.Context, name string) (bool, error) {
	if err := b.enter("IndexExists"); err != nil {
		return false, err
	}
	return b.Engine.IndexExists(ctx, name)
}

func (b *faultyBackend) CreateIndex(ctx context.Context, name string, settings domain.IndexSettings) error {
	if err := b.enter("CreateIndex"); err != nil {
		return err
	}
	return b.Engine.CreateIndex(ctx, name, settings)
}

func (b *faultyBackend) DeleteIndex(ctx context.Context, name string) error {
	if err := b.enter("DeleteIndex"); err != nil {
		return err
	}
	return b.Engine.DeleteIndex(ctx, name)
}

func (b *faultyBackend) GetDocument(ctx context.Context, index, id string, fields []string) (domain.Document, error) {
	if err := b.enter("GetDocument"); err != nil {
		return nil, err
	}
	return b.Engine.GetDocument(ctx, index, id, fields)
}

func (b *faultyBackend) UpdateDocument(ctx context.Context, index, id string, partial domain.Document) error {
	if err := b.enter("UpdateDocument"); err != nil {
		return err
	}
	return b.Engine.UpdateDocument(ctx, index, id, partial)
}

// seedOwner registers an owner catalog document listing names
func seedOwner(t *testing.T, b *faultyBackend, scheme Scheme, owner string, names ...string) {
	t.Helper()
	err := b.Engine.IndexDocument(context.Background(), scheme.CatalogIndex, owner, domain.Document{
		scheme.Field: []string(NewResourceSet(names...)),
	})
	require.NoError(t, err)
}

// catalogOf reads the owner's catalog directly from the engine
func catalogOf(t *testing.T, b *faultyBackend, scheme Scheme, owner string) ResourceSet {
	t.Helper()
	set, found, err := NewStore(b.Engine, scheme).Get(context.Background(), owner)
	require.NoError(t, err)
	require.True(t, found)
	return set
}

func backendHas(t *testing.T, b *faultyBackend, qualified string) bool {
	t.Helper()
	exists, err := b.Engine.IndexExists(context.Background(), qualified)
	require.NoError(t, err)
	return exists
}
