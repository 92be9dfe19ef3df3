package api

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/Hekkura/LibraryAppBE/pkg/domain"
)

// MockSearchBackend provides an in-memory implementation of domain.SearchBackend for testing
type MockSearchBackend struct {
	mu       sync.RWMutex
	indices  map[string]map[string]domain.Document
	mappings map[string]map[string]interface{}
	down     bool
	errs     map[string]error

	createCalls int
	deleteCalls int
	bulkCalls   int
	searchCalls int
	lastSearch  domain.SearchRequest
}

// NewMockSearchBackend creates a new mock backend
func NewMockSearchBackend() *MockSearchBackend {
	return &MockSearchBackend{
		indices:  make(map[string]map[string]domain.Document),
		mappings: make(map[string]map[string]interface{}),
		errs:     make(map[string]error),
	}
}

// SetDown makes Ping fail
func (m *MockSearchBackend) SetDown(down bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.down = down
}

// SetError makes the named operation ("CreateIndex", "Search", ...) return err
func (m *MockSearchBackend) SetError(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[op] = err
}

// AddOwner seeds the catalog document of owner in catalogIndex
func (m *MockSearchBackend) AddOwner(catalogIndex, field, owner string, names ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if names == nil {
		names = []string{}
	}
	m.index(catalogIndex)[owner] = domain.Document{field: names}
}

// AddIndex creates a backend index without touching any catalog
func (m *MockSearchBackend) AddIndex(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.index(name)
}

func (m *MockSearchBackend) HasIndex(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.indices[name]
	return ok
}

// Document returns a stored document, nil when missing
func (m *MockSearchBackend) Document(index, id string) domain.Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.indices[index][id]
}

func (m *MockSearchBackend) GetCreateCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.createCalls
}

func (m *MockSearchBackend) GetDeleteCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.deleteCalls
}

func (m *MockSearchBackend) GetBulkCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bulkCalls
}

func (m *MockSearchBackend) GetSearchCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.searchCalls
}

// LastSearch returns the most recent search request
func (m *MockSearchBackend) LastSearch() domain.SearchRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSearch
}

func (m *MockSearchBackend) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.down {
		return errors.New("connection refused")
	}
	return m.errs["Ping"]
}

func (m *MockSearchBackend) IndexExists(ctx context.Context, name string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.errs["IndexExists"]; err != nil {
		return false, err
	}
	_, ok := m.indices[name]
	return ok, nil
}

func (m *MockSearchBackend) CreateIndex(ctx context.Context, name string, settings domain.IndexSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if err := m.errs["CreateIndex"]; err != nil {
		return err
	}
	if _, ok := m.indices[name]; ok {
		return fmt.Errorf("index %s: %w", name, domain.ErrAlreadyExists)
	}
	m.index(name)
	return nil
}

func (m *MockSearchBackend) DeleteIndex(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	if err := m.errs["DeleteIndex"]; err != nil {
		return err
	}
	if _, ok := m.indices[name]; !ok {
		return fmt.Errorf("index %s: %w", name, domain.ErrNotFound)
	}
	delete(m.indices, name)
	delete(m.mappings, name)
	return nil
}

func (m *MockSearchBackend) IndexStats(ctx context.Context, pattern string) ([]domain.IndexStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.errs["IndexStats"]; err != nil {
		return nil, err
	}
	prefix, wildcard := strings.CutSuffix(pattern, "*")
	stats := make([]domain.IndexStats, 0)
	for name, docs := range m.indices {
		if (wildcard && strings.HasPrefix(name, prefix)) || name == pattern {
			stats = append(stats, domain.IndexStats{Index: name, DocsCount: fmt.Sprint(len(docs))})
		}
	}
	if len(stats) == 0 && !wildcard {
		return nil, fmt.Errorf("index %s: %w", pattern, domain.ErrNotFound)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Index < stats[j].Index })
	return stats, nil
}

func (m *MockSearchBackend) GetMapping(ctx context.Context, name string) (map[string]interface{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.indices[name]; !ok {
		return nil, fmt.Errorf("index %s: %w", name, domain.ErrNotFound)
	}
	props := m.mappings[name]
	if props == nil {
		props = map[string]interface{}{}
	}
	return map[string]interface{}{"mappings": map[string]interface{}{"properties": props}}, nil
}

func (m *MockSearchBackend) PutMapping(ctx context.Context, name string, mapping map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs["PutMapping"]; err != nil {
		return err
	}
	if _, ok := m.indices[name]; !ok {
		return fmt.Errorf("index %s: %w", name, domain.ErrNotFound)
	}
	props, ok := mapping["properties"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("mapping without properties: %w", domain.ErrBadRequest)
	}
	if m.mappings[name] == nil {
		m.mappings[name] = map[string]interface{}{}
	}
	for field, def := range props {
		m.mappings[name][field] = def
	}
	return nil
}

func (m *MockSearchBackend) GetDocument(ctx context.Context, index, id string, fields []string) (domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.errs["GetDocument"]; err != nil {
		return nil, err
	}
	doc, ok := m.indices[index][id]
	if !ok {
		return nil, fmt.Errorf("document %s in index %s: %w", id, index, domain.ErrNotFound)
	}
	out := domain.Document{}
	for k, v := range doc {
		if len(fields) == 0 || slices.Contains(fields, k) {
			out[k] = v
		}
	}
	return out, nil
}

func (m *MockSearchBackend) IndexDocument(ctx context.Context, index, id string, doc domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.index(index)[id] = doc
	return nil
}

func (m *MockSearchBackend) UpdateDocument(ctx context.Context, index, id string, partial domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs["UpdateDocument"]; err != nil {
		return err
	}
	doc, ok := m.indices[index][id]
	if !ok {
		return fmt.Errorf("document %s in index %s: %w", id, index, domain.ErrNotFound)
	}
	for k, v := range partial {
		doc[k] = v
	}
	return nil
}

func (m *MockSearchBackend) DeleteDocument(ctx context.Context, index, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.indices[index][id]; !ok {
		return fmt.Errorf("document %s in index %s: %w", id, index, domain.ErrNotFound)
	}
	delete(m.indices[index], id)
	return nil
}

func (m *MockSearchBackend) BulkIndex(ctx context.Context, index string, docs []domain.Document) (domain.BulkResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bulkCalls++
	if err := m.errs["BulkIndex"]; err != nil {
		return domain.BulkResult{}, err
	}
	idx := m.index(index)
	result := domain.BulkResult{}
	for _, doc := range docs {
		id, _ := doc["_id"].(string)
		if id == "" {
			id = fmt.Sprintf("%d", len(idx)+1)
		}
		delete(doc, "_id")
		idx[id] = doc
		result.Indexed++
		result.IDs = append(result.IDs, id)
	}
	return result, nil
}

func (m *MockSearchBackend) Search(ctx context.Context, index string, req domain.SearchRequest) (domain.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls++
	m.lastSearch = req
	if err := m.errs["Search"]; err != nil {
		return nil, err
	}
	docs, ok := m.indices[index]
	if !ok {
		return nil, fmt.Errorf("index %s: %w", index, domain.ErrNotFound)
	}
	return domain.SearchResult{
		"hits": map[string]interface{}{
			"total": map[string]interface{}{"value": len(docs), "relation": "eq"},
			"hits":  []interface{}{},
		},
	}, nil
}

// index returns the documents of name, creating the index when missing. Callers hold the lock.
func (m *MockSearchBackend) index(name string) map[string]domain.Document {
	docs, ok := m.indices[name]
	if !ok {
		docs = make(map[string]domain.Document)
		m.indices[name] = docs
	}
	return docs
}

var _ domain.SearchBackend = (*MockSearchBackend)(nil)
