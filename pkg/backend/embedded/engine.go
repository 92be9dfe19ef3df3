package embedded

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/Hekkura/LibraryAppBE/pkg/domain"
)

// ErrClosed is returned by Ping once the engine has been stopped
var ErrClosed = errors.New("embedded backend closed")

// Engine is an in-process implementation of domain.SearchBackend. It keeps
// every index in memory and persists snapshots on demand or in the background.
type Engine struct {
	mu       sync.RWMutex
	indices  map[string]*Index
	dirty    bool
	defaults domain.IndexSettings

	// Configuration
	dataFile       string
	backgroundSave bool
	saveInterval   time.Duration

	// Background workers
	backgroundWg sync.WaitGroup
	stopChan     chan struct{}
}

var _ domain.SearchBackend = (*Engine)(nil)

// NewEngine creates a new embedded engine
func NewEngine(options ...Option) *Engine {
	engine := &Engine{
		indices:      make(map[string]*Index),
		defaults:     domain.DefaultIndexSettings(),
		saveInterval: 5 * time.Minute,
		stopChan:     make(chan struct{}),
	}

	for _, option := range options {
		option(engine)
	}

	return engine
}

// DataFile returns the configured snapshot file
func (e *Engine) DataFile() string {
	return e.dataFile
}

// Ping reports whether the engine is still running
func (e *Engine) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-e.stopChan:
		return ErrClosed
	default:
		return nil
	}
}

func (e *Engine) IndexExists(ctx context.Context, name string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, exists := e.indices[name]
	return exists, nil
}

func (e *Engine) CreateIndex(ctx context.Context, name string, settings domain.IndexSettings) error {
	if err := validateIndexName(name); err != nil {
		return err
	}
	if settings.Shards < 0 || settings.Replicas < 0 {
		return fmt.Errorf("index %s: negative shard or replica count: %w", name, domain.ErrBadRequest)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.indices[name]; exists {
		return fmt.Errorf("index %s: %w", name, domain.ErrAlreadyExists)
	}
	e.indices[name] = e.newIndex(name, settings)
	e.dirty = true
	return nil
}

func (e *Engine) DeleteIndex(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.indices[name]; !exists {
		return fmt.Errorf("index %s: %w", name, domain.ErrNotFound)
	}
	delete(e.indices, name)
	e.dirty = true
	return nil
}

// IndexStats lists indices matching pattern. A pattern without wildcards that
// matches nothing is reported as not found; a wildcard pattern yields an empty list.
func (e *Engine) IndexStats(ctx context.Context, pattern string) ([]domain.IndexStats, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stats := make([]domain.IndexStats, 0)
	for name, idx := range e.indices {
		matched, err := path.Match(pattern, name)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pattern, domain.ErrBadRequest)
		}
		if matched {
			stats = append(stats, idx.stats())
		}
	}
	if len(stats) == 0 && !strings.Contains(pattern, "*") {
		return nil, fmt.Errorf("index %s: %w", pattern, domain.ErrNotFound)
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].Index < stats[j].Index })
	return stats, nil
}

func (e *Engine) GetMapping(ctx context.Context, name string) (map[string]interface{}, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	idx, exists := e.indices[name]
	if !exists {
		return nil, fmt.Errorf("index %s: %w", name, domain.ErrNotFound)
	}
	return map[string]interface{}{"mappings": deepCopy(idx.Mapping)}, nil
}

func (e *Engine) PutMapping(ctx context.Context, name string, mapping map[string]interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx, exists := e.indices[name]
	if !exists {
		return fmt.Errorf("index %s: %w", name, domain.ErrNotFound)
	}
	merged, err := mergeMapping(idx.Mapping, mapping)
	if err != nil {
		return fmt.Errorf("index %s: %v: %w", name, err, domain.ErrBadRequest)
	}
	idx.Mapping = merged
	e.dirty = true
	return nil
}

// GetDocument returns the source of a document, restricted to fields when given
func (e *Engine) GetDocument(ctx context.Context, index, id string, fields []string) (domain.Document, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	doc, err := e.getDocumentInternal(index, id)
	if err != nil {
		return nil, err
	}
	return filterSource(doc, fields), nil
}

// IndexDocument stores doc under id, creating the index when needed. An empty id is generated.
func (e *Engine) IndexDocument(ctx context.Context, index, id string, doc domain.Document) error {
	if err := validateIndexName(index); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.getOrCreateIndex(index)
	if id == "" {
		id = uuid.NewString()
	}
	idx.Documents[id] = deepCopy(doc)
	e.dirty = true
	return nil
}

// UpdateDocument merges partial into an existing document
func (e *Engine) UpdateDocument(ctx context.Context, index, id string, partial domain.Document) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc, err := e.getDocumentInternal(index, id)
	if err != nil {
		return err
	}
	mergeInto(doc, deepCopy(partial))
	e.dirty = true
	return nil
}

func (e *Engine) DeleteDocument(ctx context.Context, index, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.getDocumentInternal(index, id); err != nil {
		return err
	}
	delete(e.indices[index].Documents, id)
	e.dirty = true
	return nil
}

// BulkIndex stores every document, taking its id from a string "_id" field
// when present and generating one otherwise
func (e *Engine) BulkIndex(ctx context.Context, index string, docs []domain.Document) (domain.BulkResult, error) {
	if err := validateIndexName(index); err != nil {
		return domain.BulkResult{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.getOrCreateIndex(index)
	result := domain.BulkResult{IDs: make([]string, 0, len(docs))}
	for _, doc := range docs {
		if doc == nil {
			result.Failed++
			continue
		}
		source := deepCopy(doc)
		id, _ := source["_id"].(string)
		delete(source, "_id")
		if id == "" {
			id = uuid.NewString()
		}
		idx.Documents[id] = source
		result.Indexed++
		result.IDs = append(result.IDs, id)
	}
	if result.Indexed > 0 {
		e.dirty = true
	}
	return result, nil
}

func (e *Engine) Search(ctx context.Context, index string, req domain.SearchRequest) (domain.SearchResult, error) {
	start := time.Now()

	e.mu.RLock()
	defer e.mu.RUnlock()

	idx, exists := e.indices[index]
	if !exists {
		return nil, fmt.Errorf("index %s: %w", index, domain.ErrNotFound)
	}
	if err := req.Page.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}

	query, err := compileQuery(req.Body)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}

	ids := make([]string, 0, len(idx.Documents))
	for id, doc := range idx.Documents {
		if query.matches(doc) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	total := len(ids)

	from := min(req.Page.From, total)
	to := min(from+req.Page.Size, total)
	hits := make([]interface{}, 0, to-from)
	for _, id := range ids[from:to] {
		hits = append(hits, map[string]interface{}{
			"_index":  index,
			"_id":     id,
			"_score":  1.0,
			"_source": filterSource(idx.Documents[id], query.includes),
		})
	}

	return domain.SearchResult{
		"took":      time.Since(start).Milliseconds(),
		"timed_out": false,
		"hits": map[string]interface{}{
			"total":     map[string]interface{}{"value": total, "relation": "eq"},
			"max_score": 1.0,
			"hits":      hits,
		},
	}, nil
}

// Close stops background workers and saves a final snapshot when a data file is configured
func (e *Engine) Close() error {
	e.StopBackgroundWorkers()
	if e.dataFile == "" {
		return nil
	}
	return e.SaveToFile(e.dataFile)
}

func (e *Engine) getDocumentInternal(index, id string) (domain.Document, error) {
	idx, exists := e.indices[index]
	if !exists {
		return nil, fmt.Errorf("index %s: %w", index, domain.ErrNotFound)
	}
	doc, exists := idx.Documents[id]
	if !exists {
		return nil, fmt.Errorf("document %s in index %s: %w", id, index, domain.ErrNotFound)
	}
	return doc, nil
}

func (e *Engine) getOrCreateIndex(name string) *Index {
	idx, exists := e.indices[name]
	if !exists {
		idx = e.newIndex(name, e.defaults)
		e.indices[name] = idx
	}
	return idx
}

func (e *Engine) newIndex(name string, settings domain.IndexSettings) *Index {
	if settings.Shards == 0 {
		settings.Shards = e.defaults.Shards
	}
	return &Index{
		Name:      name,
		UUID:      uuid.NewString(),
		Settings:  settings,
		Mapping:   emptyMapping(),
		Documents: make(map[string]domain.Document),
		CreatedAt: time.Now().UTC(),
	}
}

func (idx *Index) stats() domain.IndexStats {
	size := 0
	if encoded, err := msgpack.Marshal(idx.Documents); err == nil {
		size = len(encoded)
	}
	return domain.IndexStats{
		Health:       "green",
		Status:       "open",
		Index:        idx.Name,
		UUID:         idx.UUID,
		Primaries:    strconv.Itoa(idx.Settings.Shards),
		Replicas:     strconv.Itoa(idx.Settings.Replicas),
		DocsCount:    strconv.Itoa(len(idx.Documents)),
		DocsDeleted:  "0",
		StoreSize:    fmt.Sprintf("%db", size*(1+idx.Settings.Replicas)),
		PriStoreSize: fmt.Sprintf("%db", size),
	}
}

// validateIndexName applies the backend's index naming rules
func validateIndexName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("index name is empty: %w", domain.ErrBadRequest)
	case name != strings.ToLower(name):
		return fmt.Errorf("index name %q must be lowercase: %w", name, domain.ErrBadRequest)
	case strings.ContainsAny(name[:1], "_-+"):
		return fmt.Errorf("index name %q must not start with '_', '-' or '+': %w", name, domain.ErrBadRequest)
	case strings.ContainsAny(name, "\\/*?\"<>| ,#:"):
		return fmt.Errorf("index name %q contains an invalid character: %w", name, domain.ErrBadRequest)
	case name == "." || name == "..":
		return fmt.Errorf("index name %q is reserved: %w", name, domain.ErrBadRequest)
	}
	return nil
}
