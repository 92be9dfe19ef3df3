package domain

import "context"

// SearchBackend defines the operations the service forwards to the search engine.
// Implementations hold no per-request state and are shared by all handlers.
//
// Not-found conditions are reported by wrapping ErrNotFound, duplicate index
// creation by wrapping ErrAlreadyExists and rejected payloads by wrapping
// ErrBadRequest. Anything else is returned as a *BackendError or a transport error.
type SearchBackend interface {
	Ping(ctx context.Context) error

	IndexExists(ctx context.Context, name string) (bool, error)
	CreateIndex(ctx context.Context, name string, settings IndexSettings) error
	DeleteIndex(ctx context.Context, name string) error
	IndexStats(ctx context.Context, pattern string) ([]IndexStats, error)
	GetMapping(ctx context.Context, name string) (map[string]interface{}, error)
	PutMapping(ctx context.Context, name string, mapping map[string]interface{}) error

	GetDocument(ctx context.Context, index, id string, fields []string) (Document, error)
	IndexDocument(ctx context.Context, index, id string, doc Document) error
	UpdateDocument(ctx context.Context, index, id string, partial Document) error
	DeleteDocument(ctx context.Context, index, id string) error
	BulkIndex(ctx context.Context, index string, docs []Document) (BulkResult, error)

	Search(ctx context.Context, index string, req SearchRequest) (SearchResult, error)
}
