package api

import (
	"github.com/Hekkura/LibraryAppBE/pkg/catalog"
	"github.com/Hekkura/LibraryAppBE/pkg/domain"
)

// Handler provides HTTP handlers for the library API
type Handler struct {
	backend domain.SearchBackend
	indexes *catalog.Lifecycle
	genres  *catalog.Lifecycle
}

// NewHandler creates a new API handler with dependency injection. indexes
// manages application indices and genres manages user genres; both must be
// built on backend.
func NewHandler(backend domain.SearchBackend, indexes, genres *catalog.Lifecycle) *Handler {
	return &Handler{
		backend: backend,
		indexes: indexes,
		genres:  genres,
	}
}
