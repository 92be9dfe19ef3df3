package api

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Hekkura/LibraryAppBE/pkg/catalog"
	"github.com/Hekkura/LibraryAppBE/pkg/domain"
)

// HandleGetIndexes returns backend statistics for one application index
// (?index=) or for every index of the application
func (h *Handler) HandleGetIndexes(w http.ResponseWriter, r *http.Request) {
	h.serveStats(w, r, h.indexes, "app_id", "index")
}

// HandleListIndexes returns the index names listed in the application's catalog
func (h *Handler) HandleListIndexes(w http.ResponseWriter, r *http.Request) {
	h.serveList(w, r, h.indexes, "app_id")
}

func (h *Handler) serveStats(w http.ResponseWriter, r *http.Request, lc *catalog.Lifecycle, ownerKey, nameKey string) {
	owner, err := pathOwner(r, ownerKey)
	if err != nil {
		writeError(w, err)
		return
	}
	name := r.URL.Query().Get(nameKey)

	log.Debug().Str(ownerKey, owner).Str(nameKey, name).Msg("serveStats called")

	stats, err := h.stats(r.Context(), lc, owner, name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// stats resolves the pattern to list. A named resource must reconcile to
// existing first; without a name every resource of owner is listed.
func (h *Handler) stats(ctx context.Context, lc *catalog.Lifecycle, owner, name string) ([]domain.IndexStats, error) {
	scheme := lc.Scheme()
	pattern := scheme.Pattern(owner)
	if name != "" {
		rec, err := lc.Require(ctx, owner, name)
		if err != nil {
			return nil, err
		}
		pattern = rec.Qualified
	} else {
		if err := lc.Live(ctx); err != nil {
			return nil, err
		}
		if err := scheme.ValidateOwner(owner); err != nil {
			return nil, err
		}
	}

	stats, err := h.backend.IndexStats(ctx, pattern)
	if err != nil {
		return nil, classifyBackend(err, func() error {
			return domain.ResourceNotFound(scheme.ResourceNoun, scheme.Normalize(name))
		})
	}
	return stats, nil
}

func (h *Handler) serveList(w http.ResponseWriter, r *http.Request, lc *catalog.Lifecycle, ownerKey string) {
	owner, err := pathOwner(r, ownerKey)
	if err != nil {
		writeError(w, err)
		return
	}

	resources, err := lc.List(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	if resources == nil {
		resources = catalog.ResourceSet{}
	}
	writeJSON(w, http.StatusOK, resources)
}
