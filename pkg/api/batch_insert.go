package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/Hekkura/LibraryAppBE/pkg/domain"
)

// HandleBatchInsert indexes an array of documents into an application index.
// A string "_id" field on a document becomes its id.
func (h *Handler) HandleBatchInsert(w http.ResponseWriter, r *http.Request) {
	appID, err := pathOwner(r, "app_id")
	if err != nil {
		writeError(w, err)
		return
	}
	index := mux.Vars(r)["index"]

	var docs []domain.Document
	if err := decodeJSON(r, &docs); err != nil {
		writeError(w, err)
		return
	}
	if len(docs) == 0 {
		writeError(w, domain.BadDataRequest("at least one document is required", nil))
		return
	}

	log.Info().Str("app_id", appID).Str("index", index).Int("count", len(docs)).Msg("handleBatchInsert called")

	rec, err := h.indexes.Require(r.Context(), appID, index)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.backend.BulkIndex(r.Context(), rec.Qualified, docs)
	if err != nil {
		writeError(w, classifyBackend(err, func() error {
			return domain.ResourceNotFound("index", rec.Name)
		}))
		return
	}

	log.Info().Str("qualified", rec.Qualified).Int("indexed", result.Indexed).Int("failed", result.Failed).Msg("batch insert finished")
	writeJSON(w, http.StatusCreated, result)
}
