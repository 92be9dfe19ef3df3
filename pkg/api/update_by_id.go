package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/Hekkura/LibraryAppBE/pkg/domain"
)

// HandleUpdateById merges the request body into an existing document
func (h *Handler) HandleUpdateById(w http.ResponseWriter, r *http.Request) {
	appID, err := pathOwner(r, "app_id")
	if err != nil {
		writeError(w, err)
		return
	}
	vars := mux.Vars(r)
	index, docID := vars["index"], vars["document_id"]

	var updates domain.Document
	if err := decodeJSON(r, &updates); err != nil {
		writeError(w, err)
		return
	}
	if len(updates) == 0 {
		writeError(w, domain.BadDataRequest("no fields to update", nil))
		return
	}

	log.Info().Str("app_id", appID).Str("index", index).Str("document_id", docID).Msg("handleUpdateById called")

	rec, err := h.indexes.Require(r.Context(), appID, index)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.backend.UpdateDocument(r.Context(), rec.Qualified, docID, updates); err != nil {
		writeError(w, classifyBackend(err, func() error {
			return domain.DocumentNotFound(docID)
		}))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "Document updated successfully",
		"document_id": docID,
	})
}
