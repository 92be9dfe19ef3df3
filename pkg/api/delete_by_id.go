package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/Hekkura/LibraryAppBE/pkg/domain"
)

// HandleDeleteById deletes a document from an application index
func (h *Handler) HandleDeleteById(w http.ResponseWriter, r *http.Request) {
	appID, err := pathOwner(r, "app_id")
	if err != nil {
		writeError(w, err)
		return
	}
	vars := mux.Vars(r)
	index, docID := vars["index"], vars["document_id"]

	log.Info().Str("app_id", appID).Str("index", index).Str("document_id", docID).Msg("handleDeleteById called")

	rec, err := h.indexes.Require(r.Context(), appID, index)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.backend.DeleteDocument(r.Context(), rec.Qualified, docID); err != nil {
		writeError(w, classifyBackend(err, func() error {
			return domain.DocumentNotFound(docID)
		}))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "Document deleted successfully",
		"document_id": docID,
	})
}
