package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/Hekkura/LibraryAppBE/pkg/domain"
	"github.com/Hekkura/LibraryAppBE/pkg/search"
)

// HandleGetById returns the source of a document, restricted to ?return_fields= when given
func (h *Handler) HandleGetById(w http.ResponseWriter, r *http.Request) {
	appID, err := pathOwner(r, "app_id")
	if err != nil {
		writeError(w, err)
		return
	}
	vars := mux.Vars(r)
	index, docID := vars["index"], vars["document_id"]

	log.Debug().Str("app_id", appID).Str("index", index).Str("document_id", docID).Msg("handleGetById called")

	rec, err := h.indexes.Require(r.Context(), appID, index)
	if err != nil {
		writeError(w, err)
		return
	}

	fields := search.ParseFieldList(r.URL.Query().Get("return_fields"))
	doc, err := h.backend.GetDocument(r.Context(), rec.Qualified, docID, fields)
	if err != nil {
		writeError(w, classifyBackend(err, func() error {
			return domain.DocumentNotFound(docID)
		}))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
