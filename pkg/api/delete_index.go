package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// HandleDeleteIndex deletes an application index and its catalog entry
func (h *Handler) HandleDeleteIndex(w http.ResponseWriter, r *http.Request) {
	appID, err := pathOwner(r, "app_id")
	if err != nil {
		writeError(w, err)
		return
	}
	index := mux.Vars(r)["index"]

	log.Info().Str("app_id", appID).Str("index", index).Msg("handleDeleteIndex called")

	if err := h.indexes.Delete(r.Context(), appID, index); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Index deleted successfully",
		"app_id":  appID,
		"index":   h.indexes.Scheme().Normalize(index),
	})
}
