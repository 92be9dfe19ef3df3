package api

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// HandleCreateIndex creates an index for an application
func (h *Handler) HandleCreateIndex(w http.ResponseWriter, r *http.Request) {
	appID, err := pathOwner(r, "app_id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req CreateIndexRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, err)
		return
	}

	log.Info().Str("app_id", appID).Str("index", req.Index).Msg("handleCreateIndex called")

	name, err := h.indexes.Create(r.Context(), appID, req.Index, req.Settings())
	if err != nil {
		log.Warn().Err(err).Str("app_id", appID).Str("index", req.Index).Msg("create index rejected")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Index created successfully",
		"app_id":  appID,
		"index":   name,
	})
}
