package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/Hekkura/LibraryAppBE/pkg/domain"
)

// HandleGetMapping returns the mapping of an application index
func (h *Handler) HandleGetMapping(w http.ResponseWriter, r *http.Request) {
	appID, err := pathOwner(r, "app_id")
	if err != nil {
		writeError(w, err)
		return
	}
	index := mux.Vars(r)["index"]

	rec, err := h.indexes.Require(r.Context(), appID, index)
	if err != nil {
		writeError(w, err)
		return
	}

	mapping, err := h.backend.GetMapping(r.Context(), rec.Qualified)
	if err != nil {
		writeError(w, classifyBackend(err, func() error {
			return domain.ResourceNotFound("index", rec.Name)
		}))
		return
	}
	writeJSON(w, http.StatusOK, mapping)
}

// HandlePutMapping adds fields to the mapping of an application index
func (h *Handler) HandlePutMapping(w http.ResponseWriter, r *http.Request) {
	var req PutMappingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, err)
		return
	}

	log.Info().Str("app_id", req.AppID).Str("index", req.Index).Msg("handlePutMapping called")

	rec, err := h.indexes.Require(r.Context(), req.AppID, req.Index)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.backend.PutMapping(r.Context(), rec.Qualified, req.Mappings); err != nil {
		writeError(w, classifyBackend(err, func() error {
			return domain.ResourceNotFound("index", rec.Name)
		}))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Mapping updated successfully",
		"app_id":  req.AppID,
		"index":   rec.Name,
	})
}
