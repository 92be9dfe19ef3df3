package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const healthTimeout = 2 * time.Second

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Backend bool   `json:"backend"`
}

// HandleHealth reports whether the service and its search backend are reachable.
// The service answers 200 either way; a down backend is reported as degraded.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	response := HealthResponse{Status: "healthy", Backend: true}
	if err := h.backend.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("health check: backend unreachable")
		response = HealthResponse{Status: "degraded", Backend: false}
	}
	writeJSON(w, http.StatusOK, response)
}
