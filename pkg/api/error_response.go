package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Hekkura/LibraryAppBE/pkg/domain"
)

// ErrorResponse represents a standard JSON error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSONError writes a JSON error response with the given status code and message
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}

// writeError maps a classified error to its status and caller-facing message.
// Unclassified errors are reported as unknown.
func writeError(w http.ResponseWriter, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		de = domain.Unknown(err)
	}
	status := de.Status()
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg("request failed")
	}
	WriteJSONError(w, status, de.Message())
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to encode response")
	}
}

// classifyBackend converts a backend failure on a resource the catalog
// already vouched for. notFound builds the error for a backend 404.
func classifyBackend(err error, notFound func() error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return notFound()
	case errors.Is(err, domain.ErrBadRequest):
		return domain.BadDataRequest("", err)
	}
	return domain.Unknown(err)
}
