package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Hekkura/LibraryAppBE/pkg/domain"
)

// CreateIndexRequest is the body of POST /api/index/{app_id}
type CreateIndexRequest struct {
	Index    string `json:"index"`
	Shards   *int   `json:"shards,omitempty"`
	Replicas *int   `json:"replicas,omitempty"`
}

func (r CreateIndexRequest) Validate() error {
	if strings.TrimSpace(r.Index) == "" {
		return domain.BadDataRequest("index is required", nil)
	}
	if r.Shards != nil && *r.Shards < 1 {
		return domain.BadDataRequest("shards must be at least 1", nil)
	}
	if r.Replicas != nil && *r.Replicas < 0 {
		return domain.BadDataRequest("replicas cannot be negative", nil)
	}
	return nil
}

// Settings returns the requested settings with defaults filled in
func (r CreateIndexRequest) Settings() domain.IndexSettings {
	settings := domain.DefaultIndexSettings()
	if r.Shards != nil {
		settings.Shards = *r.Shards
	}
	if r.Replicas != nil {
		settings.Replicas = *r.Replicas
	}
	return settings
}

// PutMappingRequest is the body of PUT /api/index/mappings
type PutMappingRequest struct {
	AppID    string                 `json:"app_id"`
	Index    string                 `json:"index"`
	Mappings map[string]interface{} `json:"mappings"`
}

func (r PutMappingRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.AppID) == "":
		return domain.BadDataRequest("app_id is required", nil)
	case strings.TrimSpace(r.Index) == "":
		return domain.BadDataRequest("index is required", nil)
	case len(r.Mappings) == 0:
		return domain.BadDataRequest("mappings are required", nil)
	}
	return nil
}

// CreateGenreRequest is the body of POST /api/genre/{user_id}
type CreateGenreRequest struct {
	Genre string `json:"genre"`
}

func (r CreateGenreRequest) Validate() error {
	if strings.TrimSpace(r.Genre) == "" {
		return domain.BadDataRequest("genre is required", nil)
	}
	return nil
}

// decodeJSON decodes the request body into v
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.BadDataRequest("invalid request body", err)
	}
	return nil
}

// pathOwner returns the trimmed owner path variable, rejecting blank owners
func pathOwner(r *http.Request, key string) (string, error) {
	owner := strings.TrimSpace(mux.Vars(r)[key])
	if owner == "" {
		return "", domain.BadDataRequest(key+" is required", nil)
	}
	return owner, nil
}
