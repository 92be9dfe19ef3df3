package domain

// Document represents a document stored in a backend index
type Document map[string]interface{}

// IndexSettings carries the create options of a backend index
type IndexSettings struct {
	Shards   int `json:"number_of_shards" msgpack:"shards"`
	Replicas int `json:"number_of_replicas" msgpack:"replicas"`
}

// DefaultIndexSettings returns the settings used when a request omits them
func DefaultIndexSettings() IndexSettings {
	return IndexSettings{Shards: 1, Replicas: 1}
}

// IndexStats is one row of the backend's index listing (the `_cat/indices` shape)
type IndexStats struct {
	Health       string `json:"health"`
	Status       string `json:"status"`
	Index        string `json:"index"`
	UUID         string `json:"uuid"`
	Primaries    string `json:"pri"`
	Replicas     string `json:"rep"`
	DocsCount    string `json:"docs.count"`
	DocsDeleted  string `json:"docs.deleted"`
	StoreSize    string `json:"store.size"`
	PriStoreSize string `json:"pri.store.size"`
}

// BulkResult summarizes a bulk indexing request
type BulkResult struct {
	Indexed int      `json:"indexed"`
	Failed  int      `json:"failed"`
	IDs     []string `json:"ids,omitempty"`
}
