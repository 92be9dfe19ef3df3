package api

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API routes with the given router. The router
// is expected to be mounted under /api.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	// Index operations
	router.HandleFunc("/index/list/{app_id}", h.HandleListIndexes).Methods("GET")
	router.HandleFunc("/index/mappings", h.HandlePutMapping).Methods("PUT")
	router.HandleFunc("/index/mappings/{app_id}/{index}", h.HandleGetMapping).Methods("GET")
	router.HandleFunc("/index/{app_id}", h.HandleCreateIndex).Methods("POST")
	router.HandleFunc("/index/{app_id}", h.HandleGetIndexes).Methods("GET")
	router.HandleFunc("/index/{app_id}/{index}", h.HandleDeleteIndex).Methods("DELETE")

	// Document operations
	router.HandleFunc("/document/{app_id}/{index}", h.HandleBatchInsert).Methods("POST")
	router.HandleFunc("/document/{app_id}/{index}/{document_id}", h.HandleGetById).Methods("GET")
	router.HandleFunc("/document/{app_id}/{index}/{document_id}", h.HandleUpdateById).Methods("PUT")
	router.HandleFunc("/document/{app_id}/{index}/{document_id}", h.HandleDeleteById).Methods("DELETE")

	// Search
	router.HandleFunc("/search/{app_id}/{index}", h.HandleSearch).Methods("GET", "POST")

	// Genre operations
	router.HandleFunc("/genre/list/{user_id}", h.HandleListGenres).Methods("GET")
	router.HandleFunc("/genre/{user_id}", h.HandleCreateGenre).Methods("POST")
	router.HandleFunc("/genre/{user_id}", h.HandleGetGenres).Methods("GET")
	router.HandleFunc("/genre/{user_id}/{genre}", h.HandleDeleteGenre).Methods("DELETE")
}
