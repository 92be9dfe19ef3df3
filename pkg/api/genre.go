package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/Hekkura/LibraryAppBE/pkg/domain"
)

// HandleCreateGenre creates a genre for a user with default index settings
func (h *Handler) HandleCreateGenre(w http.ResponseWriter, r *http.Request) {
	userID, err := pathOwner(r, "user_id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req CreateGenreRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Str("genre", req.Genre).Msg("handleCreateGenre called")

	name, err := h.genres.Create(r.Context(), userID, req.Genre, domain.DefaultIndexSettings())
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Str("genre", req.Genre).Msg("create genre rejected")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Genre created successfully",
		"user_id": userID,
		"genre":   name,
	})
}

// HandleGetGenres returns backend statistics for one genre (?genre=) or all genres of a user
func (h *Handler) HandleGetGenres(w http.ResponseWriter, r *http.Request) {
	h.serveStats(w, r, h.genres, "user_id", "genre")
}

// HandleListGenres returns the genre names listed in the user's catalog
func (h *Handler) HandleListGenres(w http.ResponseWriter, r *http.Request) {
	h.serveList(w, r, h.genres, "user_id")
}

// HandleDeleteGenre deletes a user genre and its catalog entry
func (h *Handler) HandleDeleteGenre(w http.ResponseWriter, r *http.Request) {
	userID, err := pathOwner(r, "user_id")
	if err != nil {
		writeError(w, err)
		return
	}
	genre := mux.Vars(r)["genre"]

	log.Info().Str("user_id", userID).Str("genre", genre).Msg("handleDeleteGenre called")

	if err := h.genres.Delete(r.Context(), userID, genre); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Genre deleted successfully",
		"user_id": userID,
		"genre":   h.genres.Scheme().Normalize(genre),
	})
}
