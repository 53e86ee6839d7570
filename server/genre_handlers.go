package server

import (
	"net/http"

	"waxcrate/logger"
)

// ListGenresHandler returns all genres.
func (h *APIHandler) ListGenresHandler(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := parsePagination(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid skip or limit parameter")
		return
	}

	genres, err := h.genreRepo.ListGenres(r.Context(), skip, limit)
	if err != nil {
		logger.Error("Failed to list genres", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to list genres")
		return
	}

	respondJSON(w, http.StatusOK, genres)
}
