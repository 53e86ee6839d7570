package server

import (
	"net/http"
)

// FetchAlbumInfoHandler looks up album art, Discogs URL and Last.fm review
// URL for an artist/title pair. Upstream failures surface as null fields,
// never as an error status.
func (h *APIHandler) FetchAlbumInfoHandler(w http.ResponseWriter, r *http.Request) {
	artist := r.URL.Query().Get("artist")
	title := r.URL.Query().Get("title")
	if artist == "" || title == "" {
		respondError(w, http.StatusBadRequest, "Missing query parameter 'artist' or 'title'")
		return
	}

	info := h.albumInfo.Lookup(r.Context(), artist, title)
	respondJSON(w, http.StatusOK, info)
}
