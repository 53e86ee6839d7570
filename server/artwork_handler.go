package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"waxcrate/core/events"
	"waxcrate/logger"
	"waxcrate/storage"

	"github.com/google/uuid"
)

const maxArtworkUploadBytes = 10 << 20 // 10MB

// UploadArtworkHandler stores an uploaded cover image in object storage and
// points the record's album_art_url at it.
//
// Expected multipart form field:
// - file: the image (JPEG, PNG, GIF or WebP)
func (h *APIHandler) UploadArtworkHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := recordIDFromRequest(w, r)
	if !ok {
		return
	}

	record, err := h.recordRepo.GetRecordByID(r.Context(), id)
	if err != nil {
		logger.Error("Failed to get record", logger.Int64("recordId", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to get record")
		return
	}
	if record == nil {
		respondError(w, http.StatusNotFound, "Record not found")
		return
	}

	if err := r.ParseMultipartForm(maxArtworkUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "Failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing 'file' in form")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType := artworkContentType(ext)
	if contentType == "" {
		respondError(w, http.StatusBadRequest, "Unsupported image type")
		return
	}

	objectName := fmt.Sprintf("covers/%d-%s%s", id, uuid.NewString(), ext)
	if err := storage.UploadObject(r.Context(), objectName, file, header.Size, contentType); err != nil {
		logger.Error("Failed to upload artwork",
			logger.Int64("recordId", id),
			logger.String("object", objectName),
			logger.ErrorField(err),
		)
		respondError(w, http.StatusInternalServerError, "Failed to store artwork")
		return
	}

	artURL := "/static/" + objectName
	if err := h.recordRepo.UpdateAlbumArtURL(r.Context(), id, artURL); err != nil {
		logger.Error("Failed to update album art URL", logger.Int64("recordId", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to update record")
		return
	}

	record, err = h.recordRepo.GetRecordByID(r.Context(), id)
	if err != nil || record == nil {
		respondError(w, http.StatusInternalServerError, "Failed to reload record")
		return
	}

	logger.Info("Artwork uploaded",
		logger.Int64("recordId", id),
		logger.String("object", objectName),
	)
	h.hub.Publish(events.EventRecordUpdated, id, record)

	respondJSON(w, http.StatusOK, record)
}

// artworkContentType maps an image file extension to its MIME type, or ""
// for unsupported types.
func artworkContentType(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return ""
	}
}
