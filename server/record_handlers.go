package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"waxcrate/core/events"
	"waxcrate/logger"
	"waxcrate/model"

	"github.com/gorilla/mux"
)

// ListRecordsHandler returns a page of records.
func (h *APIHandler) ListRecordsHandler(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := parsePagination(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid skip or limit parameter")
		return
	}

	records, err := h.recordRepo.ListRecords(r.Context(), skip, limit)
	if err != nil {
		logger.Error("Failed to list records", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to list records")
		return
	}

	respondJSON(w, http.StatusOK, records)
}

// SearchRecordsHandler searches records by title, artist, label, catalog
// number or genre name.
func (h *APIHandler) SearchRecordsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, http.StatusBadRequest, "Missing query parameter 'q'")
		return
	}

	skip, limit, err := parsePagination(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid skip or limit parameter")
		return
	}

	results, err := h.recordRepo.SearchRecords(r.Context(), query, skip, limit)
	if err != nil {
		logger.Error("Failed to search records",
			logger.String("query", query),
			logger.ErrorField(err),
		)
		respondError(w, http.StatusInternalServerError, "Failed to search records")
		return
	}

	respondJSON(w, http.StatusOK, results)
}

// GetRecordHandler returns a single record by id.
func (h *APIHandler) GetRecordHandler(w http.ResponseWriter, r *http.Request) {
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

	respondJSON(w, http.StatusOK, record)
}

// CreateRecordHandler creates a record with its genres and tracks. Missing
// album art/review URLs are filled in from the external APIs, best effort.
func (h *APIHandler) CreateRecordHandler(w http.ResponseWriter, r *http.Request) {
	var payload model.RecordCreate
	if err := decodeJSONBody(w, r, &payload); err != nil {
		return
	}

	if fields := validateRecordCreate(&payload); len(fields) > 0 {
		respondValidationError(w, fields)
		return
	}

	// Only reach out to the external APIs when something is missing.
	if payload.AlbumArtURL == "" || payload.DiscogsURL == "" || payload.ReviewURL == "" {
		info := h.albumInfo.Lookup(r.Context(), payload.Artist, payload.Title)
		if payload.AlbumArtURL == "" && info.AlbumArtURL != nil {
			payload.AlbumArtURL = *info.AlbumArtURL
		}
		if payload.DiscogsURL == "" && info.DiscogsURL != nil {
			payload.DiscogsURL = *info.DiscogsURL
		}
		if payload.ReviewURL == "" && info.ReviewURL != nil {
			payload.ReviewURL = *info.ReviewURL
		}
	}

	record, err := h.recordRepo.CreateRecord(r.Context(), &payload)
	if err != nil {
		logger.Error("Failed to create record",
			logger.String("title", payload.Title),
			logger.ErrorField(err),
		)
		respondError(w, http.StatusInternalServerError, "Failed to create record")
		return
	}

	logger.Info("Record created",
		logger.Int64("recordId", record.ID),
		logger.String("title", record.Title),
		logger.String("artist", record.Artist),
	)
	h.hub.Publish(events.EventRecordCreated, record.ID, record)

	respondJSON(w, http.StatusCreated, record)
}

// UpdateRecordHandler applies a partial update to a record.
func (h *APIHandler) UpdateRecordHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := recordIDFromRequest(w, r)
	if !ok {
		return
	}

	var payload model.RecordUpdate
	if err := decodeJSONBody(w, r, &payload); err != nil {
		return
	}

	if fields := validateRecordUpdate(&payload); len(fields) > 0 {
		respondValidationError(w, fields)
		return
	}

	record, err := h.recordRepo.UpdateRecord(r.Context(), id, &payload)
	if err != nil {
		logger.Error("Failed to update record", logger.Int64("recordId", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to update record")
		return
	}
	if record == nil {
		respondError(w, http.StatusNotFound, "Record not found")
		return
	}

	logger.Info("Record updated", logger.Int64("recordId", id))
	h.hub.Publish(events.EventRecordUpdated, id, record)

	respondJSON(w, http.StatusOK, record)
}

// DeleteRecordHandler removes a record along with its tracks.
func (h *APIHandler) DeleteRecordHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := recordIDFromRequest(w, r)
	if !ok {
		return
	}

	deleted, err := h.recordRepo.DeleteRecord(r.Context(), id)
	if err != nil {
		logger.Error("Failed to delete record", logger.Int64("recordId", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to delete record")
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, "Record not found")
		return
	}

	logger.Info("Record deleted", logger.Int64("recordId", id))
	h.hub.Publish(events.EventRecordDeleted, id, nil)

	w.WriteHeader(http.StatusNoContent)
}

// recordIDFromRequest parses the {id} path variable, writing a 400 on failure.
func recordIDFromRequest(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid record id")
		return 0, false
	}
	return id, true
}

// decodeJSONBody decodes the request body, writing a 400 on malformed JSON.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return err
	}
	return nil
}

func validateRecordCreate(payload *model.RecordCreate) []FieldError {
	var fields []FieldError
	if strings.TrimSpace(payload.Title) == "" {
		fields = append(fields, FieldError{Field: "title", Message: "title is required"})
	}
	if strings.TrimSpace(payload.Artist) == "" {
		fields = append(fields, FieldError{Field: "artist", Message: "artist is required"})
	}
	for i, t := range payload.Tracks {
		if strings.TrimSpace(t.Title) == "" {
			fields = append(fields, FieldError{
				Field:   "tracks[" + strconv.Itoa(i) + "].title",
				Message: "track title is required",
			})
		}
	}
	return fields
}

func validateRecordUpdate(payload *model.RecordUpdate) []FieldError {
	var fields []FieldError
	if payload.Title != nil && strings.TrimSpace(*payload.Title) == "" {
		fields = append(fields, FieldError{Field: "title", Message: "title cannot be empty"})
	}
	if payload.Artist != nil && strings.TrimSpace(*payload.Artist) == "" {
		fields = append(fields, FieldError{Field: "artist", Message: "artist cannot be empty"})
	}
	if payload.Tracks != nil {
		for i, t := range *payload.Tracks {
			if strings.TrimSpace(t.Title) == "" {
				fields = append(fields, FieldError{
					Field:   "tracks[" + strconv.Itoa(i) + "].title",
					Message: "track title is required",
				})
			}
		}
	}
	return fields
}
