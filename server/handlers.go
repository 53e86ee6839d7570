package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"waxcrate/config"
	"waxcrate/core/albuminfo"
	"waxcrate/core/events"
	"waxcrate/logger"
	"waxcrate/repository"
)

const (
	defaultListLimit = 100
)

// AlbumInfoLookup resolves album art and review URLs for a release.
type AlbumInfoLookup interface {
	Lookup(ctx context.Context, artist, title string) *albuminfo.Info
}

// APIHandler handles all API requests.
type APIHandler struct {
	recordRepo repository.RecordRepository
	genreRepo  repository.GenreRepository
	albumInfo  AlbumInfoLookup
	hub        *events.Hub
	cfg        *config.Config
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	recordRepo repository.RecordRepository,
	genreRepo repository.GenreRepository,
	albumInfo AlbumInfoLookup,
	hub *events.Hub,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		recordRepo: recordRepo,
		genreRepo:  genreRepo,
		albumInfo:  albumInfo,
		hub:        hub,
		cfg:        cfg,
	}
}

// HealthHandler reports service liveness.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Record collection API is running",
	})
}

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error  string       `json:"error"`
	Fields []FieldError `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode response", logger.ErrorField(err))
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

func respondValidationError(w http.ResponseWriter, fields []FieldError) {
	respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
		Error:  "validation failed",
		Fields: fields,
	})
}

// parsePagination reads skip/limit query parameters with the conventional
// defaults (skip=0, limit=100).
func parsePagination(r *http.Request) (skip, limit int, err error) {
	skip, limit = 0, defaultListLimit

	if v := r.URL.Query().Get("skip"); v != "" {
		skip, err = strconv.Atoi(v)
		if err != nil || skip < 0 {
			return 0, 0, strconv.ErrSyntax
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 {
			return 0, 0, strconv.ErrSyntax
		}
	}
	return skip, limit, nil
}
