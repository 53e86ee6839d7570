package server

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"waxcrate/cache"
	"waxcrate/config"
	"waxcrate/core/albuminfo"
	"waxcrate/core/events"
	"waxcrate/db"
	"waxcrate/logger"
	"waxcrate/model"
	"waxcrate/repository"
	"waxcrate/storage"

	"github.com/gorilla/mux"
)

// Start initializes all dependencies and runs the HTTP server until it
// receives SIGINT or SIGTERM.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})
	defer logger.Sync()

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer db.CloseGormDB()
	logger.Info("Connected to database", logger.String("host", cfg.DBHost), logger.String("db", cfg.DBName))

	if err := db.AutoMigrateModels(&model.Record{}, &model.Genre{}, &model.Track{}); err != nil {
		logger.Fatal("Failed to migrate database", logger.ErrorField(err))
	}

	// Redis only backs the album-info cache; run without it if unavailable.
	if err := cache.ConnectRedis(cfg); err != nil {
		logger.Warn("Redis unavailable, album info lookups are uncached", logger.ErrorField(err))
	} else {
		defer cache.CloseRedis()
		logger.Info("Connected to Redis")
	}

	// Object storage only backs artwork uploads; run without it too.
	if err := storage.InitMinio(cfg); err != nil {
		logger.Warn("Object storage unavailable, artwork uploads disabled", logger.ErrorField(err))
	} else {
		logger.Info("Connected to object storage", logger.String("bucket", cfg.MinioBucket))
	}

	hub := events.NewHub()
	go hub.Run()

	recordRepo := repository.NewGormRecordRepository(db.GormDB)
	genreRepo := repository.NewGormGenreRepository(db.GormDB)
	infoService := albuminfo.NewService(cfg)

	apiHandler := NewAPIHandler(recordRepo, genreRepo, infoService, hub, cfg)

	router := mux.NewRouter()
	router.Use(corsMiddleware)
	router.Use(requestLogMiddleware)

	registerAPIRoutes(router, apiHandler)

	// Uploaded cover art, proxied from object storage
	router.PathPrefix("/static/").HandlerFunc(serveStaticObject)

	// Frontend UI
	if _, err := os.Stat(cfg.WebAppDir); err == nil {
		router.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.WebAppDir)))
	}

	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("Server stopped")
}

// registerAPIRoutes wires the JSON API endpoints onto the router.
func registerAPIRoutes(router *mux.Router, apiHandler *APIHandler) {
	router.HandleFunc("/api/health", apiHandler.HealthHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/records", apiHandler.ListRecordsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/records", apiHandler.CreateRecordHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/records/search", apiHandler.SearchRecordsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/records/{id}", apiHandler.GetRecordHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/records/{id}", apiHandler.UpdateRecordHandler).Methods(http.MethodPut)
	router.HandleFunc("/api/records/{id}", apiHandler.DeleteRecordHandler).Methods(http.MethodDelete)
	router.HandleFunc("/api/records/{id}/artwork", apiHandler.UploadArtworkHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/genres", apiHandler.ListGenresHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/fetch-album-info", apiHandler.FetchAlbumInfoHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/events", apiHandler.EventsHandler)
}

// serveStaticObject streams an object (cover art) out of object storage.
func serveStaticObject(w http.ResponseWriter, r *http.Request) {
	objectPath := strings.TrimPrefix(r.URL.Path, "/static/")

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	object, err := storage.GetObject(ctx, objectPath)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer object.Close()

	// Reading the object stat surfaces missing keys before headers are sent.
	stat, err := object.Stat()
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	contentType := stat.ContentType
	if contentType == "" {
		contentType = artworkContentType(strings.ToLower(filepath.Ext(objectPath)))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000")

	if _, err := io.Copy(w, object); err != nil {
		logger.Error("Error serving object", logger.String("object", objectPath), logger.ErrorField(err))
	}
}
